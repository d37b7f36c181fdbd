package api

import (
	"errors"   // Error inspection
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing
	"strings"  // URL joining

	"github.com/obutuz/Miley/internal/middleware" // Current user lookup

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding validation errors
	"github.com/sirupsen/logrus"             // Logging library
)

// render executes an HTML template with the current user added to the context
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := middleware.UserFromContext(c); ok {
		data["current_user"] = user // Available to the layout
	}
	c.HTML(status, name, data)
}

// notFound renders the 404 page
func notFound(c *gin.Context, message string) {
	render(c, http.StatusNotFound, "errors/404.html", gin.H{"message": message})
}

// serverError logs err and renders the 500 page
func serverError(c *gin.Context, err error, message string) {
	logrus.WithFields(logrus.Fields{
		"path":  c.Request.URL.Path, // Request path
		"error": err.Error(),        // Error message
	}).Error(message)
	render(c, http.StatusInternalServerError, "errors/500.html", nil)
}

// paramID parses a positive numeric path parameter
func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// formErrors turns binding errors into messages shown next to a form
func formErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid form submission."}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: this field is required.", fe.Field())
	case "email":
		return fmt.Sprintf("%s: enter a valid email address.", fe.Field())
	case "max":
		return fmt.Sprintf("%s: ensure this value is at most %s.", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s: ensure this value is at least %s.", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: select one of %s.", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s: invalid value.", fe.Field())
}

// absoluteURL joins path onto the configured site URL
func absoluteURL(siteURL, path string) string {
	return strings.TrimRight(siteURL, "/") + path
}

// NotFoundHandler renders the 404 page for unknown routes
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		notFound(c, "Page not found.")
	}
}

// HealthHandler reports that the process is serving requests
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
