package middleware

import (
	"net/http" // HTTP status codes
	"net/url"  // Query escaping

	"github.com/obutuz/Miley/internal/domain"  // Importing domain models
	"github.com/obutuz/Miley/internal/session" // Session access

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

const userKey = "user" // Context key of the authenticated user

// CurrentUser loads the logged in user from the session into the context
func CurrentUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c) // Session attached by the session manager
		if id := sess.UserID(); id != 0 {
			var user domain.User
			// Only active users count as authenticated
			if err := db.WithContext(c.Request.Context()).Preload("Profile").First(&user, id).Error; err == nil && user.IsActive {
				c.Set(userKey, &user) // Store user in context
			}
		}
		c.Next() // Proceed to the next handler
	}
}

// UserFromContext returns the authenticated user, if any
func UserFromContext(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

// LoginRequired redirects anonymous visitors to the login page
func LoginRequired(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFromContext(c); !ok {
			// Remember where the visitor wanted to go
			c.Redirect(http.StatusFound, loginURL+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next() // Proceed to the next handler
	}
}
