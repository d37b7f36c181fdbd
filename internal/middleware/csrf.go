// Package middleware provides HTTP middleware for the site.
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// AllowedOrigins lists the origins pages are served from.
	AllowedOrigins []string
}

// CSRF returns middleware that validates Origin/Referer headers on
// state-changing requests. Session cookies are sent by the browser on
// every request, so forms and the follow endpoint need this check.
func CSRF(config CSRFConfig) gin.HandlerFunc {
	allowedSet := make(map[string]bool)
	for _, origin := range config.AllowedOrigins {
		allowedSet[normalizeOrigin(origin)] = true
	}

	return func(c *gin.Context) {
		method := c.Request.Method
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			c.Next()
			return
		}

		if origin := c.GetHeader("Origin"); origin != "" {
			if !allowedSet[normalizeOrigin(origin)] {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "CSRF validation failed: invalid origin",
				})
				return
			}
			c.Next()
			return
		}

		if referer := c.GetHeader("Referer"); referer != "" {
			if !allowedSet[normalizeOrigin(extractOrigin(referer))] {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "CSRF validation failed: invalid referer",
				})
				return
			}
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "CSRF validation failed: missing origin",
		})
	}
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(origin), "/")
}

// extractOrigin extracts scheme://host[:port] from a URL.
func extractOrigin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
