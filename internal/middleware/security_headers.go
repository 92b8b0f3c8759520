package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds standard security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevents clickjacking attacks
		c.Header("X-Frame-Options", "DENY")

		// Prevents MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// Controls referrer information
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Restricts browser features
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=(), interest-cohort=()")

		c.Next()
	}
}
