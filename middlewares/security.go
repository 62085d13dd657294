package middlewares

import (
	"github.com/gin-gonic/gin"
)

var apiSecurityHeaders = map[string]string{
	"X-Frame-Options":        "DENY",
	"X-Content-Type-Options": "nosniff",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
}

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		for name, value := range apiSecurityHeaders {
			c.Header(name, value)
		}
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
