package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-digital/utils"
)

// PaymentSecurityHeaders adds security headers for payment endpoints
func PaymentSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// LogWebhookRequest logs processor deliveries with the headers used for
// signature checks and deduplication.
func LogWebhookRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		utils.InfoLogger.WithFields(logrus.Fields{
			"request_id":    c.GetHeader("X-Request-Id"),
			"has_signature": c.GetHeader("X-Signature") != "",
			"topic":         c.Query("type"),
			"status":        c.Writer.Status(),
			"duration":      time.Since(start).String(),
		}).Info("Webhook delivery")
	}
}
