package middlewares

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddlewares allows any origin. Diner phones load the frontend from
// whatever host serves it.
func CORSMiddlewares() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization",
			"X-Signature", "X-Request-Id",
		},
		AllowWebSockets: true,
		MaxAge:          12 * time.Hour,
	})
}
