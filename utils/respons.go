package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondJSON writes {key: value}, the envelope every endpoint of the API uses.
func RespondJSON(c *gin.Context, code int, key string, value interface{}) {
	c.JSON(code, gin.H{key: value})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}
