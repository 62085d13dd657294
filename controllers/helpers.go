package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-digital/services"
	"github.com/yeremiapane/comanda-digital/utils"
	"gorm.io/gorm"
)

// respondServiceError maps service errors to 400, 404 or 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case utils.IsValidationError(err):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.ErrorLogger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error(err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// bindUpdate decodes a partial-update body. The record id comes from the
// body or, failing that, the id query parameter.
func bindUpdate(c *gin.Context) (string, map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		return "", nil, utils.NewValidationError("", fmt.Sprintf("invalid JSON body: %v", err))
	}

	id := c.Query("id")
	if raw, ok := fields["id"]; ok {
		s, isString := raw.(string)
		if !isString {
			return "", nil, utils.NewValidationError("id", "must be a string")
		}
		id = s
		delete(fields, "id")
	}
	if id == "" {
		return "", nil, utils.NewValidationError("id", "id is required")
	}
	return id, fields, nil
}
