package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-digital/kds"
	"github.com/yeremiapane/comanda-digital/models"
	"github.com/yeremiapane/comanda-digital/services"
	"github.com/yeremiapane/comanda-digital/utils"
)

type WebhookController struct {
	Webhooks *services.WebhookService
	Hub      *kds.Hub
}

func NewWebhookController(webhooks *services.WebhookService, hub *kds.Hub) *WebhookController {
	return &WebhookController{Webhooks: webhooks, Hub: hub}
}

// MercadoPago -> processor notifications. Answers in plain text.
func (wc *WebhookController) MercadoPago(c *gin.Context) {
	var notification services.Notification
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.String(http.StatusBadRequest, "invalid notification body")
		return
	}
	if notification.Data.ID == "" {
		notification.Data.ID = utils.FlexString(c.Query("data.id"))
	}

	outcome, err := wc.Webhooks.Handle(c.Request.Context(), services.WebhookDelivery{
		Notification: notification,
		RequestID:    c.GetHeader("X-Request-Id"),
		Signature:    c.GetHeader("X-Signature"),
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			c.String(http.StatusUnauthorized, "invalid signature")
			return
		}
		utils.ErrorLogger.Errorf("Webhook processing failed: %v", err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	if outcome.Processed {
		wc.Hub.Broadcast(kds.EventPaymentUpdate, outcome)
		if outcome.TableNumber > 0 {
			wc.Hub.Broadcast(kds.EventTableUpdate, gin.H{
				"table_number": outcome.TableNumber,
				"status":       models.TableStatusAvailable,
			})
		}
	}
	c.String(http.StatusOK, "OK")
}
