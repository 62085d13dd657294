package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-digital/kds"
	"github.com/yeremiapane/comanda-digital/services"
	"github.com/yeremiapane/comanda-digital/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
	Hub      *kds.Hub
}

func NewPaymentController(payments *services.PaymentService, hub *kds.Hub) *PaymentController {
	return &PaymentController{Payments: payments, Hub: hub}
}

// GetPayments -> payments of a tab, ?comanda_id=
func (pc *PaymentController) GetPayments(c *gin.Context) {
	payments, err := pc.Payments.ListByComanda(c.Request.Context(), c.Query("comanda_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "payments", payments)
}

// CreatePayment -> starts a Mercado Pago checkout for a tab
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var req struct {
		ComandaID     string  `json:"comanda_id"`
		PaymentMethod string  `json:"payment_method"`
		Amount        float64 `json:"amount"`
		CustomerName  string  `json:"customer_name"`
		CustomerEmail string  `json:"customer_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := pc.Payments.Initiate(c.Request.Context(), services.InitiatePaymentInput{
		ComandaID:     req.ComandaID,
		PaymentMethod: req.PaymentMethod,
		Amount:        req.Amount,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pc.Hub.Broadcast(kds.EventPaymentPending, gin.H{
		"comanda_id": req.ComandaID,
		"payment_id": result.PaymentID,
		"method":     req.PaymentMethod,
	})
	c.JSON(http.StatusOK, result)
}
