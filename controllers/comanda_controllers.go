package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-digital/kds"
	"github.com/yeremiapane/comanda-digital/services"
	"github.com/yeremiapane/comanda-digital/utils"
)

type ComandaController struct {
	Comandas *services.ComandaService
	Hub      *kds.Hub
}

func NewComandaController(comandas *services.ComandaService, hub *kds.Hub) *ComandaController {
	return &ComandaController{Comandas: comandas, Hub: hub}
}

// GetComandas -> one tab when ?id= is given, otherwise all tabs
func (cc *ComandaController) GetComandas(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		comanda, err := cc.Comandas.Get(c.Request.Context(), id)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "comanda", comanda)
		return
	}

	comandas, err := cc.Comandas.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "comandas", comandas)
}

// CreateComanda -> opens a tab for a table
func (cc *ComandaController) CreateComanda(c *gin.Context) {
	var req struct {
		CustomerName  string        `json:"customer_name"`
		CustomerPhone string        `json:"customer_phone"`
		TableNumber   utils.FlexInt `json:"table_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	comanda, err := cc.Comandas.Open(c.Request.Context(), services.OpenComandaInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		TableNumber:   int(req.TableNumber),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	cc.Hub.Broadcast(kds.EventComandaCreated, comanda)
	utils.RespondJSON(c, http.StatusOK, "comanda", comanda)
}

// UpdateComanda -> partial update, id in the body
func (cc *ComandaController) UpdateComanda(c *gin.Context) {
	id, fields, err := bindUpdate(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	comanda, err := cc.Comandas.Update(c.Request.Context(), id, fields)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	cc.Hub.Broadcast(kds.EventComandaUpdate, comanda)
	utils.RespondJSON(c, http.StatusOK, "comanda", comanda)
}

// GetBill -> tab total with service charge
func (cc *ComandaController) GetBill(c *gin.Context) {
	bill, err := cc.Comandas.Bill(c.Request.Context(), c.Query("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}
