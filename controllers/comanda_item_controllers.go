package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-digital/kds"
	"github.com/yeremiapane/comanda-digital/services"
	"github.com/yeremiapane/comanda-digital/utils"
)

type ComandaItemController struct {
	Comandas *services.ComandaService
	Hub      *kds.Hub
}

func NewComandaItemController(comandas *services.ComandaService, hub *kds.Hub) *ComandaItemController {
	return &ComandaItemController{Comandas: comandas, Hub: hub}
}

// GetItems -> ?comanda_id= lists a tab's items, ?id= fetches one
func (ic *ComandaItemController) GetItems(c *gin.Context) {
	ctx := c.Request.Context()

	if comandaID := c.Query("comanda_id"); comandaID != "" {
		items, err := ic.Comandas.ListItems(ctx, comandaID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "items", items)
		return
	}

	if id := c.Query("id"); id != "" {
		item, err := ic.Comandas.GetItem(ctx, id)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "item", item)
		return
	}

	utils.RespondError(c, http.StatusBadRequest, errors.New("comanda_id or id is required"))
}

// CreateItem -> adds a line to a tab
func (ic *ComandaItemController) CreateItem(c *gin.Context) {
	var req struct {
		ComandaID   string        `json:"comanda_id"`
		ProductID   string        `json:"product_id"`
		ProductName string        `json:"product_name"`
		Quantity    utils.FlexInt `json:"quantity"`
		UnitPrice   *float64      `json:"unit_price"`
		Notes       string        `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := ic.Comandas.AddItem(c.Request.Context(), services.AddItemInput{
		ComandaID:   req.ComandaID,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Quantity:    int(req.Quantity),
		UnitPrice:   req.UnitPrice,
		Notes:       req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ic.Hub.Broadcast(kds.EventItemAdded, item)
	utils.RespondJSON(c, http.StatusOK, "item", item)
}

// DeleteItem -> removes a line; unknown ids succeed
func (ic *ComandaItemController) DeleteItem(c *gin.Context) {
	item, err := ic.Comandas.DeleteItem(c.Request.Context(), c.Query("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if item != nil {
		ic.Hub.Broadcast(kds.EventItemRemoved, item)
	}
	utils.RespondJSON(c, http.StatusOK, "success", true)
}
