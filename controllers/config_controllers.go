package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-digital/config"
)

type ConfigController struct {
	Restaurant        config.RestaurantConfig
	ServiceChargeRate float64
}

func NewConfigController(cfg *config.Config) *ConfigController {
	return &ConfigController{
		Restaurant:        cfg.Restaurant,
		ServiceChargeRate: cfg.Billing.ServiceChargeRate,
	}
}

// GetConfig -> public restaurant settings for the diner frontend
func (cc *ConfigController) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"restaurant": gin.H{
			"name":      cc.Restaurant.Name,
			"base_url":  cc.Restaurant.BaseURL,
			"instagram": cc.Restaurant.Instagram,
			"whatsapp":  cc.Restaurant.WhatsApp,
		},
		"service_charge_rate": cc.ServiceChargeRate,
	})
}
