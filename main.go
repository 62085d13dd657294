package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-digital/config"
	"github.com/yeremiapane/comanda-digital/database"
	"github.com/yeremiapane/comanda-digital/kds"
	"github.com/yeremiapane/comanda-digital/router"
	"github.com/yeremiapane/comanda-digital/services"
	"github.com/yeremiapane/comanda-digital/utils"
)

func main() {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load configuration: %v", err)
	}
	utils.InitLogger(cfg.LogFormat)

	gin.SetMode(cfg.Server.GinMode)

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	if cfg.Seed.Enabled {
		err := database.Seed(db, database.SeedOptions{
			BaseURL:       cfg.Restaurant.BaseURL,
			Tables:        cfg.Seed.Tables,
			AdminEmail:    cfg.Auth.AdminEmail,
			AdminPassword: cfg.Auth.AdminPassword,
		})
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed database: %v", err)
		}
	}

	mercadoPago := services.NewMercadoPagoService(cfg.MercadoPago)
	if err := mercadoPago.ValidateConfig(); err != nil {
		utils.ErrorLogger.Warnf("Mercado Pago is not configured, payments will fail: %v", err)
	}
	if !mercadoPago.SignatureEnabled() {
		utils.ErrorLogger.Warn("MERCADO_PAGO_WEBHOOK_SECRET is not set, webhook signatures are not verified")
	}
	if !cfg.Auth.Enabled() {
		utils.ErrorLogger.Warn("JWT_SECRET is not set, staff routes are open")
	}

	r := router.SetupRouter(db, cfg, router.Deps{
		Gateway:  mercadoPago,
		Verifier: mercadoPago,
		Hub:      kds.NewHub(),
	})

	utils.InfoLogger.Printf("Listening on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
