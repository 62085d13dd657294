package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-digital/config"
	"github.com/yeremiapane/comanda-digital/controllers"
	"github.com/yeremiapane/comanda-digital/kds"
	"github.com/yeremiapane/comanda-digital/middlewares"
	"github.com/yeremiapane/comanda-digital/models"
	"github.com/yeremiapane/comanda-digital/services"
	"github.com/yeremiapane/comanda-digital/utils"
	"gorm.io/gorm"
)

// Deps are the collaborators the router does not build itself.
type Deps struct {
	Gateway  services.PaymentGateway
	Verifier services.SignatureVerifier
	Hub      *kds.Hub
}

func SetupRouter(db *gorm.DB, cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		utils.ErrorLogger.Printf("Invalid trusted proxies %v: %v", cfg.Server.TrustedProxies, err)
	}

	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).RateLimit())

	hub := deps.Hub
	if hub == nil {
		hub = kds.NewHub()
	}

	// Services
	comandaSvc := services.NewComandaService(db, cfg.Billing.ServiceChargeRate)
	paymentSvc := services.NewPaymentService(db, deps.Gateway, comandaSvc, services.PaymentSettings{
		BaseURL:             cfg.Restaurant.BaseURL,
		StatementDescriptor: cfg.Restaurant.StatementDescriptor,
		DefaultPayerEmail:   cfg.MercadoPago.DefaultPayerEmail,
		Sandbox:             cfg.MercadoPago.Sandbox,
	})
	webhookSvc := services.NewWebhookService(db, deps.Gateway, deps.Verifier, comandaSvc, cfg.Tabs.AutoCloseOnApproval)

	// Controllers
	productCtrl := controllers.NewProductController(db, hub)
	comandaCtrl := controllers.NewComandaController(comandaSvc, hub)
	itemCtrl := controllers.NewComandaItemController(comandaSvc, hub)
	tableCtrl := controllers.NewTableController(db, hub, cfg.Restaurant.BaseURL)
	paymentCtrl := controllers.NewPaymentController(paymentSvc, hub)
	webhookCtrl := controllers.NewWebhookController(webhookSvc, hub)
	userCtrl := controllers.NewUserController(db, cfg.Auth)
	kdsCtrl := controllers.NewKDSController(hub)
	configCtrl := controllers.NewConfigController(cfg)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      DINER ROUTES
	// ----------------------------------------------------------------
	api.GET("/config", configCtrl.GetConfig)
	api.GET("/products", productCtrl.GetProducts)
	api.GET("/tables", tableCtrl.GetAllTables)

	api.GET("/comandas", comandaCtrl.GetComandas)
	api.POST("/comandas", comandaCtrl.CreateComanda)
	api.PUT("/comandas", comandaCtrl.UpdateComanda)
	api.GET("/comandas/bill", comandaCtrl.GetBill)

	api.GET("/comanda-items", itemCtrl.GetItems)
	api.POST("/comanda-items", itemCtrl.CreateItem)
	api.DELETE("/comanda-items", itemCtrl.DeleteItem)

	strict := middlewares.NewStrictRateLimiter()
	payments := api.Group("/payments")
	payments.Use(middlewares.PaymentSecurityHeaders())
	{
		payments.GET("", paymentCtrl.GetPayments)
		payments.POST("", strict.RateLimit(), paymentCtrl.CreatePayment)
	}

	api.POST("/webhooks/mercadopago", middlewares.LogWebhookRequest(), webhookCtrl.MercadoPago)
	api.POST("/login", strict.RateLimit(), userCtrl.Login)

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staff := api.Group("")
	staff.Use(middlewares.StaffAuth(cfg.Auth), middlewares.RequireRole(cfg.Auth, models.RoleAdmin, models.RoleStaff))
	{
		staff.POST("/products", productCtrl.CreateProduct)
		staff.PUT("/products", productCtrl.UpdateProduct)
		staff.POST("/tables", tableCtrl.CreateTable)
		staff.PUT("/tables", tableCtrl.UpdateTable)
		staff.GET("/profile", userCtrl.GetProfile)
	}
	api.POST("/users",
		middlewares.StaffAuth(cfg.Auth),
		middlewares.RequireRole(cfg.Auth, models.RoleAdmin),
		userCtrl.Register,
	)

	api.GET("/ws", middlewares.WebSocketAuthMiddleware(cfg.Auth), kdsCtrl.Connect)

	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("Route %s not found", c.Request.URL.Path))
	})

	return r
}
