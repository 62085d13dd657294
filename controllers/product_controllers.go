package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-digital/kds"
	"github.com/yeremiapane/comanda-digital/models"
	"github.com/yeremiapane/comanda-digital/services"
	"github.com/yeremiapane/comanda-digital/utils"
	"gorm.io/gorm"
)

var productFields = services.FieldRules{
	"name":              services.StringField,
	"category":          services.StringField,
	"price":             services.NullableMoneyField,
	"is_variable_price": services.BoolField,
	"description":       services.NullableStringField,
	"image_url":         services.NullableStringField,
	"available":         services.BoolField,
}

type ProductController struct {
	DB  *gorm.DB
	Hub *kds.Hub
}

func NewProductController(db *gorm.DB, hub *kds.Hub) *ProductController {
	return &ProductController{DB: db, Hub: hub}
}

// GetProducts -> available products grouped by category
func (pc *ProductController) GetProducts(c *gin.Context) {
	products := []models.Product{}
	query := pc.DB.WithContext(c.Request.Context())
	if c.Query("all") != "true" {
		query = query.Where("available = ?", true)
	}
	if err := query.Order("category asc").Order("name asc").Find(&products).Error; err != nil {
		respondServiceError(c, fmt.Errorf("list products: %w", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "products", products)
}

// CreateProduct -> adds a catalog entry
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req struct {
		Name            string   `json:"name" binding:"required"`
		Category        string   `json:"category" binding:"required"`
		Price           *float64 `json:"price"`
		IsVariablePrice bool     `json:"is_variable_price"`
		Description     *string  `json:"description"`
		ImageURL        *string  `json:"image_url"`
		Available       *bool    `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	product := models.Product{
		Name:            strings.TrimSpace(req.Name),
		Category:        strings.TrimSpace(req.Category),
		Price:           req.Price,
		IsVariablePrice: req.IsVariablePrice,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Available:       req.Available == nil || *req.Available,
	}
	if err := product.Validate(); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := pc.DB.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		respondServiceError(c, fmt.Errorf("create product: %w", err))
		return
	}

	pc.Hub.Broadcast(kds.EventProductUpdate, product)
	utils.InfoLogger.Printf("New product created: %s (%s)", product.Name, product.Category)
	utils.RespondJSON(c, http.StatusOK, "product", product)
}

// UpdateProduct -> partial update, id in the body
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, fields, err := bindUpdate(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var product models.Product
	if err := services.UpdateRecord(c.Request.Context(), pc.DB, &product, "product", id, fields, productFields); err != nil {
		respondServiceError(c, err)
		return
	}

	pc.Hub.Broadcast(kds.EventProductUpdate, product)
	utils.RespondJSON(c, http.StatusOK, "product", product)
}
