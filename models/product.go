package models

import (
	"time"

	"github.com/yeremiapane/comanda-digital/utils"
	"gorm.io/gorm"
)

type Product struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	Category        string    `gorm:"type:varchar(100);not null;index:idx_products_category_name" json:"category"`
	Price           *float64  `gorm:"type:decimal(10,2)" json:"price"`
	IsVariablePrice bool      `gorm:"not null;default:false" json:"is_variable_price"`
	Description     *string   `gorm:"type:text" json:"description"`
	ImageURL        *string   `gorm:"type:varchar(500)" json:"image_url"`
	Available       bool      `gorm:"not null;index" json:"available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Validate enforces that fixed-price products carry a non-negative price.
func (p *Product) Validate() error {
	if p.Name == "" {
		return utils.NewValidationError("name", "name is required")
	}
	if p.Category == "" {
		return utils.NewValidationError("category", "category is required")
	}
	if p.IsVariablePrice {
		return nil
	}
	if p.Price == nil {
		return utils.NewValidationError("price", "price is required unless is_variable_price is set")
	}
	if *p.Price < 0 {
		return utils.NewValidationError("price", "price must not be negative")
	}
	return nil
}
