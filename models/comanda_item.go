package models

import (
	"time"

	"gorm.io/gorm"
)

type ComandaItem struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ComandaID   string    `gorm:"type:varchar(36);not null;index" json:"comanda_id"`
	ProductID   string    `gorm:"type:varchar(36)" json:"product_id"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice  float64   `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i *ComandaItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
