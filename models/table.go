package models

import (
	"time"

	"gorm.io/gorm"
)

// Table statuses
const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
)

type Table struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TableNumber int       `gorm:"not null;uniqueIndex" json:"table_number"`
	Status      string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	QRCodeData  string    `gorm:"type:varchar(500)" json:"qr_code_data"`
	QRCodeImage string    `gorm:"type:text" json:"qr_code_image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

func ValidTableStatus(status string) bool {
	return status == TableStatusAvailable || status == TableStatusOccupied
}
