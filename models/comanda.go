package models

import (
	"time"

	"gorm.io/gorm"
)

// Comanda statuses
const (
	ComandaStatusOpen           = "open"
	ComandaStatusPaymentPending = "payment_pending"
	ComandaStatusPaid           = "paid"
	ComandaStatusCanceled       = "canceled"
)

// Comanda is a diner's running bill for one table session.
type Comanda struct {
	ID            string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	CustomerName  string        `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string        `gorm:"type:varchar(50)" json:"customer_phone"`
	TableNumber   int           `gorm:"not null;index" json:"table_number"`
	Status        string        `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	TotalAmount   float64       `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	Items         []ComandaItem `gorm:"foreignKey:ComandaID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (c *Comanda) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// IsClosed reports whether the tab no longer accepts items or payments.
func (c *Comanda) IsClosed() bool {
	return c.Status == ComandaStatusPaid || c.Status == ComandaStatusCanceled
}

func ValidComandaStatus(status string) bool {
	switch status {
	case ComandaStatusOpen, ComandaStatusPaymentPending, ComandaStatusPaid, ComandaStatusCanceled:
		return true
	}
	return false
}
