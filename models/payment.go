package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

// Payment methods
const (
	PaymentMethodPix        = "pix"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodDebitCard  = "debit_card"
)

// Payment is one payment attempt for a tab. Rows are kept for audit even
// after the tab is closed.
type Payment struct {
	ID                 string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ComandaID          string    `gorm:"type:varchar(36);not null;index" json:"comanda_id"`
	Amount             float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod      string    `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status             string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ExternalPaymentID  string    `gorm:"type:varchar(100);index" json:"external_payment_id"`
	ProcessorPaymentID string    `gorm:"type:varchar(100);index" json:"processor_payment_id,omitempty"`
	PaymentURL         string    `gorm:"type:varchar(500)" json:"payment_url,omitempty"`
	CreatedAt          time.Time `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodPix, PaymentMethodCreditCard, PaymentMethodDebitCard:
		return true
	}
	return false
}
