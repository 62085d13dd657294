package models

import "time"

// WebhookEvent records a processed processor notification so redeliveries
// can be acknowledged without side effects.
type WebhookEvent struct {
	ID        string    `gorm:"type:varchar(191);primaryKey" json:"id"`
	Action    string    `gorm:"type:varchar(50);not null" json:"action"`
	DataID    string    `gorm:"type:varchar(100);index" json:"data_id"`
	CreatedAt time.Time `json:"created_at"`
}
