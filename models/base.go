package models

import (
	"github.com/google/uuid"
)

// assignID gives a record a UUID unless the caller already chose one.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All returns every model the application migrates, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Table{},
		&Product{},
		&Comanda{},
		&ComandaItem{},
		&Payment{},
		&WebhookEvent{},
	}
}

