package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrProcessorPaymentNotFound means the processor does not know the payment id.
	ErrProcessorPaymentNotFound = errors.New("payment not found at processor")
)

func notFound(kind, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", kind, id, err)
}
