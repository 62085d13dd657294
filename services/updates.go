package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yeremiapane/comanda-digital/utils"
	"gorm.io/gorm"
)

// FieldRule converts a decoded JSON value into a column value, rejecting
// values of the wrong shape.
type FieldRule func(field string, v interface{}) (interface{}, error)

// FieldRules maps updatable column names to their rule. Columns missing from
// the map are never written by a partial update.
type FieldRules map[string]FieldRule

type validatable interface {
	Validate() error
}

// UpdateHooks run inside the update transaction. Before sees the converted
// column values and the row as loaded; After sees the reloaded row. Either
// aborts the update by returning an error.
type UpdateHooks struct {
	Before func(tx *gorm.DB, updates map[string]interface{}) error
	After  func(tx *gorm.DB) error
}

// UpdateRecord applies a partial update to the row with the given id and
// reloads it into dest. Keys without a rule are dropped. If dest has a
// Validate method the updated row must pass it or nothing is written.
func UpdateRecord(ctx context.Context, db *gorm.DB, dest interface{}, kind, id string, fields map[string]interface{}, rules FieldRules, hooks ...UpdateHooks) error {
	if id == "" {
		return utils.NewValidationError("id", "id is required")
	}

	updates := make(map[string]interface{}, len(fields))
	for key, raw := range fields {
		rule, ok := rules[key]
		if !ok {
			continue
		}
		value, err := rule(key, raw)
		if err != nil {
			return err
		}
		updates[key] = value
	}
	if len(updates) == 0 {
		return utils.NewValidationError("", "no updatable fields in request")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(dest, "id = ?", id).Error; err != nil {
			return notFound(kind, id, err)
		}
		for _, h := range hooks {
			if h.Before != nil {
				if err := h.Before(tx, updates); err != nil {
					return err
				}
			}
		}
		if err := tx.Model(dest).Updates(updates).Error; err != nil {
			return fmt.Errorf("update %s %s: %w", kind, id, err)
		}
		if err := tx.First(dest, "id = ?", id).Error; err != nil {
			return notFound(kind, id, err)
		}
		if v, ok := dest.(validatable); ok {
			if err := v.Validate(); err != nil {
				return err
			}
		}
		for _, h := range hooks {
			if h.After != nil {
				if err := h.After(tx); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func StringField(field string, v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, utils.NewValidationError(field, "must be a string")
	}
	return strings.TrimSpace(s), nil
}

func NullableStringField(field string, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return StringField(field, v)
}

func BoolField(field string, v interface{}) (interface{}, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, utils.NewValidationError(field, "must be a boolean")
	}
	return b, nil
}

func PositiveIntField(field string, v interface{}) (interface{}, error) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil, utils.NewValidationError(field, "must be an integer")
		}
		n = float64(parsed)
	default:
		return nil, utils.NewValidationError(field, "must be an integer")
	}
	if n != math.Trunc(n) || n <= 0 {
		return nil, utils.NewValidationError(field, "must be a positive integer")
	}
	return int(n), nil
}

func NullableMoneyField(field string, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := v.(float64)
	if !ok {
		return nil, utils.NewValidationError(field, "must be a number")
	}
	if n < 0 {
		return nil, utils.NewValidationError(field, "must not be negative")
	}
	return n, nil
}

// EnumField accepts only strings for which valid returns true.
func EnumField(valid func(string) bool) FieldRule {
	return func(field string, v interface{}) (interface{}, error) {
		s, ok := v.(string)
		if !ok || !valid(s) {
			return nil, utils.NewValidationError(field, fmt.Sprintf("invalid value %v", v))
		}
		return s, nil
	}
}
