package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-digital/models"
	"github.com/yeremiapane/comanda-digital/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComandaService owns the tab lifecycle and keeps each tab's stored total in
// step with its items.
type ComandaService struct {
	db                *gorm.DB
	serviceChargeRate float64
}

func NewComandaService(db *gorm.DB, serviceChargeRate float64) *ComandaService {
	return &ComandaService{db: db, serviceChargeRate: serviceChargeRate}
}

type OpenComandaInput struct {
	CustomerName  string
	CustomerPhone string
	TableNumber   int
}

type AddItemInput struct {
	ComandaID   string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   *float64
	Notes       string
}

// ComandaFields are the columns a client may change on a tab.
var ComandaFields = FieldRules{
	"customer_name":  StringField,
	"customer_phone": StringField,
	"table_number":   PositiveIntField,
	"status":         EnumField(models.ValidComandaStatus),
}

// Open creates a tab for a table and marks the table occupied.
func (s *ComandaService) Open(ctx context.Context, in OpenComandaInput) (*models.Comanda, error) {
	if in.TableNumber <= 0 {
		return nil, utils.NewValidationError("table_number", "table_number is required")
	}

	comanda := models.Comanda{
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		TableNumber:   in.TableNumber,
		Status:        models.ComandaStatusOpen,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comanda).Error; err != nil {
			return fmt.Errorf("create comanda: %w", err)
		}
		// A tab may be opened for a table that is not registered.
		if err := tx.Model(&models.Table{}).
			Where("table_number = ?", in.TableNumber).
			Update("status", models.TableStatusOccupied).Error; err != nil {
			return fmt.Errorf("occupy table %d: %w", in.TableNumber, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"comanda_id":   comanda.ID,
		"table_number": comanda.TableNumber,
	}).Info("Comanda opened")
	return &comanda, nil
}

func (s *ComandaService) Get(ctx context.Context, id string) (*models.Comanda, error) {
	if id == "" {
		return nil, utils.NewValidationError("id", "id is required")
	}
	var comanda models.Comanda
	if err := s.db.WithContext(ctx).First(&comanda, "id = ?", id).Error; err != nil {
		return nil, notFound("comanda", id, err)
	}
	return &comanda, nil
}

// List returns every tab, newest first.
func (s *ComandaService) List(ctx context.Context) ([]models.Comanda, error) {
	comandas := []models.Comanda{}
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&comandas).Error; err != nil {
		return nil, fmt.Errorf("list comandas: %w", err)
	}
	return comandas, nil
}

// Update changes the whitelisted tab columns in fields. The total is never
// client-writable.
func (s *ComandaService) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Comanda, error) {
	var comanda models.Comanda
	if err := UpdateRecord(ctx, s.db, &comanda, "comanda", id, fields, ComandaFields); err != nil {
		return nil, err
	}
	return &comanda, nil
}

// AddItem appends a line to an open tab and recomputes the tab total in the
// same transaction.
func (s *ComandaService) AddItem(ctx context.Context, in AddItemInput) (*models.ComandaItem, error) {
	if in.ComandaID == "" {
		return nil, utils.NewValidationError("comanda_id", "comanda_id is required")
	}
	if in.Quantity < 1 {
		return nil, utils.NewValidationError("quantity", "quantity must be at least 1")
	}
	if in.UnitPrice != nil && *in.UnitPrice < 0 {
		return nil, utils.NewValidationError("unit_price", "unit_price must not be negative")
	}

	var item models.ComandaItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comanda, err := lockComanda(tx, in.ComandaID)
		if err != nil {
			return err
		}
		if comanda.IsClosed() {
			return utils.NewValidationError("comanda_id", fmt.Sprintf("comanda is %s", comanda.Status))
		}

		name, price := strings.TrimSpace(in.ProductName), in.UnitPrice
		if in.ProductID != "" && (name == "" || price == nil) {
			var product models.Product
			err := tx.First(&product, "id = ?", in.ProductID).Error
			switch {
			case err == nil:
				if name == "" {
					name = product.Name
				}
				if price == nil && !product.IsVariablePrice {
					price = product.Price
				}
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("load product %s: %w", in.ProductID, err)
			}
		}
		if name == "" {
			return utils.NewValidationError("product_name", "product_name is required")
		}
		if price == nil {
			return utils.NewValidationError("unit_price", "unit_price is required")
		}

		item = models.ComandaItem{
			ComandaID:   comanda.ID,
			ProductID:   in.ProductID,
			ProductName: name,
			Quantity:    in.Quantity,
			UnitPrice:   *price,
			TotalPrice:  utils.LineTotal(in.Quantity, *price),
			Notes:       strings.TrimSpace(in.Notes),
		}
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("create comanda item: %w", err)
		}
		return recomputeTotal(tx, comanda.ID)
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"comanda_id": item.ComandaID,
		"item_id":    item.ID,
		"total":      item.TotalPrice,
	}).Info("Item added to comanda")
	return &item, nil
}

// DeleteItem removes a line and recomputes its tab. An unknown id is not an
// error; the returned item is nil in that case.
func (s *ComandaService) DeleteItem(ctx context.Context, id string) (*models.ComandaItem, error) {
	if id == "" {
		return nil, utils.NewValidationError("id", "id is required")
	}

	var deleted *models.ComandaItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.ComandaItem
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load comanda item %s: %w", id, err)
		}

		comanda, err := lockComanda(tx, item.ComandaID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if comanda != nil && comanda.IsClosed() {
			return utils.NewValidationError("id", fmt.Sprintf("comanda is %s", comanda.Status))
		}
		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("delete comanda item %s: %w", id, err)
		}
		if err := recomputeTotal(tx, item.ComandaID); err != nil {
			return err
		}
		deleted = &item
		return nil
	})
	if err != nil {
		return nil, err
	}

	if deleted != nil {
		utils.InfoLogger.WithFields(logrus.Fields{
			"comanda_id": deleted.ComandaID,
			"item_id":    deleted.ID,
		}).Info("Item removed from comanda")
	}
	return deleted, nil
}

func (s *ComandaService) GetItem(ctx context.Context, id string) (*models.ComandaItem, error) {
	var item models.ComandaItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound("comanda item", id, err)
	}
	return &item, nil
}

// ListItems returns the lines of a tab in the order they were added.
func (s *ComandaService) ListItems(ctx context.Context, comandaID string) ([]models.ComandaItem, error) {
	items := []models.ComandaItem{}
	err := s.db.WithContext(ctx).
		Where("comanda_id = ?", comandaID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list items of comanda %s: %w", comandaID, err)
	}
	return items, nil
}

// Bill is a tab with its service charge applied.
type Bill struct {
	Comanda           *models.Comanda      `json:"comanda"`
	Items             []models.ComandaItem `json:"items"`
	Subtotal          float64              `json:"subtotal"`
	ServiceChargeRate float64              `json:"service_charge_rate"`
	ServiceCharge     float64              `json:"service_charge"`
	Total             float64              `json:"total"`
	Formatted         BillFormatted        `json:"formatted"`
}

type BillFormatted struct {
	Subtotal      string `json:"subtotal"`
	ServiceCharge string `json:"service_charge"`
	Total         string `json:"total"`
}

func (s *ComandaService) Bill(ctx context.Context, id string) (*Bill, error) {
	comanda, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}

	subtotal := utils.SumMoney(comanda.TotalAmount)
	charge := utils.Percentage(subtotal, s.serviceChargeRate)
	total := s.AmountDue(subtotal)

	return &Bill{
		Comanda:           comanda,
		Items:             items,
		Subtotal:          subtotal,
		ServiceChargeRate: s.serviceChargeRate,
		ServiceCharge:     charge,
		Total:             total,
		Formatted: BillFormatted{
			Subtotal:      utils.FormatBRL(subtotal),
			ServiceCharge: utils.FormatBRL(charge),
			Total:         utils.FormatBRL(total),
		},
	}, nil
}

// AmountDue is a tab subtotal plus the service charge.
func (s *ComandaService) AmountDue(subtotal float64) float64 {
	return utils.SumMoney(subtotal, utils.Percentage(subtotal, s.serviceChargeRate))
}

// lockComanda loads a tab and holds its row lock until tx ends. SQLite locks
// the whole database on write and has no FOR UPDATE.
func lockComanda(tx *gorm.DB, id string) (*models.Comanda, error) {
	query := tx
	if tx.Dialector.Name() != "sqlite" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var comanda models.Comanda
	if err := query.First(&comanda, "id = ?", id).Error; err != nil {
		return nil, notFound("comanda", id, err)
	}
	return &comanda, nil
}

func recomputeTotal(tx *gorm.DB, comandaID string) error {
	err := tx.Model(&models.Comanda{}).
		Where("id = ?", comandaID).
		Update("total_amount", gorm.Expr(
			"(SELECT COALESCE(SUM(total_price), 0) FROM comanda_items WHERE comanda_id = ?)", comandaID,
		)).Error
	if err != nil {
		return fmt.Errorf("recompute total of comanda %s: %w", comandaID, err)
	}
	return nil
}
