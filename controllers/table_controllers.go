package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/comanda-digital/kds"
	"github.com/yeremiapane/comanda-digital/models"
	"github.com/yeremiapane/comanda-digital/services"
	"github.com/yeremiapane/comanda-digital/utils"
	"gorm.io/gorm"
)

var tableFields = services.FieldRules{
	"table_number": services.PositiveIntField,
	"status":       services.EnumField(models.ValidTableStatus),
	"qr_code_data": services.StringField,
}

type TableController struct {
	DB      *gorm.DB
	Hub     *kds.Hub
	BaseURL string
}

func NewTableController(db *gorm.DB, hub *kds.Hub, baseURL string) *TableController {
	return &TableController{DB: db, Hub: hub, BaseURL: baseURL}
}

// GetAllTables -> every table ordered by number
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables := []models.Table{}
	if err := tc.DB.WithContext(c.Request.Context()).Order("table_number asc").Find(&tables).Error; err != nil {
		respondServiceError(c, fmt.Errorf("list tables: %w", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "tables", tables)
}

// CreateTable -> registers a table and renders its ordering QR code
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber utils.FlexInt `json:"table_number"`
		Status      string        `json:"status"` // optional, default "available"
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	number := int(req.TableNumber)
	if number <= 0 {
		respondServiceError(c, utils.NewValidationError("table_number", "table_number is required"))
		return
	}
	table := models.Table{TableNumber: number, Status: models.TableStatusAvailable}
	if req.Status != "" {
		if !models.ValidTableStatus(req.Status) {
			respondServiceError(c, utils.NewValidationError("status", fmt.Sprintf("invalid value %s", req.Status)))
			return
		}
		table.Status = req.Status
	}

	db := tc.DB.WithContext(c.Request.Context())
	var existing models.Table
	err := db.First(&existing, "table_number = ?", number).Error
	if err == nil {
		respondServiceError(c, utils.NewValidationError("table_number", fmt.Sprintf("table %d already exists", number)))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, err)
		return
	}

	if err := tc.applyQRCode(&table); err != nil {
		respondServiceError(c, err)
		return
	}
	if err := db.Create(&table).Error; err != nil {
		respondServiceError(c, fmt.Errorf("create table: %w", err))
		return
	}

	tc.Hub.Broadcast(kds.EventTableCreate, table)
	utils.InfoLogger.Printf("New table created: %d (status=%s)", table.TableNumber, table.Status)
	utils.RespondJSON(c, http.StatusOK, "table", table)
}

// UpdateTable -> partial update; a new number gets a new QR code
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, fields, err := bindUpdate(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_, customQR := fields["qr_code_data"]
	renumbered := false
	var table models.Table
	hooks := services.UpdateHooks{
		Before: func(tx *gorm.DB, updates map[string]interface{}) error {
			number, ok := updates["table_number"]
			if !ok || number == table.TableNumber {
				return nil
			}
			renumbered = true
			var taken int64
			if err := tx.Model(&models.Table{}).
				Where("table_number = ? AND id <> ?", number, table.ID).
				Count(&taken).Error; err != nil {
				return fmt.Errorf("check table number %v: %w", number, err)
			}
			if taken > 0 {
				return utils.NewValidationError("table_number", fmt.Sprintf("table %v already exists", number))
			}
			return nil
		},
		After: func(tx *gorm.DB) error {
			if !renumbered || customQR {
				return nil
			}
			if err := tc.applyQRCode(&table); err != nil {
				return err
			}
			if err := tx.Model(&table).Updates(map[string]interface{}{
				"qr_code_data":  table.QRCodeData,
				"qr_code_image": table.QRCodeImage,
			}).Error; err != nil {
				return fmt.Errorf("update table QR code: %w", err)
			}
			return nil
		},
	}
	if err := services.UpdateRecord(c.Request.Context(), tc.DB, &table, "table", id, fields, tableFields, hooks); err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(kds.EventTableUpdate, table)
	utils.InfoLogger.Printf("Table %d updated (status=%s)", table.TableNumber, table.Status)
	utils.RespondJSON(c, http.StatusOK, "table", table)
}

func (tc *TableController) applyQRCode(table *models.Table) error {
	table.QRCodeData = utils.TableOrderURL(tc.BaseURL, table.TableNumber)
	image, err := utils.QRCodeDataURL(table.QRCodeData)
	if err != nil {
		return fmt.Errorf("render QR code for table %d: %w", table.TableNumber, err)
	}
	table.QRCodeImage = image
	return nil
}
