package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-digital/models"
	"github.com/yeremiapane/comanda-digital/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ActionPaymentUpdated = "payment.updated"

// Notification is the JSON body the processor posts.
type Notification struct {
	Action string           `json:"action"`
	Type   string           `json:"type"`
	Data   NotificationData `json:"data"`
}

type NotificationData struct {
	ID utils.FlexString `json:"id"`
}

// WebhookDelivery is a notification together with the headers used to
// authenticate and deduplicate it.
type WebhookDelivery struct {
	Notification
	RequestID string
	Signature string
}

// WebhookOutcome describes what a delivery changed.
type WebhookOutcome struct {
	Processed     bool   `json:"processed"`
	Duplicate     bool   `json:"duplicate"`
	Reason        string `json:"reason,omitempty"`
	PaymentID     string `json:"payment_id,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	ComandaID     string `json:"comanda_id,omitempty"`
	ComandaStatus string `json:"comanda_status,omitempty"`
	TableNumber   int    `json:"table_number,omitempty"`
	// Shortfall is what an approved payment left unpaid on its tab.
	Shortfall float64 `json:"shortfall,omitempty"`
}

type WebhookService struct {
	db        *gorm.DB
	gateway   PaymentGateway
	verifier  SignatureVerifier
	comandas  *ComandaService
	autoClose bool
}

func NewWebhookService(db *gorm.DB, gateway PaymentGateway, verifier SignatureVerifier, comandas *ComandaService, autoClose bool) *WebhookService {
	return &WebhookService{
		db:        db,
		gateway:   gateway,
		verifier:  verifier,
		comandas:  comandas,
		autoClose: autoClose,
	}
}

// Handle applies a processor notification. Deliveries that cannot change
// anything are acknowledged with a nil error so the processor stops retrying.
func (s *WebhookService) Handle(ctx context.Context, d WebhookDelivery) (*WebhookOutcome, error) {
	dataID := string(d.Data.ID)
	log := utils.InfoLogger.WithFields(logrus.Fields{
		"action":     d.Action,
		"data_id":    dataID,
		"request_id": d.RequestID,
	})

	if s.verifier != nil && s.verifier.SignatureEnabled() {
		if !s.verifier.ValidateSignature(d.Signature, d.RequestID, dataID) {
			return nil, ErrInvalidSignature
		}
	}

	if d.Action != ActionPaymentUpdated {
		log.Info("Webhook ignored")
		return &WebhookOutcome{Reason: "ignored action"}, nil
	}
	if dataID == "" {
		return &WebhookOutcome{Reason: "missing data.id"}, nil
	}

	remote, err := s.gateway.GetPayment(ctx, dataID)
	if err != nil {
		if errors.Is(err, ErrProcessorPaymentNotFound) {
			log.Warn("Webhook for unknown processor payment")
			return &WebhookOutcome{Reason: "unknown payment"}, nil
		}
		return nil, fmt.Errorf("fetch processor payment %s: %w", dataID, err)
	}
	status := MapPaymentStatus(remote.Status)

	key := d.RequestID
	if key == "" {
		key = fmt.Sprintf("%s:%s:%s", d.Action, dataID, remote.Status)
	}

	outcome := &WebhookOutcome{PaymentStatus: status}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event := models.WebhookEvent{ID: key, Action: d.Action, DataID: dataID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&event)
		if res.Error != nil {
			return fmt.Errorf("record webhook event: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			outcome.Duplicate = true
			outcome.Reason = "duplicate delivery"
			return nil
		}

		payment, err := matchPayment(tx, dataID, remote.ExternalReference)
		if err != nil {
			return err
		}
		if payment == nil {
			outcome.Reason = "no matching payment"
			return nil
		}

		updates := map[string]interface{}{
			"status":               status,
			"processor_payment_id": dataID,
		}
		// the processor's figure is what was actually charged
		if remote.TransactionAmount > 0 {
			updates["amount"] = utils.SumMoney(remote.TransactionAmount)
		}
		if err := tx.Model(payment).Updates(updates).Error; err != nil {
			return fmt.Errorf("update payment %s: %w", payment.ID, err)
		}
		outcome.Processed = true
		outcome.PaymentID = payment.ID
		outcome.ComandaID = payment.ComandaID

		if s.autoClose {
			return s.settleComanda(tx, payment.ComandaID, status, outcome)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"payment_id": outcome.PaymentID,
		"status":     outcome.PaymentStatus,
		"processed":  outcome.Processed,
		"duplicate":  outcome.Duplicate,
		"shortfall":  outcome.Shortfall,
	}).Info("Webhook handled")
	return outcome, nil
}

// matchPayment finds the row a processor payment belongs to: first by id,
// then the newest payment of the referenced tab.
func matchPayment(tx *gorm.DB, dataID, externalReference string) (*models.Payment, error) {
	var payments []models.Payment
	err := tx.Where("external_payment_id = ? OR processor_payment_id = ?", dataID, dataID).
		Order("created_at desc").
		Limit(1).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("match payment %s: %w", dataID, err)
	}
	if len(payments) == 0 && externalReference != "" {
		err = tx.Where("comanda_id = ?", externalReference).
			Order("created_at desc").
			Limit(1).
			Find(&payments).Error
		if err != nil {
			return nil, fmt.Errorf("match payment by comanda %s: %w", externalReference, err)
		}
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return &payments[0], nil
}

// settleComanda closes the tab and frees its table once its approved payments
// cover the amount due, or reopens a pending tab on rejection. An approved
// payment that falls short leaves the tab as it is.
func (s *WebhookService) settleComanda(tx *gorm.DB, comandaID, status string, outcome *WebhookOutcome) error {
	comanda, err := lockComanda(tx, comandaID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	next := comanda.Status
	switch {
	case status == models.PaymentStatusApproved && comanda.Status != models.ComandaStatusCanceled:
		paid, err := approvedTotal(tx, comanda.ID)
		if err != nil {
			return err
		}
		due := s.comandas.AmountDue(comanda.TotalAmount)
		if !utils.Covers(paid, due) {
			outcome.Shortfall = utils.SumMoney(due, -paid)
			outcome.Reason = "payment below amount due"
			utils.ErrorLogger.WithFields(logrus.Fields{
				"comanda_id": comanda.ID,
				"paid":       paid,
				"due":        due,
			}).Warn("Approved payment does not cover the tab")
			break
		}
		next = models.ComandaStatusPaid
	case status == models.PaymentStatusRejected && comanda.Status == models.ComandaStatusPaymentPending:
		next = models.ComandaStatusOpen
	}
	outcome.ComandaStatus = next
	if next == comanda.Status {
		return nil
	}

	if err := tx.Model(comanda).Update("status", next).Error; err != nil {
		return fmt.Errorf("update comanda %s: %w", comanda.ID, err)
	}
	if next == models.ComandaStatusPaid {
		if err := tx.Model(&models.Table{}).
			Where("table_number = ?", comanda.TableNumber).
			Update("status", models.TableStatusAvailable).Error; err != nil {
			return fmt.Errorf("free table %d: %w", comanda.TableNumber, err)
		}
		outcome.TableNumber = comanda.TableNumber
	}
	return nil
}
