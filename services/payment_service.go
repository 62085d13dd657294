package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-digital/models"
	"github.com/yeremiapane/comanda-digital/utils"
	"gorm.io/gorm"
)

// every payment type a preference can offer
var paymentTypes = []string{
	models.PaymentMethodPix,
	models.PaymentMethodCreditCard,
	models.PaymentMethodDebitCard,
	"ticket",
}

const maxInstallments = 12

// PaymentSettings are the fixed parts of every checkout preference.
type PaymentSettings struct {
	BaseURL             string
	StatementDescriptor string
	DefaultPayerEmail   string
	Sandbox             bool
}

// PaymentService starts payments for tabs.
type PaymentService struct {
	db       *gorm.DB
	gateway  PaymentGateway
	comandas *ComandaService
	settings PaymentSettings
}

func NewPaymentService(db *gorm.DB, gateway PaymentGateway, comandas *ComandaService, settings PaymentSettings) *PaymentService {
	return &PaymentService{
		db:       db,
		gateway:  gateway,
		comandas: comandas,
		settings: settings,
	}
}

type InitiatePaymentInput struct {
	ComandaID     string
	PaymentMethod string
	Amount        float64
	CustomerName  string
	CustomerEmail string
}

// PaymentResult is what a diner needs to complete a payment.
type PaymentResult struct {
	PaymentID     string `json:"payment_id"`
	MercadoPagoID string `json:"mercado_pago_id"`
	PaymentURL    string `json:"payment_url"`
	QRCode        string `json:"qr_code,omitempty"`
	QRCodeBase64  string `json:"qr_code_base64,omitempty"`
	Status        string `json:"status"`
}

// Initiate creates a checkout preference for a tab, records a pending
// payment and moves the tab to payment_pending. The amount defaults to the
// unpaid balance and may not be below it. Nothing is stored if the processor
// call fails.
func (s *PaymentService) Initiate(ctx context.Context, in InitiatePaymentInput) (*PaymentResult, error) {
	if in.ComandaID == "" {
		return nil, utils.NewValidationError("comanda_id", "comanda_id is required")
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, utils.NewValidationError("payment_method", "payment_method must be pix, credit_card or debit_card")
	}

	bill, err := s.comandas.Bill(ctx, in.ComandaID)
	if err != nil {
		return nil, err
	}
	comanda := bill.Comanda
	if comanda.IsClosed() {
		return nil, utils.NewValidationError("comanda_id", fmt.Sprintf("comanda is %s", comanda.Status))
	}

	paid, err := approvedTotal(s.db.WithContext(ctx), comanda.ID)
	if err != nil {
		return nil, err
	}
	balance := utils.SumMoney(bill.Total, -paid)
	if balance < 0 {
		balance = 0
	}
	amount := in.Amount
	if amount <= 0 {
		amount = balance
	}
	if !utils.Covers(amount, balance) {
		return nil, utils.NewValidationError("amount", fmt.Sprintf("amount must cover the balance of %s", utils.FormatBRL(balance)))
	}
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		name = comanda.CustomerName
	}
	email := strings.TrimSpace(in.CustomerEmail)
	if email == "" {
		email = s.settings.DefaultPayerEmail
	}

	pref, err := s.gateway.CreatePreference(ctx, s.buildPreference(comanda, in.PaymentMethod, amount, name, email))
	if err != nil {
		return nil, fmt.Errorf("create payment preference: %w", err)
	}

	paymentURL := pref.InitPoint
	if s.settings.Sandbox && pref.SandboxInitPoint != "" {
		paymentURL = pref.SandboxInitPoint
	}

	payment := models.Payment{
		ComandaID:         comanda.ID,
		Amount:            amount,
		PaymentMethod:     in.PaymentMethod,
		Status:            models.PaymentStatusPending,
		ExternalPaymentID: pref.ID,
		PaymentURL:        paymentURL,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if err := tx.Model(&models.Comanda{}).
			Where("id = ?", comanda.ID).
			Update("status", models.ComandaStatusPaymentPending).Error; err != nil {
			return fmt.Errorf("mark comanda %s payment_pending: %w", comanda.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &PaymentResult{
		PaymentID:     payment.ID,
		MercadoPagoID: pref.ID,
		PaymentURL:    paymentURL,
		Status:        payment.Status,
	}
	if in.PaymentMethod == models.PaymentMethodPix {
		if pix := pref.PixData(); pix != nil {
			result.QRCode = pix.QRCode
			result.QRCodeBase64 = pix.QRCodeBase64
		}
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"comanda_id":    comanda.ID,
		"payment_id":    payment.ID,
		"preference_id": pref.ID,
		"method":        in.PaymentMethod,
		"amount":        amount,
	}).Info("Payment initiated")
	return result, nil
}

func (s *PaymentService) buildPreference(comanda *models.Comanda, method string, amount float64, name, email string) PreferenceRequest {
	excluded := make([]PaymentTypeRef, 0, len(paymentTypes)-1)
	for _, t := range paymentTypes {
		if t != method {
			excluded = append(excluded, PaymentTypeRef{ID: t})
		}
	}

	base := s.settings.BaseURL
	return PreferenceRequest{
		Items: []PreferenceItem{{
			Title:      "Comanda - " + comanda.CustomerName,
			Quantity:   1,
			UnitPrice:  amount,
			CurrencyID: "BRL",
		}},
		Payer: PreferencePayer{Name: name, Email: email},
		BackURLs: BackURLs{
			Success: base + "/pagamento/sucesso",
			Failure: base + "/pagamento/falha",
			Pending: base + "/pagamento/pendente",
		},
		AutoReturn: "approved",
		PaymentMethods: PreferencePaymentMethods{
			ExcludedPaymentTypes: excluded,
			Installments:         maxInstallments,
		},
		StatementDescriptor: s.settings.StatementDescriptor,
		ExternalReference:   comanda.ID,
		NotificationURL:     base + "/api/webhooks/mercadopago",
	}
}

// approvedTotal sums the approved payments of a tab.
func approvedTotal(db *gorm.DB, comandaID string) (float64, error) {
	var total float64
	err := db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("comanda_id = ? AND status = ?", comandaID, models.PaymentStatusApproved).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum approved payments of comanda %s: %w", comandaID, err)
	}
	return utils.SumMoney(total), nil
}

// ListByComanda returns a tab's payments, newest first.
func (s *PaymentService) ListByComanda(ctx context.Context, comandaID string) ([]models.Payment, error) {
	if comandaID == "" {
		return nil, utils.NewValidationError("comanda_id", "comanda_id is required")
	}
	payments := []models.Payment{}
	err := s.db.WithContext(ctx).
		Where("comanda_id = ?", comandaID).
		Order("created_at desc").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list payments of comanda %s: %w", comandaID, err)
	}
	return payments, nil
}
