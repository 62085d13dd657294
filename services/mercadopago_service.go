package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-digital/config"
	"github.com/yeremiapane/comanda-digital/models"
	"github.com/yeremiapane/comanda-digital/utils"
)

// PaymentGateway is the part of the processor API the payment flow needs.
type PaymentGateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*PreferenceResponse, error)
	GetPayment(ctx context.Context, id string) (*ProcessorPayment, error)
}

// SignatureVerifier checks webhook authenticity.
type SignatureVerifier interface {
	SignatureEnabled() bool
	ValidateSignature(xSignature, requestID, dataID string) bool
}

// MercadoPagoService talks to the Mercado Pago REST API.
type MercadoPagoService struct {
	config     config.MercadoPagoConfig
	httpClient *http.Client
}

func NewMercadoPagoService(cfg config.MercadoPagoConfig) *MercadoPagoService {
	return &MercadoPagoService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// ValidateConfig validates Mercado Pago configuration
func (ms *MercadoPagoService) ValidateConfig() error {
	if ms.config.AccessToken == "" {
		return fmt.Errorf("MERCADO_PAGO_ACCESS_TOKEN is not set")
	}
	if ms.config.BaseURL == "" {
		return fmt.Errorf("MERCADO_PAGO_BASE_URL is not set")
	}
	return nil
}

type PreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type PreferencePayer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type PaymentTypeRef struct {
	ID string `json:"id"`
}

type PreferencePaymentMethods struct {
	ExcludedPaymentTypes []PaymentTypeRef `json:"excluded_payment_types"`
	Installments         int              `json:"installments"`
}

// PreferenceRequest is the body of POST /checkout/preferences.
type PreferenceRequest struct {
	Items               []PreferenceItem         `json:"items"`
	Payer               PreferencePayer          `json:"payer"`
	BackURLs            BackURLs                 `json:"back_urls"`
	AutoReturn          string                   `json:"auto_return"`
	PaymentMethods      PreferencePaymentMethods `json:"payment_methods"`
	StatementDescriptor string                   `json:"statement_descriptor"`
	ExternalReference   string                   `json:"external_reference"`
	NotificationURL     string                   `json:"notification_url,omitempty"`
}

type TransactionData struct {
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
}

type PointOfInteraction struct {
	TransactionData *TransactionData `json:"transaction_data,omitempty"`
}

type PreferenceResponse struct {
	ID                 string              `json:"id"`
	InitPoint          string              `json:"init_point"`
	SandboxInitPoint   string              `json:"sandbox_init_point"`
	PointOfInteraction *PointOfInteraction `json:"point_of_interaction,omitempty"`
}

// PixData returns the Pix copy-and-paste code and QR image when the processor
// sent them.
func (p *PreferenceResponse) PixData() *TransactionData {
	if p.PointOfInteraction == nil || p.PointOfInteraction.TransactionData == nil {
		return nil
	}
	return p.PointOfInteraction.TransactionData
}

// ProcessorPayment is the subset of GET /v1/payments/{id} we read.
type ProcessorPayment struct {
	ID                utils.FlexString `json:"id"`
	Status            string           `json:"status"`
	StatusDetail      string           `json:"status_detail"`
	ExternalReference string           `json:"external_reference"`
	TransactionAmount float64          `json:"transaction_amount"`
	PaymentTypeID     string           `json:"payment_type_id"`
}

// CreatePreference creates a checkout preference and returns its id and
// checkout links.
func (ms *MercadoPagoService) CreatePreference(ctx context.Context, pref PreferenceRequest) (*PreferenceResponse, error) {
	jsonData, err := json.Marshal(pref)
	if err != nil {
		return nil, fmt.Errorf("error marshaling preference: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ms.config.BaseURL+"/checkout/preferences", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	body, status, err := ms.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("mercado pago API error (status %d): %s", status, strings.TrimSpace(string(body)))
	}

	var resp PreferenceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling preference response: %w", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"preference_id":      resp.ID,
		"external_reference": pref.ExternalReference,
	}).Info("Mercado Pago preference created")
	return &resp, nil
}

// GetPayment fetches a payment by processor id. An unknown id yields
// ErrProcessorPaymentNotFound.
func (ms *MercadoPagoService) GetPayment(ctx context.Context, id string) (*ProcessorPayment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ms.config.BaseURL+"/v1/payments/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	body, status, err := ms.do(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("payment %s: %w", id, ErrProcessorPaymentNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("mercado pago API error (status %d): %s", status, strings.TrimSpace(string(body)))
	}

	var payment ProcessorPayment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("error unmarshaling payment: %w", err)
	}
	return &payment, nil
}

func (ms *MercadoPagoService) do(req *http.Request) ([]byte, int, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+ms.config.AccessToken)

	resp, err := ms.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (ms *MercadoPagoService) SignatureEnabled() bool {
	return ms.config.WebhookSecret != ""
}

// ValidateSignature checks the x-signature header ("ts=...,v1=...") against
// the HMAC-SHA256 of the notification manifest.
func (ms *MercadoPagoService) ValidateSignature(xSignature, requestID, dataID string) bool {
	var ts, v1 string
	for _, part := range strings.Split(xSignature, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	if ts == "" || v1 == "" {
		return false
	}

	expected := SignManifest(ms.config.WebhookSecret, dataID, requestID, ts)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(v1)))
}

// SignManifest returns the hex HMAC-SHA256 the processor sends as v1.
func SignManifest(secret, dataID, requestID, ts string) string {
	var manifest strings.Builder
	if dataID != "" {
		// alphanumeric ids are signed in lower case
		fmt.Fprintf(&manifest, "id:%s;", strings.ToLower(dataID))
	}
	if requestID != "" {
		fmt.Fprintf(&manifest, "request-id:%s;", requestID)
	}
	fmt.Fprintf(&manifest, "ts:%s;", ts)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// MapPaymentStatus maps a processor payment status to a payment row status.
func MapPaymentStatus(status string) string {
	switch status {
	case "approved", "authorized":
		return models.PaymentStatusApproved
	case "rejected", "cancelled", "refunded", "charged_back":
		return models.PaymentStatusRejected
	default:
		return models.PaymentStatusPending
	}
}
