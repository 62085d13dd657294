package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-digital/database"
	"github.com/yeremiapane/comanda-digital/models"
	"gorm.io/gorm"
)

// fakeGateway records preferences and serves canned processor payments.
type fakeGateway struct {
	mu          sync.Mutex
	preferences []PreferenceRequest
	prefResp    *PreferenceResponse
	prefErr     error
	payments    map[string]*ProcessorPayment
	paymentErr  error
	lookups     int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		prefResp: &PreferenceResponse{
			ID:               "pref-123",
			InitPoint:        "https://mp.test/checkout?pref_id=pref-123",
			SandboxInitPoint: "https://sandbox.mp.test/checkout?pref_id=pref-123",
		},
		payments: map[string]*ProcessorPayment{},
	}
}

func (f *fakeGateway) CreatePreference(ctx context.Context, req PreferenceRequest) (*PreferenceResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preferences = append(f.preferences, req)
	if f.prefErr != nil {
		return nil, f.prefErr
	}
	return f.prefResp, nil
}

func (f *fakeGateway) GetPayment(ctx context.Context, id string) (*ProcessorPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	p, ok := f.payments[id]
	if !ok {
		return nil, ErrProcessorPaymentNotFound
	}
	return p, nil
}

type staticVerifier struct {
	enabled bool
	valid   bool
}

func (v staticVerifier) SignatureEnabled() bool { return v.enabled }

func (v staticVerifier) ValidateSignature(string, string, string) bool { return v.valid }

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return db
}

func createTable(t *testing.T, db *gorm.DB, number int) {
	t.Helper()
	require.NoError(t, db.Create(&models.Table{
		TableNumber: number,
		Status:      models.TableStatusAvailable,
	}).Error)
}

func price(v float64) *float64 {
	return &v
}
