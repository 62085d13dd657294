package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-digital/config"
	"github.com/yeremiapane/comanda-digital/database"
	"github.com/yeremiapane/comanda-digital/kds"
	"github.com/yeremiapane/comanda-digital/router"
	"github.com/yeremiapane/comanda-digital/services"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGateway struct {
	pref     *services.PreferenceResponse
	prefErr  error
	payments map[string]*services.ProcessorPayment
	last     services.PreferenceRequest
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		pref: &services.PreferenceResponse{
			ID:        "pref-abc",
			InitPoint: "https://www.mercadopago.com.br/checkout/v1/redirect?pref_id=pref-abc",
		},
		payments: map[string]*services.ProcessorPayment{},
	}
}

func (s *stubGateway) CreatePreference(ctx context.Context, req services.PreferenceRequest) (*services.PreferenceResponse, error) {
	s.last = req
	if s.prefErr != nil {
		return nil, s.prefErr
	}
	return s.pref, nil
}

func (s *stubGateway) GetPayment(ctx context.Context, id string) (*services.ProcessorPayment, error) {
	p, ok := s.payments[id]
	if !ok {
		return nil, services.ErrProcessorPaymentNotFound
	}
	return p, nil
}

type testServer struct {
	db      *gorm.DB
	cfg     *config.Config
	gateway *stubGateway
	router  *gin.Engine
}

func newTestServer(t *testing.T, configure ...func(*config.Config)) *testServer {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Server.GinMode = "test"
	cfg.Restaurant.BaseURL = "https://comanda.test"
	cfg.RateLimit.RPS = 1000
	cfg.RateLimit.Burst = 1000
	for _, fn := range configure {
		fn(cfg)
	}

	gateway := newStubGateway()
	r := router.SetupRouter(db, cfg, router.Deps{
		Gateway:  gateway,
		Verifier: services.NewMercadoPagoService(cfg.MercadoPago),
		Hub:      kds.NewHub(),
	})
	return &testServer{db: db, cfg: cfg, gateway: gateway, router: r}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// openComanda creates a tab through the API and returns its id.
func (s *testServer) openComanda(t *testing.T, name string, table interface{}) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/comandas", map[string]interface{}{
		"customer_name":  name,
		"customer_phone": "11999990000",
		"table_number":   table,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["comanda"].(map[string]interface{})["id"].(string)
}

func (s *testServer) addItem(t *testing.T, comandaID, name string, qty int, price float64) map[string]interface{} {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/comanda-items", map[string]interface{}{
		"comanda_id":   comandaID,
		"product_name": name,
		"quantity":     qty,
		"unit_price":   price,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["item"].(map[string]interface{})
}

func (s *testServer) comandaTotal(t *testing.T, id string) float64 {
	t.Helper()
	w := s.do(t, http.MethodGet, "/api/comandas?id="+id, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["comanda"].(map[string]interface{})["total_amount"].(float64)
}
