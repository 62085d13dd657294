package Controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-digital/config"
	"github.com/yeremiapane/comanda-digital/models"
	"github.com/yeremiapane/comanda-digital/utils"
)

func TestGetProductsOnlyAvailable(t *testing.T) {
	s := newTestServer(t)
	price := 12.0
	require.NoError(t, s.db.Create(&models.Product{Name: "Pastel", Category: "Entradas", Price: &price, Available: true}).Error)
	require.NoError(t, s.db.Create(&models.Product{Name: "Coxinha", Category: "Entradas", Price: &price, Available: false}).Error)
	require.NoError(t, s.db.Create(&models.Product{Name: "Agua", Category: "Bebidas", Price: &price, Available: true}).Error)

	w := s.do(t, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	products := decode(t, w)["products"].([]interface{})
	require.Len(t, products, 2)
	assert.Equal(t, "Agua", products[0].(map[string]interface{})["name"])
	assert.Equal(t, "Pastel", products[1].(map[string]interface{})["name"])
}

func TestCreateAndUpdateProduct(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/products", map[string]interface{}{
		"name":     "Moqueca",
		"category": "Pratos",
		"price":    89.9,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	product := decode(t, w)["product"].(map[string]interface{})
	assert.Equal(t, true, product["available"])

	w = s.do(t, http.MethodPut, "/api/products", map[string]interface{}{
		"id":        product["id"],
		"price":     94.5,
		"available": false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)["product"].(map[string]interface{})
	assert.Equal(t, 94.5, updated["price"])
	assert.Equal(t, false, updated["available"])
}

func TestCreateProductValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/products", map[string]interface{}{
		"name":     "Moqueca",
		"category": "Pratos",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "price")

	w = s.do(t, http.MethodPost, "/api/products", map[string]interface{}{
		"name":              "Peixe do Dia",
		"category":          "Pratos",
		"is_variable_price": true,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/products", map[string]interface{}{"id": "missing", "name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductWritesRequireStaffWhenAuthEnabled(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Auth.JWTSecret = "test-secret"
	})
	body := map[string]interface{}{"name": "Moqueca", "category": "Pratos", "price": 89.9}

	w := s.do(t, http.MethodPost, "/api/products", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := utils.GenerateToken([]byte("test-secret"), time.Hour, "user-1", models.RoleStaff)
	require.NoError(t, err)
	w = s.do(t, http.MethodPost, "/api/products", body, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// reads stay public
	w = s.do(t, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
