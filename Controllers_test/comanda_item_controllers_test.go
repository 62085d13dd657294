package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsKeepTotalInStep(t *testing.T) {
	s := newTestServer(t)
	id := s.openComanda(t, "Ana", 3)

	a := s.addItem(t, id, "Caipirinha", 2, 18)
	assert.Equal(t, 36.0, s.comandaTotal(t, id))
	b := s.addItem(t, id, "Pastel", 3, 7.5)
	assert.Equal(t, 58.5, s.comandaTotal(t, id))

	w := s.do(t, http.MethodDelete, "/api/comanda-items?id="+a["id"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
	assert.Equal(t, 22.5, s.comandaTotal(t, id))

	w = s.do(t, http.MethodDelete, "/api/comanda-items?id="+b["id"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, s.comandaTotal(t, id))
}

func TestDeleteUnknownItemSucceeds(t *testing.T) {
	s := newTestServer(t)
	id := s.openComanda(t, "Ana", 3)
	s.addItem(t, id, "Suco", 2, 8.5)

	w := s.do(t, http.MethodDelete, "/api/comanda-items?id=not-an-item", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
	assert.Equal(t, 17.0, s.comandaTotal(t, id))

	w = s.do(t, http.MethodDelete, "/api/comanda-items", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetItems(t *testing.T) {
	s := newTestServer(t)
	id := s.openComanda(t, "Ana", 3)
	item := s.addItem(t, id, "Suco", 2, 8.5)
	s.addItem(t, id, "Pastel", 1, 7.5)

	w := s.do(t, http.MethodGet, "/api/comanda-items?comanda_id="+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]interface{})
	assert.Len(t, items, 2)

	w = s.do(t, http.MethodGet, "/api/comanda-items?id="+item["id"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Suco", decode(t, w)["item"].(map[string]interface{})["product_name"])

	w = s.do(t, http.MethodGet, "/api/comanda-items", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateItemValidation(t *testing.T) {
	s := newTestServer(t)
	id := s.openComanda(t, "Ana", 3)

	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"missing comanda", map[string]interface{}{"product_name": "Suco", "quantity": 1, "unit_price": 5}, http.StatusBadRequest},
		{"zero quantity", map[string]interface{}{"comanda_id": id, "product_name": "Suco", "quantity": 0, "unit_price": 5}, http.StatusBadRequest},
		{"missing price", map[string]interface{}{"comanda_id": id, "product_name": "Suco", "quantity": 1}, http.StatusBadRequest},
		{"unknown comanda", map[string]interface{}{"comanda_id": "missing", "product_name": "Suco", "quantity": 1, "unit_price": 5}, http.StatusNotFound},
		{"quantity as string", map[string]interface{}{"comanda_id": id, "product_name": "Suco", "quantity": "2", "unit_price": 5}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/comanda-items", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
