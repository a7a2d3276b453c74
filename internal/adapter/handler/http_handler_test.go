package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paranovaq/game-shop/internal/adapter/storage"
	"github.com/paranovaq/game-shop/internal/core/domain"
	"github.com/paranovaq/game-shop/internal/core/service"
)

func newTestServer(t *testing.T, role domain.Role, items ...domain.Item) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	persistence := storage.NewSnapshotPersistence(storage.NewMemoryAdapter())
	require.NoError(t, persistence.SaveCatalog(ctx, items))

	shop := service.NewShopService(service.Options{Persistence: persistence, Role: role})
	shop.Start(ctx)

	mux := http.NewServeMux()
	NewHTTPHandler(shop, nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHTTPHandler_HealthCheck(t *testing.T) {
	srv := newTestServer(t, domain.RoleStandard)

	var body map[string]string
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/health", "", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHTTPHandler_CartFlow(t *testing.T) {
	srv := newTestServer(t, domain.RoleStandard, domain.Item{ID: 1, Title: "X", Price: 1000, Stock: 2})

	var sig SignalResponse
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/cart/1", "", &sig))
	assert.Equal(t, domain.SignalAdded, sig.Signal)
	assert.Equal(t, 1, sig.Available)
	assert.Equal(t, 1, sig.Quantity)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPut, "/api/cart/1", `{"quantity": 7}`, &sig))
	assert.Equal(t, domain.SignalMaxReached, sig.Signal)
	assert.Equal(t, 2, sig.Quantity)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/cart/1", "", &sig))
	assert.Equal(t, domain.SignalMaxReached, sig.Signal)

	var cart CartResponse
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/cart", "", &cart))
	assert.Equal(t, 2, cart.TotalItems)
	assert.Equal(t, "20.00", cart.TotalPrice)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, domain.Price(2000), cart.Lines[0].LineTotal)

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/api/cart", "", nil))
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/cart", "", &cart))
	assert.Empty(t, cart.Lines)
}

func TestHTTPHandler_UnknownItem(t *testing.T) {
	srv := newTestServer(t, domain.RoleStandard)

	var errResp ErrorResponse
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPost, "/api/cart/9", "", &errResp))
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/cart/abc", "", &errResp))
}

func TestHTTPHandler_CheckoutFlow(t *testing.T) {
	srv := newTestServer(t, domain.RoleStandard,
		domain.Item{ID: 1, Title: "X", Price: 1000, Stock: 5},
		domain.Item{ID: 2, Title: "Y", Price: 2500, Stock: 5},
	)

	var errResp ErrorResponse
	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/checkout/confirm", "", &errResp))

	do(t, srv, http.MethodPut, "/api/cart/1", `{"quantity": 3}`, nil)
	do(t, srv, http.MethodPut, "/api/cart/2", `{"quantity": 1}`, nil)

	var validated CheckoutResponse
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/checkout", "", &validated))
	assert.True(t, validated.OK)
	assert.Equal(t, "$55.00", validated.Total)

	var confirmed CheckoutResponse
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/checkout/confirm", "", &confirmed))
	require.NotNil(t, confirmed.Receipt)
	assert.Equal(t, 4, confirmed.Receipt.ItemsPurchased)
	assert.Equal(t, "55.00", confirmed.Receipt.TotalPrice)

	var items []domain.Item
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/catalog", "", &items))
	assert.Equal(t, 2, items[0].Stock)
	assert.Equal(t, 4, items[1].Stock)
}

func TestHTTPHandler_CheckoutTotalTooLarge(t *testing.T) {
	srv := newTestServer(t, domain.RoleStandard,
		domain.Item{ID: 1, Title: "Whale Edition", Price: 100_000_000_000_000_000, Stock: 100},
	)
	do(t, srv, http.MethodPut, "/api/cart/1", `{"quantity": 100}`, nil)

	// saturated amounts exceed what ParsePrice accepts, so read them raw
	var cart struct {
		TotalPrice string `json:"totalPrice"`
		Lines      []struct {
			LineTotal string `json:"lineTotal"`
			Invalid   bool   `json:"invalid"`
		} `json:"lines"`
	}
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/cart", "", &cart))
	assert.Equal(t, domain.MaxPrice.String(), cart.TotalPrice)
	require.Len(t, cart.Lines, 1)
	assert.True(t, cart.Lines[0].Invalid)
	assert.NotContains(t, cart.Lines[0].LineTotal, "-")

	var rejected CheckoutResponse
	require.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/checkout", "", &rejected))
	assert.Equal(t, []string{"Order total for Whale Edition is too large"}, rejected.Violations)

	var items []domain.Item
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/catalog", "", &items))
	assert.Equal(t, 100, items[0].Stock)
}

func TestHTTPHandler_CheckoutRejected(t *testing.T) {
	srv := newTestServer(t, domain.RoleAdmin, domain.Item{ID: 1, Title: "X", Price: 1000, Stock: 5})

	var rejected CheckoutResponse
	require.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/checkout", "", &rejected))
	assert.False(t, rejected.OK)
	assert.Equal(t, []string{"Your cart is empty"}, rejected.Violations)

	do(t, srv, http.MethodPut, "/api/cart/1", `{"quantity": 3}`, nil)
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPut, "/api/catalog/1/stock", `{"stock": 1}`, nil))

	require.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/checkout", "", &rejected))
	assert.Equal(t, []string{"Only 1 copies of X available"}, rejected.Violations)
}

func TestHTTPHandler_AdminRoutes(t *testing.T) {
	srv := newTestServer(t, domain.RoleStandard, domain.Item{ID: 1, Title: "X", Price: 1000, Stock: 5})

	var errResp ErrorResponse
	assert.Equal(t, http.StatusForbidden,
		do(t, srv, http.MethodPost, "/api/catalog", `{"title":"New","price":"4.99","stock":2}`, &errResp))

	var status service.Status
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/session/role", `{"role":"admin"}`, &status))
	assert.Equal(t, domain.RoleAdmin, status.Role)

	var created domain.Item
	require.Equal(t, http.StatusCreated,
		do(t, srv, http.MethodPost, "/api/catalog", `{"title":"New","price":"4.995","stock":2}`, &created))
	assert.Equal(t, int64(2), created.ID)
	assert.Equal(t, domain.Price(500), created.Price)

	var updated domain.Item
	require.Equal(t, http.StatusOK,
		do(t, srv, http.MethodPut, "/api/catalog/2", `{"title":"Renamed","price":5,"stock":1}`, &updated))
	assert.Equal(t, "Renamed", updated.Title)

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/api/catalog/2", "", nil))
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/api/catalog/2", "", &errResp))

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/session/logout", "", &status))
	assert.Equal(t, domain.RoleStandard, status.Role)
}
