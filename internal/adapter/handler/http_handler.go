package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/paranovaq/game-shop/internal/core/domain"
	"github.com/paranovaq/game-shop/internal/core/service"
)

// HTTPHandler exposes a storefront session as a JSON API for the UI layer.
type HTTPHandler struct {
	shop   *service.ShopService
	logger *zap.Logger
}

type CartResponse struct {
	Lines      []domain.CartLineView `json:"lines"`
	TotalItems int                   `json:"totalItems"`
	TotalPrice string                `json:"totalPrice"`
}

type SignalResponse struct {
	Signal    domain.Signal `json:"signal"`
	Available int           `json:"available"`
	Quantity  int           `json:"quantity"`
}

type CheckoutResponse struct {
	OK         bool               `json:"ok"`
	Summary    *domain.Summary    `json:"summary,omitempty"`
	Total      string             `json:"total,omitempty"`
	Receipt    *domain.Receipt    `json:"receipt,omitempty"`
	Violations []string           `json:"violations,omitempty"`
	Details    []domain.Violation `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type stockRequest struct {
	Stock int `json:"stock"`
}

type roleRequest struct {
	Role domain.Role `json:"role"`
}

func NewHTTPHandler(shop *service.ShopService, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{shop: shop, logger: logger}
}

// Register mounts every route on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /api/status", h.Status)

	mux.HandleFunc("GET /api/catalog", h.ListCatalog)
	mux.HandleFunc("POST /api/catalog", h.AddItem)
	mux.HandleFunc("PUT /api/catalog/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /api/catalog/{id}", h.DeleteItem)
	mux.HandleFunc("PUT /api/catalog/{id}/stock", h.SetStock)

	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/{id}", h.AddToCart)
	mux.HandleFunc("PUT /api/cart/{id}", h.SetQuantity)
	mux.HandleFunc("DELETE /api/cart/{id}", h.RemoveFromCart)
	mux.HandleFunc("DELETE /api/cart", h.ClearCart)

	mux.HandleFunc("POST /api/checkout", h.ValidateCheckout)
	mux.HandleFunc("POST /api/checkout/confirm", h.ConfirmCheckout)
	mux.HandleFunc("POST /api/checkout/cancel", h.CancelCheckout)

	mux.HandleFunc("POST /api/session/role", h.SetRole)
	mux.HandleFunc("POST /api/session/logout", h.Logout)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.shop.Status())
}

func (h *HTTPHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.shop.Catalog())
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item domain.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	stored, err := h.shop.AddItem(r.Context(), item)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var item domain.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	item.ID = id
	stored, err := h.shop.UpdateItem(r.Context(), item)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.shop.DeleteItem(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	stock, err := h.shop.SetStock(r.Context(), id, req.Stock)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stockRequest{Stock: stock})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	snap := h.shop.CartSnapshot()
	writeJSON(w, http.StatusOK, CartResponse{
		Lines:      snap.Lines,
		TotalItems: snap.TotalItems,
		TotalPrice: snap.TotalPrice.String(),
	})
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	signal, err := h.shop.AddToCart(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.signalResponse(id, signal))
}

func (h *HTTPHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	signal := h.shop.SetQuantity(r.Context(), id, req.Quantity)
	writeJSON(w, http.StatusOK, h.signalResponse(id, signal))
}

func (h *HTTPHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.shop.RemoveFromCart(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.shop.ClearCart(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) ValidateCheckout(w http.ResponseWriter, r *http.Request) {
	summary, err := h.shop.ValidateCheckout(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResponse{OK: true, Summary: &summary, Total: summary.FormattedTotal()})
}

func (h *HTTPHandler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.shop.ConfirmCheckout(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResponse{OK: true, Receipt: &receipt})
}

func (h *HTTPHandler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	h.shop.CancelCheckout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Role != domain.RoleAdmin && req.Role != domain.RoleStandard {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unknown role"})
		return
	}
	h.shop.SetRole(req.Role)
	writeJSON(w, http.StatusOK, h.shop.Status())
}

func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.shop.Logout(r.Context())
	writeJSON(w, http.StatusOK, h.shop.Status())
}

func (h *HTTPHandler) signalResponse(itemID int64, signal domain.Signal) SignalResponse {
	quantity, available := h.shop.LineAvailability(itemID)
	return SignalResponse{
		Signal:    signal,
		Available: available,
		Quantity:  quantity,
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusConflict, CheckoutResponse{
			OK:         false,
			Violations: verr.Messages(),
			Details:    verr.Violations,
		})
	case errors.Is(err, service.ErrForbidden):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotConfirming):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
