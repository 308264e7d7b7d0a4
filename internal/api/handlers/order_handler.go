package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
	"github.com/gopinathcollection/order-coupon-service/internal/service"
)

type ReasonRequest struct {
	Reason string `json:"reason"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type LogisticsRequest struct {
	AWBNumber    string `json:"awb_number"`
	TrackingLink string `json:"tracking_link"`
}

type PaymentStatusRequest struct {
	Status string `json:"status"`
}

type OrderHandler struct {
	service *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{service: svc}
}

// GetOrder handles GET /orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// ListOrders handles GET /admin/orders?status=
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))

	orders, err := h.service.List(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func decodeReason(r *http.Request) string {
	var req ReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return req.Reason
}

// RequestCancel handles POST /orders/{id}/cancel-request
func (h *OrderHandler) RequestCancel(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.RequestCancel(r.Context(), chi.URLParam(r, "id"), decodeReason(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// RequestReturn handles POST /orders/{id}/return-request
func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.RequestReturn(r.Context(), chi.URLParam(r, "id"), decodeReason(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// SetStatus handles PUT /admin/orders/{id}/status
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	order, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), models.OrderStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// ApproveRequest handles POST /admin/orders/{id}/approve
func (h *OrderHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.ApproveRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// SetLogistics handles PUT /admin/orders/{id}/logistics
func (h *OrderHandler) SetLogistics(w http.ResponseWriter, r *http.Request) {
	var req LogisticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	order, err := h.service.SetLogistics(r.Context(), chi.URLParam(r, "id"), req.AWBNumber, req.TrackingLink)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// MarkInvoiced handles POST /admin/orders/{id}/invoice
func (h *OrderHandler) MarkInvoiced(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.MarkInvoiced(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// RecordPayment handles PUT /admin/orders/{id}/payment
func (h *OrderHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	order, err := h.service.RecordPaymentStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// TaxBreakdown handles GET /orders/{id}/tax-breakdown: per-line GST
// decomposition for the invoice renderer.
func (h *OrderHandler) TaxBreakdown(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.TaxBreakdown(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"lines": lines})
}
