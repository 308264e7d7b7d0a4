package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
	"github.com/gopinathcollection/order-coupon-service/internal/service"
)

type QuoteRequest struct {
	Items       []models.CartItem `json:"items"`
	ShippingFee *float64          `json:"shipping_fee,omitempty"`
	CouponCode  string            `json:"coupon_code,omitempty"`
}

type PlaceOrderHTTPRequest struct {
	Buyer         models.Buyer      `json:"buyer"`
	Items         []models.CartItem `json:"items"`
	ShippingFee   *float64          `json:"shipping_fee,omitempty"`
	CouponCode    string            `json:"coupon_code,omitempty"`
	PaymentMethod string            `json:"payment_method"`
}

type CheckoutHandler struct {
	service *service.CheckoutService
}

func NewCheckoutHandler(svc *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: svc}
}

// Quote handles POST /checkout/quote: totals preview for the cart page,
// without consuming a coupon use.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	totals, err := h.service.QuoteTotals(r.Context(), req.Items, req.ShippingFee, req.CouponCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// PlaceOrder handles POST /checkout/orders.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		Buyer:         req.Buyer,
		Items:         req.Items,
		ShippingFee:   req.ShippingFee,
		CouponCode:    req.CouponCode,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}
