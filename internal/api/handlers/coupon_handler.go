package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
	"github.com/gopinathcollection/order-coupon-service/internal/service"
)

// --- Request / Response DTOs ---

type CouponRequest struct {
	Name          string  `json:"name"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
	MaxDiscount   float64 `json:"max_discount"`
	MinPurchase   float64 `json:"min_purchase"`
	UsageLimit    int     `json:"usage_limit"`
	GiftProductID string  `json:"gift_product_id,omitempty"`
	Expiry        string  `json:"expiry"` // RFC3339
}

type ValidateCouponRequest struct {
	CouponCode   string  `json:"coupon_code"`
	CartSubtotal float64 `json:"cart_subtotal"`
}

type CouponResponse struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
	MaxDiscount   float64 `json:"max_discount"`
	MinPurchase   float64 `json:"min_purchase"`
	UsageLimit    int     `json:"usage_limit"`
	TimesUsed     int     `json:"times_used"`
	GiftProductID string  `json:"gift_product_id,omitempty"`
	Expiry        string  `json:"expiry"`
}

func toCouponResponse(c *models.Coupon) CouponResponse {
	return CouponResponse{
		ID:            c.ID,
		Name:          c.Name,
		DiscountType:  string(c.DiscountType),
		DiscountValue: c.DiscountValue,
		MaxDiscount:   c.MaxDiscount,
		MinPurchase:   c.MinPurchase,
		UsageLimit:    c.UsageLimit,
		TimesUsed:     c.TimesUsed,
		GiftProductID: c.GiftProductID,
		Expiry:        c.Expiry.UTC().Format(time.RFC3339),
	}
}

// --- Handler ---

type CouponHandler struct {
	service *service.CouponService
}

func NewCouponHandler(svc *service.CouponService) *CouponHandler {
	return &CouponHandler{service: svc}
}

func (h *CouponHandler) decodeCoupon(r *http.Request) (*models.Coupon, error) {
	var req CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, &models.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	expiry, err := time.Parse(time.RFC3339, req.Expiry)
	if err != nil {
		return nil, &models.ValidationError{Field: "expiry", Reason: "use RFC3339"}
	}

	return &models.Coupon{
		Name:          req.Name,
		DiscountType:  models.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		MaxDiscount:   req.MaxDiscount,
		MinPurchase:   req.MinPurchase,
		UsageLimit:    req.UsageLimit,
		GiftProductID: req.GiftProductID,
		Expiry:        expiry,
	}, nil
}

// CreateCoupon handles POST /admin/coupons
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.decodeCoupon(r)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), coupon)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCouponResponse(created))
}

// ListCoupons handles GET /admin/coupons
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]CouponResponse, 0, len(coupons))
	for i := range coupons {
		out = append(out, toCouponResponse(&coupons[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCoupon handles GET /admin/coupons/{id}
func (h *CouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, &models.ValidationError{Field: "id", Reason: "must be an integer"})
		return
	}

	coupon, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponResponse(coupon))
}

// UpdateCoupon handles PUT /admin/coupons/{id}
func (h *CouponHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, &models.ValidationError{Field: "id", Reason: "must be an integer"})
		return
	}

	coupon, derr := h.decodeCoupon(r)
	if derr != nil {
		writeError(w, derr)
		return
	}
	coupon.ID = id

	if err := h.service.Update(r.Context(), coupon); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponResponse(coupon))
}

// DeleteCoupon handles DELETE /admin/coupons/{id}
func (h *CouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, &models.ValidationError{Field: "id", Reason: "must be an integer"})
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "coupon_deleted"})
}

// ListRedemptions handles GET /admin/coupons/{id}/redemptions
func (h *CouponHandler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, &models.ValidationError{Field: "id", Reason: "must be an integer"})
		return
	}

	redemptions, err := h.service.Redemptions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, redemptions)
}

// ValidateCoupon handles POST /coupons/validate: the storefront's coupon
// preview. Evaluation failures are normal outcomes, returned as 200 with
// applicable=false so the UI can show them inline.
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req ValidateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	outcome, err := h.service.Quote(r.Context(), req.CouponCode, req.CartSubtotal)
	if err != nil {
		if couponRejection(err) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"applicable": false,
				"reason":     err.Error(),
			})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applicable":      true,
		"discount":        outcome.Discount,
		"gift_product_id": outcome.GiftProductID,
	})
}

// ApplicableCoupons handles GET /coupons/applicable?subtotal=
func (h *CouponHandler) ApplicableCoupons(w http.ResponseWriter, r *http.Request) {
	subtotal, err := strconv.ParseFloat(r.URL.Query().Get("subtotal"), 64)
	if err != nil {
		writeError(w, &models.ValidationError{Field: "subtotal", Reason: "must be a number"})
		return
	}

	codes, err := h.service.Applicable(r.Context(), subtotal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"applicable_coupons": codes})
}
