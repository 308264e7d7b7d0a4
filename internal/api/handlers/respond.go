package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps tagged domain errors onto HTTP statuses. Anything
// unrecognized is an internal fault.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr  *models.ValidationError
		minPurchaseErr *models.MinPurchaseError
		transitionErr  *models.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validationErr.Error()})
	case errors.Is(err, models.ErrReasonRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrCouponNotFound), errors.Is(err, models.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusConflict, map[string]string{"error": transitionErr.Error()})
	case errors.Is(err, models.ErrConcurrencyConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &minPurchaseErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":     minPurchaseErr.Error(),
			"shortfall": minPurchaseErr.Shortfall(),
		})
	case errors.Is(err, models.ErrCouponExpired), errors.Is(err, models.ErrCouponExhausted):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
	}
}

// couponRejection reports whether err is an expected coupon-evaluation
// outcome the storefront shows to the customer rather than a fault.
func couponRejection(err error) bool {
	var minPurchaseErr *models.MinPurchaseError
	return errors.Is(err, models.ErrCouponNotFound) ||
		errors.Is(err, models.ErrCouponExpired) ||
		errors.Is(err, models.ErrCouponExhausted) ||
		errors.As(err, &minPurchaseErr)
}
