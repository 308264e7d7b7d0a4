package models

import (
	"errors"
	"fmt"
)

// Coupon evaluation and order transition failures are expected, user-facing
// outcomes. They are returned as tagged values so handlers can map them to
// responses without string matching.
var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponExpired       = errors.New("coupon expired")
	ErrCouponExhausted     = errors.New("coupon usage limit reached")
	ErrReasonRequired      = errors.New("a reason is required for this request")
	ErrConcurrencyConflict = errors.New("record changed concurrently, retry with refreshed state")
	ErrOrderNotFound       = errors.New("order not found")
)

// ValidationError rejects malformed numeric input. Invalid values are never
// silently coerced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// MinPurchaseError reports how far the cart subtotal falls short of the
// coupon's minimum purchase.
type MinPurchaseError struct {
	MinPurchase float64
	Subtotal    float64
}

func (e *MinPurchaseError) Error() string {
	return fmt.Sprintf("minimum purchase of %.2f not met, add %.2f more", e.MinPurchase, e.Shortfall())
}

func (e *MinPurchaseError) Shortfall() float64 {
	return e.MinPurchase - e.Subtotal
}

// InvalidTransitionError rejects a status change the state machine does not
// permit. The order is left unchanged.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}
