package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

// TxRunner scopes a function to one database transaction, rolling back on
// error. Abstracted so checkout logic can be exercised without a live DB.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type OrderRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, o *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	// UpdateStatus performs the optimistic transition: the row is written
	// only while its status still equals from. Returns false on a lost race.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, approved bool, cancelReason, returnReason string) (bool, error)
	SetLogistics(ctx context.Context, id, awbNumber, trackingLink string) (bool, error)
	MarkInvoiced(ctx context.Context, id string) (bool, error)
	SetPaymentStatus(ctx context.Context, id, paymentStatus string) (bool, error)
}

// PlaceOrderRequest is everything checkout supplies to create an order.
// ShippingFee is optional; when nil the fee is derived from ShippingConfig.
type PlaceOrderRequest struct {
	Buyer         models.Buyer
	Items         []models.CartItem
	ShippingFee   *float64
	CouponCode    string
	PaymentMethod string
}

// CheckoutService turns a cart into a persisted order. Coupon consumption,
// the redemption record and the order insert commit as one transaction so a
// coupon use is never spent without its order, and never vice versa.
type CheckoutService struct {
	tx          TxRunner
	coupons     CouponRepo
	orders      OrderRepo
	redemptions RedemptionRepo
	shipping    ShippingConfig
}

func NewCheckoutService(tx TxRunner, coupons CouponRepo, orders OrderRepo, redemptions RedemptionRepo, shipping ShippingConfig) *CheckoutService {
	return &CheckoutService{
		tx:          tx,
		coupons:     coupons,
		orders:      orders,
		redemptions: redemptions,
		shipping:    shipping,
	}
}

func (s *CheckoutService) resolveShipping(items []models.CartItem, fee *float64) float64 {
	if fee != nil {
		return *fee
	}
	return s.shipping.FeeFor(Subtotal(items))
}

// QuoteTotals previews totals for a cart, applying the coupon without
// consuming a use. What the storefront shows on the cart page.
func (s *CheckoutService) QuoteTotals(ctx context.Context, items []models.CartItem, shippingFee *float64, couponCode string) (models.OrderTotals, error) {
	var outcome *models.DiscountOutcome
	if couponCode != "" {
		coupon, err := s.loadCoupon(ctx, couponCode)
		if err != nil {
			return models.OrderTotals{}, err
		}
		oc, err := EvaluateCoupon(coupon, Subtotal(items), time.Now().UTC())
		if err != nil {
			return models.OrderTotals{}, err
		}
		outcome = &oc
	}
	return AggregateTotals(items, s.resolveShipping(items, shippingFee), outcome)
}

// PlaceOrder evaluates the coupon against fresh state, aggregates totals and
// persists the order. If another checkout consumes the final coupon use
// between evaluation and commit, the conditional update matches nothing and
// this order fails with ErrCouponExhausted, exactly as if it had lost the
// race up front.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	if err := validateBuyer(req.Buyer); err != nil {
		return nil, err
	}
	if req.PaymentMethod != models.PaymentMethodCOD && req.PaymentMethod != models.PaymentMethodOnline {
		return nil, &models.ValidationError{Field: "payment_method", Reason: "must be cod or online"}
	}

	var (
		coupon  *models.Coupon
		outcome *models.DiscountOutcome
	)
	if req.CouponCode != "" {
		var err error
		coupon, err = s.loadCoupon(ctx, req.CouponCode)
		if err != nil {
			return nil, err
		}
		oc, err := EvaluateCoupon(coupon, Subtotal(req.Items), time.Now().UTC())
		if err != nil {
			return nil, err
		}
		outcome = &oc
	}

	totals, err := AggregateTotals(req.Items, s.resolveShipping(req.Items, req.ShippingFee), outcome)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:          uuid.NewString(),
		OrderNumber: newOrderNumber(now),
		Buyer:       req.Buyer,
		Products:    totals.Items,
		Subtotal:    totals.Subtotal,
		ShippingFee: totals.ShippingFee,
		Discount:    totals.Discount,
		TotalPaid:   totals.TotalPaid,
		Status:      models.StatusNotProcessed,
		// No customer request is pending on a fresh order.
		IsApprovedByAdmin: true,
		Payment: models.Payment{
			Method: req.PaymentMethod,
			Status: paymentStatusFor(req.PaymentMethod),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if coupon != nil {
		order.CouponCode = coupon.Name
	}

	err = s.tx.RunTx(ctx, func(tx *sql.Tx) error {
		if coupon != nil {
			ok, err := s.coupons.ConsumeUse(ctx, tx, coupon.ID)
			if err != nil {
				return fmt.Errorf("consume coupon use: %w", err)
			}
			if !ok {
				return models.ErrCouponExhausted
			}
			if err := s.redemptions.Record(ctx, tx, &models.Redemption{
				CouponID:   coupon.ID,
				CouponName: coupon.Name,
				OrderID:    order.ID,
				Discount:   order.Discount,
				RedeemedAt: now,
			}); err != nil {
				return fmt.Errorf("record redemption: %w", err)
			}
		}
		if err := s.orders.Insert(ctx, tx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *CheckoutService) loadCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, err := s.coupons.GetByCode(ctx, NormalizeCouponCode(code))
	if err != nil {
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	if coupon == nil {
		return nil, models.ErrCouponNotFound
	}
	return coupon, nil
}

func validateBuyer(b models.Buyer) error {
	if strings.TrimSpace(b.Name) == "" {
		return &models.ValidationError{Field: "buyer.name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(b.Phone) == "" {
		return &models.ValidationError{Field: "buyer.phone", Reason: "must not be empty"}
	}
	if strings.TrimSpace(b.Address) == "" {
		return &models.ValidationError{Field: "buyer.address", Reason: "must not be empty"}
	}
	return nil
}

// COD orders start pending collection; online orders await the gateway
// callback, which is recorded separately.
func paymentStatusFor(method string) string {
	if method == models.PaymentMethodCOD {
		return "pending"
	}
	return "initiated"
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "GNC-" + now.Format("20060102") + "-" + suffix
}
