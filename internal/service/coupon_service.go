package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gopinathcollection/order-coupon-service/internal/cache"
	"github.com/gopinathcollection/order-coupon-service/internal/concurrency"
	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

// Repos required by the services; interfaces so tests can fake them.
type CouponRepo interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	GetByID(ctx context.Context, id int) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Create(ctx context.Context, c *models.Coupon) (int, error)
	Update(ctx context.Context, c *models.Coupon) (bool, error)
	// Delete removes the coupon and returns its code, or "" when absent.
	Delete(ctx context.Context, id int) (string, error)
	// ConsumeUse advances times_used by one only while it is still below
	// usage_limit. Returns false when the conditional update matched no row.
	ConsumeUse(ctx context.Context, tx *sql.Tx, couponID int) (bool, error)
}

type RedemptionRepo interface {
	Record(ctx context.Context, tx *sql.Tx, r *models.Redemption) error
	ListByCoupon(ctx context.Context, couponID int) ([]models.Redemption, error)
}

// NormalizeCouponCode maps user input onto the stored form.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EvaluateCoupon checks a coupon against a cart subtotal at the given
// instant. Checks run in order and short-circuit on the first failure:
// expiry, remaining uses, minimum purchase. It never touches the usage
// counter; consumption happens inside the checkout transaction.
func EvaluateCoupon(c *models.Coupon, cartSubtotal float64, now time.Time) (models.DiscountOutcome, error) {
	if c.Expired(now) {
		return models.DiscountOutcome{}, models.ErrCouponExpired
	}
	if c.RemainingUses() == 0 {
		return models.DiscountOutcome{}, models.ErrCouponExhausted
	}
	if cartSubtotal < c.MinPurchase {
		return models.DiscountOutcome{}, &models.MinPurchaseError{MinPurchase: c.MinPurchase, Subtotal: cartSubtotal}
	}

	switch c.DiscountType {
	case models.DiscountFixed:
		discount := c.DiscountValue
		if discount > cartSubtotal {
			discount = cartSubtotal
		}
		return models.DiscountOutcome{Discount: discount}, nil

	case models.DiscountPercentage:
		d := decimal.NewFromFloat(cartSubtotal).
			Mul(decimal.NewFromFloat(c.DiscountValue)).
			Div(decimal.NewFromInt(100)).
			Round(2)
		if cap, capped := c.Cap(); capped {
			capD := decimal.NewFromFloat(cap)
			if d.GreaterThan(capD) {
				d = capD
			}
		}
		discount, _ := d.Float64()
		return models.DiscountOutcome{Discount: discount}, nil

	case models.DiscountGift:
		return models.DiscountOutcome{Discount: 0, GiftProductID: c.GiftProductID}, nil

	default:
		return models.DiscountOutcome{}, &models.ValidationError{Field: "discount_type", Reason: "must be fixed, percentage or gift"}
	}
}

// CouponService serves coupon reads for the storefront and admin CRUD.
// Lookups on the non-consuming quote path go through a short TTL cache;
// anything that spends a use reads fresh from the repo.
type CouponService struct {
	coupons     CouponRepo
	redemptions RedemptionRepo
	cache       *cache.CouponCache
}

func NewCouponService(coupons CouponRepo, redemptions RedemptionRepo, c *cache.CouponCache) *CouponService {
	return &CouponService{coupons: coupons, redemptions: redemptions, cache: c}
}

// Quote evaluates a coupon code against a cart subtotal without consuming a
// use. Serves the storefront's "apply coupon" preview.
func (s *CouponService) Quote(ctx context.Context, code string, cartSubtotal float64) (models.DiscountOutcome, error) {
	code = NormalizeCouponCode(code)

	coupon, ok := s.cache.Get(code)
	if !ok {
		var err error
		coupon, err = s.coupons.GetByCode(ctx, code)
		if err != nil {
			return models.DiscountOutcome{}, fmt.Errorf("load coupon: %w", err)
		}
		if coupon == nil {
			return models.DiscountOutcome{}, models.ErrCouponNotFound
		}
		s.cache.Set(code, coupon)
	}

	return EvaluateCoupon(coupon, cartSubtotal, time.Now().UTC())
}

// applicableWorkers bounds the fan-out of the all-coupons scan.
const applicableWorkers = 4

// Applicable lists the codes that would currently succeed for the given
// subtotal. Coupons are evaluated concurrently; each worker writes only its
// own slot so no locking is needed on the results.
func (s *CouponService) Applicable(ctx context.Context, cartSubtotal float64) ([]string, error) {
	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	now := time.Now().UTC()
	results := make([]string, len(coupons))
	concurrency.ForEach(ctx, applicableWorkers, len(coupons), func(_ context.Context, i int) {
		if _, err := EvaluateCoupon(&coupons[i], cartSubtotal, now); err == nil {
			results[i] = coupons[i].Name
		}
	})

	applicable := []string{}
	for _, code := range results {
		if code != "" {
			applicable = append(applicable, code)
		}
	}
	return applicable, nil
}

func validateCoupon(c *models.Coupon) error {
	if c.Name == "" {
		return &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !c.DiscountType.Valid() {
		return &models.ValidationError{Field: "discount_type", Reason: "must be fixed, percentage or gift"}
	}
	if c.DiscountValue < 0 {
		return &models.ValidationError{Field: "discount_value", Reason: "must not be negative"}
	}
	if c.DiscountType != models.DiscountGift && c.DiscountValue == 0 {
		return &models.ValidationError{Field: "discount_value", Reason: "must be positive for monetary coupons"}
	}
	if c.DiscountType == models.DiscountGift && c.GiftProductID == "" {
		return &models.ValidationError{Field: "gift_product_id", Reason: "required for gift coupons"}
	}
	if c.MaxDiscount < 0 {
		return &models.ValidationError{Field: "max_discount", Reason: "must not be negative"}
	}
	if c.MinPurchase < 0 {
		return &models.ValidationError{Field: "min_purchase", Reason: "must not be negative"}
	}
	if c.UsageLimit < 1 {
		return &models.ValidationError{Field: "usage_limit", Reason: "must be at least 1"}
	}
	return nil
}

func (s *CouponService) Create(ctx context.Context, c *models.Coupon) (*models.Coupon, error) {
	c.Name = NormalizeCouponCode(c.Name)
	if c.DiscountType == models.DiscountGift {
		c.DiscountValue = 0
	}
	if err := validateCoupon(c); err != nil {
		return nil, err
	}

	id, err := s.coupons.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}
	c.ID = id
	return c, nil
}

func (s *CouponService) GetByID(ctx context.Context, id int) (*models.Coupon, error) {
	coupon, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	if coupon == nil {
		return nil, models.ErrCouponNotFound
	}
	return coupon, nil
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.coupons.List(ctx)
}

func (s *CouponService) Update(ctx context.Context, c *models.Coupon) error {
	c.Name = NormalizeCouponCode(c.Name)
	if c.DiscountType == models.DiscountGift {
		c.DiscountValue = 0
	}
	if err := validateCoupon(c); err != nil {
		return err
	}

	ok, err := s.coupons.Update(ctx, c)
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}
	if !ok {
		return models.ErrCouponNotFound
	}
	s.cache.Invalidate(c.Name)
	return nil
}

func (s *CouponService) Delete(ctx context.Context, id int) error {
	code, err := s.coupons.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if code == "" {
		return models.ErrCouponNotFound
	}
	s.cache.Invalidate(code)
	return nil
}

func (s *CouponService) Redemptions(ctx context.Context, couponID int) ([]models.Redemption, error) {
	return s.redemptions.ListByCoupon(ctx, couponID)
}
