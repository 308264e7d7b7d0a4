package models

import "time"

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
	DiscountGift       DiscountType = "gift"
)

func (t DiscountType) Valid() bool {
	switch t {
	case DiscountFixed, DiscountPercentage, DiscountGift:
		return true
	}
	return false
}

// Coupon is a named discount rule. Name is stored and looked up uppercase.
// TimesUsed only ever advances through a conditional update against
// UsageLimit, never via an in-process read-modify-write.
type Coupon struct {
	ID            int
	Name          string
	DiscountType  DiscountType
	DiscountValue float64
	MaxDiscount   float64
	MinPurchase   float64
	UsageLimit    int
	TimesUsed     int
	GiftProductID string
	Expiry        time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Cap reports the percentage discount cap. Storage keeps the source
// convention of max_discount = 0 meaning uncapped; call sites go through
// here instead of comparing against the zero sentinel.
func (c *Coupon) Cap() (float64, bool) {
	if c.MaxDiscount > 0 {
		return c.MaxDiscount, true
	}
	return 0, false
}

func (c *Coupon) RemainingUses() int {
	left := c.UsageLimit - c.TimesUsed
	if left < 0 {
		return 0
	}
	return left
}

func (c *Coupon) Expired(now time.Time) bool {
	return !now.Before(c.Expiry)
}

// DiscountOutcome is the result of a successful coupon evaluation. Discount
// is 0 for gift coupons; GiftProductID is empty for monetary coupons.
type DiscountOutcome struct {
	Discount      float64 `json:"discount"`
	GiftProductID string  `json:"gift_product_id,omitempty"`
}

// Redemption records one consumed coupon use, written in the same
// transaction as the order that spent it.
type Redemption struct {
	ID         int
	CouponID   int
	CouponName string
	OrderID    string
	Discount   float64
	RedeemedAt time.Time
}
