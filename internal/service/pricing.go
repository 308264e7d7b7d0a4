package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

// GST slabs accepted on line items. Prices are tax-inclusive; the breakdown
// is decomposed for display and invoicing only.
var gstRates = map[int]struct{}{
	0:  {},
	5:  {},
	12: {},
	18: {},
}

const giftItemName = "Complimentary Gift"

// PriceBreakdown splits a tax-inclusive price into base and GST portions.
// BasePrice + GSTAmount always reproduces the (2dp-rounded) input exactly.
type PriceBreakdown struct {
	BasePrice float64 `json:"base_price"`
	GSTAmount float64 `json:"gst_amount"`
}

// GSTBreakdown decomposes a tax-inclusive totalPrice at the given GST rate.
// Rounding is half-up to 2 decimal places; the GST amount is derived by
// subtraction so the two parts never drift from the total by a penny.
func GSTBreakdown(totalPrice float64, gstRatePercent int) (PriceBreakdown, error) {
	if math.IsNaN(totalPrice) || math.IsInf(totalPrice, 0) {
		return PriceBreakdown{}, &models.ValidationError{Field: "total_price", Reason: "must be a finite number"}
	}
	if totalPrice < 0 {
		return PriceBreakdown{}, &models.ValidationError{Field: "total_price", Reason: "must not be negative"}
	}
	if _, ok := gstRates[gstRatePercent]; !ok {
		return PriceBreakdown{}, &models.ValidationError{Field: "gst_rate_percent", Reason: "must be one of 0, 5, 12, 18"}
	}

	total := decimal.NewFromFloat(totalPrice).Round(2)
	if gstRatePercent == 0 {
		t, _ := total.Float64()
		return PriceBreakdown{BasePrice: t, GSTAmount: 0}, nil
	}

	base := total.
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(100 + gstRatePercent))).
		Round(2)
	gst := total.Sub(base)

	b, _ := base.Float64()
	g, _ := gst.Float64()
	return PriceBreakdown{BasePrice: b, GSTAmount: g}, nil
}

// Subtotal sums unitPrice x quantity over the cart in decimal space and
// rounds once at the end.
func Subtotal(items []models.CartItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
		sum = sum.Add(line)
	}
	f, _ := sum.Round(2).Float64()
	return f
}

func validateItems(items []models.CartItem) error {
	if len(items) == 0 {
		return &models.ValidationError{Field: "products", Reason: "order must contain at least one line item"}
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return &models.ValidationError{Field: "quantity", Reason: "must be at least 1"}
		}
		if math.IsNaN(it.UnitPrice) || math.IsInf(it.UnitPrice, 0) || it.UnitPrice < 0 {
			return &models.ValidationError{Field: "unit_price", Reason: "must be a non-negative number"}
		}
		if _, ok := gstRates[it.GSTRatePercent]; !ok {
			return &models.ValidationError{Field: "gst_rate_percent", Reason: "must be one of 0, 5, 12, 18"}
		}
	}
	return nil
}

// AggregateTotals combines line items, shipping and an optional discount
// outcome into the final payable total. Pure: identical inputs always give
// identical outputs, and the input slice is never mutated.
//
// The discount is clamped so the total can never go negative, and a gift
// outcome appends a zero-price line item that ships with the order but
// contributes nothing to the subtotal.
func AggregateTotals(items []models.CartItem, shippingFee float64, outcome *models.DiscountOutcome) (models.OrderTotals, error) {
	if err := validateItems(items); err != nil {
		return models.OrderTotals{}, err
	}
	if math.IsNaN(shippingFee) || math.IsInf(shippingFee, 0) || shippingFee < 0 {
		return models.OrderTotals{}, &models.ValidationError{Field: "shipping_fee", Reason: "must be a non-negative number"}
	}

	subtotal := decimal.NewFromFloat(Subtotal(items))
	shipping := decimal.NewFromFloat(shippingFee).Round(2)

	discount := decimal.Zero
	if outcome != nil {
		discount = decimal.NewFromFloat(outcome.Discount).Round(2)
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if max := subtotal.Add(shipping); discount.GreaterThan(max) {
		discount = max
	}

	total := subtotal.Add(shipping).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	lines := make([]models.CartItem, len(items), len(items)+1)
	copy(lines, items)
	if outcome != nil && outcome.GiftProductID != "" {
		lines = append(lines, models.CartItem{
			ProductID:      outcome.GiftProductID,
			Name:           giftItemName,
			Quantity:       1,
			UnitPrice:      0,
			GSTRatePercent: 0,
		})
	}

	sub, _ := subtotal.Float64()
	shp, _ := shipping.Float64()
	dis, _ := discount.Float64()
	tot, _ := total.Float64()
	return models.OrderTotals{
		Subtotal:    sub,
		ShippingFee: shp,
		Discount:    dis,
		TotalPaid:   tot,
		Items:       lines,
	}, nil
}

// ShippingConfig drives the free-shipping threshold applied when the
// storefront does not send an explicit fee.
type ShippingConfig struct {
	FlatFee         float64
	FreeShippingMin float64
}

// FeeFor returns the shipping fee for a cart subtotal: the flat fee, waived
// once the subtotal reaches the free-shipping threshold.
func (c ShippingConfig) FeeFor(subtotal float64) float64 {
	if c.FreeShippingMin > 0 && subtotal >= c.FreeShippingMin {
		return 0
	}
	return c.FlatFee
}
