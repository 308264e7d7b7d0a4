package models

// CartItem is one order line: a product reference plus the name and price
// snapshotted at order time. Line items never change after the order is
// placed, even if the product record is edited later.
type CartItem struct {
	ProductID      string  `json:"product_id"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	GSTRatePercent int     `json:"gst_rate_percent"`
}

// OrderTotals is the finalized money breakdown for a cart. Items includes
// any gift line appended during aggregation.
type OrderTotals struct {
	Subtotal    float64    `json:"subtotal"`
	ShippingFee float64    `json:"shipping_fee"`
	Discount    float64    `json:"discount"`
	TotalPaid   float64    `json:"total_paid"`
	Items       []CartItem `json:"items"`
}
