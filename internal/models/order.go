package models

import "time"

type OrderStatus string

const (
	StatusNotProcessed    OrderStatus = "not_processed"
	StatusProcessing      OrderStatus = "processing"
	StatusShipped         OrderStatus = "shipped"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelRequested OrderStatus = "cancel_requested"
	StatusCancelled       OrderStatus = "cancelled"
	StatusReturnRequested OrderStatus = "return_requested"
	StatusReturned        OrderStatus = "returned"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNotProcessed, StatusProcessing, StatusShipped, StatusDelivered,
		StatusCancelRequested, StatusCancelled, StatusReturnRequested, StatusReturned:
		return true
	}
	return false
}

// IsRequest reports whether the status is a customer-initiated request
// pending admin approval.
func (s OrderStatus) IsRequest() bool {
	return s == StatusCancelRequested || s == StatusReturnRequested
}

// Terminal statuses accept no further transitions. Delivered is not
// terminal: the customer can still open a return request from it.
func (s OrderStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusReturned
}

const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// Payment holds gateway-supplied facts. The service stores them verbatim
// and never derives them.
type Payment struct {
	Method string `json:"method"`
	Status string `json:"status"`
}

// Buyer is the customer snapshot taken when the order is placed.
type Buyer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Order struct {
	ID                string      `json:"id"`
	OrderNumber       string      `json:"order_number"`
	Buyer             Buyer       `json:"buyer"`
	Products          []CartItem  `json:"products"`
	Subtotal          float64     `json:"subtotal"`
	ShippingFee       float64     `json:"shipping_fee"`
	Discount          float64     `json:"discount"`
	TotalPaid         float64     `json:"total_paid"`
	CouponCode        string      `json:"coupon_code,omitempty"`
	Status            OrderStatus `json:"status"`
	IsApprovedByAdmin bool        `json:"is_approved_by_admin"`
	CancelReason      string      `json:"cancel_reason,omitempty"`
	ReturnReason      string      `json:"return_reason,omitempty"`
	AWBNumber         string      `json:"awb_number,omitempty"`
	TrackingLink      string      `json:"tracking_link,omitempty"`
	IsInvoiced        bool        `json:"is_invoiced"`
	Payment           Payment     `json:"payment"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
