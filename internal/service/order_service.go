package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

// Forward moves an admin may make directly, skipping customer requests.
var adminForward = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.StatusNotProcessed: {
		models.StatusProcessing: true,
		models.StatusShipped:    true,
		models.StatusDelivered:  true,
	},
	models.StatusProcessing: {
		models.StatusShipped:   true,
		models.StatusDelivered: true,
	},
	models.StatusShipped: {
		models.StatusDelivered: true,
	},
}

// approvalTarget maps a pending request onto the status admin approval
// resolves it to.
var approvalTarget = map[models.OrderStatus]models.OrderStatus{
	models.StatusCancelRequested: models.StatusCancelled,
	models.StatusReturnRequested: models.StatusReturned,
}

// CustomerRequestTarget validates a customer-initiated request and returns
// the request status to move to. Cancellation is open until the order
// ships; returns open only after delivery.
func CustomerRequestTarget(from, requested models.OrderStatus, reason string) (models.OrderStatus, error) {
	switch requested {
	case models.StatusCancelRequested:
		if from != models.StatusNotProcessed && from != models.StatusProcessing {
			return "", &models.InvalidTransitionError{From: from, To: requested}
		}
	case models.StatusReturnRequested:
		if from != models.StatusDelivered {
			return "", &models.InvalidTransitionError{From: from, To: requested}
		}
	default:
		return "", &models.InvalidTransitionError{From: from, To: requested}
	}
	if strings.TrimSpace(reason) == "" {
		return "", models.ErrReasonRequired
	}
	return requested, nil
}

// AdminTarget validates an admin-initiated direct status change. Only
// forward moves are permitted; requests resolve through approval, and the
// final cancelled/returned states are reachable only that way.
func AdminTarget(from, requested models.OrderStatus) error {
	if !requested.Valid() {
		return &models.ValidationError{Field: "status", Reason: "unknown order status"}
	}
	if !adminForward[from][requested] {
		return &models.InvalidTransitionError{From: from, To: requested}
	}
	return nil
}

// OrderService applies state-machine transitions through optimistic
// conditional updates: every write is keyed on the status the decision was
// made against, so two racing actions can never both land.
type OrderService struct {
	orders OrderRepo
}

func NewOrderService(orders OrderRepo) *OrderService {
	return &OrderService{orders: orders}
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.load(ctx, id)
}

func (s *OrderService) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, &models.ValidationError{Field: "status", Reason: "unknown order status"}
	}
	return s.orders.List(ctx, status)
}

// RequestCancel opens a customer cancellation request. Allowed before the
// order ships; requires a reason.
func (s *OrderService) RequestCancel(ctx context.Context, orderID, reason string) (*models.Order, error) {
	return s.customerRequest(ctx, orderID, models.StatusCancelRequested, reason)
}

// RequestReturn opens a customer return request from a delivered order.
func (s *OrderService) RequestReturn(ctx context.Context, orderID, reason string) (*models.Order, error) {
	return s.customerRequest(ctx, orderID, models.StatusReturnRequested, reason)
}

func (s *OrderService) customerRequest(ctx context.Context, orderID string, requested models.OrderStatus, reason string) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	target, err := CustomerRequestTarget(order.Status, requested, reason)
	if err != nil {
		return nil, err
	}

	cancelReason, returnReason := "", ""
	if target == models.StatusCancelRequested {
		cancelReason = reason
	} else {
		returnReason = reason
	}

	// A pending request means no admin approval yet.
	ok, err := s.orders.UpdateStatus(ctx, orderID, order.Status, target, false, cancelReason, returnReason)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, models.ErrConcurrencyConflict
	}
	return s.load(ctx, orderID)
}

// SetStatus is the admin console's direct move to a forward state. A direct
// admin write always carries approval.
func (s *OrderService) SetStatus(ctx context.Context, orderID string, target models.OrderStatus) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := AdminTarget(order.Status, target); err != nil {
		return nil, err
	}

	ok, err := s.orders.UpdateStatus(ctx, orderID, order.Status, target, true, "", "")
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, models.ErrConcurrencyConflict
	}
	return s.load(ctx, orderID)
}

// ApproveRequest resolves a pending customer request into its final state,
// keeping the reason the customer supplied.
func (s *OrderService) ApproveRequest(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	target, ok := approvalTarget[order.Status]
	if !ok {
		return nil, &models.InvalidTransitionError{From: order.Status, To: order.Status}
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, order.Status, target, true, "", "")
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !updated {
		return nil, models.ErrConcurrencyConflict
	}
	return s.load(ctx, orderID)
}

// SetLogistics records the AWB number and tracking link set by admin.
func (s *OrderService) SetLogistics(ctx context.Context, orderID, awbNumber, trackingLink string) (*models.Order, error) {
	if strings.TrimSpace(awbNumber) == "" {
		return nil, &models.ValidationError{Field: "awb_number", Reason: "must not be empty"}
	}
	ok, err := s.orders.SetLogistics(ctx, orderID, awbNumber, trackingLink)
	if err != nil {
		return nil, fmt.Errorf("set logistics: %w", err)
	}
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return s.load(ctx, orderID)
}

// MarkInvoiced flips the invoice flag once; a second call reports conflict
// so the invoice artifact is only generated a single time.
func (s *OrderService) MarkInvoiced(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsInvoiced {
		return nil, models.ErrConcurrencyConflict
	}
	ok, err := s.orders.MarkInvoiced(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("mark invoiced: %w", err)
	}
	if !ok {
		return nil, models.ErrConcurrencyConflict
	}
	return s.load(ctx, orderID)
}

// RecordPaymentStatus stores a payment status reported by the gateway. The
// value is an external fact; it is stored verbatim.
func (s *OrderService) RecordPaymentStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	if strings.TrimSpace(status) == "" {
		return nil, &models.ValidationError{Field: "payment_status", Reason: "must not be empty"}
	}
	ok, err := s.orders.SetPaymentStatus(ctx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("set payment status: %w", err)
	}
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return s.load(ctx, orderID)
}

// TaxBreakdown decomposes each line of an order into base price and GST at
// the line's snapshotted rate, for the invoice renderer.
func (s *OrderService) TaxBreakdown(ctx context.Context, orderID string) ([]LineTaxBreakdown, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines := make([]LineTaxBreakdown, 0, len(order.Products))
	for _, p := range order.Products {
		bd, err := GSTBreakdown(p.UnitPrice*float64(p.Quantity), p.GSTRatePercent)
		if err != nil {
			return nil, fmt.Errorf("breakdown for %s: %w", p.ProductID, err)
		}
		lines = append(lines, LineTaxBreakdown{
			ProductID:      p.ProductID,
			Name:           p.Name,
			Quantity:       p.Quantity,
			GSTRatePercent: p.GSTRatePercent,
			LineTotal:      bd.BasePrice + bd.GSTAmount,
			BasePrice:      bd.BasePrice,
			GSTAmount:      bd.GSTAmount,
		})
	}
	return lines, nil
}

type LineTaxBreakdown struct {
	ProductID      string  `json:"product_id"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	GSTRatePercent int     `json:"gst_rate_percent"`
	LineTotal      float64 `json:"line_total"`
	BasePrice      float64 `json:"base_price"`
	GSTAmount      float64 `json:"gst_amount"`
}

func (s *OrderService) load(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}
