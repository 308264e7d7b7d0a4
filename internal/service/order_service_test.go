package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

func orderInStatus(status models.OrderStatus) *models.Order {
	return &models.Order{
		ID:                "ord-1",
		OrderNumber:       "GNC-20260831-ABCD1234",
		Buyer:             testBuyer,
		Products:          []models.CartItem{{ProductID: "p", Name: "P", Quantity: 1, UnitPrice: 500, GSTRatePercent: 5}},
		Subtotal:          500,
		TotalPaid:         500,
		Status:            status,
		IsApprovedByAdmin: !status.IsRequest(),
		Payment:           models.Payment{Method: models.PaymentMethodCOD, Status: "pending"},
		CreatedAt:         time.Now().UTC(),
	}
}

func newOrderServiceWith(o *models.Order) (*OrderService, *fakeOrderRepo) {
	repo := newFakeOrderRepo(o)
	return NewOrderService(repo), repo
}

func TestAdminDirectForwardTransitions(t *testing.T) {
	tests := []struct {
		from models.OrderStatus
		to   models.OrderStatus
	}{
		{models.StatusNotProcessed, models.StatusProcessing},
		{models.StatusNotProcessed, models.StatusShipped},
		{models.StatusNotProcessed, models.StatusDelivered},
		{models.StatusProcessing, models.StatusShipped},
		{models.StatusProcessing, models.StatusDelivered},
		{models.StatusShipped, models.StatusDelivered},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			svc, _ := newOrderServiceWith(orderInStatus(tt.from))

			order, err := svc.SetStatus(context.Background(), "ord-1", tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.to, order.Status)
			assert.True(t, order.IsApprovedByAdmin)
		})
	}
}

func TestAdminCannotMoveBackwardOrSkipToFinal(t *testing.T) {
	tests := []struct {
		from models.OrderStatus
		to   models.OrderStatus
	}{
		{models.StatusShipped, models.StatusProcessing},
		{models.StatusDelivered, models.StatusShipped},
		{models.StatusNotProcessed, models.StatusCancelled},
		{models.StatusProcessing, models.StatusReturned},
		{models.StatusNotProcessed, models.StatusCancelRequested},
		{models.StatusCancelled, models.StatusProcessing},
		{models.StatusReturned, models.StatusDelivered},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			svc, repo := newOrderServiceWith(orderInStatus(tt.from))

			_, err := svc.SetStatus(context.Background(), "ord-1", tt.to)
			var transitionErr *models.InvalidTransitionError
			require.ErrorAs(t, err, &transitionErr)

			// order untouched
			stored, _ := repo.GetByID(context.Background(), "ord-1")
			assert.Equal(t, tt.from, stored.Status)
		})
	}
}

func TestCustomerCancelRequest(t *testing.T) {
	for _, from := range []models.OrderStatus{models.StatusNotProcessed, models.StatusProcessing} {
		svc, _ := newOrderServiceWith(orderInStatus(from))

		order, err := svc.RequestCancel(context.Background(), "ord-1", "ordered the wrong size")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelRequested, order.Status)
		assert.False(t, order.IsApprovedByAdmin)
		assert.Equal(t, "ordered the wrong size", order.CancelReason)
	}
}

func TestCancelRequestRejectedAfterShipping(t *testing.T) {
	svc, repo := newOrderServiceWith(orderInStatus(models.StatusShipped))

	_, err := svc.RequestCancel(context.Background(), "ord-1", "changed my mind")
	var transitionErr *models.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	stored, _ := repo.GetByID(context.Background(), "ord-1")
	assert.Equal(t, models.StatusShipped, stored.Status)
}

func TestCancelRequestNeedsReason(t *testing.T) {
	svc, repo := newOrderServiceWith(orderInStatus(models.StatusNotProcessed))

	_, err := svc.RequestCancel(context.Background(), "ord-1", "   ")
	assert.ErrorIs(t, err, models.ErrReasonRequired)

	stored, _ := repo.GetByID(context.Background(), "ord-1")
	assert.Equal(t, models.StatusNotProcessed, stored.Status)
	assert.True(t, stored.IsApprovedByAdmin)
}

func TestReturnRequestOnlyAfterDelivery(t *testing.T) {
	svc, _ := newOrderServiceWith(orderInStatus(models.StatusDelivered))

	order, err := svc.RequestReturn(context.Background(), "ord-1", "color faded after one wash")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturnRequested, order.Status)
	assert.False(t, order.IsApprovedByAdmin)

	for _, from := range []models.OrderStatus{models.StatusNotProcessed, models.StatusProcessing, models.StatusShipped} {
		svc, _ := newOrderServiceWith(orderInStatus(from))
		_, err := svc.RequestReturn(context.Background(), "ord-1", "too early")
		var transitionErr *models.InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)
	}
}

func TestApproveReturnKeepsReason(t *testing.T) {
	svc, _ := newOrderServiceWith(orderInStatus(models.StatusDelivered))

	_, err := svc.RequestReturn(context.Background(), "ord-1", "color faded after one wash")
	require.NoError(t, err)

	order, err := svc.ApproveRequest(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, order.Status)
	assert.True(t, order.IsApprovedByAdmin)
	assert.Equal(t, "color faded after one wash", order.ReturnReason)
}

func TestApproveCancelRequest(t *testing.T) {
	svc, _ := newOrderServiceWith(orderInStatus(models.StatusProcessing))

	_, err := svc.RequestCancel(context.Background(), "ord-1", "found it cheaper elsewhere")
	require.NoError(t, err)

	order, err := svc.ApproveRequest(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, order.Status)
	assert.True(t, order.IsApprovedByAdmin)
	assert.Equal(t, "found it cheaper elsewhere", order.CancelReason)
}

func TestApproveWithoutPendingRequest(t *testing.T) {
	svc, _ := newOrderServiceWith(orderInStatus(models.StatusProcessing))

	_, err := svc.ApproveRequest(context.Background(), "ord-1")
	var transitionErr *models.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestTerminalStatesAcceptNothing(t *testing.T) {
	for _, terminal := range []models.OrderStatus{models.StatusCancelled, models.StatusReturned} {
		svc, _ := newOrderServiceWith(orderInStatus(terminal))

		_, err := svc.SetStatus(context.Background(), "ord-1", models.StatusProcessing)
		var transitionErr *models.InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)

		_, err = svc.RequestCancel(context.Background(), "ord-1", "too late")
		assert.ErrorAs(t, err, &transitionErr)

		_, err = svc.ApproveRequest(context.Background(), "ord-1")
		assert.ErrorAs(t, err, &transitionErr)
	}
}

func TestLostStatusRaceIsConflict(t *testing.T) {
	repo := &conflictOrderRepo{newFakeOrderRepo(orderInStatus(models.StatusNotProcessed))}
	svc := NewOrderService(repo)

	_, err := svc.SetStatus(context.Background(), "ord-1", models.StatusProcessing)
	assert.ErrorIs(t, err, models.ErrConcurrencyConflict)
}

func TestMarkInvoicedOnlyOnce(t *testing.T) {
	svc, _ := newOrderServiceWith(orderInStatus(models.StatusDelivered))

	order, err := svc.MarkInvoiced(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.True(t, order.IsInvoiced)

	_, err = svc.MarkInvoiced(context.Background(), "ord-1")
	assert.ErrorIs(t, err, models.ErrConcurrencyConflict)
}

func TestSetLogisticsAndPayment(t *testing.T) {
	svc, _ := newOrderServiceWith(orderInStatus(models.StatusShipped))

	order, err := svc.SetLogistics(context.Background(), "ord-1", "AWB123456", "https://track.example/AWB123456")
	require.NoError(t, err)
	assert.Equal(t, "AWB123456", order.AWBNumber)

	order, err = svc.RecordPaymentStatus(context.Background(), "ord-1", "captured")
	require.NoError(t, err)
	assert.Equal(t, "captured", order.Payment.Status)

	_, err = svc.SetLogistics(context.Background(), "ord-1", "", "")
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestTaxBreakdownUsesSnapshottedRates(t *testing.T) {
	o := orderInStatus(models.StatusDelivered)
	o.Products = []models.CartItem{
		{ProductID: "p1", Name: "Saree", Quantity: 2, UnitPrice: 590, GSTRatePercent: 18},
		{ProductID: "gift", Name: "Complimentary Gift", Quantity: 1, UnitPrice: 0, GSTRatePercent: 0},
	}
	svc, _ := newOrderServiceWith(o)

	lines, err := svc.TaxBreakdown(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.InDelta(t, 1000, lines[0].BasePrice, 0.001)
	assert.InDelta(t, 180, lines[0].GSTAmount, 0.001)
	assert.InDelta(t, 0, lines[1].BasePrice, 0.001)
}

func TestUnknownOrder(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepo())

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}
