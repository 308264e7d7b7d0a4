package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

// In-memory fakes for the repo interfaces. The coupon fake honors the
// conditional-update contract of ConsumeUse so redemption races behave the
// way the SQL does.

type fakeCouponRepo struct {
	mu      sync.Mutex
	nextID  int
	coupons map[int]*models.Coupon
}

func newFakeCouponRepo(coupons ...*models.Coupon) *fakeCouponRepo {
	r := &fakeCouponRepo{coupons: make(map[int]*models.Coupon), nextID: 1}
	for _, c := range coupons {
		cp := *c
		if cp.ID == 0 {
			cp.ID = r.nextID
		}
		r.nextID = cp.ID + 1
		r.coupons[cp.ID] = &cp
	}
	return r
}

func (r *fakeCouponRepo) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.Name == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCouponRepo) GetByID(_ context.Context, id int) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCouponRepo) List(_ context.Context) ([]models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCouponRepo) Create(_ context.Context, c *models.Coupon) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.ID = r.nextID
	r.nextID++
	r.coupons[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeCouponRepo) Update(_ context.Context, c *models.Coupon) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.coupons[c.ID]
	if !ok {
		return false, nil
	}
	cp := *c
	cp.TimesUsed = existing.TimesUsed
	r.coupons[c.ID] = &cp
	return true, nil
}

func (r *fakeCouponRepo) Delete(_ context.Context, id int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[id]
	if !ok {
		return "", nil
	}
	delete(r.coupons, id)
	return c.Name, nil
}

func (r *fakeCouponRepo) ConsumeUse(_ context.Context, _ *sql.Tx, couponID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[couponID]
	if !ok || c.TimesUsed >= c.UsageLimit {
		return false, nil
	}
	c.TimesUsed++
	return true, nil
}

type fakeRedemptionRepo struct {
	mu      sync.Mutex
	records []models.Redemption
}

func (r *fakeRedemptionRepo) Record(_ context.Context, _ *sql.Tx, red *models.Redemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *red)
	return nil
}

func (r *fakeRedemptionRepo) ListByCoupon(_ context.Context, couponID int) ([]models.Redemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Redemption
	for _, red := range r.records {
		if red.CouponID == couponID {
			out = append(out, red)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[string]*models.Order)}
	for _, o := range orders {
		cp := *o
		r.orders[cp.ID] = &cp
	}
	return r
}

func (r *fakeOrderRepo) Insert(_ context.Context, _ *sql.Tx, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[cp.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) List(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id string, from, to models.OrderStatus, approved bool, cancelReason, returnReason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.IsApprovedByAdmin = approved
	if cancelReason != "" {
		o.CancelReason = cancelReason
	}
	if returnReason != "" {
		o.ReturnReason = returnReason
	}
	return true, nil
}

func (r *fakeOrderRepo) SetLogistics(_ context.Context, id, awbNumber, trackingLink string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	o.AWBNumber = awbNumber
	o.TrackingLink = trackingLink
	return true, nil
}

func (r *fakeOrderRepo) MarkInvoiced(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.IsInvoiced {
		return false, nil
	}
	o.IsInvoiced = true
	return true, nil
}

func (r *fakeOrderRepo) SetPaymentStatus(_ context.Context, id, paymentStatus string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	o.Payment.Status = paymentStatus
	return true, nil
}

// conflictOrderRepo simulates losing every optimistic update.
type conflictOrderRepo struct {
	*fakeOrderRepo
}

func (r *conflictOrderRepo) UpdateStatus(context.Context, string, models.OrderStatus, models.OrderStatus, bool, string, string) (bool, error) {
	return false, nil
}

// fakeTxRunner runs the function without a real transaction; the fakes
// apply their writes immediately.
type fakeTxRunner struct{}

func (fakeTxRunner) RunTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}
