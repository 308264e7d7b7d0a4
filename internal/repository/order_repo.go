package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Insert writes the order row and its line items inside the caller's
// transaction. Line items are immutable after this; later writes touch
// only status, logistics and bookkeeping flags.
func (r *OrderRepo) Insert(ctx context.Context, tx *sql.Tx, o *models.Order) error {
	insertOrder := `
		INSERT INTO orders
		(id, order_number, buyer_name, buyer_phone, buyer_address,
		 subtotal, shipping_fee, discount, total_paid, coupon_code,
		 status, is_approved_by_admin, cancel_reason, return_reason,
		 awb_number, tracking_link, is_invoiced,
		 payment_method, payment_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''),
		        $11,$12,'','','','',FALSE,$13,$14,$15,$15)
	`
	_, err := tx.ExecContext(ctx, insertOrder,
		o.ID,
		o.OrderNumber,
		o.Buyer.Name,
		o.Buyer.Phone,
		o.Buyer.Address,
		o.Subtotal,
		o.ShippingFee,
		o.Discount,
		o.TotalPaid,
		o.CouponCode,
		o.Status,
		o.IsApprovedByAdmin,
		o.Payment.Method,
		o.Payment.Status,
		o.CreatedAt,
	)
	if err != nil {
		return err
	}

	insertItem := `
		INSERT INTO order_items
		(order_id, product_id, name, quantity, unit_price, gst_rate_percent, position)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	for i, it := range o.Products {
		if _, err := tx.ExecContext(ctx, insertItem,
			o.ID, it.ProductID, it.Name, it.Quantity, it.UnitPrice, it.GSTRatePercent, i,
		); err != nil {
			return err
		}
	}
	return nil
}

const orderColumns = `
	id, order_number, buyer_name, buyer_phone, buyer_address,
	subtotal, shipping_fee, discount, total_paid, coupon_code,
	status, is_approved_by_admin, cancel_reason, return_reason,
	awb_number, tracking_link, is_invoiced,
	payment_method, payment_status, created_at, updated_at
`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	var coupon sql.NullString
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.Buyer.Name,
		&o.Buyer.Phone,
		&o.Buyer.Address,
		&o.Subtotal,
		&o.ShippingFee,
		&o.Discount,
		&o.TotalPaid,
		&coupon,
		&o.Status,
		&o.IsApprovedByAdmin,
		&o.CancelReason,
		&o.ReturnReason,
		&o.AWBNumber,
		&o.TrackingLink,
		&o.IsInvoiced,
		&o.Payment.Method,
		&o.Payment.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.CouponCode = coupon.String
	return &o, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT` + orderColumns + `FROM orders WHERE id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.getItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Products = items
	return o, nil
}

func (r *OrderRepo) getItems(ctx context.Context, orderID string) ([]models.CartItem, error) {
	query := `
		SELECT product_id, name, quantity, unit_price, gst_rate_percent
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.UnitPrice, &it.GSTRatePercent); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List returns orders newest first, optionally filtered by status. Line
// items are not loaded for listings.
func (r *OrderRepo) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	query := `SELECT` + orderColumns + `FROM orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// UpdateStatus moves an order to a new status only while its current status
// still matches what the caller decided against. Empty reasons leave the
// stored reasons untouched, so approval keeps the customer's text.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, approved bool, cancelReason, returnReason string) (bool, error) {
	query := `
		UPDATE orders
		SET status = $3,
		    is_approved_by_admin = $4,
		    cancel_reason = CASE WHEN $5 <> '' THEN $5 ELSE cancel_reason END,
		    return_reason = CASE WHEN $6 <> '' THEN $6 ELSE return_reason END,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	res, err := r.db.ExecContext(ctx, query, id, from, to, approved, cancelReason, returnReason)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *OrderRepo) SetLogistics(ctx context.Context, id, awbNumber, trackingLink string) (bool, error) {
	query := `
		UPDATE orders
		SET awb_number = $2, tracking_link = $3, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, awbNumber, trackingLink)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkInvoiced flips the flag only if it is still unset, so concurrent
// invoice generations collapse to one.
func (r *OrderRepo) MarkInvoiced(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE orders
		SET is_invoiced = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_invoiced = FALSE
	`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *OrderRepo) SetPaymentStatus(ctx context.Context, id, paymentStatus string) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = $2, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, paymentStatus)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
