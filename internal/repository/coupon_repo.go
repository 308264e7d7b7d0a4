package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

const couponColumns = `
	id, name, discount_type, discount_value, max_discount, min_purchase,
	usage_limit, times_used, gift_product_id, expiry, created_at, updated_at
`

func scanCoupon(row interface{ Scan(...any) error }) (*models.Coupon, error) {
	var c models.Coupon
	var gift sql.NullString
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MaxDiscount,
		&c.MinPurchase,
		&c.UsageLimit,
		&c.TimesUsed,
		&gift,
		&c.Expiry,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.GiftProductID = gift.String
	return &c, nil
}

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `SELECT` + couponColumns + `FROM coupons WHERE name = $1`

	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *CouponRepo) GetByID(ctx context.Context, id int) (*models.Coupon, error) {
	query := `SELECT` + couponColumns + `FROM coupons WHERE id = $1`

	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *CouponRepo) List(ctx context.Context) ([]models.Coupon, error) {
	query := `SELECT` + couponColumns + `FROM coupons ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (r *CouponRepo) Create(ctx context.Context, c *models.Coupon) (int, error) {
	query := `
		INSERT INTO coupons
		(name, discount_type, discount_value, max_discount, min_purchase,
		 usage_limit, times_used, gift_product_id, expiry, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,0,NULLIF($7,''),$8,NOW(),NOW())
		RETURNING id
	`

	var id int
	err := r.db.QueryRowContext(ctx, query,
		c.Name,
		c.DiscountType,
		c.DiscountValue,
		c.MaxDiscount,
		c.MinPurchase,
		c.UsageLimit,
		c.GiftProductID,
		c.Expiry,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *CouponRepo) Update(ctx context.Context, c *models.Coupon) (bool, error) {
	query := `
		UPDATE coupons
		SET name = $2,
		    discount_type = $3,
		    discount_value = $4,
		    max_discount = $5,
		    min_purchase = $6,
		    usage_limit = $7,
		    gift_product_id = NULLIF($8, ''),
		    expiry = $9,
		    updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.DiscountType,
		c.DiscountValue,
		c.MaxDiscount,
		c.MinPurchase,
		c.UsageLimit,
		c.GiftProductID,
		c.Expiry,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CouponRepo) Delete(ctx context.Context, id int) (string, error) {
	query := `DELETE FROM coupons WHERE id = $1 RETURNING name`

	var name string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return name, nil
}

// ConsumeUse spends one coupon use with a conditional update. The WHERE
// clause is the whole concurrency story: once times_used reaches
// usage_limit no concurrent transaction can match the row, so the last use
// goes to exactly one checkout regardless of how many instances race.
func (r *CouponRepo) ConsumeUse(ctx context.Context, tx *sql.Tx, couponID int) (bool, error) {
	query := `
		UPDATE coupons
		SET times_used = times_used + 1,
		    updated_at = NOW()
		WHERE id = $1 AND times_used < usage_limit
	`

	res, err := tx.ExecContext(ctx, query, couponID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
