package repository

import (
	"context"
	"database/sql"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

// RedemptionRepo keeps the audit trail of spent coupon uses. Rows are only
// ever written inside the checkout transaction, next to the conditional
// counter increment they belong to.
type RedemptionRepo struct {
	db *sql.DB
}

func NewRedemptionRepo(db *sql.DB) *RedemptionRepo {
	return &RedemptionRepo{db: db}
}

func (r *RedemptionRepo) Record(ctx context.Context, tx *sql.Tx, red *models.Redemption) error {
	query := `
		INSERT INTO coupon_redemptions
		(coupon_id, coupon_name, order_id, discount, redeemed_at)
		VALUES ($1,$2,$3,$4,$5)
	`

	_, err := tx.ExecContext(ctx, query,
		red.CouponID, red.CouponName, red.OrderID, red.Discount, red.RedeemedAt,
	)
	return err
}

func (r *RedemptionRepo) ListByCoupon(ctx context.Context, couponID int) ([]models.Redemption, error) {
	query := `
		SELECT id, coupon_id, coupon_name, order_id, discount, redeemed_at
		FROM coupon_redemptions
		WHERE coupon_id = $1
		ORDER BY redeemed_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, couponID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var redemptions []models.Redemption
	for rows.Next() {
		var red models.Redemption
		if err := rows.Scan(&red.ID, &red.CouponID, &red.CouponName, &red.OrderID, &red.Discount, &red.RedeemedAt); err != nil {
			return nil, err
		}
		redemptions = append(redemptions, red)
	}
	return redemptions, rows.Err()
}
