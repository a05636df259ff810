package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/promo-coupon-service/internal/model"
	"github.com/fairyhunter13/promo-coupon-service/internal/service"
	"github.com/fairyhunter13/promo-coupon-service/pkg/database"
)

const couponColumns = `id, email, website, code, created_at, expires_at, redeemed`

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool database.TxQuerier
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom querier.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool database.TxQuerier) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	if err := row.Scan(
		&c.ID,
		&c.Email,
		&c.Website,
		&c.Code,
		&c.CreatedAt,
		&c.ExpiresAt,
		&c.Redeemed,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindActive returns the newest unredeemed coupon for (email, website) that expires after now.
// Returns nil, nil when there is none.
func (r *CouponRepository) FindActive(ctx context.Context, q database.TxQuerier, email, website string, now time.Time) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons
		WHERE email = $1 AND website = $2 AND redeemed = FALSE AND expires_at > $3
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	coupon, err := scanCoupon(q.QueryRow(ctx, query, email, website, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active coupon for %s on %s: %w", email, website, err)
	}
	return coupon, nil
}

// Insert stores a new coupon and sets its ID.
// Returns service.ErrCodeCollision if the code is already taken.
func (r *CouponRepository) Insert(ctx context.Context, q database.TxQuerier, coupon *model.Coupon) error {
	query := `INSERT INTO coupons (email, website, code, created_at, expires_at, redeemed)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO NOTHING
		RETURNING id`

	err := q.QueryRow(ctx, query,
		coupon.Email, coupon.Website, coupon.Code, coupon.CreatedAt, coupon.ExpiresAt, coupon.Redeemed,
	).Scan(&coupon.ID)
	if err != nil {
		// DO NOTHING returns no row on a code conflict
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrCodeCollision
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrCodeCollision
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// LockPair takes a transaction-scoped advisory lock on (email, website).
// Must be called within a transaction; the lock is released on commit or rollback.
func (r *CouponRepository) LockPair(ctx context.Context, tx database.TxQuerier, email, website string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`, email, website)
	if err != nil {
		return fmt.Errorf("advisory lock for %s on %s: %w", email, website, err)
	}
	return nil
}

// GetByCode retrieves a coupon by its code.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon by code %s: %w", code, err)
	}
	return coupon, nil
}

// List returns coupons matching the non-empty filters of query, newest first.
// On success, returns an empty slice (not nil) when nothing matches.
func (r *CouponRepository) List(ctx context.Context, query model.ListCouponsQuery) ([]*model.Coupon, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if query.Email != "" {
		add("email = $%d", query.Email)
	}
	if query.Website != "" {
		add("website = $%d", query.Website)
	}
	if query.Code != "" {
		add("code = $%d", query.Code)
	}
	if query.Redeemed != nil {
		add("redeemed = $%d", *query.Redeemed)
	}

	sql := `SELECT ` + couponColumns + ` FROM coupons`
	if len(conds) > 0 {
		sql += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, query.Limit)
	sql += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []*model.Coupon{}
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}

	return coupons, nil
}
