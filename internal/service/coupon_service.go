package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/promo-coupon-service/internal/metrics"
	"github.com/fairyhunter13/promo-coupon-service/internal/model"
	"github.com/fairyhunter13/promo-coupon-service/pkg/database"
)

// DefaultListLimit caps listings when the caller does not ask for a size.
const DefaultListLimit = 50

// CouponRepositoryInterface defines the interface for coupon data access.
// Methods taking a database.TxQuerier run on either the pool or an open transaction.
type CouponRepositoryInterface interface {
	FindActive(ctx context.Context, q database.TxQuerier, email, website string, now time.Time) (*model.Coupon, error)
	Insert(ctx context.Context, q database.TxQuerier, coupon *model.Coupon) error
	LockPair(ctx context.Context, tx database.TxQuerier, email, website string) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context, query model.ListCouponsQuery) ([]*model.Coupon, error)
}

// Notifier delivers the "here is your coupon" message for a newly created coupon.
type Notifier interface {
	CouponIssued(ctx context.Context, coupon *model.Coupon) error
}

// Pool is the subset of *pgxpool.Pool the service needs.
type Pool interface {
	database.TxQuerier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Config is the issuance policy handed to the service at construction.
type Config struct {
	ExpiryWindow      time.Duration
	CodeAttempts      int
	SerializeIssuance bool
}

// Option customizes a CouponService.
type Option func(*CouponService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *CouponService) { s.now = now }
}

// WithCodeGenerator replaces GenerateCode.
func WithCodeGenerator(gen CodeGenerator) Option {
	return func(s *CouponService) { s.generate = gen }
}

// CouponService provides business logic for coupon operations.
type CouponService struct {
	pool     Pool
	repo     CouponRepositoryInterface
	notifier Notifier
	cfg      Config
	generate CodeGenerator
	now      func() time.Time
}

// NewCouponService creates a new CouponService backed by a pgx pool.
func NewCouponService(pool *pgxpool.Pool, repo CouponRepositoryInterface, notifier Notifier, cfg Config, opts ...Option) *CouponService {
	return NewCouponServiceWithPool(pool, repo, notifier, cfg, opts...)
}

// NewCouponServiceWithPool creates a CouponService with a custom Pool.
// Primarily used for testing.
func NewCouponServiceWithPool(pool Pool, repo CouponRepositoryInterface, notifier Notifier, cfg Config, opts ...Option) *CouponService {
	if cfg.CodeAttempts < 1 {
		cfg.CodeAttempts = 1
	}
	s := &CouponService{
		pool:     pool,
		repo:     repo,
		notifier: notifier,
		cfg:      cfg,
		generate: GenerateCode,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue returns the active coupon for (email, website), creating one when none exists.
// The bool result is true when a new coupon was created.
//
// Persisting and notifying are separate steps: once the coupon is stored the call
// succeeds, and a notification failure is only logged.
func (s *CouponService) Issue(ctx context.Context, email, website string) (*model.Coupon, bool, error) {
	if email == "" || website == "" {
		return nil, false, ErrInvalidRequest
	}

	coupon, created, err := s.persist(ctx, email, website)
	if err != nil {
		return nil, false, err
	}

	if !created {
		metrics.CouponsReused.Inc()
		return coupon, false, nil
	}

	metrics.CouponsIssued.Inc()
	log.Info().
		Str("email", coupon.Email).
		Str("website", coupon.Website).
		Str("code", coupon.Code).
		Time("expires_at", coupon.ExpiresAt).
		Msg("coupon issued")

	s.notify(ctx, coupon)
	return coupon, true, nil
}

// persist runs lookup-or-create, inside a pair-locked transaction when serialization is on.
func (s *CouponService) persist(ctx context.Context, email, website string) (*model.Coupon, bool, error) {
	if !s.cfg.SerializeIssuance {
		return s.lookupOrCreate(ctx, s.pool, email, website)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after commit

	if err := s.repo.LockPair(ctx, tx, email, website); err != nil {
		return nil, false, fmt.Errorf("lock pair: %w", err)
	}

	coupon, created, err := s.lookupOrCreate(ctx, tx, email, website)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}
	return coupon, created, nil
}

func (s *CouponService) lookupOrCreate(ctx context.Context, q database.TxQuerier, email, website string) (*model.Coupon, bool, error) {
	// Postgres keeps microseconds; truncate so the returned coupon matches the stored row.
	now := s.now().UTC().Truncate(time.Microsecond)

	existing, err := s.repo.FindActive(ctx, q, email, website, now)
	if err != nil {
		return nil, false, fmt.Errorf("find active coupon: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	coupon, err := s.create(ctx, q, email, website, now)
	if err != nil {
		return nil, false, err
	}
	return coupon, true, nil
}

// create inserts a new coupon, drawing a fresh code after each collision.
func (s *CouponService) create(ctx context.Context, q database.TxQuerier, email, website string, now time.Time) (*model.Coupon, error) {
	for attempt := 1; attempt <= s.cfg.CodeAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}

		coupon := &model.Coupon{
			Email:     email,
			Website:   website,
			Code:      code,
			CreatedAt: now,
			ExpiresAt: now.Add(s.cfg.ExpiryWindow),
			Redeemed:  false,
		}

		err = s.repo.Insert(ctx, q, coupon)
		if err == nil {
			return coupon, nil
		}
		if !errors.Is(err, ErrCodeCollision) {
			return nil, fmt.Errorf("insert coupon: %w", err)
		}

		metrics.CodeCollisions.Inc()
		log.Warn().
			Str("code", code).
			Int("attempt", attempt).
			Int("max_attempts", s.cfg.CodeAttempts).
			Msg("coupon code collision, retrying")
	}

	return nil, fmt.Errorf("%w: no free code after %d attempts", ErrCodeCollision, s.cfg.CodeAttempts)
}

// notify is fire-and-forget: errors are logged and counted, never returned.
func (s *CouponService) notify(ctx context.Context, coupon *model.Coupon) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.CouponIssued(ctx, coupon); err != nil {
		metrics.Notifications.WithLabelValues(metrics.OutcomeFailed).Inc()
		log.Error().
			Err(err).
			Str("email", coupon.Email).
			Str("website", coupon.Website).
			Str("code", coupon.Code).
			Msg("failed to send coupon notification")
		return
	}

	metrics.Notifications.WithLabelValues(metrics.OutcomeSent).Inc()
}

// GetByCode retrieves a single coupon by its code.
// Returns ErrCouponNotFound if no coupon has that code.
func (s *CouponService) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	if code == "" {
		return nil, ErrInvalidRequest
	}

	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// List returns coupons matching query, newest first.
func (s *CouponService) List(ctx context.Context, query model.ListCouponsQuery) ([]*model.Coupon, error) {
	if query.Limit <= 0 {
		query.Limit = DefaultListLimit
	}

	coupons, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, nil
}

// Now exposes the service clock so handlers render "expired" consistently with issuance.
func (s *CouponService) Now() time.Time {
	return s.now()
}
