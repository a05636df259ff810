package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/promo-coupon-service/internal/model"
	"github.com/fairyhunter13/promo-coupon-service/internal/service"
	fieldvalidator "github.com/fairyhunter13/promo-coupon-service/internal/validator"
)

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	Issue(ctx context.Context, email, website string) (*model.Coupon, bool, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context, query model.ListCouponsQuery) ([]*model.Coupon, error)
	Now() time.Time
}

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

func validationFailed(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "invalid request",
		"fields": fieldvalidator.FieldErrors(err),
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

// IssueCoupon handles POST /api/coupons requests.
// Returns the caller's active coupon for the website, issuing a new one if needed.
func (h *CouponHandler) IssueCoupon(c *fiber.Ctx) error {
	var req model.IssueCouponRequest

	// JSON or form-encoded, picked by Content-Type
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Website = strings.TrimSpace(req.Website)

	if err := h.validator.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	coupon, created, err := h.service.Issue(c.Context(), req.Email, req.Website)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().
			Err(err).
			Str("email", req.Email).
			Str("website", req.Website).
			Msg("failed to issue coupon")
		return internalError(c)
	}

	log.Debug().
		Str("code", coupon.Code).
		Bool("created", created).
		Msg("coupon request served")

	return c.Status(fiber.StatusCreated).JSON(model.IssueCouponResponse{
		Email:     coupon.Email,
		Website:   coupon.Website,
		Code:      coupon.Code,
		ExpiresAt: coupon.ExpiresAt,
	})
}

// GetCoupon handles GET /api/coupons/:code requests to retrieve coupon details.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	code := strings.ToUpper(strings.TrimSpace(c.Params("code")))
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request: code is required",
		})
	}

	coupon, err := h.service.GetByCode(c.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "coupon not found",
			})
		}
		log.Error().Err(err).Str("code", code).Msg("failed to get coupon")
		return internalError(c)
	}

	return c.JSON(model.NewCouponDetailResponse(coupon, h.service.Now()))
}

// ListCoupons handles GET /api/coupons requests, filtered by query parameters.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	var query model.ListCouponsQuery
	if err := c.QueryParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid query parameters"})
	}
	query.Email = strings.TrimSpace(query.Email)
	query.Website = strings.TrimSpace(query.Website)
	query.Code = strings.ToUpper(strings.TrimSpace(query.Code))

	if err := h.validator.Struct(query); err != nil {
		return validationFailed(c, err)
	}

	coupons, err := h.service.List(c.Context(), query)
	if err != nil {
		log.Error().Err(err).Msg("failed to list coupons")
		return internalError(c)
	}

	now := h.service.Now()
	results := make([]model.CouponDetailResponse, 0, len(coupons))
	for _, coupon := range coupons {
		results = append(results, model.NewCouponDetailResponse(coupon, now))
	}

	return c.JSON(fiber.Map{
		"count":   len(results),
		"results": results,
	})
}
