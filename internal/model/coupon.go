package model

import "time"

// Coupon is a discount code issued to an email address for a website.
type Coupon struct {
	ID        int64     `json:"-"`
	Email     string    `json:"email"`
	Website   string    `json:"website"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Redeemed  bool      `json:"redeemed"`
}

// IsExpired reports whether the coupon's expiry is before now.
func (c *Coupon) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// IsActive reports whether the coupon can still be handed out by issuance.
func (c *Coupon) IsActive(now time.Time) bool {
	return !c.Redeemed && c.ExpiresAt.After(now)
}

// IssueCouponRequest is the DTO for POST /api/coupons.
// Accepted as JSON or form-encoded.
type IssueCouponRequest struct {
	Email   string `json:"email" form:"email" validate:"required,notblank,email,max=254"`
	Website string `json:"website" form:"website" validate:"required,notblank,max=255"`
}

// IssueCouponResponse is the body returned by POST /api/coupons.
type IssueCouponResponse struct {
	Email     string    `json:"email"`
	Website   string    `json:"website"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CouponDetailResponse is the API response DTO for coupon lookups and listings.
type CouponDetailResponse struct {
	Email     string    `json:"email"`
	Website   string    `json:"website"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Redeemed  bool      `json:"redeemed"`
	Expired   bool      `json:"expired"`
}

// NewCouponDetailResponse builds the detail view of c as seen at now.
func NewCouponDetailResponse(c *Coupon, now time.Time) CouponDetailResponse {
	return CouponDetailResponse{
		Email:     c.Email,
		Website:   c.Website,
		Code:      c.Code,
		CreatedAt: c.CreatedAt,
		ExpiresAt: c.ExpiresAt,
		Redeemed:  c.Redeemed,
		Expired:   c.IsExpired(now),
	}
}

// ListCouponsQuery holds the optional filters for GET /api/coupons.
// Empty string fields and a nil Redeemed are not applied.
type ListCouponsQuery struct {
	Email    string `json:"email" query:"email" validate:"omitempty,max=254"`
	Website  string `json:"website" query:"website" validate:"omitempty,max=255"`
	Code     string `json:"code" query:"code" validate:"omitempty,max=32"`
	Redeemed *bool  `json:"redeemed" query:"redeemed"`
	Limit    int    `json:"limit" query:"limit" validate:"omitempty,gte=1,lte=100"`
}
