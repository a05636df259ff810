package service

import "errors"

var (
	// ErrCouponNotFound is returned when a coupon cannot be found
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrCodeCollision is returned when a generated code is already taken.
	// Issuance retries with a fresh code; the error only escapes once every attempt collided.
	ErrCodeCollision = errors.New("coupon code collision")
)
