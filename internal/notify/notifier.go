// Package notify renders and sends the "here is your coupon" email.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/fairyhunter13/promo-coupon-service/internal/model"
)

// ErrNotConfigured is returned when no sender address or email provider is set up.
var ErrNotConfigured = errors.New("email notifications not configured")

// expiryLayout formats the expiry date shown to recipients.
const expiryLayout = "2006-01-02"

// Message is a single outbound email.
type Message struct {
	From     string
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers a rendered message through an email provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds the notification settings.
type Config struct {
	Sender             string // From address
	DiscountPercentage int
}

// Notifier announces newly issued coupons to their recipients.
type Notifier struct {
	cfg    Config
	sender Sender
}

// NewNotifier creates a Notifier. A nil sender is allowed; every send then
// fails with ErrNotConfigured.
func NewNotifier(cfg Config, sender Sender) *Notifier {
	return &Notifier{cfg: cfg, sender: sender}
}

// CouponIssued emails the coupon code and expiry date to the coupon's address.
func (n *Notifier) CouponIssued(ctx context.Context, coupon *model.Coupon) error {
	if n.sender == nil || n.cfg.Sender == "" {
		return ErrNotConfigured
	}

	msg, err := n.Render(coupon)
	if err != nil {
		return err
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send coupon email to %s: %w", coupon.Email, err)
	}
	return nil
}

var htmlBody = template.Must(template.New("coupon").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <p>Thank you for signing up for exclusive promotions and discounts!</p>
    <p>Here is your coupon code for <strong>{{.Website}}</strong>:</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
    <p>This code gives you {{.Discount}}% off your next purchase and expires on {{.Expires}}.</p>
</body>
</html>
`))

// Render builds the message for coupon without sending it.
func (n *Notifier) Render(coupon *model.Coupon) (Message, error) {
	expires := coupon.ExpiresAt.UTC().Format(expiryLayout)

	var html bytes.Buffer
	err := htmlBody.Execute(&html, struct {
		Website  string
		Code     string
		Discount int
		Expires  string
	}{coupon.Website, coupon.Code, n.cfg.DiscountPercentage, expires})
	if err != nil {
		return Message{}, fmt.Errorf("render coupon email: %w", err)
	}

	return Message{
		From:    n.cfg.Sender,
		To:      coupon.Email,
		Subject: fmt.Sprintf("Your %d%% Off Coupon for %s", n.cfg.DiscountPercentage, coupon.Website),
		TextBody: fmt.Sprintf(
			"Thank you for signing up for exclusive promotions and discounts!\n\n"+
				"Here is your coupon code for %s: %s\n"+
				"This code gives you %d%% off your next purchase and expires on %s.",
			coupon.Website, coupon.Code, n.cfg.DiscountPercentage, expires),
		HTMLBody: html.String(),
	}, nil
}
