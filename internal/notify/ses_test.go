package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/promo-coupon-service/internal/config"
)

// mockSES is a mock implementation of sesAPI.
type mockSES struct {
	sendEmailFn func(ctx context.Context, params *sesv2.SendEmailInput) (*sesv2.SendEmailOutput, error)
	input       *sesv2.SendEmailInput
}

func (m *mockSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.input = params
	if m.sendEmailFn != nil {
		return m.sendEmailFn(ctx, params)
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("0100018f-test")}, nil
}

func TestSESSender_Send(t *testing.T) {
	client := &mockSES{}
	s := NewSESSenderWithClient(client)

	err := s.Send(context.Background(), Message{
		From:     "promo@shop.example",
		To:       "a@example.com",
		Subject:  "Your 10% Off Coupon for shop.example",
		TextBody: "plain",
		HTMLBody: "<p>html</p>",
	})

	require.NoError(t, err)
	require.NotNil(t, client.input)
	in := client.input
	assert.Equal(t, "promo@shop.example", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"a@example.com"}, in.Destination.ToAddresses)

	simple := in.Content.Simple
	require.NotNil(t, simple)
	assert.Equal(t, "Your 10% Off Coupon for shop.example", aws.ToString(simple.Subject.Data))
	assert.Equal(t, "plain", aws.ToString(simple.Body.Text.Data))
	require.NotNil(t, simple.Body.Html)
	assert.Equal(t, "<p>html</p>", aws.ToString(simple.Body.Html.Data))
	assert.Equal(t, "UTF-8", aws.ToString(simple.Body.Text.Charset))
}

func TestSESSender_Send_TextOnly(t *testing.T) {
	client := &mockSES{}
	s := NewSESSenderWithClient(client)

	err := s.Send(context.Background(), Message{From: "promo@shop.example", To: "a@example.com", TextBody: "plain"})

	require.NoError(t, err)
	assert.Nil(t, client.input.Content.Simple.Body.Html)
}

func TestSESSender_Send_Error(t *testing.T) {
	apiErr := errors.New("operation error SESv2: SendEmail, https response error StatusCode: 400")
	client := &mockSES{
		sendEmailFn: func(ctx context.Context, params *sesv2.SendEmailInput) (*sesv2.SendEmailOutput, error) {
			return nil, apiErr
		},
	}
	s := NewSESSenderWithClient(client)

	err := s.Send(context.Background(), Message{From: "promo@shop.example", To: "a@example.com"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apiErr)
}

func TestNewSESSender_MissingCredentials(t *testing.T) {
	s, err := NewSESSender(context.Background(), config.EmailConfig{From: "promo@shop.example", Region: "us-east-1"})

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, s)
}

func TestNewSESSender_WithCredentials(t *testing.T) {
	s, err := NewSESSender(context.Background(), config.EmailConfig{
		From:            "promo@shop.example",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:4566",
	})

	require.NoError(t, err)
	require.NotNil(t, s)
	assert.NotNil(t, s.client)
}

func TestSESSender_ImplementsSender(t *testing.T) {
	var _ Sender = (*SESSender)(nil)
}
