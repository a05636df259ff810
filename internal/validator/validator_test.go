package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/promo-coupon-service/internal/model"
)

func TestNew(t *testing.T) {
	v := New()
	require.NotNil(t, v, "New() should return a non-nil validator")
}

// TestNotblankValidator tests the custom notblank validation
func TestNotblankValidator(t *testing.T) {
	v := New()

	type TestStruct struct {
		Website string `validate:"notblank"`
	}

	testCases := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"valid_string", "shop.example", false},
		{"valid_with_spaces", "  shop.example  ", false},
		{"whitespace_only_spaces", "   ", true},
		{"whitespace_only_tabs", "\t\t", true},
		{"whitespace_mixed", " \t\n ", true},
		{"empty_string", "", true},
		{"unicode_content", "магазин.рф", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(TestStruct{Website: tc.input})
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotblankOnNonStringField(t *testing.T) {
	v := New()

	type TestStructInt struct {
		Value int `validate:"notblank"`
	}

	err := v.Struct(TestStructInt{Value: 0})
	assert.NoError(t, err, "notblank should pass for non-string types")
}

func TestIssueCouponRequest_Validation(t *testing.T) {
	v := New()

	testCases := []struct {
		name       string
		req        model.IssueCouponRequest
		wantFields map[string]string
	}{
		{
			name: "valid",
			req:  model.IssueCouponRequest{Email: "a@example.com", Website: "shop.example"},
		},
		{
			name:       "missing_email",
			req:        model.IssueCouponRequest{Website: "shop.example"},
			wantFields: map[string]string{"email": "this field is required"},
		},
		{
			name:       "missing_website",
			req:        model.IssueCouponRequest{Email: "a@example.com"},
			wantFields: map[string]string{"website": "this field is required"},
		},
		{
			name: "both_missing",
			req:  model.IssueCouponRequest{},
			wantFields: map[string]string{
				"email":   "this field is required",
				"website": "this field is required",
			},
		},
		{
			name:       "blank_website",
			req:        model.IssueCouponRequest{Email: "a@example.com", Website: "   "},
			wantFields: map[string]string{"website": "this field is required"},
		},
		{
			name:       "malformed_email",
			req:        model.IssueCouponRequest{Email: "not-an-email", Website: "shop.example"},
			wantFields: map[string]string{"email": "enter a valid email address"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.req)
			if tc.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.wantFields, FieldErrors(err))
		})
	}
}

func TestFieldErrors_MaxLength(t *testing.T) {
	v := New()

	type TestStruct struct {
		Code string `json:"code" validate:"max=8"`
	}

	err := v.Struct(TestStruct{Code: "ABCDEF012"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"code": "ensure this field has no more than 8 characters"}, FieldErrors(err))
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, FieldErrors(errors.New("boom")))
	assert.Nil(t, FieldErrors(nil))
}
