package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/coupons/:code", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/api/coupons/:code", "404")
	before := testutil.ToFloat64(counter)

	for _, code := range []string{"AAAAAAAA", "BBBBBBBB"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/coupons/"+code, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter), "both codes share one series")
	assert.Equal(t, float64(0), testutil.ToFloat64(HTTPRequestsInFlight))
}

func TestMiddleware_ErrorStatus(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Post("/api/coupons", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "down")
	})

	counter := HTTPRequestsTotal.WithLabelValues("POST", "/api/coupons", "503")
	before := testutil.ToFloat64(counter)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/coupons", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
