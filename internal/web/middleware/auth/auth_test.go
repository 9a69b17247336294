package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter(t *testing.T) {
	testCases := []struct {
		name     string
		max      int
		requests int
		lastCode int
	}{
		{name: "disabled", max: 0, requests: 5, lastCode: http.StatusOK},
		{name: "within limit", max: 3, requests: 3, lastCode: http.StatusOK},
		{name: "over limit", max: 2, requests: 3, lastCode: http.StatusTooManyRequests},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/login", Limiter(tc.max, nil), func(c *fiber.Ctx) error {
				return c.SendStatus(http.StatusOK)
			})

			var code int

			for i := 0; i < tc.requests; i++ {
				resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
				require.NoError(t, err)

				code = resp.StatusCode
				_ = resp.Body.Close()
			}

			assert.Equal(t, tc.lastCode, code)
		})
	}
}
