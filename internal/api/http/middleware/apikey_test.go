package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermai-app/dermai-server/internal/testutil"
)

func apiKeyApp(key string) *fiber.App {
	app := fiber.New()
	m := NewAPIKey(key, testutil.MakeNoopLogger())
	app.Get("/protected", m.Handle, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAPIKey_Handle(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{
			name:       "valid key",
			header:     "Bearer dermai-api-2024",
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "wrong key",
			header:     "Bearer nope",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "missing header",
			header:     "",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "missing bearer prefix",
			header:     "dermai-api-2024",
			wantStatus: fiber.StatusOK,
		},
	}

	app := apiKeyApp("dermai-api-2024")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
