package serverutils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-shopping-assistant-be/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string  `validate:"required"`
	Price float64 `validate:"gte=0"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Name: "Lamp", Price: 1}))

	err := ValidateRequest(sampleRequest{Price: -1})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "is required", vErr.Fields["name"])
	assert.Equal(t, "must be greater than or equal to 0", vErr.Fields["price"])
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/validation", func(c *fiber.Ctx) error { return ValidateRequest(sampleRequest{}) })
	app.Get("/missing", func(c *fiber.Ctx) error { return contract.ErrRecordNotFound })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("pq: secret detail") })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/validation", 400, "Validation failed"},
		{"/missing", 404, "record not found"},
		{"/teapot", 418, "short and stout"},
		{"/boom", 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestParseUserID(t *testing.T) {
	good := signed(t, "s3cret", jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	id, err := ParseUserID(good, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	_, err = ParseUserID(good, "wrong")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := signed(t, "s3cret", jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(-time.Hour).Unix()})
	_, err = ParseUserID(expired, "s3cret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	noUser := signed(t, "s3cret", jwt.MapClaims{"sub": "u1"})
	_, err = ParseUserID(noUser, "s3cret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/strict", NewJwtMiddleware("s3cret", false), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	app.Get("/optional", NewJwtMiddleware("s3cret", true), func(c *fiber.Ctx) error {
		if id, ok := c.Locals("user_id").(string); ok {
			return c.SendString(id)
		}
		return c.SendString("anonymous")
	})

	req := httptest.NewRequest(http.MethodGet, "/strict", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/strict", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "s3cret", jwt.MapClaims{"user_id": "u7"}))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/optional", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
}
