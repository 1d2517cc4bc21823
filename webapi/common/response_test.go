package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/domain/user"
	"github.com/amirasaad/bank/pkg/money"
	"github.com/amirasaad/bank/pkg/provider"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorToStatusCode(t *testing.T) {
	insufficient := account.NewInsufficientFundsForTransfer(
		money.New(decimal.NewFromInt(1), "USD"),
		money.New(decimal.NewFromInt(2), "USD"),
	)
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"user not found", domain.Wrapf(user.ErrUserNotFound, "User ID: x not found"), fiber.StatusNotFound},
		{"email not found", account.ErrEmailNotFound, fiber.StatusNotFound},
		{"already exists", account.ErrAccountAlreadyExists, fiber.StatusConflict},
		{"unconfirmed", user.ErrUserUnconfirmed, fiber.StatusForbidden},
		{"invalid currency", account.ErrInvalidCurrencyCode, fiber.StatusUnprocessableEntity},
		{"insufficient funds", insufficient, fiber.StatusBadRequest},
		{"transfer not allowed", account.ErrTransferNotAllowed, fiber.StatusForbidden},
		{"amount not positive", account.ErrAmountMustBePositive, fiber.StatusBadRequest},
		{"unauthorized", user.ErrUserUnauthorized, fiber.StatusUnauthorized},
		{"unsupported currency", provider.ErrUnsupportedCurrency, fiber.StatusUnprocessableEntity},
		{"invalid syntax", provider.ErrInvalidSyntax, fiber.StatusUnprocessableEntity},
		{"invalid amount", provider.ErrInvalidAmount, fiber.StatusUnprocessableEntity},
		{"pair not found", provider.ErrCurrencyNotFound, fiber.StatusNotFound},
		{"timeout", provider.ErrTimeout, fiber.StatusGatewayTimeout},
		{"external", domain.Wrapf(provider.ErrExternalService, "Status code: 500"), fiber.StatusBadGateway},
		{"fiber error", fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed},
		{"unknown", errors.New("connection reset"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorToStatusCode(tc.err))
		})
	}
}

func TestErrorToStatusCode_CurrencyCodesDistinct(t *testing.T) {
	gateway := domain.Wrapf(provider.ErrUnsupportedCurrency, "invalid currency code ABC")
	assert.False(t, errors.Is(gateway, account.ErrInvalidCurrencyCode))
	assert.False(t, errors.Is(account.ErrInvalidCurrencyCode, provider.ErrUnsupportedCurrency))
	assert.Equal(t, "unsupported_currency", domain.CodeOf(gateway))
	assert.Equal(t, fiber.StatusUnprocessableEntity, ErrorToStatusCode(gateway))
}

func TestProblemDetailsJSON(t *testing.T) {
	app := fiber.New()
	app.Get("/domain", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Failed to create account", account.ErrAccountAlreadyExists)
	})
	app.Get("/override", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Bad input", nil, "amount is required", fiber.StatusBadRequest,
			[]FieldError{{Field: "amount", Rule: "required"}})
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Failed", errors.New("pq: password authentication failed"))
	})

	t.Run("domain error", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/domain?x=1", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, ContentTypeProblem, resp.Header.Get(fiber.HeaderContentType))

		var pd ProblemDetails
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
		assert.Equal(t, "about:blank", pd.Type)
		assert.Equal(t, "Failed to create account", pd.Title)
		assert.Equal(t, "User already has a bank account", pd.Detail)
		assert.Equal(t, "account_already_exists", pd.Code)
		assert.Equal(t, "/domain?x=1", pd.Instance)
		assert.False(t, pd.Timestamp.IsZero())
	})

	t.Run("overrides", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/override", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var pd ProblemDetails
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
		assert.Equal(t, "amount is required", pd.Detail)
		assert.NotNil(t, pd.Errors)
	})

	t.Run("internal detail hidden", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/internal", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

		var pd ProblemDetails
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
		assert.Equal(t, "Internal server error", pd.Detail)
	})
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func TestBindAndValidate(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		input, err := BindAndValidate[emailRequest](c)
		if input == nil {
			return err
		}
		return c.SendString(input.Email)
	})

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := post(`{"email":"jane@example.com"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = post(`{"email":`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = post(`{"email":"not-an-email"}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var pd struct {
		Title  string       `json:"title"`
		Errors []FieldError `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
	assert.Equal(t, "Validation failed", pd.Title)
	require.Len(t, pd.Errors, 1)
	assert.Equal(t, FieldError{Field: "email", Rule: "email"}, pd.Errors[0])
}
