// Package currency exposes the currency converter over HTTP.
package currency

import (
	"strings"

	"github.com/amirasaad/bank/pkg/provider"
	currencysvc "github.com/amirasaad/bank/pkg/service/currency"
	"github.com/amirasaad/bank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Routes registers the public converter endpoint.
func Routes(app *fiber.App, currencySvc *currencysvc.Service) {
	app.Get("/convert-currencies/:symbols", ConvertCurrencies(currencySvc))
}

// ConvertCurrencies returns a Fiber handler converting amount for a pair symbol.
// @Summary Convert currencies
// @Description Converts amount using the latest upstream quote for a pair such as USD_EUR. The result is rounded half to even at two places.
// @Tags currencies
// @Produce json
// @Param symbols path string true "Pair symbol" example(USD_EUR)
// @Param amount query number true "Amount in the first currency"
// @Success 200 {object} currencysvc.Conversion
// @Failure 404 {object} common.ProblemDetails "Currency pair not found"
// @Failure 422 {object} common.ProblemDetails "Invalid amount or pair syntax"
// @Failure 502 {object} common.ProblemDetails "External service error"
// @Failure 504 {object} common.ProblemDetails "External service timeout"
// @Router /convert-currencies/{symbols} [get]
func ConvertCurrencies(currencySvc *currencysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		amount, err := decimal.NewFromString(strings.TrimSpace(c.Query("amount")))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", provider.ErrInvalidAmount)
		}
		conv, err := currencySvc.ConvertSymbols(c.UserContext(), c.Params("symbols"), amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Conversion failed", err)
		}
		return c.Status(fiber.StatusOK).JSON(conv)
	}
}
