// Package webapi provides the HTTP surface of the bank.
// It is organized into sub-packages for different domains:
// - account: Account creation, balance changes and lookups
// - transfer: Transfers and transfer history
// - currency: The currency converter endpoint
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/bank/pkg/app"
	accountweb "github.com/amirasaad/bank/webapi/account"
	"github.com/amirasaad/bank/webapi/common"
	currencyweb "github.com/amirasaad/bank/webapi/currency"
	transferweb "github.com/amirasaad/bank/webapi/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	cfg := app.Config
	log := app.Deps.Logger.With("component", "webapi")

	fiberApp := fiber.New(fiber.Config{
		AppName: "bank",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return common.ProblemDetailsJSON(c, fe.Message, err)
			}
			log.Error("Unhandled error", "path", c.Path(), "error", err)
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		PersistAuthorization: true,
	}))

	// Uses X-Forwarded-For header when behind a proxy.
	// Falls back to X-Real-IP or direct IP if needed.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:          cfg.RateLimit.MaxRequests,
		Expiration:   cfg.RateLimit.Window,
		KeyGenerator: clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Bank API is running!")
	})

	accountweb.Routes(fiberApp, app.AccountService, app.AuthService, cfg, app.Deps.Logger)
	transferweb.Routes(fiberApp, app.TransferService, app.AuthService, app.Deps.Responses, cfg, app.Deps.Logger)
	if app.CurrencyService != nil {
		currencyweb.Routes(fiberApp, app.CurrencyService)
	}
	return fiberApp
}

func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		// Take the first IP in the chain
		if first, _, found := strings.Cut(forwardedFor, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
