// Package transfer exposes transfers and transfer history over HTTP.
package transfer

import (
	"log/slog"

	"github.com/amirasaad/bank/pkg/cache"
	"github.com/amirasaad/bank/pkg/config"
	authsvc "github.com/amirasaad/bank/pkg/service/auth"
	transfersvc "github.com/amirasaad/bank/pkg/service/transfer"
	"github.com/amirasaad/bank/webapi/common"
	"github.com/amirasaad/bank/webapi/middleware"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the transfer routes. POST /transfer honours the
// Idempotency-Key header when responses is not nil.
func Routes(
	app *fiber.App,
	transferSvc *transfersvc.Service,
	authSvc *authsvc.Service,
	responses cache.ResponseStore,
	cfg *config.App,
	logger *slog.Logger,
) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	logger = logger.With("handler", "transfer")
	handlers := []fiber.Handler{protected}
	if responses != nil {
		handlers = append(handlers,
			common.Idempotency(responses, cfg.Idempotency.TTL, common.CallerScope(authSvc), logger))
	}
	handlers = append(handlers, Transfer(transferSvc, authSvc, logger))
	app.Post("/transfer", handlers...)
	app.Get("/transfers", protected, History(transferSvc, authSvc))
}

// Transfer returns a Fiber handler moving value from the caller's account to
// the account registered under the receiver email.
// @Summary Transfer funds
// @Description Debits the caller and credits the receiver in one transaction, converting when the currencies differ. Send an Idempotency-Key header to make retries safe.
// @Tags transfers
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client request key"
// @Param request body TransferRequest true "Transfer details"
// @Success 200 {object} common.Response "Transfer successful"
// @Failure 400 {object} common.ProblemDetails "Insufficient funds"
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails "Transfer not allowed"
// @Failure 404 {object} common.ProblemDetails "Account or receiver email not found"
// @Failure 409 {object} common.ProblemDetails "Request with the same key in progress"
// @Failure 502 {object} common.ProblemDetails "Conversion service error"
// @Failure 504 {object} common.ProblemDetails "Conversion service timeout"
// @Router /transfer [post]
// @Security Bearer
func Transfer(transferSvc *transfersvc.Service, authSvc *authsvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err // error response already written
		}
		res, err := transferSvc.Transfer(c.UserContext(), userID, input.ReceiverAccountEmail, input.Value)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to transfer", err)
		}
		logger.Info("Transfer successful", "user_id", userID, "receiver_email", res.ReceiverEmail)
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer successful", res)
	}
}

// History returns a Fiber handler listing the caller's transfers, newest first.
// @Summary Transfer history
// @Tags transfers
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /transfers [get]
// @Security Bearer
func History(transferSvc *transfersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		limit, offset, err := common.Pagination(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid pagination", err)
		}
		records, err := transferSvc.History(c.UserContext(), userID, limit, offset)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch transfers", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfers fetched", ToRecordResponses(records))
	}
}
