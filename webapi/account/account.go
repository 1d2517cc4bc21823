// Package account exposes account creation, balance changes and lookups over HTTP.
package account

import (
	"context"
	"log/slog"

	"github.com/amirasaad/bank/pkg/config"
	"github.com/amirasaad/bank/pkg/domain/account"
	accountsvc "github.com/amirasaad/bank/pkg/service/account"
	authsvc "github.com/amirasaad/bank/pkg/service/auth"
	"github.com/amirasaad/bank/webapi/common"
	"github.com/amirasaad/bank/webapi/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Routes registers HTTP routes for account operations. All routes require a
// valid bearer token.
//
// Routes:
//   - POST /account          : Open an account for the caller.
//   - GET  /account          : The caller's account and balance.
//   - POST /account/deposit  : Credit the caller's account.
//   - POST /account/withdraw : Debit the caller's account.
//   - GET  /account/id       : Account id registered under ?email=.
//   - GET  /accounts         : Page through all accounts.
func Routes(
	app *fiber.App,
	accountSvc *accountsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
	logger *slog.Logger,
) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	logger = logger.With("handler", "account")
	app.Post("/account", protected, CreateAccount(accountSvc, authSvc, logger))
	app.Get("/account", protected, GetAccount(accountSvc, authSvc))
	app.Post("/account/deposit", protected, Deposit(accountSvc, authSvc, logger))
	app.Post("/account/withdraw", protected, Withdraw(accountSvc, authSvc, logger))
	app.Get("/account/id", protected, FindAccountIDByEmail(accountSvc))
	app.Get("/accounts", protected, ListAccounts(accountSvc))
}

// CreateAccount returns a Fiber handler for opening the caller's account.
// @Summary Create a new account
// @Description Opens the caller's single bank account in the given ISO 4217 currency.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Account currency"
// @Success 201 {object} common.Response "Account created"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Failure 403 {object} common.ProblemDetails "User not confirmed"
// @Failure 404 {object} common.ProblemDetails "User not found"
// @Failure 409 {object} common.ProblemDetails "User already has a bank account"
// @Failure 422 {object} common.ProblemDetails "Invalid currency code"
// @Failure 429 {object} common.ProblemDetails "Too many requests"
// @Router /account [post]
// @Security Bearer
func CreateAccount(
	accountSvc *accountsvc.Service,
	authSvc *authsvc.Service,
	logger *slog.Logger,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err // error response already written
		}
		a, err := accountSvc.CreateAccount(c.UserContext(), userID, input.CurrencyCode)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		logger.Info("Account created", "account_id", a.ID, "user_id", userID)
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", ToAccountResponse(a))
	}
}

// GetAccount returns a Fiber handler for the caller's account.
// @Summary Get the caller's account
// @Tags accounts
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails "User does not have a bank account"
// @Router /account [get]
// @Security Bearer
func GetAccount(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		a, err := accountSvc.GetByUser(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", ToAccountResponse(a))
	}
}

// Deposit returns a Fiber handler crediting the caller's account.
// @Summary Deposit funds
// @Description Adds value, in the account currency, to the caller's balance.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body BalanceRequest true "Deposit value"
// @Success 200 {object} common.Response "Deposit successful"
// @Failure 400 {object} common.ProblemDetails "Value must be greater than zero"
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /account/deposit [post]
// @Security Bearer
func Deposit(accountSvc *accountsvc.Service, authSvc *authsvc.Service, logger *slog.Logger) fiber.Handler {
	return balanceHandler(authSvc, logger, accountSvc.Deposit, "Failed to deposit", "Deposit successful")
}

// Withdraw returns a Fiber handler debiting the caller's account.
// @Summary Withdraw funds
// @Description Removes value from the caller's balance. The balance never goes below zero.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body BalanceRequest true "Withdrawal value"
// @Success 200 {object} common.Response "Withdrawal successful"
// @Failure 400 {object} common.ProblemDetails "Insufficient funds"
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /account/withdraw [post]
// @Security Bearer
func Withdraw(accountSvc *accountsvc.Service, authSvc *authsvc.Service, logger *slog.Logger) fiber.Handler {
	return balanceHandler(authSvc, logger, accountSvc.Withdraw, "Failed to withdraw", "Withdrawal successful")
}

type balanceOp func(ctx context.Context, userID uuid.UUID, value decimal.Decimal) (*account.Account, error)

func balanceHandler(
	authSvc *authsvc.Service,
	logger *slog.Logger,
	op balanceOp,
	failTitle, okMessage string,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[BalanceRequest](c)
		if input == nil {
			return err // error response already written
		}
		a, err := op(c.UserContext(), userID, input.Value)
		if err != nil {
			return common.ProblemDetailsJSON(c, failTitle, err)
		}
		logger.Info(okMessage, "account_id", a.ID, "value", input.Value.String(), "balance", a.Balance.String())
		return common.SuccessResponseJSON(c, fiber.StatusOK, okMessage, ToAccountResponse(a))
	}
}

// FindAccountIDByEmail returns a Fiber handler resolving an account id by email.
// @Summary Find account id by email
// @Tags accounts
// @Produce json
// @Param email query string true "Account email"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails "Bank account email not found"
// @Router /account/id [get]
// @Security Bearer
func FindAccountIDByEmail(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.Query("email")
		if email == "" {
			return common.ProblemDetailsJSON(c, "Email is required", nil, "Missing email query parameter", fiber.StatusBadRequest)
		}
		id, err := accountSvc.FindAccountIDByEmail(c.UserContext(), email)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Account not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account found", AccountIDResponse{AccountID: id})
	}
}

// ListAccounts returns a Fiber handler paging through accounts.
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /accounts [get]
// @Security Bearer
func ListAccounts(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := common.Pagination(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid pagination", err)
		}
		accounts, err := accountSvc.List(c.UserContext(), limit, offset)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", ToAccountResponses(accounts))
	}
}
