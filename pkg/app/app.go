// Package app assembles the services and event handlers from constructed dependencies.
package app

import (
	"github.com/amirasaad/bank/pkg/config"
	"github.com/amirasaad/bank/pkg/handler/audit"
	"github.com/amirasaad/bank/pkg/handler/common"
	"github.com/amirasaad/bank/pkg/service/account"
	"github.com/amirasaad/bank/pkg/service/auth"
	currencysvc "github.com/amirasaad/bank/pkg/service/currency"
	"github.com/amirasaad/bank/pkg/service/transfer"
)

type App struct {
	Deps            *config.Deps
	Config          *config.App
	AuthService     *auth.Service
	AccountService  *account.Service
	TransferService *transfer.Service
	// CurrencyService is nil in remote converter mode.
	CurrencyService *currencysvc.Service
}

func New(deps *config.Deps, cfg *config.App) *App {
	if deps.Config == nil {
		deps.Config = cfg
	}
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.setupEventBus()

	app.AuthService = auth.NewWithJWT(cfg.Auth.Jwt, deps.Logger)
	app.AccountService = account.NewService(*deps)
	app.TransferService = transfer.NewService(*deps)
	if deps.RateSource != nil {
		app.CurrencyService = currencysvc.New(deps.RateSource, deps.Logger)
	}
	return app
}

// setupEventBus registers the post-commit event handlers.
func (a *App) setupEventBus() {
	if a.Deps.EventBus == nil {
		return
	}
	logger := a.Deps.Logger.With("component", "audit")
	var opts []common.TrackerOption
	if a.Config.Idempotency != nil {
		opts = append(opts, common.WithRetention(a.Config.Idempotency.TTL))
	}
	audit.Register(
		a.Deps.EventBus,
		audit.LogRecorder{Logger: logger},
		common.NewIdempotencyTracker(opts...),
		logger,
	)
}
