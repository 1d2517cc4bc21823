package config

import (
	"log/slog"

	"github.com/amirasaad/bank/pkg/cache"
	"github.com/amirasaad/bank/pkg/eventbus"
	"github.com/amirasaad/bank/pkg/lock"
	"github.com/amirasaad/bank/pkg/provider"
	"github.com/amirasaad/bank/pkg/repository"
)

// Deps holds all infrastructure dependencies for building the app and services.
type Deps struct {
	Uow       repository.UnitOfWork
	Converter provider.CurrencyConverter
	// RateSource backs the converter endpoint; nil in remote converter mode.
	RateSource provider.RateSource
	Locker     lock.Locker
	// Responses keeps replayable responses for Idempotency-Key requests.
	Responses cache.ResponseStore
	EventBus   eventbus.Bus
	Logger     *slog.Logger
	Config     *App
}
