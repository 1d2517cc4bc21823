package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/bank/infra"
	infracache "github.com/amirasaad/bank/infra/cache"
	infraeventbus "github.com/amirasaad/bank/infra/eventbus"
	infralock "github.com/amirasaad/bank/infra/lock"
	infraprovider "github.com/amirasaad/bank/infra/provider"
	infrarepository "github.com/amirasaad/bank/infra/repository"
	"github.com/amirasaad/bank/pkg/cache"
	"github.com/amirasaad/bank/pkg/config"
	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/eventbus"
	"github.com/amirasaad/bank/pkg/lock"
	"github.com/amirasaad/bank/pkg/provider"
	"github.com/amirasaad/bank/pkg/repository"
	currencysvc "github.com/amirasaad/bank/pkg/service/currency"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Resources are the constructed dependencies plus the handles that must be
// released on shutdown.
type Resources struct {
	Deps    config.Deps
	DB      *gorm.DB
	Redis   *redis.Client
	closers []func() error
}

// Close releases buses, redis and the database pool in reverse order.
func (r *Resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Resources) onClose(fn func() error) {
	r.closers = append(r.closers, fn)
}

// InitializeDependencies builds every dependency selected by cfg.
func InitializeDependencies(cfg *config.App) (*Resources, error) {
	logger := setupLogger(cfg.Log)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	res, err := Initialize(cfg, infrarepository.NewUoW(db), logger)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	res.DB = db
	res.onClose(func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	return res, nil
}

// Initialize builds the non-database dependencies around uow.
func Initialize(cfg *config.App, uow repository.UnitOfWork, logger *slog.Logger) (_ *Resources, err error) {
	res := &Resources{}
	defer func() {
		if err != nil {
			_ = res.Close()
		}
	}()

	if needsRedis(cfg) {
		res.Redis, err = newRedisClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		res.onClose(res.Redis.Close)
	}

	var rateSource provider.RateSource
	var converter provider.CurrencyConverter
	switch cfg.Converter.Mode {
	case "remote":
		converter = infraprovider.NewRemoteConverter(cfg.Converter, logger)
	default:
		rateSource = newRateSource(cfg, res.Redis, logger)
		converter = currencysvc.New(rateSource, logger)
	}

	bus, err := initEventBus(cfg, res.Redis, logger)
	if err != nil {
		return nil, err
	}
	if c, ok := bus.(interface{ Close() error }); ok {
		res.onClose(c.Close)
	}

	res.Deps = config.Deps{
		Uow:        uow,
		Converter:  converter,
		RateSource: rateSource,
		Locker:     initLocker(cfg, res.Redis, logger),
		Responses:  initResponseStore(cfg, res.Redis, logger),
		EventBus:   bus,
		Logger:     logger,
		Config:     cfg,
	}
	return res, nil
}

func needsRedis(cfg *config.App) bool {
	return cfg.EventBus.Driver == "redis" || cfg.Lock.Driver == "redis" || cfg.RateCache.Driver == "redis"
}

func newRedisClient(cfg *config.Redis) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// newRateSource layers the upstream source: invertexto, then the breaker,
// then the optional quote cache in front.
func newRateSource(cfg *config.App, client *redis.Client, logger *slog.Logger) provider.RateSource {
	var src provider.RateSource = infraprovider.NewInvertextoRateSource(cfg.Invertexto, cfg.Converter, logger)
	if cfg.Breaker.Enabled {
		src = infraprovider.NewBreakerRateSource(src, cfg.Breaker, logger)
	}
	var quotes cache.QuoteCache
	switch cfg.RateCache.Driver {
	case "memory":
		quotes = infracache.NewMemoryCache[provider.Quote]()
	case "redis":
		quotes = infracache.NewRedisCache[provider.Quote](client, cfg.Redis.KeyPrefix+cfg.RateCache.Prefix, logger)
	default:
		return src
	}
	logger.Info("Quote cache enabled", "driver", cfg.RateCache.Driver, "ttl", cfg.RateCache.TTL)
	return infraprovider.NewCachedRateSource(src, quotes, cfg.RateCache.TTL, logger)
}

func initEventBus(cfg *config.App, client *redis.Client, logger *slog.Logger) (eventbus.Bus, error) {
	factories := eventbus.Factories(account.EventFactories())
	ec := cfg.EventBus
	switch ec.Driver {
	case "", "memory":
		return infraeventbus.NewWithMemory(logger), nil
	case "redis":
		bus, err := infraeventbus.NewWithRedis(client, ec.Stream, ec.Group, factories, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis event bus: %w", err)
		}
		return bus, nil
	case "kafka":
		bus, err := infraeventbus.NewWithKafka(ec.Brokers, &infraeventbus.KafkaEventBusConfig{
			GroupID:     ec.Group,
			TopicPrefix: ec.TopicPrefix,
		}, factories, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka event bus: %w", err)
		}
		return bus, nil
	case "rabbitmq":
		bus, err := infraeventbus.NewWithRabbitMQ(ec.AmqpURL, ec.Exchange, factories, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create RabbitMQ event bus: %w", err)
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unsupported event bus driver: %q", ec.Driver)
	}
}

func initLocker(cfg *config.App, client *redis.Client, logger *slog.Logger) lock.Locker {
	if cfg.Lock.Driver == "redis" {
		return infralock.NewRedisLocker(client, cfg.Lock.Expiry, cfg.Lock.Tries, logger)
	}
	return infralock.NewLocalLocker()
}

func initResponseStore(cfg *config.App, client *redis.Client, logger *slog.Logger) cache.ResponseStore {
	if client != nil {
		return infracache.NewRedisCache[cache.StoredResponse](client, cfg.Redis.KeyPrefix+"idempotency:", logger)
	}
	return infracache.NewMemoryCache[cache.StoredResponse]()
}
