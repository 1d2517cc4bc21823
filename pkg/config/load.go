package config

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file found among envFilePaths (searched upward
// from the working directory), then builds App from the environment.
// Variables already set in the environment win over file values.
func Load(envFilePaths ...string) (*App, error) {
	logger := slog.Default()
	if len(envFilePaths) == 0 {
		envFilePaths = []string{".env"}
	}

	loaded := false
	for _, name := range envFilePaths {
		path, err := FindEnvFile(name)
		if err != nil {
			logger.Debug("Environment file not found", "file", name)
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.Error("Failed to read environment file", "path", path, "error", err)
			continue
		}
		logger.Info("Environment loaded", "path", path)
		loaded = true
		break
	}
	if !loaded {
		logger.Warn("No environment file loaded, using process environment only")
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
		"db", maskValue(cfg.DB.Url),
		"converter_mode", cfg.Converter.Mode,
		"invertexto_url", cfg.Invertexto.URL,
		"invertexto_token", maskValue(cfg.Invertexto.Token),
		"rate_cache_driver", cfg.RateCache.Driver,
		"event_bus_driver", cfg.EventBus.Driver,
		"lock_driver", cfg.Lock.Driver,
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}

func (c *App) validate() error {
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"CONVERTER_MODE", c.Converter.Mode, []string{"local", "remote"}},
		{"RATE_CACHE_DRIVER", c.RateCache.Driver, []string{"none", "memory", "redis"}},
		{"EVENT_BUS_DRIVER", c.EventBus.Driver, []string{"memory", "redis", "kafka", "rabbitmq"}},
		{"LOCK_DRIVER", c.Lock.Driver, []string{"local", "redis"}},
	}
	for _, chk := range checks {
		if !slices.Contains(chk.allowed, chk.value) {
			return fmt.Errorf("config: %s must be one of %v, got %q", chk.name, chk.allowed, chk.value)
		}
	}
	return nil
}
