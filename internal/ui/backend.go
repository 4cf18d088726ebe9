package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wardrota/wardrota/internal/availability"
	"github.com/wardrota/wardrota/internal/config"
	"github.com/wardrota/wardrota/internal/db"
	"github.com/wardrota/wardrota/internal/remote"
)

// errNoDirectoryWrites is returned when the backend cannot add nurses.
var errNoDirectoryWrites = errors.New("adding nurses requires the sqlite backend")

// nurseWriter is implemented by backends that own the nurse directory.
type nurseWriter interface {
	UpsertNurse(ctx context.Context, n availability.Nurse) error
}

// openBackend opens the store selected by cfg.
func openBackend(cfg *config.Config, logger zerolog.Logger) (availability.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendRemote:
		return openRemote(cfg, logger)
	case config.BackendSQLite, "":
		if dir := filepath.Dir(cfg.Storage.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		store, err := db.New(cfg.Storage.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		logger.Debug().Str("path", cfg.Storage.DBPath).Msg("using sqlite store")
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

func openRemote(cfg *config.Config, logger zerolog.Logger) (availability.Backend, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}
	opts := []remote.Option{
		remote.WithAPIKey(cfg.Remote.APIKey),
		remote.WithTimeout(timeout),
		remote.WithSaveRate(cfg.Remote.SaveRate, cfg.Remote.SaveBurst),
		remote.WithLogger(logger),
	}

	if cfg.Remote.RedisAddr != "" {
		ttl, err := cfg.CacheTTL()
		if err != nil {
			return nil, err
		}
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Remote.RedisAddr})
		opts = append(opts, remote.WithRedisCache(rdb, ttl))
	}

	logger.Debug().
		Str("base_url", cfg.Remote.BaseURL).
		Bool("cache", cfg.Remote.RedisAddr != "").
		Msg("using remote store")
	return remote.New(cfg.Remote.BaseURL, opts...), nil
}
