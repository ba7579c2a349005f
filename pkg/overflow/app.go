// Package overflow wires the forum together: configuration, store
// selection, the auth service, the HTTP router and the process entry point.
package overflow

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/auth"
	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/store"
	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/store/memory"
	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/store/surreal"
)

// Config holds process configuration. The token secret has no default: it
// is loaded once at startup from the environment and startup fails without
// it.
type Config struct {
	ServerPort string

	// UseMemory selects the in-memory store over SurrealDB. Intended for
	// local development and tests.
	UseMemory bool

	SurrealDBURL  string
	SurrealDBNS   string
	SurrealDBDB   string
	SurrealDBUser string
	SurrealDBPass string

	TokenSecret string
	TokenTTL    time.Duration
}

// App holds the application state shared by all handlers.
type App struct {
	store  store.Store
	auth   *auth.Service
	config *Config
	log    zerolog.Logger
}

// New builds the application: opens the configured store, runs its
// migration, and constructs the auth service.
func New(config *Config) (*App, error) {
	if config.TokenSecret == "" {
		return nil, fmt.Errorf("token secret is not configured (set %s)", envTokenSecret)
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	var appStore store.Store
	if config.UseMemory {
		appStore = memory.New()
		log.Info().Msg("using in-memory store")
	} else {
		st, err := surreal.New(
			config.SurrealDBURL,
			config.SurrealDBNS,
			config.SurrealDBDB,
			config.SurrealDBUser,
			config.SurrealDBPass,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
		}
		appStore = st
		log.Info().Str("url", config.SurrealDBURL).Msg("connected to SurrealDB")
	}

	if err := appStore.Migrate(context.Background()); err != nil {
		appStore.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	app := &App{
		store:  appStore,
		auth:   auth.NewService(appStore, []byte(config.TokenSecret), config.TokenTTL),
		config: config,
		log:    log,
	}
	return app, nil
}

// Close releases the application's resources.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// Store returns the underlying store (useful for testing and seeding).
func (a *App) Store() store.Store {
	return a.store
}

// getEnv returns the environment variable value, or def when unset or empty.
func getEnv(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
