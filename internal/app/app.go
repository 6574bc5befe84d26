// Package app wires configuration, storage, clients, and services into a
// single application container shared by the server and tests.
package app

import (
	"fmt"
	"time"

	"github.com/papertrade-io/papertrade/internal/auth"
	"github.com/papertrade-io/papertrade/internal/clients/yahoo"
	"github.com/papertrade-io/papertrade/internal/common"
	"github.com/papertrade-io/papertrade/internal/interfaces"
	"github.com/papertrade-io/papertrade/internal/ledger"
	"github.com/papertrade-io/papertrade/internal/storage/userdb"
)

// App holds all application dependencies.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Store       interfaces.UserStore
	Market      interfaces.MarketDataClient
	Ledger      *ledger.Engine
	Tokens      *auth.Issuer
	StartupTime time.Time
}

// NewApp creates a fully wired application from the given config path.
// An empty configPath falls back to the default search locations.
func NewApp(configPath string) (*App, error) {
	var config *common.Config
	var err error
	if configPath != "" {
		config, err = common.LoadConfig(configPath)
	} else {
		config, err = common.LoadConfig("papertrade.toml", "config/papertrade.toml")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	if config.Auth.JWTSecret == "" {
		if config.IsProduction() {
			return nil, fmt.Errorf("auth.jwt_secret is required in production")
		}
		logger.Warn().Msg("auth.jwt_secret not set, using development default")
		config.Auth.JWTSecret = "papertrade-dev-secret"
	}

	store, err := userdb.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open user store: %w", err)
	}

	market := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	a := &App{
		Config:      config,
		Logger:      logger,
		Store:       store,
		Market:      market,
		Ledger:      ledger.NewEngine(store, logger),
		Tokens:      auth.NewIssuer(&config.Auth),
		StartupTime: time.Now(),
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("storage_path", config.Storage.Path).
		Str("version", common.GetVersion()).
		Msg("Application initialized")

	return a, nil
}

// Close releases application resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
