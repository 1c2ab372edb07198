package main

import (
	"context"
	"os"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/basislabs/dnvault/internal/bank"
	"github.com/basislabs/dnvault/internal/config"
	"github.com/basislabs/dnvault/internal/engine"
	"github.com/basislabs/dnvault/internal/logger"
	"github.com/basislabs/dnvault/internal/metrics"
	"github.com/basislabs/dnvault/internal/position"
	"github.com/basislabs/dnvault/internal/pricefeed"
	"github.com/basislabs/dnvault/internal/state"
	"github.com/basislabs/dnvault/internal/strategy"
	"github.com/basislabs/dnvault/internal/vault"
	"github.com/basislabs/dnvault/internal/web"
)

// main is the entry point for the delta-neutral vault service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Delta-neutral vault starting...")

	// Initialize database connection
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// --- 2. Strategy Initialization (with Safety Switch) ---
	var spot, perp vault.StrategyAdapter
	vaultMode := os.Getenv("VAULT_MODE")

	switch vaultMode {
	case "live":
		log.Warn().Msg("Initializing vault in LIVE mode. Real strategy endpoints will be used.")
		var err error
		spot, err = strategy.NewRemote("spot", os.Getenv("SPOT_STRATEGY_URL"))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize spot strategy adapter")
		}
		perp, err = strategy.NewRemote("perp", os.Getenv("PERP_STRATEGY_URL"))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize perp strategy adapter")
		}
	case "paper":
		log.Info().Msg("Initializing vault in PAPER mode. Strategy legs are simulated in memory.")
		spot = strategy.NewPaper("spot")
		perp = strategy.NewPaper("perp")
	default:
		log.Fatal().Msg("VAULT_MODE is not set to 'paper' or 'live'. Halting to prevent accidental execution.")
	}

	// --- 3. Position Manager ---
	var feed position.PriceSource
	if config.PriceFeedURL != "" {
		priceFeed, err := pricefeed.New(config.PriceFeedURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize price feed")
		}
		feed = priceFeed
		log.Info().Str("url", config.PriceFeedURL).Msg("Mark pricing enabled")
	} else {
		log.Info().Msg("No price feed configured, legs are valued at par")
	}

	manager, err := position.New(position.Config{
		SpotSymbol:   config.SpotSymbol,
		PerpSymbol:   config.PerpSymbol,
		ToleranceBps: config.MaxDeltaToleranceBps,
		Feed:         feed,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create position manager")
	}

	// --- 4. Vault Assembly ---
	v, err := vault.New(vault.Config{
		Owner:      config.VaultOwner,
		MinDeposit: config.MinDeposit,
		Asset:      newBaseAsset(vaultMode),
		Recorder:   vault.MultiRecorder{state.NewRecorder(), metrics.NewRecorder()},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create vault")
	}

	if err := v.SetSpotStrategy(config.VaultOwner, spot); err != nil {
		log.Fatal().Err(err).Msg("Failed to attach spot strategy")
	}
	if err := v.SetPerpStrategy(config.VaultOwner, perp); err != nil {
		log.Fatal().Err(err).Msg("Failed to attach perp strategy")
	}
	if err := v.SetPositionManager(config.VaultOwner, manager); err != nil {
		log.Fatal().Err(err).Msg("Failed to attach position manager")
	}

	// --- 5. Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, v, config.AssetDecimals)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting vault API server")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 6. Engine Main Loop ---
	eng, err := engine.New(engine.Config{
		Vault:         v,
		Manager:       manager,
		AssetDecimals: config.AssetDecimals,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine")
	}

	log.Info().Str("interval", config.RebalanceInterval.String()).Msg("Starting engine main loop")
	eng.RunLoop(context.Background(), config.RebalanceInterval)
}

// newBaseAsset builds the base-asset transfer layer. In paper mode an
// optional seed account (PAPER_FUND_OWNER / PAPER_FUND_AMOUNT) is credited so
// deposits can be exercised immediately.
func newBaseAsset(vaultMode string) *bank.Bank {
	b := bank.New()

	if vaultMode != "paper" {
		return b
	}

	owner := os.Getenv("PAPER_FUND_OWNER")
	amountStr := os.Getenv("PAPER_FUND_AMOUNT")
	if owner == "" || amountStr == "" {
		return b
	}

	amount, ok := sdkmath.NewIntFromString(amountStr)
	if !ok || !amount.IsPositive() {
		log.Fatal().Str("amount", amountStr).Msg("PAPER_FUND_AMOUNT must be a positive integer")
	}
	if err := b.Fund(owner, amount); err != nil {
		log.Fatal().Err(err).Msg("Failed to fund paper account")
	}
	log.Info().Str("owner", owner).Str("amount", amount.String()).Msg("Paper account funded")

	return b
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
