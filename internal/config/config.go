package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
)

// Application configuration loaded from environment variables.
// Populated at startup by LoadConfig.
var (
	// VaultOwner is the administrative account allowed to replace strategy
	// handles and toggle the emergency pause.
	VaultOwner string

	// MinDeposit is the dust floor for deposits, in base-asset units.
	MinDeposit sdkmath.Int

	// AssetDecimals is the precision of the base asset (e.g. 6 for USDC).
	AssetDecimals int

	// MaxDeltaToleranceBps is the directional-exposure threshold, in basis
	// points of gross exposure, consumed by the position manager.
	MaxDeltaToleranceBps int64

	// RebalanceInterval is how often the engine checks whether the book
	// needs rebalancing.
	RebalanceInterval time.Duration

	// SpotSymbol and PerpSymbol identify the two legs for mark pricing.
	SpotSymbol string
	PerpSymbol string

	// PriceFeedURL is the optional HTTP mark-price endpoint. When empty the
	// position manager values both legs at par.
	PriceFeedURL string
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. All variables without a documented default are required.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	VaultOwner, err = getEnv("VAULT_OWNER")
	if err != nil {
		return err
	}

	MinDeposit, err = getEnvAsInt("VAULT_MIN_DEPOSIT")
	if err != nil {
		return err
	}
	if !MinDeposit.IsPositive() {
		return errors.New("VAULT_MIN_DEPOSIT must be positive")
	}

	AssetDecimals, err = getEnvAsIntValue("ASSET_DECIMALS")
	if err != nil {
		return err
	}
	if AssetDecimals < 0 || AssetDecimals > 18 {
		return errors.New("ASSET_DECIMALS must be between 0 and 18")
	}

	MaxDeltaToleranceBps, err = getEnvAsInt64("MAX_DELTA_TOLERANCE_BPS")
	if err != nil {
		return err
	}
	if MaxDeltaToleranceBps <= 0 {
		return errors.New("MAX_DELTA_TOLERANCE_BPS must be positive")
	}

	RebalanceInterval, err = getEnvAsDuration("REBALANCE_INTERVAL")
	if err != nil {
		return err
	}

	SpotSymbol, err = getEnv("SPOT_SYMBOL")
	if err != nil {
		return err
	}
	PerpSymbol, err = getEnv("PERP_SYMBOL")
	if err != nil {
		return err
	}

	// Optional: no feed means par pricing.
	PriceFeedURL = os.Getenv("PRICE_FEED_URL")

	log.Debug().
		Str("VaultOwner", VaultOwner).
		Str("MinDeposit", MinDeposit.String()).
		Int64("MaxDeltaToleranceBps", MaxDeltaToleranceBps).
		Dur("RebalanceInterval", RebalanceInterval).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsInt retrieves an environment variable as an sdkmath.Int.
func getEnvAsInt(key string) (sdkmath.Int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	value, ok := sdkmath.NewIntFromString(valueStr)
	if !ok {
		return sdkmath.ZeroInt(), errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsInt64 retrieves an environment variable as an int64.
func getEnvAsInt64(key string) (int64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsIntValue retrieves an environment variable as a plain int.
func getEnvAsIntValue(key string) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsDuration retrieves an environment variable as a time.Duration.
func getEnvAsDuration(key string) (time.Duration, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid duration (e.g. 10m), got: " + valueStr)
	}
	return value, nil
}
