/*

This file contains the engine: the periodic loop that snapshots the vault,
checks the share ledger invariant, and triggers a rebalance when the position
manager reports drifted exposure. Each cycle gets a uuid for tracing its logs
and a persistent cycle number from the database.

*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/basislabs/dnvault/internal/logger"
	"github.com/basislabs/dnvault/internal/metrics"
	"github.com/basislabs/dnvault/internal/position"
	"github.com/basislabs/dnvault/internal/state"
	"github.com/basislabs/dnvault/internal/types"
	"github.com/basislabs/dnvault/internal/utils"
	"github.com/basislabs/dnvault/internal/vault"
)

// Engine drives the vault's maintenance cycle.
type Engine struct {
	logger zerolog.Logger

	vault         *vault.Vault
	manager       *position.NeutralManager
	assetDecimals int
}

// Config holds the dependencies for creating a new Engine instance.
type Config struct {
	Vault         *vault.Vault
	Manager       *position.NeutralManager
	AssetDecimals int
}

// New creates an engine with dependency injection.
func New(cfg Config) (*Engine, error) {
	if cfg.Vault == nil {
		return nil, fmt.Errorf("vault cannot be nil")
	}
	if cfg.Manager == nil {
		return nil, fmt.Errorf("position manager cannot be nil")
	}
	if cfg.AssetDecimals < 0 || cfg.AssetDecimals > 18 {
		return nil, fmt.Errorf("asset decimals must be between 0 and 18, got %d", cfg.AssetDecimals)
	}

	return &Engine{
		logger:        logger.GetForComponent("engine"),
		vault:         cfg.Vault,
		manager:       cfg.Manager,
		assetDecimals: cfg.AssetDecimals,
	}, nil
}

// RunLoop starts the main engine loop with the specified interval. The first
// cycle runs immediately; the loop exits on context cancellation.
func (e *Engine) RunLoop(ctx context.Context, interval time.Duration) {
	e.logger.Info().
		Dur("interval", interval).
		Msg("Starting engine main loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("Engine loop stopped due to context cancellation")
			return
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle executes one maintenance cycle: assess vault state, verify the
// share ledger, rebalance if drifted, and persist a snapshot.
func (e *Engine) RunCycle(ctx context.Context) {
	cycleStartTime := time.Now()

	// Unique cycle ID for tracing logs across the entire cycle.
	cycleID := uuid.New().String()
	cycleLogger := e.logger.With().Str("cycle_id", cycleID).Logger()

	cycleNumber := e.nextCycleNumber()
	cycleLogger.Info().Int("cycleNumber", cycleNumber).Msg("--- Starting engine cycle ---")

	// --- Step 1: Ledger invariant check ---
	if err := e.vault.Ledger().CheckInvariant(); err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: share ledger invariant violated")
		return
	}

	// --- Step 2: Vault state assessment ---
	snapshot, err := e.captureSnapshot(ctx, cycleNumber, cycleStartTime)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: failed to assess vault state")
		return
	}

	cycleLogger.Info().
		Str("totalAssets", snapshot.TotalAssets.String()).
		Str("totalShares", snapshot.TotalShares.String()).
		Float64("sharePrice", snapshot.SharePrice).
		Bool("paused", snapshot.Paused).
		Msg("Step 2: Vault state assessed")

	// --- Step 3: Rebalance check ---
	if snapshot.Paused {
		cycleLogger.Warn().Msg("Step 3: Vault is paused, skipping rebalance check")
	} else {
		err := e.vault.Rebalance(ctx)
		switch {
		case err == nil:
			cycleLogger.Info().Msg("Step 3: Rebalance triggered")
		case errors.Is(err, vault.ErrRebalanceNotNeeded):
			cycleLogger.Info().Msg("Step 3: Exposure within tolerance, no rebalance needed")
		default:
			cycleLogger.Error().Err(err).Msg("Step 3: Rebalance attempt failed")
		}
	}

	// --- Step 4: Persist snapshot and publish gauges ---
	e.saveSnapshot(snapshot, cycleLogger)
	e.publishGauges(ctx, snapshot, cycleLogger)

	cycleLogger.Info().
		Str("cycleDuration", time.Since(cycleStartTime).String()).
		Msg("--- Engine cycle completed ---")
}

// nextCycleNumber increments and returns the persistent cycle counter.
func (e *Engine) nextCycleNumber() int {
	cycleNumber, err := state.IncrementCycleNumber()
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to increment cycle number, using fallback")
		return int(time.Now().Unix() % 1000000)
	}
	return cycleNumber
}

// captureSnapshot reads the vault's live state into a snapshot record.
func (e *Engine) captureSnapshot(ctx context.Context, cycleNumber int, at time.Time) (types.VaultSnapshot, error) {
	totalAssets, err := e.vault.TotalAssets(ctx)
	if err != nil {
		return types.VaultSnapshot{}, fmt.Errorf("failed to value the vault: %w", err)
	}

	spotAssets, perpAssets, err := e.vault.StrategyAssets(ctx)
	if err != nil {
		return types.VaultSnapshot{}, fmt.Errorf("failed to read strategy balances: %w", err)
	}

	totalShares := e.vault.TotalShares()
	sharePrice, err := utils.SharePrice(totalAssets, totalShares)
	if err != nil {
		return types.VaultSnapshot{}, fmt.Errorf("failed to compute share price: %w", err)
	}

	return types.VaultSnapshot{
		CycleNumber: cycleNumber,
		Timestamp:   at,
		TotalAssets: totalAssets,
		TotalShares: totalShares,
		IdleBalance: e.vault.IdleBalance(),
		SpotAssets:  spotAssets,
		PerpAssets:  perpAssets,
		SharePrice:  sharePrice,
		Paused:      e.vault.IsPaused(),
	}, nil
}

// saveSnapshot persists the cycle snapshot to the database.
func (e *Engine) saveSnapshot(snapshot types.VaultSnapshot, cycleLogger zerolog.Logger) {
	snapshotID, err := state.SaveVaultSnapshot(snapshot)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Failed to save vault snapshot to database")
		return
	}
	cycleLogger.Debug().Int64("snapshot_id", snapshotID).Msg("Vault snapshot saved")
}

// publishGauges pushes the snapshot onto the prometheus gauges.
func (e *Engine) publishGauges(ctx context.Context, snapshot types.VaultSnapshot, cycleLogger zerolog.Logger) {
	if totalAssets, err := utils.IntToFloat64(snapshot.TotalAssets, e.assetDecimals); err == nil {
		metrics.TotalAssets.Set(totalAssets)
	} else {
		cycleLogger.Warn().Err(err).Msg("Failed to convert total assets for metrics")
	}

	if totalShares, err := utils.IntToFloat64(snapshot.TotalShares, e.assetDecimals); err == nil {
		metrics.TotalShares.Set(totalShares)
	} else {
		cycleLogger.Warn().Err(err).Msg("Failed to convert total shares for metrics")
	}

	metrics.SharePrice.Set(snapshot.SharePrice)

	if deltaBps, err := e.manager.DeltaBps(ctx); err == nil {
		metrics.DeltaBps.Set(deltaBps)
	} else {
		cycleLogger.Warn().Err(err).Msg("Failed to read delta for metrics")
	}
}
