/*

This file contains the reference delta-neutral position manager. It tracks
the notional deployed to each leg, values both legs at their mark price, and
reports the signed net exposure (delta). Positive delta means net long,
negative means net short; zero is the neutral target.

The vault core consumes this through the PositionManager contract and never
recomputes delta on its own.

*/

package position

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/basislabs/dnvault/internal/logger"
)

// PRECISION is the basis-point scale used for exposure thresholds:
// 10000 bps == 100% of gross exposure.
const PRECISION = 10_000

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidTolerance = errors.New("delta tolerance is invalid")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrInvalidPrice     = errors.New("mark price is invalid")
)

// PriceSource supplies mark prices for the two legs. Optional: a nil source
// values both legs at par.
type PriceSource interface {
	MarkPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// NeutralManager keeps the spot leg long and the perp leg short in equal
// value, flagging a rebalance when the gap exceeds the tolerance.
type NeutralManager struct {
	logger zerolog.Logger

	spotSymbol   string
	perpSymbol   string
	toleranceBps int64
	feed         PriceSource

	mu           sync.RWMutex
	spotNotional sdkmath.Int
	perpNotional sdkmath.Int
}

// Config holds the dependencies for creating a NeutralManager.
type Config struct {
	SpotSymbol   string
	PerpSymbol   string
	ToleranceBps int64       // Max |delta| as bps of gross exposure before a rebalance is needed
	Feed         PriceSource // optional
}

// New creates a neutral position manager with empty legs.
func New(cfg Config) (*NeutralManager, error) {
	if cfg.ToleranceBps <= 0 || cfg.ToleranceBps >= PRECISION {
		return nil, fmt.Errorf("%w: %d bps (must be in (0, %d))", ErrInvalidTolerance, cfg.ToleranceBps, PRECISION)
	}
	if cfg.SpotSymbol == "" || cfg.PerpSymbol == "" {
		return nil, errors.New("spot and perp symbols cannot be empty")
	}

	return &NeutralManager{
		logger:       logger.GetForComponent("position_manager"),
		spotSymbol:   cfg.SpotSymbol,
		perpSymbol:   cfg.PerpSymbol,
		toleranceBps: cfg.ToleranceBps,
		feed:         cfg.Feed,
		spotNotional: sdkmath.ZeroInt(),
		perpNotional: sdkmath.ZeroInt(),
	}, nil
}

// UpdatePosition records freshly deployed capital on both legs.
func (m *NeutralManager) UpdatePosition(_ context.Context, spotAmount, perpAmount sdkmath.Int) error {
	if spotAmount.IsNil() || perpAmount.IsNil() || spotAmount.IsNegative() || perpAmount.IsNegative() {
		return fmt.Errorf("%w: spot %s, perp %s", ErrNegativeAmount, spotAmount, perpAmount)
	}

	m.mu.Lock()
	m.spotNotional = m.spotNotional.Add(spotAmount)
	m.perpNotional = m.perpNotional.Add(perpAmount)
	spot, perp := m.spotNotional, m.perpNotional
	m.mu.Unlock()

	m.logger.Debug().
		Str("spotNotional", spot.String()).
		Str("perpNotional", perp.String()).
		Msg("Position updated")
	return nil
}

// legValues marks both legs. Without a feed both legs are valued at par.
func (m *NeutralManager) legValues(ctx context.Context) (spotValue, perpValue decimal.Decimal, err error) {
	m.mu.RLock()
	spotNotional := decimal.NewFromBigInt(m.spotNotional.BigInt(), 0)
	perpNotional := decimal.NewFromBigInt(m.perpNotional.BigInt(), 0)
	m.mu.RUnlock()

	if m.feed == nil {
		return spotNotional, perpNotional, nil
	}

	spotPrice, err := m.markPrice(ctx, m.spotSymbol)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	perpPrice, err := m.markPrice(ctx, m.perpSymbol)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return spotNotional.Mul(spotPrice), perpNotional.Mul(perpPrice), nil
}

// markPrice fetches and validates one mark price.
func (m *NeutralManager) markPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, err := m.feed.MarkPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("mark price for %s unavailable: %w", symbol, err)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: %s priced at %s", ErrInvalidPrice, symbol, price)
	}
	return price, nil
}

// CurrentDelta returns spot value minus perp value, truncated to base units.
func (m *NeutralManager) CurrentDelta(ctx context.Context) (sdkmath.Int, error) {
	spotValue, perpValue, err := m.legValues(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	delta := spotValue.Sub(perpValue).Truncate(0)
	out, ok := sdkmath.NewIntFromString(delta.String())
	if !ok {
		return sdkmath.ZeroInt(), fmt.Errorf("delta %s is not representable", delta)
	}
	return out, nil
}

// IsRebalanceNeeded reports whether |delta| exceeds the tolerance, measured
// in basis points of gross exposure. An empty book never needs rebalancing.
func (m *NeutralManager) IsRebalanceNeeded(ctx context.Context) (bool, error) {
	spotValue, perpValue, err := m.legValues(ctx)
	if err != nil {
		return false, err
	}

	gross := spotValue.Add(perpValue)
	if gross.LessThanOrEqual(decimal.Zero) {
		return false, nil
	}

	deltaBps := spotValue.Sub(perpValue).Abs().
		Mul(decimal.NewFromInt(PRECISION)).
		Div(gross)
	needed := deltaBps.GreaterThan(decimal.NewFromInt(m.toleranceBps))

	m.logger.Debug().
		Str("deltaBps", deltaBps.StringFixed(2)).
		Int64("toleranceBps", m.toleranceBps).
		Bool("needed", needed).
		Msg("Rebalance check")
	return needed, nil
}

// CalculateRebalanceAmounts sizes the adjustments that would split the delta
// evenly across both legs: shrink the heavy leg by half the delta and grow
// the light leg by the other half.
func (m *NeutralManager) CalculateRebalanceAmounts(ctx context.Context) (sdkmath.Int, sdkmath.Int, error) {
	delta, err := m.CurrentDelta(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}

	half := delta.QuoRaw(2)
	spotAdjustment := half.Neg()
	perpAdjustment := delta.Sub(half)

	m.logger.Info().
		Str("delta", delta.String()).
		Str("spotAdjustment", spotAdjustment.String()).
		Str("perpAdjustment", perpAdjustment.String()).
		Msg("Rebalance sizing computed")
	return spotAdjustment, perpAdjustment, nil
}

// DeltaBps returns |delta| in basis points of gross exposure, for metrics
// and the dashboard. Zero for an empty book.
func (m *NeutralManager) DeltaBps(ctx context.Context) (float64, error) {
	spotValue, perpValue, err := m.legValues(ctx)
	if err != nil {
		return 0, err
	}

	gross := spotValue.Add(perpValue)
	if gross.LessThanOrEqual(decimal.Zero) {
		return 0, nil
	}

	bps, _ := spotValue.Sub(perpValue).Abs().
		Mul(decimal.NewFromInt(PRECISION)).
		Div(gross).
		Float64()
	return bps, nil
}
