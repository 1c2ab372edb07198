/*

This file contains the paper strategy adapter: a deterministic, in-process
strategy used in paper mode and in tests. It honors the adapter contract the
vault core relies on — deposits and withdrawals fully settle or fail, and the
reported balance only moves up between withdrawals (yield accrues upward).

*/

package strategy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/basislabs/dnvault/internal/logger"
)

// Error definitions for zero-tolerance error handling
var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("strategy balance cannot cover withdrawal")
)

// Paper is an in-process strategy holding a simulated sub-allocation.
type Paper struct {
	logger zerolog.Logger
	name   string

	mu      sync.Mutex
	balance sdkmath.Int
}

// NewPaper creates an empty paper strategy. The name shows up in logs only.
func NewPaper(name string) *Paper {
	return &Paper{
		logger:  logger.GetForComponent("strategy_" + name),
		name:    name,
		balance: sdkmath.ZeroInt(),
	}
}

// Deposit accepts the full requested amount.
func (p *Paper) Deposit(_ context.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: deposit of %s", ErrNonPositiveAmount, amount)
	}

	p.mu.Lock()
	p.balance = p.balance.Add(amount)
	balance := p.balance
	p.mu.Unlock()

	p.logger.Debug().
		Str("amount", amount.String()).
		Str("balance", balance.String()).
		Msg("Paper deposit accepted")
	return amount, nil
}

// Withdraw returns exactly the requested amount or fails the whole call.
func (p *Paper) Withdraw(_ context.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: withdrawal of %s", ErrNonPositiveAmount, amount)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.balance.LT(amount) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: balance %s, withdrawal of %s requested",
			ErrInsufficientFunds, p.balance, amount)
	}
	p.balance = p.balance.Sub(amount)

	p.logger.Debug().
		Str("amount", amount.String()).
		Str("balance", p.balance.String()).
		Msg("Paper withdrawal returned")
	return amount, nil
}

// TotalAssets reports the current simulated balance.
func (p *Paper) TotalAssets(_ context.Context) (sdkmath.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance, nil
}

// AccrueYield grows the balance by amount. Yield only accrues upward.
func (p *Paper) AccrueYield(amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return fmt.Errorf("%w: yield of %s", ErrNonPositiveAmount, amount)
	}
	if amount.IsZero() {
		return nil
	}

	p.mu.Lock()
	p.balance = p.balance.Add(amount)
	balance := p.balance
	p.mu.Unlock()

	p.logger.Info().
		Str("yield", amount.String()).
		Str("balance", balance.String()).
		Msg("Yield accrued")
	return nil
}

// AccrueYieldBps grows the balance by bps basis points, truncating down.
func (p *Paper) AccrueYieldBps(bps int64) error {
	if bps < 0 {
		return fmt.Errorf("%w: %d bps", ErrNonPositiveAmount, bps)
	}

	p.mu.Lock()
	yield := p.balance.MulRaw(bps).QuoRaw(10_000)
	p.balance = p.balance.Add(yield)
	p.mu.Unlock()
	return nil
}
