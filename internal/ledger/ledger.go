/*

This file contains the share ledger: fungible-balance bookkeeping for vault
shares. The ledger is the only place share ownership is tracked; the vault
core mints on deposit and burns on withdrawal.

Invariant: the sum of all balances equals the total supply at every settled
state, and no zero-balance entries are kept.

*/

package ledger

import (
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrEmptyOwner          = errors.New("owner address is empty")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient share balance")
)

// Ledger tracks share balances and total supply.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]sdkmath.Int
	total    sdkmath.Int
}

// New creates an empty share ledger.
func New() *Ledger {
	return &Ledger{
		balances: make(map[string]sdkmath.Int),
		total:    sdkmath.ZeroInt(),
	}
}

// Mint credits shares to owner and grows the total supply.
func (l *Ledger) Mint(owner string, shares sdkmath.Int) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	if shares.IsNil() || !shares.IsPositive() {
		return fmt.Errorf("%w: mint of %s", ErrNonPositiveAmount, shares)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[owner]
	if !ok {
		balance = sdkmath.ZeroInt()
	}
	l.balances[owner] = balance.Add(shares)
	l.total = l.total.Add(shares)
	return nil
}

// Burn debits shares from owner and shrinks the total supply.
func (l *Ledger) Burn(owner string, shares sdkmath.Int) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	if shares.IsNil() || !shares.IsPositive() {
		return fmt.Errorf("%w: burn of %s", ErrNonPositiveAmount, shares)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[owner]
	if !ok || balance.LT(shares) {
		return fmt.Errorf("%w: owner %s has %s, burn of %s requested",
			ErrInsufficientBalance, owner, balance, shares)
	}

	remaining := balance.Sub(shares)
	if remaining.IsZero() {
		// No dust entries with zero claim.
		delete(l.balances, owner)
	} else {
		l.balances[owner] = remaining
	}
	l.total = l.total.Sub(shares)
	return nil
}

// Transfer moves shares between owners without touching the total supply.
func (l *Ledger) Transfer(from, to string, shares sdkmath.Int) error {
	if from == "" || to == "" {
		return ErrEmptyOwner
	}
	if shares.IsNil() || !shares.IsPositive() {
		return fmt.Errorf("%w: transfer of %s", ErrNonPositiveAmount, shares)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance, ok := l.balances[from]
	if !ok || fromBalance.LT(shares) {
		return fmt.Errorf("%w: owner %s has %s, transfer of %s requested",
			ErrInsufficientBalance, from, fromBalance, shares)
	}

	remaining := fromBalance.Sub(shares)
	if remaining.IsZero() {
		delete(l.balances, from)
	} else {
		l.balances[from] = remaining
	}

	toBalance, ok := l.balances[to]
	if !ok {
		toBalance = sdkmath.ZeroInt()
	}
	l.balances[to] = toBalance.Add(shares)
	return nil
}

// BalanceOf returns the share balance of owner, zero if unknown.
func (l *Ledger) BalanceOf(owner string) sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if balance, ok := l.balances[owner]; ok {
		return balance
	}
	return sdkmath.ZeroInt()
}

// TotalShares returns the total share supply.
func (l *Ledger) TotalShares() sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}

// HolderCount returns the number of accounts with a nonzero balance.
func (l *Ledger) HolderCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.balances)
}

// CheckInvariant verifies that the sum of all balances equals the total
// supply. It exists for tests and for the engine's cycle assertions.
func (l *Ledger) CheckInvariant() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sum := sdkmath.ZeroInt()
	for owner, balance := range l.balances {
		if balance.IsNil() || !balance.IsPositive() {
			return fmt.Errorf("ledger invariant violated: owner %s holds %s", owner, balance)
		}
		sum = sum.Add(balance)
	}
	if !sum.Equal(l.total) {
		return fmt.Errorf("ledger invariant violated: sum of balances %s != total supply %s", sum, l.total)
	}
	return nil
}
