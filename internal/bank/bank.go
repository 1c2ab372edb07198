/*

This file contains an in-memory base-asset bank. It stands in for the real
token's transfer primitives in paper mode and in tests: the vault pulls from
a depositor's account on deposit and pushes back on withdrawal.

*/

package bank

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrEmptyOwner        = errors.New("owner address is empty")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Bank tracks base-asset balances per account plus the vault's custody
// account.
type Bank struct {
	mu       sync.RWMutex
	accounts map[string]sdkmath.Int
	custody  sdkmath.Int
}

// New creates an empty bank.
func New() *Bank {
	return &Bank{
		accounts: make(map[string]sdkmath.Int),
		custody:  sdkmath.ZeroInt(),
	}
}

// Fund credits an account out of thin air. Paper mode and tests only.
func (b *Bank) Fund(owner string, amount sdkmath.Int) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	if amount.IsNil() || !amount.IsPositive() {
		return ErrNonPositiveAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	balance, ok := b.accounts[owner]
	if !ok {
		balance = sdkmath.ZeroInt()
	}
	b.accounts[owner] = balance.Add(amount)
	return nil
}

// Pull transfers amount from owner into vault custody.
func (b *Bank) Pull(_ context.Context, owner string, amount sdkmath.Int) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	if amount.IsNil() || !amount.IsPositive() {
		return ErrNonPositiveAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	balance, ok := b.accounts[owner]
	if !ok {
		balance = sdkmath.ZeroInt()
	}
	if balance.LT(amount) {
		return fmt.Errorf("%w: owner %s has %s, pull of %s requested",
			ErrInsufficientFunds, owner, balance, amount)
	}
	b.accounts[owner] = balance.Sub(amount)
	b.custody = b.custody.Add(amount)
	return nil
}

// Push transfers amount from vault custody to owner.
func (b *Bank) Push(_ context.Context, owner string, amount sdkmath.Int) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	if amount.IsNil() || !amount.IsPositive() {
		return ErrNonPositiveAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.custody.LT(amount) {
		return fmt.Errorf("%w: custody holds %s, push of %s requested",
			ErrInsufficientFunds, b.custody, amount)
	}
	b.custody = b.custody.Sub(amount)

	balance, ok := b.accounts[owner]
	if !ok {
		balance = sdkmath.ZeroInt()
	}
	b.accounts[owner] = balance.Add(amount)
	return nil
}

// BalanceOf returns owner's free balance, zero if unknown.
func (b *Bank) BalanceOf(owner string) sdkmath.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if balance, ok := b.accounts[owner]; ok {
		return balance
	}
	return sdkmath.ZeroInt()
}

// Custody returns the amount held on behalf of the vault.
func (b *Bank) Custody() sdkmath.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.custody
}
