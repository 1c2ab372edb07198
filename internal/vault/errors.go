package vault

import "errors"

// Error definitions for zero-tolerance error handling. Every failure aborts
// the whole call with no partial state change; retries are the caller's
// responsibility.
var (
	ErrZeroAmount            = errors.New("amount must be positive")
	ErrZeroAddress           = errors.New("reference is nil")
	ErrDepositTooSmall       = errors.New("deposit is below the dust floor")
	ErrStrategyNotSet        = errors.New("strategy reference is not set")
	ErrPositionManagerNotSet = errors.New("position manager reference is not set")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrStrategyDepositFailed = errors.New("strategy accepted less than the requested deposit")
	ErrVaultPaused           = errors.New("vault is paused")
	ErrRebalanceNotNeeded    = errors.New("rebalance is not needed")
	ErrNotOwner              = errors.New("caller is not the vault owner")
	ErrNotPositionManager    = errors.New("caller is not the position manager")
	ErrReentrantCall         = errors.New("reentrant call rejected")
)
