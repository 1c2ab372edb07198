package vault

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/basislabs/dnvault/internal/types"
)

// StrategyAdapter is a pluggable unit that holds and grows a sub-allocation
// of the base asset. The core consumes this contract and never trusts a
// reported amount without checking it against the requested amount.
//
// Contract obligations:
//   - Deposit fully accepts the requested amount or fails the whole call.
//   - Withdraw returns exactly the requested amount or fails the whole call.
//   - TotalAssets is non-decreasing between calls absent a Withdraw, and
//     reflects balance immediately after Deposit/Withdraw returns.
type StrategyAdapter interface {
	// Deposit deploys amount into the strategy and returns the accepted amount.
	Deposit(ctx context.Context, amount sdkmath.Int) (sdkmath.Int, error)

	// Withdraw pulls amount back out and returns the amount actually returned.
	Withdraw(ctx context.Context, amount sdkmath.Int) (sdkmath.Int, error)

	// TotalAssets reports the live, possibly yield-accrued, strategy balance.
	TotalAssets(ctx context.Context) (sdkmath.Int, error)
}

// PositionManager computes net directional exposure and rebalance sizing.
// Sign convention: positive delta = net long, negative = net short, zero is
// the neutral target. The core treats it as an opaque controller and does no
// delta computation of its own.
type PositionManager interface {
	// IsRebalanceNeeded reports whether exposure drifted past tolerance.
	IsRebalanceNeeded(ctx context.Context) (bool, error)

	// CurrentDelta returns the signed net directional exposure in base units.
	CurrentDelta(ctx context.Context) (sdkmath.Int, error)

	// CalculateRebalanceAmounts returns the signed per-leg adjustments that
	// would restore neutrality. The sizing meaning is owned entirely by the
	// manager.
	CalculateRebalanceAmounts(ctx context.Context) (spotAdjustment, perpAdjustment sdkmath.Int, err error)

	// UpdatePosition informs the manager of freshly deployed capital.
	UpdatePosition(ctx context.Context, spotAmount, perpAmount sdkmath.Int) error
}

// BaseAsset abstracts the base token's transfer primitives. The vault pulls
// on deposit and pushes on withdrawal; custody of idle balance is tracked by
// the vault itself.
type BaseAsset interface {
	// Pull transfers amount from owner into vault custody.
	Pull(ctx context.Context, owner string, amount sdkmath.Int) error

	// Push transfers amount from vault custody to owner.
	Push(ctx context.Context, owner string, amount sdkmath.Int) error
}

// Recorder receives the events the vault emits. Implementations must not
// block vault operations; recording failures are theirs to report.
type Recorder interface {
	Record(event types.Event)
}

// MultiRecorder fans a vault event out to several recorders.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(event types.Event) {
	for _, r := range m {
		r.Record(event)
	}
}
