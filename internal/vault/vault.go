/*

This file contains the vault core: share-price/mint/burn arithmetic, the
deposit-time capital split, the proportional multi-strategy withdrawal, the
rebalance trigger, and the guarded state machine (pause + reentrancy lock)
wrapping all of them.

Rounding always favors the pool: deposits mint floor(assets*S/A) shares and
withdrawals return floor(shares*A/S) assets, so no deposit/withdraw sequence
can extract value through rounding alone.

*/

package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/basislabs/dnvault/internal/ledger"
	"github.com/basislabs/dnvault/internal/logger"
	"github.com/basislabs/dnvault/internal/types"
)

// Vault orchestrates deposits, withdrawals, rebalance triggering, pausing
// and valuation over two strategy legs and an optional position manager.
type Vault struct {
	logger zerolog.Logger

	owner      string
	minDeposit sdkmath.Int

	shares   *ledger.Ledger
	asset    BaseAsset
	recorder Recorder

	// Reentrancy gate shared by every mutating entry point. A re-entered
	// call fails immediately instead of queuing.
	busy atomic.Bool

	mu              sync.RWMutex
	idle            sdkmath.Int
	spot            StrategyAdapter
	perp            StrategyAdapter
	positionManager PositionManager
	paused          bool
}

// Config holds the dependencies for creating a new Vault.
type Config struct {
	Owner      string
	MinDeposit sdkmath.Int
	Asset      BaseAsset
	Recorder   Recorder // optional
}

// noopRecorder swallows events when no recorder is configured.
type noopRecorder struct{}

func (noopRecorder) Record(types.Event) {}

// New creates a vault with no strategies attached. Strategy and position
// manager handles are set through the administrative setters.
func New(cfg Config) (*Vault, error) {
	if cfg.Owner == "" {
		return nil, errors.Join(ErrZeroAddress, errors.New("vault owner cannot be empty"))
	}
	if cfg.MinDeposit.IsNil() || !cfg.MinDeposit.IsPositive() {
		return nil, errors.Join(ErrZeroAmount, errors.New("minimum deposit must be positive"))
	}
	if cfg.Asset == nil {
		return nil, errors.Join(ErrZeroAddress, errors.New("base asset cannot be nil"))
	}

	recorder := cfg.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}

	v := &Vault{
		logger:     logger.GetForComponent("vault_core"),
		owner:      cfg.Owner,
		minDeposit: cfg.MinDeposit,
		shares:     ledger.New(),
		asset:      cfg.Asset,
		recorder:   recorder,
		idle:       sdkmath.ZeroInt(),
	}

	v.logger.Info().
		Str("owner", cfg.Owner).
		Str("minDeposit", cfg.MinDeposit.String()).
		Msg("Vault created")

	return v, nil
}

// enter acquires the reentrancy gate or fails immediately.
func (v *Vault) enter() error {
	if !v.busy.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

func (v *Vault) exit() {
	v.busy.Store(false)
}

// snapshotRefs copies the collaborator handles and flags under the read lock
// so external calls never happen while the lock is held.
func (v *Vault) snapshotRefs() (idle sdkmath.Int, spot, perp StrategyAdapter, pm PositionManager, paused bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.idle, v.spot, v.perp, v.positionManager, v.paused
}

func (v *Vault) creditIdle(amount sdkmath.Int) {
	v.mu.Lock()
	v.idle = v.idle.Add(amount)
	v.mu.Unlock()
}

func (v *Vault) debitIdle(amount sdkmath.Int) {
	v.mu.Lock()
	v.idle = v.idle.Sub(amount)
	v.mu.Unlock()
}

// valuation sums idle balance and both strategies' live balances. With either
// strategy unset it degrades to the idle balance only.
func (v *Vault) valuation(ctx context.Context, idle sdkmath.Int, spot, perp StrategyAdapter) (sdkmath.Int, error) {
	if spot == nil || perp == nil {
		return idle, nil
	}

	spotAssets, err := strategyBalance(ctx, spot)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("spot leg valuation failed: %w", err)
	}
	perpAssets, err := strategyBalance(ctx, perp)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("perp leg valuation failed: %w", err)
	}

	return idle.Add(spotAssets).Add(perpAssets), nil
}

// strategyBalance queries a strategy's balance and validates the reported
// value before it enters any share math.
func strategyBalance(ctx context.Context, s StrategyAdapter) (sdkmath.Int, error) {
	balance, err := s.TotalAssets(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if balance.IsNil() {
		return sdkmath.ZeroInt(), errors.New("strategy reported nil balance")
	}
	if balance.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("strategy reported negative balance: %s", balance)
	}
	return balance, nil
}

// TotalAssets returns the live valuation of all assets under management:
// idle plus both strategy legs. No side effects; callable while paused.
func (v *Vault) TotalAssets(ctx context.Context) (sdkmath.Int, error) {
	idle, spot, perp, _, _ := v.snapshotRefs()
	return v.valuation(ctx, idle, spot, perp)
}

// calculateShares converts an asset amount to shares against the given
// totals. The first depositor prices 1 share = 1 asset unit; afterwards the
// division truncates against the depositor.
func calculateShares(assets, totalAssets, totalShares sdkmath.Int) sdkmath.Int {
	if totalShares.IsZero() || totalAssets.IsZero() {
		return assets
	}
	return assets.Mul(totalShares).Quo(totalAssets)
}

// calculateAssets converts shares back to assets, truncating against the
// withdrawer.
func calculateAssets(shares, totalAssets, totalShares sdkmath.Int) sdkmath.Int {
	if totalShares.IsZero() {
		return sdkmath.ZeroInt()
	}
	return shares.Mul(totalAssets).Quo(totalShares)
}

// PreviewDeposit returns the shares a deposit of assets would mint right
// now. Zero shares for nonzero assets is an error, never a silent no-op.
func (v *Vault) PreviewDeposit(ctx context.Context, assets sdkmath.Int) (sdkmath.Int, error) {
	if assets.IsNil() || !assets.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmount
	}

	total, err := v.TotalAssets(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	shares := calculateShares(assets, total, v.shares.TotalShares())
	if shares.IsZero() {
		return sdkmath.ZeroInt(), errors.Join(ErrZeroAmount, errors.New("deposit truncates to zero shares"))
	}
	return shares, nil
}

// PreviewWithdraw returns the assets a withdrawal of shares would pay out
// right now. An empty vault previews to zero.
func (v *Vault) PreviewWithdraw(ctx context.Context, shares sdkmath.Int) (sdkmath.Int, error) {
	if shares.IsNil() || shares.IsNegative() {
		return sdkmath.ZeroInt(), ErrZeroAmount
	}

	total, err := v.TotalAssets(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	return calculateAssets(shares, total, v.shares.TotalShares()), nil
}

// Deposit pulls assets from owner, mints shares against the pre-transfer
// valuation, and deploys the capital half to the spot leg and half (plus the
// odd remainder) to the perp leg. Any failure unwinds every mutation made in
// the call.
func (v *Vault) Deposit(ctx context.Context, owner string, assets sdkmath.Int) (sdkmath.Int, error) {
	if err := v.enter(); err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer v.exit()

	if owner == "" {
		return sdkmath.ZeroInt(), errors.Join(ErrZeroAddress, errors.New("depositor cannot be empty"))
	}
	if assets.IsNil() || !assets.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmount
	}

	idle, spot, perp, pm, paused := v.snapshotRefs()
	if paused {
		return sdkmath.ZeroInt(), ErrVaultPaused
	}
	if assets.LT(v.minDeposit) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %s < %s", ErrDepositTooSmall, assets, v.minDeposit)
	}
	if spot == nil || perp == nil {
		return sdkmath.ZeroInt(), ErrStrategyNotSet
	}

	// Shares are priced against the valuation before the transfer lands.
	total, err := v.valuation(ctx, idle, spot, perp)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	shares := calculateShares(assets, total, v.shares.TotalShares())
	if shares.IsZero() {
		return sdkmath.ZeroInt(), errors.Join(ErrZeroAmount, errors.New("deposit truncates to zero shares"))
	}

	if err := v.asset.Pull(ctx, owner, assets); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to pull deposit from %s: %w", owner, err)
	}
	v.creditIdle(assets)

	if err := v.shares.Mint(owner, shares); err != nil {
		v.debitIdle(assets)
		if pushErr := v.asset.Push(ctx, owner, assets); pushErr != nil {
			v.logger.Error().Err(pushErr).Str("owner", owner).Msg("Deposit unwind: failed to return assets")
		}
		return sdkmath.ZeroInt(), fmt.Errorf("failed to mint shares: %w", err)
	}

	// Odd remainder goes to the perp leg so the two legs always sum to assets.
	spotAmount := assets.QuoRaw(2)
	perpAmount := assets.Sub(spotAmount)

	accepted, err := spot.Deposit(ctx, spotAmount)
	if err != nil || accepted.IsNil() || !accepted.Equal(spotAmount) {
		v.rollbackDeposit(ctx, owner, assets, shares, spot, sdkmath.ZeroInt(), perp, sdkmath.ZeroInt())
		return sdkmath.ZeroInt(), depositLegError("spot", spotAmount, accepted, err)
	}

	accepted, err = perp.Deposit(ctx, perpAmount)
	if err != nil || accepted.IsNil() || !accepted.Equal(perpAmount) {
		v.rollbackDeposit(ctx, owner, assets, shares, spot, spotAmount, perp, sdkmath.ZeroInt())
		return sdkmath.ZeroInt(), depositLegError("perp", perpAmount, accepted, err)
	}

	if pm != nil {
		if err := pm.UpdatePosition(ctx, spotAmount, perpAmount); err != nil {
			v.rollbackDeposit(ctx, owner, assets, shares, spot, spotAmount, perp, perpAmount)
			return sdkmath.ZeroInt(), fmt.Errorf("position manager rejected the new split: %w", err)
		}
	}

	v.debitIdle(assets)

	v.recorder.Record(types.OperationReceipt{
		Op:        types.EventDeposit,
		Owner:     owner,
		Assets:    assets,
		Shares:    shares,
		SpotLeg:   spotAmount,
		PerpLeg:   perpAmount,
		Timestamp: time.Now().UTC(),
	})

	v.logger.Info().
		Str("owner", owner).
		Str("assets", assets.String()).
		Str("shares", shares.String()).
		Str("spotLeg", spotAmount.String()).
		Str("perpLeg", perpAmount.String()).
		Msg("Deposit settled")

	return shares, nil
}

// depositLegError builds the failure for a leg that did not fully accept.
func depositLegError(leg string, requested, accepted sdkmath.Int, err error) error {
	if err != nil {
		return errors.Join(ErrStrategyDepositFailed, fmt.Errorf("%s leg deposit failed: %w", leg, err))
	}
	return errors.Join(ErrStrategyDepositFailed,
		fmt.Errorf("%s leg accepted %s of %s requested", leg, accepted, requested))
}

// rollbackDeposit unwinds a partially executed deposit: claws deployed legs
// back, burns the minted shares and returns the pulled assets. Compensation
// failures are logged and left for reconciliation; they cannot be retried
// inside the failing call.
func (v *Vault) rollbackDeposit(ctx context.Context, owner string, assets, shares sdkmath.Int,
	spot StrategyAdapter, spotDeployed sdkmath.Int, perp StrategyAdapter, perpDeployed sdkmath.Int) {

	if spotDeployed.IsPositive() {
		if returned, err := spot.Withdraw(ctx, spotDeployed); err != nil || !returned.Equal(spotDeployed) {
			v.logger.Error().Err(err).Str("amount", spotDeployed.String()).Msg("Deposit unwind: spot leg clawback incomplete")
		}
	}
	if perpDeployed.IsPositive() {
		if returned, err := perp.Withdraw(ctx, perpDeployed); err != nil || !returned.Equal(perpDeployed) {
			v.logger.Error().Err(err).Str("amount", perpDeployed.String()).Msg("Deposit unwind: perp leg clawback incomplete")
		}
	}
	if err := v.shares.Burn(owner, shares); err != nil {
		v.logger.Error().Err(err).Str("owner", owner).Msg("Deposit unwind: failed to burn minted shares")
	}
	v.debitIdle(assets)
	if err := v.asset.Push(ctx, owner, assets); err != nil {
		v.logger.Error().Err(err).Str("owner", owner).Msg("Deposit unwind: failed to return assets")
	}
}

// Withdraw burns shares, pulls capital proportionally from both legs, and
// pays the owner out of the replenished idle balance. Shares are burned
// before any external interaction.
func (v *Vault) Withdraw(ctx context.Context, owner string, shares sdkmath.Int) (sdkmath.Int, error) {
	if err := v.enter(); err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer v.exit()

	if owner == "" {
		return sdkmath.ZeroInt(), errors.Join(ErrZeroAddress, errors.New("withdrawer cannot be empty"))
	}
	if shares.IsNil() || !shares.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmount
	}

	idle, spot, perp, _, paused := v.snapshotRefs()
	if paused {
		return sdkmath.ZeroInt(), ErrVaultPaused
	}
	if v.shares.BalanceOf(owner).LT(shares) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: owner %s holds %s, %s requested",
			ErrInsufficientBalance, owner, v.shares.BalanceOf(owner), shares)
	}

	// T is measured once; every leg split uses the same valuation.
	total, err := v.valuation(ctx, idle, spot, perp)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	assets := calculateAssets(shares, total, v.shares.TotalShares())
	if assets.IsZero() {
		return sdkmath.ZeroInt(), errors.Join(ErrZeroAmount, errors.New("withdrawal truncates to zero assets"))
	}

	if err := v.shares.Burn(owner, shares); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to burn shares: %w", err)
	}

	spotPulled, err := v.pullLeg(ctx, "spot", spot, assets, total)
	if err != nil {
		v.rollbackWithdraw(ctx, owner, shares, spot, sdkmath.ZeroInt(), perp, sdkmath.ZeroInt())
		return sdkmath.ZeroInt(), err
	}
	perpPulled, err := v.pullLeg(ctx, "perp", perp, assets, total)
	if err != nil {
		v.rollbackWithdraw(ctx, owner, shares, spot, spotPulled, perp, sdkmath.ZeroInt())
		return sdkmath.ZeroInt(), err
	}

	v.mu.Lock()
	if v.idle.LT(assets) {
		v.mu.Unlock()
		v.rollbackWithdraw(ctx, owner, shares, spot, spotPulled, perp, perpPulled)
		return sdkmath.ZeroInt(), errors.Join(ErrInsufficientBalance,
			fmt.Errorf("idle balance cannot cover payout of %s", assets))
	}
	v.idle = v.idle.Sub(assets)
	v.mu.Unlock()

	if err := v.asset.Push(ctx, owner, assets); err != nil {
		v.creditIdle(assets)
		v.rollbackWithdraw(ctx, owner, shares, spot, spotPulled, perp, perpPulled)
		return sdkmath.ZeroInt(), fmt.Errorf("failed to pay out %s to %s: %w", assets, owner, err)
	}

	v.recorder.Record(types.OperationReceipt{
		Op:        types.EventWithdraw,
		Owner:     owner,
		Assets:    assets,
		Shares:    shares,
		SpotLeg:   spotPulled,
		PerpLeg:   perpPulled,
		Timestamp: time.Now().UTC(),
	})

	v.logger.Info().
		Str("owner", owner).
		Str("assets", assets.String()).
		Str("shares", shares.String()).
		Str("spotLeg", spotPulled.String()).
		Str("perpLeg", perpPulled.String()).
		Msg("Withdrawal settled")

	return assets, nil
}

// pullLeg withdraws this leg's proportional slice of a payout:
// floor(assets * legBalance / total). Zero-balance legs are skipped. The leg
// must return exactly the requested amount.
func (v *Vault) pullLeg(ctx context.Context, name string, leg StrategyAdapter, assets, total sdkmath.Int) (sdkmath.Int, error) {
	if leg == nil {
		return sdkmath.ZeroInt(), nil
	}

	legBalance, err := strategyBalance(ctx, leg)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%s leg balance query failed: %w", name, err)
	}
	if legBalance.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	legWithdraw := assets.Mul(legBalance).Quo(total)
	if legWithdraw.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	returned, err := leg.Withdraw(ctx, legWithdraw)
	if err != nil {
		return sdkmath.ZeroInt(), errors.Join(ErrInsufficientBalance,
			fmt.Errorf("%s leg withdrawal failed: %w", name, err))
	}
	if returned.IsNil() || !returned.Equal(legWithdraw) {
		return sdkmath.ZeroInt(), errors.Join(ErrInsufficientBalance,
			fmt.Errorf("%s leg returned %s of %s requested", name, returned, legWithdraw))
	}

	v.creditIdle(legWithdraw)
	return legWithdraw, nil
}

// rollbackWithdraw unwinds a partially executed withdrawal: re-deploys any
// pulled legs and re-mints the burned shares. Best-effort; failures are
// logged for reconciliation.
func (v *Vault) rollbackWithdraw(ctx context.Context, owner string, shares sdkmath.Int,
	spot StrategyAdapter, spotPulled sdkmath.Int, perp StrategyAdapter, perpPulled sdkmath.Int) {

	if spotPulled.IsPositive() {
		if accepted, err := spot.Deposit(ctx, spotPulled); err != nil || !accepted.Equal(spotPulled) {
			v.logger.Error().Err(err).Str("amount", spotPulled.String()).Msg("Withdraw unwind: spot leg redeposit incomplete")
		} else {
			v.debitIdle(spotPulled)
		}
	}
	if perpPulled.IsPositive() {
		if accepted, err := perp.Deposit(ctx, perpPulled); err != nil || !accepted.Equal(perpPulled) {
			v.logger.Error().Err(err).Str("amount", perpPulled.String()).Msg("Withdraw unwind: perp leg redeposit incomplete")
		} else {
			v.debitIdle(perpPulled)
		}
	}
	if err := v.shares.Mint(owner, shares); err != nil {
		v.logger.Error().Err(err).Str("owner", owner).Msg("Withdraw unwind: failed to re-mint shares")
	}
}

// Rebalance asks the position manager whether exposure drifted and, if so,
// requests sizing and reports it. The sizing result is advisory: the manager
// owns its meaning and no capital-movement policy is defined for it here.
func (v *Vault) Rebalance(ctx context.Context) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.exit()

	_, _, _, pm, paused := v.snapshotRefs()
	if paused {
		return ErrVaultPaused
	}
	if pm == nil {
		return ErrPositionManagerNotSet
	}

	needed, err := pm.IsRebalanceNeeded(ctx)
	if err != nil {
		return fmt.Errorf("rebalance check failed: %w", err)
	}
	if !needed {
		return ErrRebalanceNotNeeded
	}

	deltaBefore, err := pm.CurrentDelta(ctx)
	if err != nil {
		return fmt.Errorf("failed to read delta before sizing: %w", err)
	}

	spotAdj, perpAdj, err := pm.CalculateRebalanceAmounts(ctx)
	if err != nil {
		return fmt.Errorf("rebalance sizing failed: %w", err)
	}

	deltaAfter, err := pm.CurrentDelta(ctx)
	if err != nil {
		return fmt.Errorf("failed to read delta after sizing: %w", err)
	}

	v.recorder.Record(types.RebalanceReport{
		DeltaBefore:    deltaBefore,
		DeltaAfter:     deltaAfter,
		SpotAdjustment: spotAdj,
		PerpAdjustment: perpAdj,
		Timestamp:      time.Now().UTC(),
	})

	v.logger.Info().
		Str("deltaBefore", deltaBefore.String()).
		Str("deltaAfter", deltaAfter.String()).
		Str("spotAdjustment", spotAdj.String()).
		Str("perpAdjustment", perpAdj.String()).
		Msg("Rebalance requested")

	return nil
}

// SetSpotStrategy replaces the spot leg handle. Owner only.
func (v *Vault) SetSpotStrategy(caller string, s StrategyAdapter) error {
	return v.setRef(caller, func() error {
		if s == nil {
			return ErrZeroAddress
		}
		v.spot = s
		return nil
	}, "spot strategy")
}

// SetPerpStrategy replaces the perp leg handle. Owner only.
func (v *Vault) SetPerpStrategy(caller string, s StrategyAdapter) error {
	return v.setRef(caller, func() error {
		if s == nil {
			return ErrZeroAddress
		}
		v.perp = s
		return nil
	}, "perp strategy")
}

// SetPositionManager replaces the position manager handle. Owner only.
func (v *Vault) SetPositionManager(caller string, pm PositionManager) error {
	return v.setRef(caller, func() error {
		if pm == nil {
			return ErrZeroAddress
		}
		v.positionManager = pm
		return nil
	}, "position manager")
}

// setRef runs an owner-gated reference mutation under both the reentrancy
// gate and the state lock, so a handle can never change under an in-flight
// deposit, withdrawal or rebalance.
func (v *Vault) setRef(caller string, mutate func() error, what string) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.exit()

	if caller != v.owner {
		return ErrNotOwner
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := mutate(); err != nil {
		return err
	}

	v.logger.Info().Str("caller", caller).Msgf("Replaced %s reference", what)
	return nil
}

// EmergencyPause halts all mutating entry points. Owner only.
func (v *Vault) EmergencyPause(caller string) error {
	return v.setPaused(caller, true)
}

// EmergencyUnpause re-enables mutating entry points. Owner only.
func (v *Vault) EmergencyUnpause(caller string) error {
	return v.setPaused(caller, false)
}

func (v *Vault) setPaused(caller string, paused bool) error {
	if err := v.enter(); err != nil {
		return err
	}
	defer v.exit()

	if caller != v.owner {
		return ErrNotOwner
	}

	v.mu.Lock()
	v.paused = paused
	v.mu.Unlock()

	v.recorder.Record(types.PauseEvent{Paused: paused, Timestamp: time.Now().UTC()})
	v.logger.Warn().Bool("paused", paused).Str("caller", caller).Msg("Emergency pause state changed")
	return nil
}

// IsPaused reports the pause flag.
func (v *Vault) IsPaused() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.paused
}

// SharesOf returns owner's share balance.
func (v *Vault) SharesOf(owner string) sdkmath.Int {
	return v.shares.BalanceOf(owner)
}

// TotalShares returns the total share supply.
func (v *Vault) TotalShares() sdkmath.Int {
	return v.shares.TotalShares()
}

// IdleBalance returns the base asset held directly by the vault.
func (v *Vault) IdleBalance() sdkmath.Int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.idle
}

// Owner returns the administrative owner.
func (v *Vault) Owner() string {
	return v.owner
}

// Ledger exposes the share ledger for invariant checks and transfers.
func (v *Vault) Ledger() *ledger.Ledger {
	return v.shares
}

// CurrentDelta returns the position manager's signed net exposure. Read-only.
func (v *Vault) CurrentDelta(ctx context.Context) (sdkmath.Int, error) {
	v.mu.RLock()
	pm := v.positionManager
	v.mu.RUnlock()

	if pm == nil {
		return sdkmath.ZeroInt(), ErrPositionManagerNotSet
	}
	return pm.CurrentDelta(ctx)
}

// StrategyAssets reports the live balance of each leg, zero when unset.
// Display/snapshot helper for the engine and the dashboard.
func (v *Vault) StrategyAssets(ctx context.Context) (spotAssets, perpAssets sdkmath.Int, err error) {
	v.mu.RLock()
	spot, perp := v.spot, v.perp
	v.mu.RUnlock()

	spotAssets, perpAssets = sdkmath.ZeroInt(), sdkmath.ZeroInt()
	if spot != nil {
		if spotAssets, err = strategyBalance(ctx, spot); err != nil {
			return sdkmath.ZeroInt(), sdkmath.ZeroInt(), fmt.Errorf("spot leg balance query failed: %w", err)
		}
	}
	if perp != nil {
		if perpAssets, err = strategyBalance(ctx, perp); err != nil {
			return sdkmath.ZeroInt(), sdkmath.ZeroInt(), fmt.Errorf("perp leg balance query failed: %w", err)
		}
	}
	return spotAssets, perpAssets, nil
}
