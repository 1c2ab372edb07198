/*

This file contains the types shared across the vault core, the persistence
layer and the web dashboard: operation receipts, rebalance reports and
point-in-time vault snapshots.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// EventKind discriminates the events the vault core emits.
type EventKind string

const (
	EventDeposit   EventKind = "DEPOSIT"
	EventWithdraw  EventKind = "WITHDRAW"
	EventRebalance EventKind = "REBALANCE"
	EventPause     EventKind = "PAUSE"
)

// Event is implemented by everything the vault core records.
type Event interface {
	Kind() EventKind
}

// OperationReceipt describes a settled deposit or withdrawal.
type OperationReceipt struct {
	ReceiptID int64       `json:"receipt_id,omitempty"` // Auto-incremented by DB
	Op        EventKind   `json:"op"`
	Owner     string      `json:"owner"`
	Assets    sdkmath.Int `json:"assets"`
	Shares    sdkmath.Int `json:"shares"`
	SpotLeg   sdkmath.Int `json:"spot_leg"` // Amount deployed to / pulled from the spot leg
	PerpLeg   sdkmath.Int `json:"perp_leg"` // Amount deployed to / pulled from the perp leg
	Timestamp time.Time   `json:"timestamp"`
}

func (r OperationReceipt) Kind() EventKind { return r.Op }

// RebalanceReport captures a rebalance trigger: the delta on both sides of
// the sizing query and the advisory adjustments the position manager
// produced. Adjustments are advisory only; the core does not move capital.
type RebalanceReport struct {
	ReportID       int64       `json:"report_id,omitempty"`
	DeltaBefore    sdkmath.Int `json:"delta_before"`
	DeltaAfter     sdkmath.Int `json:"delta_after"`
	SpotAdjustment sdkmath.Int `json:"spot_adjustment"`
	PerpAdjustment sdkmath.Int `json:"perp_adjustment"`
	Timestamp      time.Time   `json:"timestamp"`
}

func (r RebalanceReport) Kind() EventKind { return EventRebalance }

// PauseEvent records an emergency pause flag flip.
type PauseEvent struct {
	Paused    bool      `json:"paused"`
	Timestamp time.Time `json:"timestamp"`
}

func (p PauseEvent) Kind() EventKind { return EventPause }

// VaultSnapshot is a point-in-time view of vault state, persisted once per
// engine cycle for the dashboard and post-hoc analysis.
type VaultSnapshot struct {
	SnapshotID  int64       `json:"snapshot_id,omitempty"`
	CycleNumber int         `json:"cycle_number"`
	Timestamp   time.Time   `json:"timestamp"`
	TotalAssets sdkmath.Int `json:"total_assets"`
	TotalShares sdkmath.Int `json:"total_shares"`
	IdleBalance sdkmath.Int `json:"idle_balance"`
	SpotAssets  sdkmath.Int `json:"spot_assets"`
	PerpAssets  sdkmath.Int `json:"perp_assets"`
	SharePrice  float64     `json:"share_price"` // totalAssets/totalShares, display only
	Paused      bool        `json:"paused"`
}
