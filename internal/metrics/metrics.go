// Package metrics exposes the vault's operational counters and gauges on the
// default prometheus registry; the web server serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/basislabs/dnvault/internal/types"
)

var (
	DepositsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dnvault_deposits_total",
		Help: "Number of settled deposits.",
	})
	WithdrawalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dnvault_withdrawals_total",
		Help: "Number of settled withdrawals.",
	})
	RebalancesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dnvault_rebalances_total",
		Help: "Number of rebalance requests delegated to the position manager.",
	})
	PauseFlips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dnvault_pause_flips_total",
		Help: "Number of emergency pause state changes.",
	})

	TotalAssets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dnvault_total_assets",
		Help: "Live valuation of all assets under management, display units.",
	})
	TotalShares = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dnvault_total_shares",
		Help: "Total share supply, display units.",
	})
	SharePrice = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dnvault_share_price",
		Help: "Assets per share.",
	})
	DeltaBps = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dnvault_delta_bps",
		Help: "Absolute net directional exposure in basis points of gross exposure.",
	})
)

// Recorder bumps counters for vault events. Chain it after the state
// recorder with vault.MultiRecorder.
type Recorder struct{}

// NewRecorder creates a metrics-backed event recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Record counts one vault event.
func (Recorder) Record(event types.Event) {
	switch event.Kind() {
	case types.EventDeposit:
		DepositsTotal.Inc()
	case types.EventWithdraw:
		WithdrawalsTotal.Inc()
	case types.EventRebalance:
		RebalancesTotal.Inc()
	case types.EventPause:
		PauseFlips.Inc()
	}
}
