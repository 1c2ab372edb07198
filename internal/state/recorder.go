// ./internal/state/recorder.go
package state

import (
	"github.com/rs/zerolog"

	"github.com/basislabs/dnvault/internal/logger"
	"github.com/basislabs/dnvault/internal/types"
)

// Recorder persists vault events to Postgres. Recording failures are logged,
// never surfaced: the vault's state transition already settled and a storage
// hiccup must not poison it.
type Recorder struct {
	logger zerolog.Logger
}

// NewRecorder creates a database-backed event recorder.
func NewRecorder() *Recorder {
	return &Recorder{logger: logger.GetForComponent("state_recorder")}
}

// Record persists one vault event.
func (r *Recorder) Record(event types.Event) {
	var err error
	switch e := event.(type) {
	case types.OperationReceipt:
		_, err = SaveOperation(e)
	case types.RebalanceReport:
		_, err = SaveRebalance(e)
	case types.PauseEvent:
		err = SavePauseEvent(e)
	default:
		r.logger.Warn().Str("kind", string(event.Kind())).Msg("Unknown event kind, not persisted")
		return
	}

	if err != nil {
		r.logger.Error().Err(err).Str("kind", string(event.Kind())).Msg("Failed to persist vault event")
	}
}
