// ./internal/state/operations_store.go
package state

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/basislabs/dnvault/internal/types"
)

// SaveOperation persists a settled deposit or withdrawal receipt.
func SaveOperation(receipt types.OperationReceipt) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO vault_operations (op, owner, assets, shares, spot_leg, perp_leg, op_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING receipt_id;
	`

	var receiptID int64
	err := DB.QueryRow(
		query,
		string(receipt.Op), receipt.Owner,
		receipt.Assets.String(), receipt.Shares.String(),
		receipt.SpotLeg.String(), receipt.PerpLeg.String(),
		receipt.Timestamp,
	).Scan(&receiptID)
	if err != nil {
		return 0, fmt.Errorf("failed to save operation receipt: %w", err)
	}

	log.Debug().
		Int64("receipt_id", receiptID).
		Str("op", string(receipt.Op)).
		Str("owner", receipt.Owner).
		Msg("Operation receipt saved to database")

	return receiptID, nil
}

// GetRecentOperations returns the most recent deposit/withdraw receipts,
// newest first.
func GetRecentOperations(limit int) ([]types.OperationReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT receipt_id, op, owner, assets, shares, spot_leg, perp_leg, op_timestamp
		FROM vault_operations
		ORDER BY op_timestamp DESC
		LIMIT $1;
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	receipts := make([]types.OperationReceipt, 0, limit)
	for rows.Next() {
		var receipt types.OperationReceipt
		var op, assets, shares, spotLeg, perpLeg string
		var timestamp time.Time
		if err := rows.Scan(&receipt.ReceiptID, &op, &receipt.Owner,
			&assets, &shares, &spotLeg, &perpLeg, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan operation row: %w", err)
		}

		receipt.Op = types.EventKind(op)
		receipt.Timestamp = timestamp
		if receipt.Assets, err = parseAmount(assets, "assets"); err != nil {
			return nil, err
		}
		if receipt.Shares, err = parseAmount(shares, "shares"); err != nil {
			return nil, err
		}
		if receipt.SpotLeg, err = parseAmount(spotLeg, "spot_leg"); err != nil {
			return nil, err
		}
		if receipt.PerpLeg, err = parseAmount(perpLeg, "perp_leg"); err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operation rows: %w", err)
	}

	return receipts, nil
}

// SaveRebalance persists a rebalance report.
func SaveRebalance(report types.RebalanceReport) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO rebalance_events (delta_before, delta_after, spot_adjustment, perp_adjustment, event_timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING report_id;
	`

	var reportID int64
	err := DB.QueryRow(
		query,
		report.DeltaBefore.String(), report.DeltaAfter.String(),
		report.SpotAdjustment.String(), report.PerpAdjustment.String(),
		report.Timestamp,
	).Scan(&reportID)
	if err != nil {
		return 0, fmt.Errorf("failed to save rebalance report: %w", err)
	}

	log.Info().
		Int64("report_id", reportID).
		Str("delta_before", report.DeltaBefore.String()).
		Str("delta_after", report.DeltaAfter.String()).
		Msg("Rebalance report saved to database")

	return reportID, nil
}

// GetRecentRebalances returns the most recent rebalance reports, newest first.
func GetRecentRebalances(limit int) ([]types.RebalanceReport, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT report_id, delta_before, delta_after, spot_adjustment, perp_adjustment, event_timestamp
		FROM rebalance_events
		ORDER BY event_timestamp DESC
		LIMIT $1;
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rebalance events: %w", err)
	}
	defer rows.Close()

	reports := make([]types.RebalanceReport, 0, limit)
	for rows.Next() {
		var report types.RebalanceReport
		var deltaBefore, deltaAfter, spotAdjust, perpAdjust string
		if err := rows.Scan(&report.ReportID, &deltaBefore, &deltaAfter,
			&spotAdjust, &perpAdjust, &report.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan rebalance row: %w", err)
		}

		if report.DeltaBefore, err = parseAmount(deltaBefore, "delta_before"); err != nil {
			return nil, err
		}
		if report.DeltaAfter, err = parseAmount(deltaAfter, "delta_after"); err != nil {
			return nil, err
		}
		if report.SpotAdjustment, err = parseAmount(spotAdjust, "spot_adjustment"); err != nil {
			return nil, err
		}
		if report.PerpAdjustment, err = parseAmount(perpAdjust, "perp_adjustment"); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rebalance rows: %w", err)
	}

	return reports, nil
}

// SavePauseEvent persists a pause flag flip.
func SavePauseEvent(event types.PauseEvent) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	_, err := DB.Exec(
		`INSERT INTO pause_events (paused, event_timestamp) VALUES ($1, $2);`,
		event.Paused, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save pause event: %w", err)
	}
	return nil
}

// parseAmount converts a NUMERIC column back into an sdkmath.Int.
func parseAmount(value, column string) (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(value)
	if !ok {
		return sdkmath.ZeroInt(), fmt.Errorf("column %s holds %q, not a valid integer", column, value)
	}
	return amount, nil
}
