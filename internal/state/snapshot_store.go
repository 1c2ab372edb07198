// ./internal/state/snapshot_store.go
package state

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/basislabs/dnvault/internal/types"
)

// SaveVaultSnapshot saves a point-in-time vault snapshot to the database.
func SaveVaultSnapshot(snapshot types.VaultSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO vault_snapshots (
			cycle_number, snapshot_timestamp,
			total_assets, total_shares, idle_balance, spot_assets, perp_assets,
			share_price, paused
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err := DB.QueryRow(
		query,
		snapshot.CycleNumber, snapshot.Timestamp,
		snapshot.TotalAssets.String(), snapshot.TotalShares.String(),
		snapshot.IdleBalance.String(), snapshot.SpotAssets.String(), snapshot.PerpAssets.String(),
		snapshot.SharePrice, snapshot.Paused,
	).Scan(&snapshotID)
	if err != nil {
		return 0, fmt.Errorf("failed to save vault snapshot: %w", err)
	}

	log.Info().
		Int64("snapshot_id", snapshotID).
		Int("cycle_number", snapshot.CycleNumber).
		Str("total_assets", snapshot.TotalAssets.String()).
		Float64("share_price", snapshot.SharePrice).
		Msg("Vault snapshot saved to database")

	return snapshotID, nil
}

// GetLatestSnapshot returns the most recent vault snapshot, or nil when no
// cycle has completed yet.
func GetLatestSnapshot() (*types.VaultSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT snapshot_id, cycle_number, snapshot_timestamp,
		       total_assets, total_shares, idle_balance, spot_assets, perp_assets,
		       share_price, paused
		FROM vault_snapshots
		ORDER BY snapshot_timestamp DESC
		LIMIT 1;
	`

	var snapshot types.VaultSnapshot
	var totalAssets, totalShares, idle, spotAssets, perpAssets string
	err := DB.QueryRow(query).Scan(
		&snapshot.SnapshotID, &snapshot.CycleNumber, &snapshot.Timestamp,
		&totalAssets, &totalShares, &idle, &spotAssets, &perpAssets,
		&snapshot.SharePrice, &snapshot.Paused,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	if snapshot.TotalAssets, err = parseAmount(totalAssets, "total_assets"); err != nil {
		return nil, err
	}
	if snapshot.TotalShares, err = parseAmount(totalShares, "total_shares"); err != nil {
		return nil, err
	}
	if snapshot.IdleBalance, err = parseAmount(idle, "idle_balance"); err != nil {
		return nil, err
	}
	if snapshot.SpotAssets, err = parseAmount(spotAssets, "spot_assets"); err != nil {
		return nil, err
	}
	if snapshot.PerpAssets, err = parseAmount(perpAssets, "perp_assets"); err != nil {
		return nil, err
	}

	return &snapshot, nil
}
