// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
// Amounts are NUMERIC(40, 0): integer base units, wide enough for any
// realistic supply.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS vault_operations (
			receipt_id SERIAL PRIMARY KEY,
			op VARCHAR(16) NOT NULL,
			owner VARCHAR(255) NOT NULL,
			assets NUMERIC(40, 0) NOT NULL,
			shares NUMERIC(40, 0) NOT NULL,
			spot_leg NUMERIC(40, 0) NOT NULL,
			perp_leg NUMERIC(40, 0) NOT NULL,
			op_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_vault_operations_timestamp ON vault_operations(op_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_vault_operations_owner ON vault_operations(owner);
		CREATE INDEX IF NOT EXISTS idx_vault_operations_op ON vault_operations(op);

		CREATE TABLE IF NOT EXISTS rebalance_events (
			report_id SERIAL PRIMARY KEY,
			delta_before NUMERIC(40, 0) NOT NULL,
			delta_after NUMERIC(40, 0) NOT NULL,
			spot_adjustment NUMERIC(40, 0) NOT NULL,
			perp_adjustment NUMERIC(40, 0) NOT NULL,
			event_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_rebalance_events_timestamp ON rebalance_events(event_timestamp DESC);

		CREATE TABLE IF NOT EXISTS pause_events (
			event_id SERIAL PRIMARY KEY,
			paused BOOLEAN NOT NULL,
			event_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS vault_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			cycle_number INTEGER NOT NULL,
			snapshot_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			total_assets NUMERIC(40, 0) NOT NULL,
			total_shares NUMERIC(40, 0) NOT NULL,
			idle_balance NUMERIC(40, 0) NOT NULL,
			spot_assets NUMERIC(40, 0) NOT NULL,
			perp_assets NUMERIC(40, 0) NOT NULL,
			share_price DECIMAL(20, 8) NOT NULL,
			paused BOOLEAN NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_vault_snapshots_timestamp ON vault_snapshots(snapshot_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_vault_snapshots_cycle ON vault_snapshots(cycle_number DESC);

		-- Cycle counter table for persistent global cycle tracking
		CREATE TABLE IF NOT EXISTS cycle_counter (
			id INTEGER PRIMARY KEY DEFAULT 1,
			current_cycle INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row_check CHECK (id = 1)
		);

		-- Insert initial row if it doesn't exist
		INSERT INTO cycle_counter (id, current_cycle)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING;
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
