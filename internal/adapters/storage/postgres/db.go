package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS care_actions (
		id                 TEXT PRIMARY KEY,
		child_id           TEXT NOT NULL,
		nursery_id         TEXT NOT NULL,
		kind               TEXT NOT NULL,
		start_agent_id     TEXT NOT NULL,
		completed_agent_id TEXT NOT NULL DEFAULT '',
		comment            TEXT NOT NULL DEFAULT '',
		start_time         TIMESTAMPTZ NOT NULL,
		end_time           TIMESTAMPTZ NULL,
		open_slot          TEXT NULL,
		payload            JSONB NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL
	)`,
	// Una sola presencia/siesta abierta por niño, guardería y día.
	`CREATE UNIQUE INDEX IF NOT EXISTS care_actions_open_slot_uq
		ON care_actions (open_slot) WHERE end_time IS NULL`,
	`CREATE INDEX IF NOT EXISTS care_actions_nursery_start_idx
		ON care_actions (nursery_id, start_time DESC)`,
	`CREATE INDEX IF NOT EXISTS care_actions_child_idx
		ON care_actions (child_id)`,
}

// Migrate crea tabla e índices si no existen.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
