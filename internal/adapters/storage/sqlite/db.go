package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registra el driver "sqlite3"
)

// Open abre (o crea) la base SQLite en path y aplica el esquema.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty path")
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite: connect %s: %w", path, err)
	}
	// SQLite serializa escrituras; una conexión evita SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
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
		start_time         TIMESTAMP NOT NULL,
		end_time           TIMESTAMP NULL,
		open_slot          TEXT NULL,
		payload            TEXT NOT NULL,
		created_at         TIMESTAMP NOT NULL,
		updated_at         TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS care_actions_open_slot_uq
		ON care_actions (open_slot) WHERE end_time IS NULL`,
	`CREATE INDEX IF NOT EXISTS care_actions_nursery_start_idx
		ON care_actions (nursery_id, start_time)`,
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}
