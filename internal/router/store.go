package router

import (
	"context"
	"fmt"

	mem "nursery-care-log/internal/adapters/storage/memory"
	pg "nursery-care-log/internal/adapters/storage/postgres"
	"nursery-care-log/internal/adapters/storage/sqlite"
	"nursery-care-log/internal/domain/actions"
	"nursery-care-log/internal/platform/config"
	"nursery-care-log/internal/platform/logger"
)

// OpenStore elige el store según la configuración y aplica el esquema.
// El cierre devuelto libera la conexión (no-op para memory).
func OpenStore(ctx context.Context, cfg config.Config, log logger.Logger) (actions.Store, func() error, error) {
	log = logger.OrNop(log)
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StorePostgres:
		if cfg.DBDSN == "" {
			return nil, noop, fmt.Errorf("store postgres requires DB_DSN")
		}
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Info("store ready", map[string]any{"store": string(cfg.Store)})
		return pg.NewActionStore(db), db.Close, nil

	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		log.Info("store ready", map[string]any{"store": string(cfg.Store), "path": cfg.SQLitePath})
		return sqlite.NewActionStore(db), db.Close, nil
	}

	log.Info("store ready", map[string]any{"store": string(config.StoreMemory)})
	return mem.NewActionStore(), noop, nil
}
