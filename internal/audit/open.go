package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rutaCognizant/planning-poker/internal/config"
)

// Open builds the Store selected by cfg.Driver. The "none" driver
// returns a nil Store.
func Open(ctx context.Context, cfg config.Audit) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("audit: creating %s: %w", dir, err)
			}
		}
		store, err := OpenSQLite(cfg.SQLitePath, cfg.SQLitePool)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "mongo":
		store, err := OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return NewMemoryStore(), nil
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("audit: unknown driver %q", cfg.Driver)
}
