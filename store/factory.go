package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Open returns the session log for a backend. target is a file path for
// jsonl and sqlite and a DSN for postgres; memory ignores it.
func Open(backend, target string) (Store, error) {
	switch backend {
	case "", "jsonl":
		if err := ensureDir(target); err != nil {
			return nil, err
		}
		return NewJSONLStore(target), nil

	case "sqlite":
		if err := ensureDir(target); err != nil {
			return nil, err
		}
		return NewSQLiteStore(target)

	case "postgres":
		if target == "" {
			return nil, fmt.Errorf("postgres session log requires a DSN")
		}
		return NewPostgresStore(target)

	case "memory":
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown session log backend: %s (expected 'jsonl', 'sqlite', 'postgres' or 'memory')", backend)
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create session log directory %s: %w", dir, err)
	}
	return nil
}
