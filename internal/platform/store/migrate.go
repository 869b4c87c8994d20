package store

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"surveysync/internal/platform/logger"
)

// Migrate applies unapplied .sql files from fsys in name order
// each file runs with its schema_migrations record in one transaction, at most once
func Migrate(ctx context.Context, db TxRunner, fsys fs.FS, log logger.Logger) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("migrate: nil TxRunner")
	}
	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return 0, fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("migrate: load applied: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, fmt.Errorf("migrate: read dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	n := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		if applied[name] {
			log.Debug().Str("file", name).Msg("migration already applied")
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return n, fmt.Errorf("migrate: read %s: %w", name, err)
		}

		log.Info().Str("file", name).Msg("applying migration")
		err = db.Tx(ctx, func(q RowQuerier) error {
			if _, err := q.Exec(ctx, string(body)); err != nil {
				return err
			}
			_, err := q.Exec(ctx,
				`INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT DO NOTHING`, name)
			return err
		})
		if err != nil {
			return n, fmt.Errorf("migrate: apply %s: %w", name, err)
		}
		n++
	}
	return n, nil
}

func appliedMigrations(ctx context.Context, q RowQuerier) (map[string]bool, error) {
	versions, err := Many(ctx, q, func(r Row) (string, error) {
		var v string
		err := r.Scan(&v)
		return v, err
	}, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(versions))
	for _, v := range versions {
		out[v] = true
	}
	return out, nil
}
