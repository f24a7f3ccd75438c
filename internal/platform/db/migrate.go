package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded migrations in file name order. Every statement
// uses IF NOT EXISTS, so running it on each start is safe.
func Migrate(db *sqlx.DB) error {
	return applyMigrations(db, migrations)
}

func applyMigrations(db *sqlx.DB, fsys fs.FS) error {
	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	for _, name := range files {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		err = RunInTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			for _, stmt := range splitStatements(string(content)) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		logger.Debug.Printf("applied migration %s", name)
	}
	return nil
}

// splitStatements drops "--" comment lines and then cuts the file on ";"; the
// mysql driver refuses multi-statement Exec calls by default. Comments go
// first so a ";" inside one cannot end a statement.
func splitStatements(sql string) []string {
	var lines []string
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var out []string
	for _, part := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
