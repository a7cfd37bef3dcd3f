package postgres

import (
	"context"
	"io/fs"
	"log"
	"sort"
	"strings"

	"mediaflow/internal/repository/postgres/migrations"
)

const (
	migrationFileSuffix = ".sql"
	dollarQuote         = "$$"
	sqlCommentPrefix    = "--"
)

// Migrator applies the embedded schema files in lexical order and records
// each one in schema_migrations so it runs once.
type Migrator struct {
	db    *DB
	files fs.FS
}

func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db, files: migrations.FS}
}

// NewMigratorWithFS runs migrations from another filesystem.
func NewMigratorWithFS(db *DB, files fs.FS) *Migrator {
	return &Migrator{db: db, files: files}
}

func (m *Migrator) Run(ctx context.Context) error {
	if _, err := m.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return errFailedCreateMigrationsTable(err)
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return errFailedListAppliedMigrations(err)
	}

	names, err := migrationFiles(m.files)
	if err != nil {
		return errFailedReadMigrations(err)
	}

	ran := 0
	for _, name := range names {
		if applied[name] {
			continue
		}

		content, err := fs.ReadFile(m.files, name)
		if err != nil {
			return errFailedReadMigration(name, err)
		}

		if err := m.apply(ctx, name, string(content)); err != nil {
			return err
		}
		log.Printf("applied migration %s", name)
		ran++
	}

	if ran == 0 {
		log.Println("database schema is up to date")
	}

	return nil
}

func (m *Migrator) apply(ctx context.Context, name, content string) error {
	tx, err := m.db.Pool.Begin(ctx)
	if err != nil {
		return errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	for i, stmt := range splitSQLStatements(content) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return errFailedRunMigration(name, i+1, err)
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO schema_migrations (filename) VALUES ($1)
		ON CONFLICT (filename) DO NOTHING
	`, name); err != nil {
		return errFailedRecordMigration(name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errFailedCommitTransaction(err)
	}

	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.Pool.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}

	return applied, rows.Err()
}

func migrationFiles(files fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), migrationFileSuffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

// splitSQLStatements breaks a file into statements on trailing semicolons,
// leaving $$-quoted bodies intact.
func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder
	quoteDepth := 0

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if current.Len() == 0 && (trimmed == "" || strings.HasPrefix(trimmed, sqlCommentPrefix)) {
			continue
		}

		quoteDepth += strings.Count(line, dollarQuote)
		current.WriteString(line)
		current.WriteString("\n")

		if quoteDepth%2 == 0 && strings.HasSuffix(trimmed, ";") {
			statements = append(statements, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	if rest := strings.TrimSpace(current.String()); rest != "" {
		statements = append(statements, rest)
	}

	return statements
}
