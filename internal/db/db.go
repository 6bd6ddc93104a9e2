package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vytor/enemresultados/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the local record store.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the SQLite database at path and brings its
// schema up to date. path may already carry query parameters.
func Open(path string) (*DB, error) {
	log := logger.Default().WithPrefix("db")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
	log.Info("opening record store: %s", path)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1) // one writer

	ctx := logger.NewContext(context.Background(), log)
	n, err := Migrate(ctx, sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("record store ready (%d migrations applied)", n)
	return &DB{DB: sqlDB}, nil
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations, in file name order, each in its own transaction. It
// returns how many were applied.
func Migrate(ctx context.Context, conn *sql.DB) (int, error) {
	log := logger.FromContext(ctx)

	if _, err := conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	done, err := appliedVersions(ctx, conn)
	if err != nil {
		return 0, err
	}

	versions, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return 0, err
	}
	sort.Strings(versions)

	applied := 0
	for _, file := range versions {
		version := strings.TrimPrefix(file, "migrations/")
		if done[version] {
			log.Debug("migration %s already applied", version)
			continue
		}
		body, err := migrationsFS.ReadFile(file)
		if err != nil {
			return applied, err
		}

		log.Info("applying migration %s", version)
		if err := applyOne(ctx, conn, version, string(body)); err != nil {
			log.Error("migration %s failed: %v", version, err)
			return applied, fmt.Errorf("apply migration %s: %w", version, err)
		}
		applied++
	}
	return applied, nil
}

func applyOne(ctx context.Context, conn *sql.DB, version, body string) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
		return err
	}
	return tx.Commit()
}

func appliedVersions(ctx context.Context, conn *sql.DB) (map[string]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}
