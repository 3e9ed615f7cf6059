package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openMigrated(t *testing.T) *DB {
	t.Helper()

	cfg := DefaultConfig(filepath.Join(t.TempDir(), "storage_test.db"))
	cfg.AutoMigrate = true

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenRunsMigrations(t *testing.T) {
	db := openMigrated(t)

	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	var count int
	err := db.Conn().QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'deck_versions'`,
	).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query schema: %v", err)
	}
	if count != 1 {
		t.Error("deck_versions table missing after migration")
	}
}

func TestOpenNilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Open(nil) should fail")
	}
}

func TestWithTransactionCommit(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	err := WithTransaction(ctx, db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, display_name, is_admin, created_at, updated_at)
			VALUES ('u1', 'a@example.com', 'Alice', 0, datetime('now'), datetime('now'))
		`)
		return err
	})
	if err != nil {
		t.Fatalf("WithTransaction() error = %v", err)
	}

	var count int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d users, want 1", count)
	}
}

func TestWithTransactionRollback(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := WithTransaction(ctx, db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, display_name, is_admin, created_at, updated_at)
			VALUES ('u1', 'a@example.com', 'Alice', 0, datetime('now'), datetime('now'))
		`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTransaction() error = %v, want boom", err)
	}

	var count int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if count != 0 {
		t.Errorf("got %d users after rollback, want 0", count)
	}
}
