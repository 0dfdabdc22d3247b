package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const kvTable = "ADAPTER_STATE"

// KV is the auxiliary key/value surface offered to adapters. Not every vendor
// needs it; GoCardless keeps tokens and requisition bookkeeping here.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SQLiteKV is a KV backed by a local sqlite file via sqlx.
type SQLiteKV struct {
	db *sqlx.DB
}

// NewSQLiteKV opens (and if needed initializes) the KV database at path.
func NewSQLiteKV(path string) (*SQLiteKV, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open kv store: %w", err)
	}
	kv := &SQLiteKV{db: db}
	if err := kv.init(); err != nil {
		db.Close()
		return nil, err
	}
	return kv, nil
}

func (kv *SQLiteKV) init() error {
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		K TEXT PRIMARY KEY,
		V TEXT NOT NULL,
		UPDATED_AT TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`, kvTable)
	if _, err := kv.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize kv schema: %w", err)
	}
	return nil
}

func (kv *SQLiteKV) Close() {
	kv.db.Close()
}

func (kv *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	query := fmt.Sprintf("SELECT V FROM %s WHERE K = ?", kvTable)
	var value string
	err := kv.db.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (kv *SQLiteKV) Put(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (K, V, UPDATED_AT) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT(K) DO UPDATE SET V = excluded.V, UPDATED_AT = CURRENT_TIMESTAMP",
		kvTable,
	)
	_, err := kv.db.ExecContext(ctx, query, key, value)
	return err
}

func (kv *SQLiteKV) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE K = ?", kvTable)
	_, err := kv.db.ExecContext(ctx, query, key)
	return err
}
