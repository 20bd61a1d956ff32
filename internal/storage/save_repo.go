package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/save"
)

var _ save.Backend = (*SaveRepo)(nil)

// SaveRepo keeps the current save string per key. It is a save.Backend.
type SaveRepo struct {
	db  DBTX
	now func() time.Time
}

func NewSaveRepo(db DBTX) *SaveRepo {
	return &SaveRepo{db: db, now: time.Now}
}

func (r *SaveRepo) Get(ctx context.Context, key string) (string, bool, error) {
	rec, err := r.Record(ctx, key)
	if err != nil {
		return "", false, err
	}
	if rec == nil {
		return "", false, nil
	}
	return rec.Data, true, nil
}

// Record returns the stored row, or nil when key has no save.
func (r *SaveRepo) Record(ctx context.Context, key string) (*SaveRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, data, updated_at FROM saves WHERE key = ?`, key)
	var rec SaveRecord
	if err := row.Scan(&rec.Key, &rec.Data, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("save get: %w", err)
	}
	return &rec, nil
}

func (r *SaveRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO saves (key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, key, value, r.now().UTC())
	if err != nil {
		return fmt.Errorf("save upsert: %w", err)
	}
	return nil
}

func (r *SaveRepo) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM saves WHERE key = ?`, key); err != nil {
		return fmt.Errorf("save delete: %w", err)
	}
	return nil
}
