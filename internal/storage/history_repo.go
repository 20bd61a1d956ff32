package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type HistoryRepo struct {
	db DBTX
}

func NewHistoryRepo(db DBTX) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Insert stores h under a fresh id, which it returns. CreatedAt must be set.
func (r *HistoryRepo) Insert(ctx context.Context, h HistoryEntry) (string, error) {
	h.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO save_history (id, save_key, version, data, exp, lifetime_exp, level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, h.ID, h.SaveKey, h.Version, h.Data, h.Exp, h.LifetimeExp, h.Level, h.CreatedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("history insert: %w", err)
	}
	return h.ID, nil
}

func (r *HistoryRepo) Get(ctx context.Context, id string) (*HistoryEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("history id %q: %w", id, err)
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id, save_key, version, data, exp, lifetime_exp, level, created_at
		FROM save_history
		WHERE id = ?
	`, id)
	var h HistoryEntry
	if err := row.Scan(&h.ID, &h.SaveKey, &h.Version, &h.Data, &h.Exp, &h.LifetimeExp, &h.Level, &h.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("history get: %w", err)
	}
	return &h, nil
}

// List returns the newest entries for key first. Data is left empty.
func (r *HistoryRepo) List(ctx context.Context, key string, limit int) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, save_key, version, exp, lifetime_exp, level, created_at
		FROM save_history
		WHERE save_key = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, key, limit)
	if err != nil {
		return nil, fmt.Errorf("history list: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.SaveKey, &h.Version, &h.Exp, &h.LifetimeExp, &h.Level, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return out, nil
}

// Prune keeps the newest keep entries for key and deletes the rest.
func (r *HistoryRepo) Prune(ctx context.Context, key string, keep int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM save_history
		WHERE save_key = ? AND id NOT IN (
			SELECT id FROM save_history
			WHERE save_key = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)
	`, key, key, keep)
	if err != nil {
		return 0, fmt.Errorf("history prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("history prune rows: %w", err)
	}
	return n, nil
}
