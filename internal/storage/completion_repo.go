package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const completionColumns = `id, session_id, action_group, action_id, kind, exp_gained, COALESCE(stat, ''),
	stat_exp, exp_cost, crit, stat_level_up, COALESCE(unlocks, ''), completed_at`

type CompletionRepo struct {
	db DBTX
}

func NewCompletionRepo(db DBTX) *CompletionRepo {
	return &CompletionRepo{db: db}
}

func (r *CompletionRepo) Insert(ctx context.Context, c CompletionRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (session_id, action_group, action_id, kind, exp_gained, stat, stat_exp, exp_cost, crit, stat_level_up, unlocks, completed_at)
		VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, NULLIF(?, ''), ?)
	`, c.SessionID, c.Group, c.ActionID, c.Kind, c.ExpGained, c.Stat, c.StatExp, c.ExpCost,
		boolToInt(c.Crit), boolToInt(c.StatLevelUp), c.Unlocks, c.CompletedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("completion insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("completion last insert id: %w", err)
	}
	return id, nil
}

func (r *CompletionRepo) CountSince(ctx context.Context, actionID string, since time.Time) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM completions
		WHERE action_id = ? AND completed_at >= ?
	`, actionID, since.UTC())
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("completion count: %w", err)
	}
	return n, nil
}

func (r *CompletionRepo) Last(ctx context.Context, actionID string) (*CompletionRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+completionColumns+`
		FROM completions
		WHERE action_id = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT 1
	`, actionID)
	c, err := scanCompletion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("completion last: %w", err)
	}
	return c, nil
}

// Recent returns the newest completions first.
func (r *CompletionRepo) Recent(ctx context.Context, limit int) ([]CompletionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+completionColumns+`
		FROM completions
		ORDER BY completed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("completion recent: %w", err)
	}
	defer rows.Close()

	var out []CompletionRecord
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("completion scan: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion rows: %w", err)
	}
	return out, nil
}

// ExpBySession sums the character EXP earned by idle actions during one session.
func (r *CompletionRepo) ExpBySession(ctx context.Context, sessionID string) (float64, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(exp_gained), 0)
		FROM completions
		WHERE session_id = ?
	`, sessionID)
	var total float64
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("completion sum: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompletion(s rowScanner) (*CompletionRecord, error) {
	var c CompletionRecord
	var crit, levelUp int
	if err := s.Scan(&c.ID, &c.SessionID, &c.Group, &c.ActionID, &c.Kind, &c.ExpGained, &c.Stat,
		&c.StatExp, &c.ExpCost, &crit, &levelUp, &c.Unlocks, &c.CompletedAt); err != nil {
		return nil, err
	}
	c.Crit = crit != 0
	c.StatLevelUp = levelUp != 0
	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
