package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/idle"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/metrics"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/save"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/storage"
)

// Service couples a Game to persistence: the current save, the save history and
// the completion log.
type Service struct {
	game        *Game
	db          *sql.DB
	backend     save.Backend
	dbBackend   bool
	serializer  *save.Serializer
	history     *storage.HistoryRepo
	completions *storage.CompletionRepo

	sessionID   string
	autosave    time.Duration
	historyKeep int
	lastSave    time.Time
	logger      *zap.Logger
}

type ServiceOption func(*Service)

// WithBackend stores the current save somewhere other than the database.
func WithBackend(b save.Backend) ServiceOption {
	return func(s *Service) {
		s.backend = b
		s.dbBackend = false
	}
}

func WithAutosaveInterval(d time.Duration) ServiceOption {
	return func(s *Service) { s.autosave = d }
}

// WithHistoryKeep bounds how many history rows are kept per save key.
func WithHistoryKeep(n int) ServiceOption {
	return func(s *Service) { s.historyKeep = n }
}

func NewService(db *sql.DB, g *Game, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		game:        g,
		db:          db,
		backend:     storage.NewSaveRepo(db),
		dbBackend:   true,
		history:     storage.NewHistoryRepo(db),
		completions: storage.NewCompletionRepo(db),
		sessionID:   uuid.NewString(),
		autosave:    30 * time.Second,
		historyKeep: 50,
		logger:      logger.Named("GameService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.serializer = save.NewSerializer(g, s.backend, logger, save.WithNow(g.Now))
	s.lastSave = g.Now()
	return s
}

func (s *Service) Game() *Game       { return s.game }
func (s *Service) SessionID() string { return s.sessionID }

// Load applies the stored save. A missing save is not an error; the game keeps
// its fresh state and the result is nil.
func (s *Service) Load(ctx context.Context) (*save.ImportResult, error) {
	res, err := s.serializer.LoadFromStorage(ctx)
	if errors.Is(err, save.ErrNoSave) {
		s.logger.Debug("No stored save, starting fresh")
		return nil, nil
	}
	if err != nil {
		recordImport(err, nil)
		return nil, err
	}
	recordImport(nil, res)
	s.logger.Debug("Save loaded",
		zap.String("format", string(res.Format)),
		zap.String("version", res.Version),
	)
	return res, nil
}

// Tick advances the game, logs completions and autosaves when due.
func (s *Service) Tick(ctx context.Context) (AdvanceResult, error) {
	res := s.game.Advance()
	if err := s.logCompletions(ctx, res.Completions); err != nil {
		return res, err
	}
	for _, en := range res.Unlocked {
		s.logger.Info("Journal entry unlocked", zap.String("entry", en.ID), zap.Int("chapter", en.Chapter))
	}

	if s.game.Now().Sub(s.lastSave) >= s.autosave {
		if err := s.Save(ctx); err != nil {
			s.logger.Error("Autosave failed", zap.Error(err))
		}
	}
	return res, nil
}

func (s *Service) logCompletions(ctx context.Context, comps []idle.Completion) error {
	if len(comps) == 0 {
		return nil
	}
	now := s.game.Now()
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := storage.NewCompletionRepo(tx)
		for _, c := range comps {
			rec := storage.CompletionRecord{
				SessionID:   s.sessionID,
				Group:       string(c.Group),
				ActionID:    c.ActionID,
				Kind:        string(c.Kind),
				ExpGained:   c.ExpGained,
				Stat:        string(c.Stat),
				StatExp:     c.StatExpGained,
				ExpCost:     c.ExpCost,
				Crit:        c.Crit,
				StatLevelUp: c.StatGained != nil,
				Unlocks:     c.Unlocks,
				CompletedAt: now,
			}
			if _, err := repo.Insert(ctx, rec); err != nil {
				return err
			}
			s.logger.Debug("Action completed",
				zap.String("action", c.ActionID),
				zap.Float64("exp", c.ExpGained),
				zap.Bool("crit", c.Crit),
			)
		}
		return nil
	})
}

// Save writes the current save and appends it to the history. With the default
// backend both happen in one transaction.
func (s *Service) Save(ctx context.Context) error {
	out, err := s.serializer.Export()
	if err != nil {
		return err
	}
	st := s.game.SaveState()
	now := s.game.Now()
	entry := storage.HistoryEntry{
		SaveKey:     save.StorageKey,
		Version:     save.CurrentVersion,
		Data:        out,
		Exp:         st.Exp,
		LifetimeExp: st.LifetimeExp,
		Level:       st.Level,
		CreatedAt:   now,
	}

	write := func(backend save.Backend, history *storage.HistoryRepo) error {
		if err := backend.Set(ctx, save.StorageKey, out); err != nil {
			return fmt.Errorf("save to storage: %w", err)
		}
		if _, err := history.Insert(ctx, entry); err != nil {
			return err
		}
		if _, err := history.Prune(ctx, save.StorageKey, s.historyKeep); err != nil {
			return err
		}
		return nil
	}

	if s.dbBackend {
		err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			return write(storage.NewSaveRepo(tx), storage.NewHistoryRepo(tx))
		})
	} else {
		err = write(s.backend, s.history)
	}
	if err != nil {
		return err
	}
	s.lastSave = now
	s.logger.Debug("Game saved", zap.Int("bytes", len(out)))
	return nil
}

// Export returns the current save in the versioned envelope format.
func (s *Service) Export() (string, error) { return s.serializer.Export() }

// ExportLegacy returns the current save in one of the 0.1.0 formats.
func (s *Service) ExportLegacy(encrypted bool) (string, error) {
	return save.EncodeLegacy(s.game.SaveState(), encrypted, s.game.Now())
}

// Import replaces the game with raw and saves it. On failure nothing changes.
func (s *Service) Import(ctx context.Context, raw string) (*save.ImportResult, error) {
	res, err := s.serializer.Import(strings.TrimSpace(raw))
	recordImport(err, res)
	if err != nil {
		return nil, err
	}
	if err := s.game.LoadState(res.State); err != nil {
		return nil, fmt.Errorf("apply save: %w", err)
	}
	if res.Warning != "" {
		s.logger.Warn("Imported save with warning", zap.String("format", string(res.Format)), zap.String("warning", res.Warning))
	}
	if err := s.Save(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// Restore loads a save from the history by id.
func (s *Service) Restore(ctx context.Context, historyID string) (*save.ImportResult, error) {
	h, err := s.history.Get(ctx, historyID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("history entry %s not found", historyID)
	}
	return s.Import(ctx, h.Data)
}

func (s *Service) History(ctx context.Context, limit int) ([]storage.HistoryEntry, error) {
	return s.history.List(ctx, save.StorageKey, limit)
}

func (s *Service) RecentCompletions(ctx context.Context, limit int) ([]storage.CompletionRecord, error) {
	return s.completions.Recent(ctx, limit)
}

// SessionExp is the EXP completions have earned in this process.
func (s *Service) SessionExp(ctx context.Context) (float64, error) {
	return s.completions.ExpBySession(ctx, s.sessionID)
}

// HardReset clears the stored save and starts the game over. History is kept.
func (s *Service) HardReset(ctx context.Context, preserveName bool) error {
	if err := s.serializer.ClearSave(ctx); err != nil {
		return err
	}
	s.game.HardReset(preserveName)
	s.lastSave = s.game.Now()
	s.logger.Info("Game reset", zap.Bool("preserveName", preserveName))
	return nil
}

func recordImport(err error, res *save.ImportResult) {
	if err == nil {
		metrics.IncImport(string(res.Format), "ok")
		return
	}
	var ie *save.ImportError
	if errors.As(err, &ie) {
		metrics.IncImport("unknown", string(ie.Kind))
		return
	}
	metrics.IncImport("unknown", "error")
}
