package root

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/config"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/game"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/logger"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/save"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/storage"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/story"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/upgrade"
)

// session is everything a command needs.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	svc    *game.Service
}

func (s *session) game() *game.Game { return s.svc.Game() }

// openService wires config, logging, storage and the game. With loadSave set the
// stored save is applied and offline progress is caught up.
func openService(ctx context.Context, loadSave bool) (*session, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Logger())
	if err != nil {
		return nil, nil, err
	}

	path := cfg.DBPath
	if path == "" {
		if path, err = storage.DefaultDBPath(); err != nil {
			return nil, nil, err
		}
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){
		func() { _ = log.Sync() },
		func() { _ = db.Close() },
	}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*session, func(), error) {
		cleanup()
		return nil, nil, err
	}

	opts := []game.Option{
		game.WithCatchUp(cfg.OfflineCatchUp),
		game.WithName(cfg.PlayerName),
	}
	if cfg.UpgradeCatalog != "" {
		defs, err := loadCatalog(cfg.UpgradeCatalog, upgrade.LoadDefinitions)
		if err != nil {
			return fail(err)
		}
		opts = append(opts, game.WithUpgrades(defs))
	}
	if cfg.StoryCatalog != "" {
		entries, err := loadCatalog(cfg.StoryCatalog, story.LoadEntries)
		if err != nil {
			return fail(err)
		}
		opts = append(opts, game.WithStory(entries))
	}
	g, err := game.New(opts...)
	if err != nil {
		return fail(err)
	}

	svcOpts := []game.ServiceOption{
		game.WithAutosaveInterval(cfg.AutosaveInterval),
		game.WithHistoryKeep(cfg.HistoryKeep),
	}
	backend, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	if backend != nil {
		svcOpts = append(svcOpts, game.WithBackend(backend))
		closers = append(closers, closeBackend)
	}
	svc := game.NewService(db, g, log, svcOpts...)

	if loadSave {
		if _, err := svc.Load(ctx); err != nil {
			return fail(fmt.Errorf("%w (roll back with `tome save restore` or start over with `tome save clear`)", err))
		}
		if _, err := svc.Tick(ctx); err != nil {
			return fail(err)
		}
	}
	return &session{cfg: cfg, logger: log, svc: svc}, cleanup, nil
}

// openBackend returns nil when saves live in the database.
func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (save.Backend, func(), error) {
	switch cfg.SaveBackend {
	case config.BackendFile:
		b, err := save.NewFileBackend(cfg.SaveDir, log)
		if err != nil {
			return nil, nil, err
		}
		return b, func() {}, nil
	case config.BackendMemory:
		return save.NewMemoryBackend(), func() {}, nil
	case config.BackendRedis:
		client, err := save.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return save.NewRedisBackend(client, "tome:", log), func() { _ = client.Close() }, nil
	default:
		return nil, nil, nil
	}
}

func loadCatalog[T any](path string, parse func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	out, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// mutate runs fn against a loaded game and saves afterwards.
func mutate(ctx context.Context, fn func(s *session) error) error {
	s, cleanup, err := openService(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := fn(s); err != nil {
		return err
	}
	return s.svc.Save(ctx)
}
