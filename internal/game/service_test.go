package game

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/idle"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/save"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/storage"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "tome.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestService(t *testing.T, db *sql.DB, opts ...ServiceOption) (*Service, *idle.FakeClock) {
	t.Helper()
	g, clock := newTestGame(t)
	return NewService(db, g, zap.NewNop(), opts...), clock
}

func TestServiceSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc, _ := newTestService(t, db)

	svc.Game().Click()
	svc.Game().Click()
	require.NoError(t, svc.Save(ctx))

	hist, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 2.0, hist[0].LifetimeExp)

	fresh, _ := newTestService(t, db)
	res, err := fresh.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, save.FormatEnvelope, res.Format)
	assert.Equal(t, 2.0, fresh.Game().Exp())
}

func TestServiceLoadWithoutSave(t *testing.T) {
	svc, _ := newTestService(t, newTestDB(t))
	res, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestServiceTickLogsCompletionsAndAutosaves(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t, newTestDB(t), WithAutosaveInterval(10*time.Second))
	_, ok := svc.Game().StartAction(idle.GroupTraining, idle.ReflectionActionID)
	require.True(t, ok)

	clock.Advance(5 * time.Second)
	res, err := svc.Tick(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Completions)
	hist, err := svc.History(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, hist, "autosave is not due yet")

	clock.Advance(10 * time.Second)
	res, err = svc.Tick(ctx)
	require.NoError(t, err)
	require.Len(t, res.Completions, 1)

	recent, err := svc.RecentCompletions(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, idle.ReflectionActionID, recent[0].ActionID)
	assert.Equal(t, svc.SessionID(), recent[0].SessionID)

	total, err := svc.SessionExp(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, total)

	hist, err = svc.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestServiceImportFailureChangesNothing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, newTestDB(t))
	svc.Game().Click()
	before := svc.Game().SaveState()

	_, err := svc.Import(ctx, "not json")
	var ie *save.ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, save.KindParse, ie.Kind)
	assert.Equal(t, before, svc.Game().SaveState())
}

func TestServiceImportLegacyExport(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	src, _ := newTestService(t, db)
	src.Game().Click()
	require.NoError(t, src.Game().SetName("Wren"))

	raw, err := src.ExportLegacy(true)
	require.NoError(t, err)

	dst, _ := newTestService(t, newTestDB(t))
	res, err := dst.Import(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, save.FormatLegacyEncrypted, res.Format)
	assert.NotEmpty(t, res.Warning)
	assert.Equal(t, "Wren", dst.Game().Name())
	assert.Equal(t, 1.0, dst.Game().LifetimeExp())

	hist, err := dst.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, hist, 1, "an accepted import is saved")
}

func TestServiceRestore(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t, newTestDB(t))

	svc.Game().Click()
	require.NoError(t, svc.Save(ctx))
	clock.Advance(time.Minute)
	for i := 0; i < 4; i++ {
		svc.Game().Click()
	}
	require.NoError(t, svc.Save(ctx))

	hist, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	oldest := hist[1]
	assert.Equal(t, 1.0, oldest.Exp)

	clock.Advance(time.Minute)
	_, err = svc.Restore(ctx, oldest.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, svc.Game().Exp())
}

func TestServiceHistoryIsPruned(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestService(t, newTestDB(t), WithHistoryKeep(2))
	for i := 0; i < 4; i++ {
		clock.Advance(time.Second)
		require.NoError(t, svc.Save(ctx))
	}
	hist, err := svc.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

func TestServiceWithExternalBackend(t *testing.T) {
	ctx := context.Background()
	backend := save.NewMemoryBackend()
	svc, _ := newTestService(t, newTestDB(t), WithBackend(backend))
	svc.Game().Click()
	require.NoError(t, svc.Save(ctx))

	raw, ok, err := backend.Get(ctx, save.StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"gameState"`)

	hist, err := svc.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestServiceHardReset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, newTestDB(t))
	require.NoError(t, svc.Game().SetName("Wren"))
	svc.Game().Click()
	require.NoError(t, svc.Save(ctx))

	require.NoError(t, svc.HardReset(ctx, true))
	assert.Equal(t, "Wren", svc.Game().Name())
	assert.Zero(t, svc.Game().LifetimeExp())

	res, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, res, "the stored save is gone")
}
