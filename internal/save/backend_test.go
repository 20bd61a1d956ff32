package save

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRedis struct {
	data map[string]string
	err  error
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := b.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, StorageKey, `{"v":1}`))
	require.NoError(t, b.Set(ctx, StorageKey, `{"v":2}`))
	v, ok, err := b.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"v":2}`, v)

	require.NoError(t, b.Remove(ctx, StorageKey))
	require.NoError(t, b.Remove(ctx, StorageKey), "removing a missing key is fine")
	_, ok, err = b.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "saves")
	b, err := NewFileBackend(dir, zap.NewNop())
	require.NoError(t, err)
	exerciseBackend(t, b)

	require.NoError(t, b.Set(context.Background(), "slot", "data"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files are left behind")
	assert.Equal(t, "slot.json", entries[0].Name())

	_, _, err = b.Get(context.Background(), "../escape")
	assert.Error(t, err)
}

func TestRedisBackend(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{}}
	b := NewRedisBackend(fake, "tome:", zap.NewNop())
	exerciseBackend(t, b)

	require.NoError(t, b.Set(context.Background(), StorageKey, "x"))
	assert.Equal(t, "x", fake.data["tome:"+StorageKey])
}

func TestRedisBackendErrors(t *testing.T) {
	boom := errors.New("connection refused")
	b := NewRedisBackend(&fakeRedis{data: map[string]string{}, err: boom}, "", zap.NewNop())

	_, _, err := b.Get(context.Background(), StorageKey)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, b.Set(context.Background(), StorageKey, "x"), boom)
}
