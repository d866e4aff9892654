package config

import (
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	created = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	later   = time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
)

func TestResolveWithoutConfigOrURL(t *testing.T) {
	_, err := Resolve(t.TempDir(), "", created)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingConfiguration))
}

func TestResolveBootstrapsFromURL(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Resolve(dir, "https://demo.ctfd.io", created)
	require.NoError(t, err)

	want := &Config{PlatformURL: "https://demo.ctfd.io", CreatedAt: created}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
	_, err = os.Stat(Path(dir))
	assert.True(t, errors.Is(err, fs.ErrNotExist), "Resolve must not write")
}

func TestResolveRejectsInvalidURL(t *testing.T) {
	_, err := Resolve(t.TempDir(), "demo ctfd", created)
	assert.True(t, errors.Is(err, ErrMissingConfiguration))
}

func TestRoundTripIncrementsSyncCount(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Resolve(dir, "https://demo.ctfd.io", created)
	require.NoError(t, err)
	cfg.Touch(created)
	require.NoError(t, Save(dir, cfg))

	second, err := Resolve(dir, "", later)
	require.NoError(t, err)
	second.Touch(later)
	require.NoError(t, Save(dir, second))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://demo.ctfd.io", loaded.PlatformURL)
	assert.True(t, created.Equal(loaded.CreatedAt))
	assert.True(t, later.Equal(loaded.LastSync))
	assert.Equal(t, 2, loaded.SyncCount)
}

func TestStoredURLWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, &Config{PlatformURL: "https://first.example", CreatedAt: created, SyncCount: 1}))

	cfg, err := Resolve(dir, "https://second.example", later)
	require.NoError(t, err)
	assert.Equal(t, "https://first.example", cfg.PlatformURL)
	assert.True(t, created.Equal(cfg.CreatedAt))
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	data := "platform_url: https://demo.ctfd.io\n" +
		"created_at: 2026-03-01T09:00:00Z\n" +
		"sync_count: 4\n" +
		"theme: dark\n"
	require.NoError(t, os.WriteFile(Path(dir), []byte(data), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.SyncCount)
	assert.True(t, created.Equal(cfg.CreatedAt))
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("platform_url: [\n"), 0600))

	_, err := Load(dir)
	require.Error(t, err)
	assert.False(t, errors.Is(err, fs.ErrNotExist))

	_, err = Resolve(dir, "https://demo.ctfd.io", later)
	assert.Error(t, err, "a corrupt config must not be silently replaced")
}
