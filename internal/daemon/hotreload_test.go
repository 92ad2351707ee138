package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/imepop/internal/config"
)

type reloadRecorder struct {
	mu      sync.Mutex
	configs []*config.Config
	errs    []error
}

func (r *reloadRecorder) onReload(cfg *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = append(r.configs, cfg)
}

func (r *reloadRecorder) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *reloadRecorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.configs), len(r.errs)
}

func startWatcher(t *testing.T, path string) (*ConfigWatcher, *reloadRecorder) {
	t.Helper()

	w, err := NewConfigWatcher(path, nil)
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)

	rec := &reloadRecorder{}
	w.SetReloadCallback(rec.onReload)
	w.SetErrorCallback(rec.onError)

	require.NoError(t, w.Start(context.Background(), config.DefaultConfig()))
	t.Cleanup(w.Stop)
	return w, rec
}

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[animation]\nfade_frames = 5\n"), 0644))

	w, rec := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("[animation]\nfade_frames = 7\n"), 0644))

	require.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n >= 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 7, w.GetCurrentConfig().Animation.FadeFrames)
}

func TestConfigWatcher_CreatedAfterStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	w, rec := startWatcher(t, path)

	cfg := config.DefaultConfig()
	cfg.Overlay.Width = 420
	require.NoError(t, cfg.Save(path))

	require.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n >= 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 420, w.GetCurrentConfig().Overlay.Width)
}

func TestConfigWatcher_InvalidConfigKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	w, rec := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("[overlay]\nwidth = 1\n"), 0644))

	require.Eventually(t, func() bool {
		_, n := rec.counts()
		return n >= 1
	}, 2*time.Second, 10*time.Millisecond)

	reloads, _ := rec.counts()
	assert.Equal(t, 0, reloads)
	assert.Equal(t, config.DefaultConfig().Overlay.Width, w.GetCurrentConfig().Overlay.Width)
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	_, rec := startWatcher(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0644))
	time.Sleep(100 * time.Millisecond)

	reloads, errs := rec.counts()
	assert.Equal(t, 0, reloads)
	assert.Equal(t, 0, errs)
}

func TestConfigWatcher_StartMissingDirectory(t *testing.T) {
	w, err := NewConfigWatcher(filepath.Join(t.TempDir(), "missing", "config.toml"), nil)
	require.NoError(t, err)
	assert.Error(t, w.Start(context.Background(), config.DefaultConfig()))
	w.Stop()
}

func TestConfigWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	w, _ := startWatcher(t, path)
	w.Stop()
	w.Stop()
}
