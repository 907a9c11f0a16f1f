package monitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	cfg := Config{
		PodcastsDir:    filepath.Join(root, "podcasts"),
		TranscriptsDir: filepath.Join(root, "transcriptions"),
		LockPath:       filepath.Join(root, "monitor.lock"),
		Interval:       time.Hour,
		MaxWait:        10 * time.Second,
	}
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.PodcastsDir, "show"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.TranscriptsDir, "show"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.PodcastsDir, "show", "01.mp3"), []byte("audio"), 0o644))
	return cfg
}

func writeTranscript(t *testing.T, cfg Config) {
	t.Helper()
	body := strings.Repeat("字", 1024)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.TranscriptsDir, "show", "01.txt"), []byte(body), 0o644))
}

func TestRun_AlreadyComplete(t *testing.T) {
	cfg := setup(t)
	writeTranscript(t, cfg)

	calls := 0
	err := Run(context.Background(), cfg, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRun_WakesOnNewTranscript(t *testing.T) {
	cfg := setup(t)

	go func() {
		time.Sleep(200 * time.Millisecond)
		writeTranscript(t, cfg)
	}()

	start := time.Now()
	report, done, err := Wait(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, report.Transcribed)
	assert.Less(t, time.Since(start), cfg.MaxWait)
}

func TestRun_MaxWaitStillRunsAction(t *testing.T) {
	cfg := setup(t)
	cfg.MaxWait = 100 * time.Millisecond

	calls := 0
	err := Run(context.Background(), cfg, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRun_SingleInstance(t *testing.T) {
	cfg := setup(t)

	other := flock.New(cfg.LockPath)
	ok, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer other.Unlock()

	called := false
	err = Run(context.Background(), cfg, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.False(t, called)
}

func TestWait_Cancelled(t *testing.T) {
	cfg := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, done, err := Wait(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, done)
}
