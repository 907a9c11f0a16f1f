// Package monitor waits for a transcription run to finish and then runs a
// follow-up action once, such as re-analysing the transcripts.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"panel-brief/pkg/progress"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
)

const (
	DefaultInterval = 5 * time.Minute
	DefaultMaxWait  = 48 * time.Hour
)

var ErrAlreadyRunning = errors.New("another monitor instance is already running")

// Config for Run.
type Config struct {
	PodcastsDir    string
	TranscriptsDir string

	// LockPath is the file used to keep a single monitor per workspace.
	LockPath string

	// Interval between progress checks. Changes in TranscriptsDir also
	// trigger a check.
	Interval time.Duration

	// MaxWait bounds the wait; the action still runs when it elapses.
	MaxWait time.Duration
}

// Run waits until every audio file has a transcript or MaxWait elapses,
// then calls action. It refuses to start when another instance holds the
// lock.
func Run(ctx context.Context, cfg Config, action func(context.Context) error) error {
	lock := flock.New(cfg.LockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Printf("Monitor: failed to release lock: %v", err)
		}
	}()

	report, done, err := Wait(ctx, cfg)
	if err != nil {
		return err
	}
	if done {
		log.Printf("Monitor: transcription complete (%d/%d)", report.Transcribed, report.Audio)
	} else {
		log.Printf("Monitor: gave up waiting after %s (%d/%d), running anyway", cfg.maxWait(), report.Transcribed, report.Audio)
	}
	return action(ctx)
}

// Wait blocks until progress.Scan reports everything transcribed, MaxWait
// elapses or ctx is done. done is false when it stopped on MaxWait.
func Wait(ctx context.Context, cfg Config) (report progress.Report, done bool, err error) {
	deadline := time.NewTimer(cfg.maxWait())
	defer deadline.Stop()
	ticker := time.NewTicker(cfg.interval())
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	watcher, err := watch(cfg.TranscriptsDir)
	if err != nil {
		log.Printf("Monitor: not watching %s, polling only: %v", cfg.TranscriptsDir, err)
	} else {
		defer watcher.Close()
		events, watchErrs = watcher.Events, watcher.Errors
	}

	last := -1
	for {
		report, err = progress.Scan(cfg.PodcastsDir, cfg.TranscriptsDir)
		if err != nil {
			return report, false, err
		}
		if report.Done() {
			return report, true, nil
		}
		if report.Transcribed != last {
			log.Printf("Monitor: %d/%d transcribed", report.Transcribed, report.Audio)
			last = report.Transcribed
		}

	wait:
		for {
			select {
			case <-ctx.Done():
				return report, false, ctx.Err()
			case <-deadline.C:
				return report, false, nil
			case <-ticker.C:
				break wait
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if ev.Has(fsnotify.Create) && isDir(ev.Name) {
					if err := watcher.Add(ev.Name); err != nil {
						log.Printf("Monitor: failed to watch %s: %v", ev.Name, err)
					}
				}
				if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
					break wait
				}
			case err, ok := <-watchErrs:
				if !ok {
					watchErrs = nil
					continue
				}
				log.Printf("Monitor: watch error: %v", err)
			}
		}
	}
}

// watch watches dir and its immediate show directories.
func watch(dir string) (*fsnotify.Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.Close()
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.Add(filepath.Join(dir, e.Name())); err != nil {
				log.Printf("Monitor: failed to watch %s: %v", e.Name(), err)
			}
		}
	}
	return w, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (c Config) interval() time.Duration {
	if c.Interval <= 0 {
		return DefaultInterval
	}
	return c.Interval
}

func (c Config) maxWait() time.Duration {
	if c.MaxWait <= 0 {
		return DefaultMaxWait
	}
	return c.MaxWait
}
