package download

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Prune keeps the newest keep audio files in every show directory under
// dir and deletes the rest. It returns the removed paths.
func Prune(dir string, keep int) ([]string, error) {
	if keep < 0 {
		keep = 0
	}
	shows, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var removed []string
	for _, show := range shows {
		if !show.IsDir() {
			continue
		}
		showDir := filepath.Join(dir, show.Name())
		files, err := filesByAge(showDir)
		if err != nil {
			return removed, err
		}
		if len(files) <= keep {
			continue
		}

		log.Printf("Prune: %s has %d files, keeping the newest %d", show.Name(), len(files), keep)
		for _, f := range files[keep:] {
			if err := os.Remove(f); err != nil {
				return removed, fmt.Errorf("remove %s: %w", filepath.Base(f), err)
			}
			removed = append(removed, f)
		}
	}
	return removed, nil
}

// filesByAge lists the .mp3 files of dir, newest first.
func filesByAge(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	type aged struct {
		path    string
		modTime time.Time
	}
	var files []aged
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".mp3") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, aged{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}
