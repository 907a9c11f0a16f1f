// Package download fetches episode audio for the configured shows into
// <dir>/<show name>/NN_<id>_<title>.mp3, skipping episodes already on disk.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"panel-brief/pkg/domain"
	"panel-brief/pkg/httpclient"
	"panel-brief/pkg/locator"
	"panel-brief/pkg/pacer"
	"panel-brief/pkg/report"
)

// RecordsFile is written to the download directory by DownloadAll.
const RecordsFile = "download_records.json"

// extraEpisodes is how many more episodes than needed are requested, so
// that enough new ones remain after skipping the existing files.
const extraEpisodes = 5

var ErrNoDirectory = errors.New("download directory is not set")

// EpisodeSource is the part of the locator the downloader needs.
type EpisodeSource interface {
	LocateDetailed(ctx context.Context, showID string, limit int) locator.Result
	FromFeed(ctx context.Context, feedURL string, limit int) []domain.Episode
	ResolveAudioURL(ctx context.Context, episodeID string) (string, bool)
}

// Fetcher streams a URL into a writer.
type Fetcher interface {
	Download(ctx context.Context, url string, w io.Writer, opts ...httpclient.Option) (int64, error)
}

// RecordSink persists download records beyond the JSON file.
type RecordSink interface {
	SaveDownloadRecord(ctx context.Context, rec domain.DownloadRecord) error
}

// Config for a Downloader.
type Config struct {
	// Dir holds one sub-directory per show.
	Dir string

	// Referer sent with audio requests; the CDN rejects requests without one.
	Referer string

	// EpisodeGap spaces out episodes of one show, ShowGap spaces out shows.
	EpisodeGap pacer.Config
	ShowGap    pacer.Config
}

// Downloader downloads audio for shows.
type Downloader struct {
	source  EpisodeSource
	fetcher Fetcher
	sink    RecordSink
	cfg     Config

	episodePace *pacer.Pacer
	showPace    *pacer.Pacer
}

// New creates a Downloader. sink may be nil.
func New(source EpisodeSource, fetcher Fetcher, sink RecordSink, cfg Config) *Downloader {
	return &Downloader{
		source:      source,
		fetcher:     fetcher,
		sink:        sink,
		cfg:         cfg,
		episodePace: pacer.New(cfg.EpisodeGap),
		showPace:    pacer.New(cfg.ShowGap),
	}
}

// DownloadShow downloads up to limit episodes of show that are not on disk yet.
func (d *Downloader) DownloadShow(ctx context.Context, show domain.Show, limit int) ([]domain.DownloadRecord, error) {
	if d.cfg.Dir == "" {
		return nil, ErrNoDirectory
	}
	if limit <= 0 {
		return nil, nil
	}

	showDir := filepath.Join(d.cfg.Dir, show.Name)
	if err := os.MkdirAll(showDir, 0o755); err != nil {
		return nil, fmt.Errorf("create show directory: %w", err)
	}

	existing, err := audioFiles(showDir)
	if err != nil {
		return nil, err
	}
	log.Printf("Downloader: %s has %d existing files", show.Name, len(existing))

	episodes := d.locate(ctx, show, limit+len(existing)+extraEpisodes)
	if len(episodes) == 0 {
		log.Printf("Downloader: no episodes found for %s (%s), try again later", show.Name, show.ID)
		return nil, nil
	}

	type pending struct {
		episode domain.Episode
		counter int
		title   string
	}
	var todo []pending
	counter := len(existing) + 1
	for _, ep := range episodes {
		title := CleanTitle(ep.Title)
		if alreadyDownloaded(existing, ep.ID, title) {
			continue
		}
		todo = append(todo, pending{episode: ep, counter: counter, title: title})
		counter++
		if len(todo) >= limit {
			break
		}
	}
	if len(todo) == 0 {
		log.Printf("Downloader: %s is up to date", show.Name)
		return nil, nil
	}

	var records []domain.DownloadRecord
	for i, p := range todo {
		if err := d.episodePace.Wait(ctx); err != nil {
			return records, err
		}
		log.Printf("Downloader: [%d/%d] %s", i+1, len(todo), p.episode.Title)

		audioURL := p.episode.AudioURL
		if audioURL == "" {
			var ok bool
			if audioURL, ok = d.source.ResolveAudioURL(ctx, p.episode.ID); !ok {
				log.Printf("Downloader: no audio URL for episode %s", p.episode.ID)
				continue
			}
		}

		path := filepath.Join(showDir, AudioFileName(p.counter, p.episode.ID, p.title))
		n, err := d.fetch(ctx, audioURL, path)
		if err != nil {
			log.Printf("Downloader: failed to download %s: %v", p.episode.ID, err)
			continue
		}

		rec := domain.DownloadRecord{
			Show:      show.Name,
			EpisodeID: p.episode.ID,
			Title:     p.episode.Title,
			AudioFile: path,
			AudioURL:  audioURL,
			Bytes:     n,
			FetchedAt: time.Now().UTC(),
		}
		records = append(records, rec)
		log.Printf("Downloader: saved %s (%.1f MB)", filepath.Base(path), float64(n)/(1024*1024))

		if d.sink != nil {
			if err := d.sink.SaveDownloadRecord(ctx, rec); err != nil {
				log.Printf("Downloader: failed to store record for %s: %v", rec.EpisodeID, err)
			}
		}
	}
	return records, nil
}

// DownloadAll runs DownloadShow for every show and writes RecordsFile.
// A failing show is logged and does not stop the others.
func (d *Downloader) DownloadAll(ctx context.Context, shows []domain.Show, limit int) (map[string][]domain.DownloadRecord, error) {
	all := make(map[string][]domain.DownloadRecord, len(shows))
	for _, show := range shows {
		if err := d.showPace.Wait(ctx); err != nil {
			return all, err
		}
		recs, err := d.DownloadShow(ctx, show, limit)
		if err != nil {
			if ctx.Err() != nil {
				return all, err
			}
			log.Printf("Downloader: %s failed: %v", show.Name, err)
		}
		if recs == nil {
			recs = []domain.DownloadRecord{}
		}
		all[show.Name] = recs
	}

	if err := report.WriteJSON(filepath.Join(d.cfg.Dir, RecordsFile), all); err != nil {
		return all, err
	}

	total := 0
	for _, recs := range all {
		total += len(recs)
	}
	log.Printf("Downloader: downloaded %d files across %d shows", total, len(shows))
	return all, nil
}

func (d *Downloader) locate(ctx context.Context, show domain.Show, limit int) []domain.Episode {
	if show.FeedURL != "" {
		if eps := d.source.FromFeed(ctx, show.FeedURL, limit); len(eps) > 0 {
			return eps
		}
		log.Printf("Downloader: feed for %s gave nothing, falling back to the show page", show.Name)
	}

	res := d.source.LocateDetailed(ctx, show.ID, limit)
	switch res.Strategy {
	case locator.StrategyScript, locator.StrategyAnchor:
		log.Printf("Downloader: API unavailable for %s, used %s fallback", show.Name, res.Strategy)
	}
	return res.Episodes
}

// fetch downloads into a temporary file first so an interrupted transfer
// never leaves a file that looks complete.
func (d *Downloader) fetch(ctx context.Context, audioURL, path string) (int64, error) {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", filepath.Base(tmp), err)
	}

	n, err := d.fetcher.Download(ctx, audioURL, f, httpclient.WithReferer(d.cfg.Referer))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("rename %s: %w", filepath.Base(tmp), err)
	}
	return n, nil
}

func audioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".mp3") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
