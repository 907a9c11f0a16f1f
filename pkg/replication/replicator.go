package replication

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"panel-brief/pkg/db"
	"panel-brief/pkg/domain"
)

const (
	batchSize  = 100
	numWorkers = 5
)

// Source lists everything a store holds. db.Client satisfies it.
type Source interface {
	AllAnalyses(ctx context.Context) ([]domain.Analysis, error)
	AllDownloadRecords(ctx context.Context) ([]domain.DownloadRecord, error)
}

// Config wires the replication dependencies.
type Config struct {
	From Source
	To   db.Store
}

// Replicator copies analyses and download records from one store into
// another, e.g. from Mongo into Postgres or Supabase.
type Replicator struct {
	from Source
	to   db.Store
}

// Stats counts what one replication run did.
type Stats struct {
	Analyses  int
	Downloads int
	Skipped   int
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.From == nil {
		return nil, fmt.Errorf("source store is required")
	}
	if cfg.To == nil {
		return nil, fmt.Errorf("target store is required")
	}
	return &Replicator{from: cfg.From, to: cfg.To}, nil
}

// Replicate copies every analysis, overwriting the target's copy, and
// every download record whose episode the target does not have yet.
func (r *Replicator) Replicate(ctx context.Context) (Stats, error) {
	var stats Stats

	analyses, err := r.from.AllAnalyses(ctx)
	if err != nil {
		return stats, fmt.Errorf("read analyses: %w", err)
	}
	log.Printf("Replication: loaded %d analyses, copying in batches...", len(analyses))
	stats.Analyses, err = processBatches(ctx, analyses, r.to.SaveAnalysis)
	if err != nil {
		return stats, err
	}

	records, err := r.from.AllDownloadRecords(ctx)
	if err != nil {
		return stats, fmt.Errorf("read download records: %w", err)
	}
	toCopy, err := r.newRecords(ctx, records)
	if err != nil {
		return stats, err
	}
	stats.Skipped = len(records) - len(toCopy)
	log.Printf("Replication: %d download records, %d already in target", len(records), stats.Skipped)
	stats.Downloads, err = processBatches(ctx, toCopy, r.to.SaveDownloadRecord)
	if err != nil {
		return stats, err
	}

	log.Printf("Replication complete: %d analyses, %d download records copied", stats.Analyses, stats.Downloads)
	return stats, nil
}

// newRecords drops the records whose episode id the target already holds
// for the same show.
func (r *Replicator) newRecords(ctx context.Context, records []domain.DownloadRecord) ([]domain.DownloadRecord, error) {
	byShow := make(map[string][]domain.DownloadRecord)
	for _, rec := range records {
		if rec.EpisodeID == "" {
			continue
		}
		byShow[rec.Show] = append(byShow[rec.Show], rec)
	}

	shows := make([]string, 0, len(byShow))
	for s := range byShow {
		shows = append(shows, s)
	}
	sort.Strings(shows)

	out := make([]domain.DownloadRecord, 0, len(records))
	for _, show := range shows {
		existing, err := r.to.EpisodeIDs(ctx, show)
		if err != nil {
			return nil, fmt.Errorf("check existing episodes of %s: %w", show, err)
		}
		for _, rec := range byShow[show] {
			if !existing[rec.EpisodeID] {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// processBatches saves items in parallel batches and returns how many were
// saved. The first error cancels the batches still in flight.
func processBatches[T any](ctx context.Context, items []T, save func(context.Context, T) error) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchJob struct {
		batch []T
		start int
		end   int
	}

	type batchResult struct {
		saved int
		err   error
	}

	numBatches := (len(items) + batchSize - 1) / batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))
		jobs <- batchJob{batch: items[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				n, err := saveBatch(ctx, job.batch, save)
				if err != nil {
					err = fmt.Errorf("batch [%d:%d]: %w", job.start, job.end, err)
				}
				results <- batchResult{saved: n, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	total := 0
	var firstErr error
	for result := range results {
		total += result.saved
		if result.err != nil && firstErr == nil {
			firstErr = result.err
			cancel()
		}
	}
	return total, firstErr
}

func saveBatch[T any](ctx context.Context, batch []T, save func(context.Context, T) error) (int, error) {
	for i, item := range batch {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := save(ctx, item); err != nil {
			return i, err
		}
	}
	return len(batch), nil
}
