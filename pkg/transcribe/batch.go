// Package transcribe turns a directory tree of episode audio into a
// mirrored tree of text transcripts.
package transcribe

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"panel-brief/pkg/domain"
	"panel-brief/pkg/gemini"
	"panel-brief/pkg/pacer"
	"panel-brief/pkg/progress"
	"panel-brief/pkg/report"
)

// RecordsFile is written to the output directory after a run.
const RecordsFile = "transcription_records.json"

const statusSuccess = "success"

// Transcriber turns one audio file into text. gemini.Client satisfies it.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Batch transcribes every audio file below a directory.
type Batch struct {
	tr           Transcriber
	pace         *pacer.Pacer
	quotaBackoff time.Duration
}

// NewBatch creates a Batch whose transcription calls are spaced by gap.
// After a quota error the next call waits gemini.QuotaBackoff.
func NewBatch(tr Transcriber, gap pacer.Config) *Batch {
	return &Batch{tr: tr, pace: pacer.New(gap), quotaBackoff: gemini.QuotaBackoff}
}

// Run transcribes the audio under podcastsDir into outDir, keeping the
// relative layout and swapping the extension for .txt. Files that already
// have a transcript larger than progress.MinTranscriptBytes are not sent
// again; smaller ones are treated as failed runs and overwritten. A failed file is logged and left
// out of the records; Run only returns early when ctx is done or the
// directories cannot be used.
func (b *Batch) Run(ctx context.Context, podcastsDir, outDir string) ([]domain.TranscriptionRecord, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}

	audio, err := AudioFiles(podcastsDir)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		log.Printf("Transcribe: no audio files found in %s", podcastsDir)
		return []domain.TranscriptionRecord{}, nil
	}
	log.Printf("Transcribe: found %d audio files", len(audio))

	records := make([]domain.TranscriptionRecord, 0, len(audio))
	for i, path := range audio {
		out, err := TranscriptPath(podcastsDir, outDir, path)
		if err != nil {
			return records, err
		}

		log.Printf("Transcribe: [%d/%d] %s", i+1, len(audio), filepath.Base(path))
		if hasTranscript(out) {
			log.Printf("Transcribe: skipping %s, transcript exists", filepath.Base(out))
		} else {
			if err := b.pace.Wait(ctx); err != nil {
				return records, err
			}
			if err := b.transcribeOne(ctx, path, out); err != nil {
				if ctx.Err() != nil {
					return records, ctx.Err()
				}
				log.Printf("Transcribe: %s failed: %v", filepath.Base(path), err)
				if gemini.IsQuota(err) {
					log.Printf("Transcribe: quota exceeded, holding off for %s", b.quotaBackoff)
					b.pace.Backoff(b.quotaBackoff)
				}
				continue
			}
		}

		records = append(records, domain.TranscriptionRecord{
			AudioFile:         path,
			TranscriptionFile: out,
			Status:            statusSuccess,
		})
	}

	if err := report.WriteJSON(filepath.Join(outDir, RecordsFile), records); err != nil {
		return records, err
	}
	log.Printf("Transcribe: %d of %d files have transcripts", len(records), len(audio))
	return records, nil
}

func (b *Batch) transcribeOne(ctx context.Context, audioPath, out string) error {
	text, err := b.tr.Transcribe(ctx, audioPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return gemini.ErrEmptyResponse
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// AudioFiles lists the audio files below dir in lexical order.
func AudioFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && gemini.IsAudioFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// TranscriptPath maps an audio file under podcastsDir to its transcript
// path under outDir.
func TranscriptPath(podcastsDir, outDir, audioPath string) (string, error) {
	rel, err := filepath.Rel(podcastsDir, audioPath)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", audioPath, err)
	}
	return filepath.Join(outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".txt"), nil
}

func hasTranscript(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > progress.MinTranscriptBytes
}
