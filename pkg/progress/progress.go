// Package progress reports how much of the downloaded audio has been
// transcribed, per show.
package progress

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"panel-brief/pkg/gemini"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// MinTranscriptBytes is the size below which a transcript is treated as a
// failed or partial write.
const MinTranscriptBytes = 1024

// ShowProgress counts one show directory.
type ShowProgress struct {
	Show        string
	Audio       int
	Transcribed int
}

// Percent is the transcribed share of the show's audio.
func (p ShowProgress) Percent() float64 {
	if p.Audio == 0 {
		return 0
	}
	return float64(p.Transcribed) / float64(p.Audio) * 100
}

// Report is the progress of every show.
type Report struct {
	Shows       []ShowProgress
	Audio       int
	Transcribed int
}

// Done reports whether there is audio and all of it is transcribed.
func (r Report) Done() bool {
	return r.Audio > 0 && r.Transcribed >= r.Audio
}

// Scan counts audio files per show directory under podcastsDir and the
// transcripts larger than MinTranscriptBytes under transcriptsDir. Either
// directory may be missing.
func Scan(podcastsDir, transcriptsDir string) (Report, error) {
	audio, err := countByShow(podcastsDir, func(path string, _ fs.FileInfo) bool {
		return gemini.IsAudioFile(path)
	})
	if err != nil {
		return Report{}, err
	}
	transcripts, err := countByShow(transcriptsDir, func(path string, info fs.FileInfo) bool {
		return filepath.Ext(path) == ".txt" && info.Size() > MinTranscriptBytes
	})
	if err != nil {
		return Report{}, err
	}

	shows := make(map[string]bool)
	for s := range audio {
		shows[s] = true
	}
	for s := range transcripts {
		shows[s] = true
	}
	names := make([]string, 0, len(shows))
	for s := range shows {
		names = append(names, s)
	}
	sort.Strings(names)

	var r Report
	for _, s := range names {
		p := ShowProgress{Show: s, Audio: audio[s], Transcribed: transcripts[s]}
		r.Shows = append(r.Shows, p)
		r.Audio += p.Audio
		r.Transcribed += p.Transcribed
	}
	return r, nil
}

func countByShow(dir string, match func(string, fs.FileInfo) bool) (map[string]int, error) {
	counts := make(map[string]int)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return counts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			if match(f.Name(), info) {
				counts[e.Name()]++
			}
		}
	}
	return counts, nil
}

// RenderTable renders r as a table with a total row.
func RenderTable(r Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Show", "Audio", "Transcribed", "Progress"})
	for _, p := range r.Shows {
		tw.AppendRow(table.Row{p.Show, strconv.Itoa(p.Audio), strconv.Itoa(p.Transcribed), percent(p.Percent())})
	}

	total := ShowProgress{Audio: r.Audio, Transcribed: r.Transcribed}
	tw.AppendFooter(table.Row{"Total", strconv.Itoa(r.Audio), strconv.Itoa(r.Transcribed), percent(total.Percent())})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
