package progress

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	podcasts := filepath.Join(root, "podcasts")
	transcripts := filepath.Join(root, "transcriptions")

	write(t, filepath.Join(podcasts, "show_a", "01.mp3"), 10)
	write(t, filepath.Join(podcasts, "show_a", "02.mp3"), 10)
	write(t, filepath.Join(podcasts, "show_a", "cover.jpg"), 10)
	write(t, filepath.Join(podcasts, "show_b", "01.m4a"), 10)
	write(t, filepath.Join(podcasts, "loose.mp3"), 10)

	write(t, filepath.Join(transcripts, "show_a", "01.txt"), 2048)
	write(t, filepath.Join(transcripts, "show_a", "02.txt"), 100)
	write(t, filepath.Join(transcripts, "show_c", "01.txt"), 4096)
	write(t, filepath.Join(transcripts, "transcription_records.json"), 4096)

	r, err := Scan(podcasts, transcripts)
	require.NoError(t, err)

	assert.Equal(t, []ShowProgress{
		{Show: "show_a", Audio: 2, Transcribed: 1},
		{Show: "show_b", Audio: 1, Transcribed: 0},
		{Show: "show_c", Audio: 0, Transcribed: 1},
	}, r.Shows)
	assert.Equal(t, 3, r.Audio)
	assert.Equal(t, 2, r.Transcribed)
	assert.False(t, r.Done())
	assert.InDelta(t, 50.0, r.Shows[0].Percent(), 0.001)
	assert.Zero(t, r.Shows[2].Percent())
}

func TestScan_MissingDirs(t *testing.T) {
	root := t.TempDir()
	r, err := Scan(filepath.Join(root, "a"), filepath.Join(root, "b"))
	require.NoError(t, err)
	assert.Empty(t, r.Shows)
	assert.False(t, r.Done())
}

func TestReport_Done(t *testing.T) {
	assert.True(t, Report{Audio: 2, Transcribed: 2}.Done())
	assert.False(t, Report{Audio: 2, Transcribed: 1}.Done())
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Report{
		Shows:       []ShowProgress{{Show: "晚点聊_黄俊杰", Audio: 4, Transcribed: 1}},
		Audio:       4,
		Transcribed: 1,
	})

	assert.Contains(t, out, "晚点聊_黄俊杰")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, strings.ToUpper(out), "TOTAL")
}
