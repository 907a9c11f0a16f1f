package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"panel-brief/pkg/domain"
	"panel-brief/pkg/pacer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type mockGenerator struct {
	reply   func(prompt string) (string, error)
	prompts []string
	at      []time.Time
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.at = append(m.at, time.Now())
	return m.reply(prompt)
}

type mockSink struct {
	saved []domain.Analysis
}

func (m *mockSink) SaveAnalysis(_ context.Context, a domain.Analysis) error {
	m.saved = append(m.saved, a)
	return nil
}

func writeTranscript(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func longTranscript() string {
	return "[主播]：今天我们来聊聊播客行业？\n[嘉宾]：" + strings.Repeat("内容", 80) + "\n[主播]：那你怎么看？\n"
}

func TestAnalyzeTranscript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "晚点聊_黄俊杰", "01_e1_Title.txt")
	writeTranscript(t, path, longTranscript())

	gen := &mockGenerator{reply: func(string) (string, error) {
		return "```json\n{\"professional_observations\": [\"o1\"], \"expression_style\": \"direct\"}\n```", nil
	}}
	sink := &mockSink{}
	a := New(gen, sink, Config{})

	ta, err := a.AnalyzeTranscript(context.Background(), path, "黄俊杰", "晚点聊_黄俊杰")
	require.NoError(t, err)

	assert.Equal(t, "01_e1_Title", ta.EpisodeName)
	assert.Equal(t, 2, ta.HostStatementsCount)
	assert.Equal(t, []string{"o1"}, ta.Analysis.Insights.Observations)
	assert.Equal(t, "direct", ta.Analysis.Insights.Style)
	assert.Equal(t, "黄俊杰", ta.Analysis.Subject)
	assert.Equal(t, "晚点聊_黄俊杰/01_e1_Title", ta.Analysis.Source)
	assert.Equal(t, a.RunID(), ta.Analysis.RunID)
	assert.False(t, ta.Analysis.AnalyzedAt.IsZero())
	require.Len(t, sink.saved, 1)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "主播（黄俊杰）")
}

func TestAnalyzeTranscript_TooShort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show_host", "short.txt")
	writeTranscript(t, path, "too short")

	gen := &mockGenerator{reply: func(string) (string, error) { return "", nil }}
	_, err := New(gen, nil, Config{}).AnalyzeTranscript(context.Background(), path, "host", "show_host")
	assert.ErrorIs(t, err, ErrTranscriptTooShort)
	assert.Empty(t, gen.prompts)
}

func TestAnalyzeTranscript_TruncatesPromptText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show_host", "long.txt")
	writeTranscript(t, path, strings.Repeat("字", MaxPromptRunes+500))

	gen := &mockGenerator{reply: func(string) (string, error) { return "{}", nil }}
	_, err := New(gen, nil, Config{}).AnalyzeTranscript(context.Background(), path, "host", "show_host")
	require.NoError(t, err)
	assert.Equal(t, MaxPromptRunes, strings.Count(gen.prompts[0], "字"))
}

func TestAnalyzeTranscript_GeneratorFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show_host", "ep.txt")
	writeTranscript(t, path, longTranscript())

	gen := &mockGenerator{reply: func(string) (string, error) { return "", errors.New("quota exceeded") }}
	ta, err := New(gen, nil, Config{}).AnalyzeTranscript(context.Background(), path, "host", "show_host")
	require.NoError(t, err)
	assert.Equal(t, "quota exceeded", ta.Analysis.Error)
	assert.Equal(t, []string{}, ta.Analysis.Insights.Topics)
}

func TestAnalyzeDir_GroupsByShow(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, filepath.Join(dir, "高能量_李翔", "01.txt"), longTranscript())
	writeTranscript(t, filepath.Join(dir, "高能量_李翔", "02.txt"), longTranscript())
	writeTranscript(t, filepath.Join(dir, "乱翻书_潘乱", "01.txt"), longTranscript())
	writeTranscript(t, filepath.Join(dir, "乱翻书_潘乱", "short.txt"), "tiny")
	writeTranscript(t, filepath.Join(dir, "loose.txt"), longTranscript())

	gen := &mockGenerator{reply: func(p string) (string, error) {
		if strings.Contains(p, "李翔") {
			return `{"topics": ["商业", "成长"], "style": "calm"}`, nil
		}
		return `{"topics": ["科技"], "style": "sharp"}`, nil
	}}
	summaries, err := New(gen, nil, Config{}).AnalyzeDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	lx := summaries["高能量_李翔"]
	assert.Equal(t, "李翔", lx.HostName)
	assert.Equal(t, 2, lx.EpisodeCount)
	assert.Equal(t, []string{"商业", "成长"}, lx.KeyThemes)
	assert.Equal(t, "calm | calm", lx.ExpressionStyleSummary)

	pl := summaries["乱翻书_潘乱"]
	assert.Equal(t, 1, pl.EpisodeCount)
	assert.Len(t, gen.prompts, 3)
}

func TestAnalyzeGuest(t *testing.T) {
	gen := &mockGenerator{reply: func(string) (string, error) {
		return "分析如下：没有结构化结果", nil
	}}
	g := domain.Guest{Name: "张晶", Role: "知乎副总裁", Podcast: "无"}
	res := New(gen, nil, Config{}).AnalyzeGuest(context.Background(), g, "")

	assert.False(t, res.Structured)
	assert.Equal(t, "分析如下：没有结构化结果", res.RawText)
	assert.Equal(t, GuestSource, res.Source)
	assert.Contains(t, gen.prompts[0], "基于公开信息和一般了解")
}

func TestAnalyzeGuests_PacesModelCalls(t *testing.T) {
	gen := &mockGenerator{reply: func(string) (string, error) { return `{"expression_style": "calm"}`, nil }}
	a := New(gen, nil, Config{Gap: pacer.Config{Min: 40 * time.Millisecond, Max: 40 * time.Millisecond}})

	guests := []domain.Guest{
		{Name: "张晶", Podcast: "无"},
		{Name: "李翔", Podcast: "高能量"},
		{Name: "王敏"},
		{Name: "陈默", Podcast: "无"},
	}
	var researched []string
	analyses, err := a.AnalyzeGuests(context.Background(), guests, func(_ context.Context, g domain.Guest) string {
		researched = append(researched, g.Name)
		return g.Name + " 的公开资料"
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"张晶", "王敏", "陈默"}, researched)
	assert.Len(t, analyses, 3)
	assert.NotContains(t, analyses, "李翔")
	assert.Equal(t, "calm", analyses["王敏"].Insights.Style)
	assert.Contains(t, gen.prompts[1], "王敏 的公开资料")

	require.Len(t, gen.at, 3)
	for i := 1; i < len(gen.at); i++ {
		assert.GreaterOrEqual(t, gen.at[i].Sub(gen.at[i-1]), 35*time.Millisecond)
	}
}

func TestAnalyzeGuests_Cancelled(t *testing.T) {
	gen := &mockGenerator{reply: func(string) (string, error) { return "", nil }}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(gen, nil, Config{}).AnalyzeGuests(ctx, []domain.Guest{{Name: "x"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, gen.prompts)
}

func TestDesignQuestions_QuotaErrorHoldsOff(t *testing.T) {
	quota := fmt.Errorf("generate with primary: %w", &googleapi.Error{Code: 429})
	gen := &mockGenerator{reply: func(p string) (string, error) {
		if strings.Contains(p, "嘉宾**: first") {
			return "", quota
		}
		return `{"question": "Q"}`, nil
	}}
	a := New(gen, nil, Config{})
	a.quotaBackoff = 80 * time.Millisecond

	set, err := a.DesignQuestions(context.Background(), []domain.Guest{{Name: "first"}, {Name: "second"}}, nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, set.GuestQuestions, "first")
	assert.Contains(t, set.GuestQuestions, "second")
	require.Len(t, gen.at, 2)
	assert.GreaterOrEqual(t, gen.at[1].Sub(gen.at[0]), 70*time.Millisecond)
}

func TestDesignQuestion(t *testing.T) {
	gen := &mockGenerator{reply: func(string) (string, error) {
		return `{"question": "Q?", "rationale": "R", "key_points": ["a"]}`, nil
	}}
	a := New(gen, nil, Config{Audience: "engineers", PanelSize: 7})
	summary := &domain.HostSummary{KeyThemes: []string{"t1", "t2"}}

	q, err := a.DesignQuestion(context.Background(), domain.Guest{Name: "李翔"}, summary)
	require.NoError(t, err)
	assert.Equal(t, domain.InterviewQuestion{Guest: "李翔", Question: "Q?", Rationale: "R", KeyPoints: []string{"a"}}, q)
	assert.Contains(t, gen.prompts[0], "其他6位嘉宾")
	assert.Contains(t, gen.prompts[0], "[t1; t2]")
}

func TestDesignQuestion_RawTextBecomesQuestion(t *testing.T) {
	gen := &mockGenerator{reply: func(string) (string, error) { return "  Just a question?  ", nil }}
	q, err := New(gen, nil, Config{}).DesignQuestion(context.Background(), domain.Guest{Name: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Just a question?", q.Question)
	assert.Equal(t, []string{}, q.KeyPoints)
}

func TestDesignQuestions(t *testing.T) {
	gen := &mockGenerator{reply: func(p string) (string, error) {
		if strings.Contains(p, "嘉宾**: bad") {
			return "", errors.New("boom")
		}
		return `{"question": "Q"}`, nil
	}}
	guests := []domain.Guest{{Name: "good"}, {Name: "bad"}}
	topics := []domain.Topic{{Name: "AI", Requirements: []string{"未来5年"}}}

	set, err := New(gen, nil, Config{}).DesignQuestions(context.Background(), guests, nil, topics)
	require.NoError(t, err)
	assert.Contains(t, set.GuestQuestions, "good")
	assert.NotContains(t, set.GuestQuestions, "bad")
	require.Len(t, set.TopicQuestions, 1)
	assert.Equal(t, "AI", set.TopicQuestions[0].Topic)
}

func TestHostName(t *testing.T) {
	assert.Equal(t, "黄俊杰", HostName("晚点聊_黄俊杰"))
	assert.Equal(t, "b", HostName("a_b_c"))
	assert.Equal(t, "solo", HostName("solo"))
}

func TestSummaryFor(t *testing.T) {
	summaries := map[string]domain.HostSummary{
		"高能量_李翔": {HostName: "李翔"},
	}
	assert.NotNil(t, SummaryFor(domain.Guest{Name: "李翔"}, summaries))
	assert.Nil(t, SummaryFor(domain.Guest{Name: "张晶"}, summaries))
}
