// Package analysis turns transcripts and guest research into insight
// records, per-show summaries and interview questions.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"panel-brief/pkg/domain"
	"panel-brief/pkg/gemini"
	"panel-brief/pkg/insight"
	"panel-brief/pkg/pacer"

	"github.com/google/uuid"
)

const (
	// MinTranscriptRunes is the shortest transcript worth analysing.
	MinTranscriptRunes = 100

	// MaxPromptRunes caps the transcript text sent to the model.
	MaxPromptRunes = 20000
)

// GuestSource labels analyses built from guest research rather than a show.
const GuestSource = "guest research"

var ErrTranscriptTooShort = errors.New("transcript too short to analyse")

// Generator produces text for a prompt. gemini.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Sink stores finished analyses. db.Store satisfies it.
type Sink interface {
	SaveAnalysis(ctx context.Context, a domain.Analysis) error
}

// Config for an Analyzer.
type Config struct {
	// Audience describes who the panel is for; it shapes the questions.
	Audience string

	// PanelSize is the number of guests on stage.
	PanelSize int

	// Gap spaces out model calls.
	Gap pacer.Config
}

// Analyzer runs model analyses. Every analysis it produces carries the
// same RunID so a batch can be traced in storage.
type Analyzer struct {
	gen          Generator
	sink         Sink
	cfg          Config
	pace         *pacer.Pacer
	quotaBackoff time.Duration
	runID        string
	now          func() time.Time
}

// New creates an Analyzer. sink may be nil.
func New(gen Generator, sink Sink, cfg Config) *Analyzer {
	if cfg.PanelSize <= 0 {
		cfg.PanelSize = 7
	}
	return &Analyzer{
		gen:          gen,
		sink:         sink,
		cfg:          cfg,
		pace:         pacer.New(cfg.Gap),
		quotaBackoff: gemini.QuotaBackoff,
		runID:        uuid.NewString(),
		now:          time.Now,
	}
}

// RunID identifies this analyzer's batch.
func (a *Analyzer) RunID() string {
	return a.runID
}

// AnalyzeTranscript analyses one transcript file for what the host said.
// A model failure is recorded in the result's Analysis.Error rather than
// returned, so one bad episode does not stop a batch.
func (a *Analyzer) AnalyzeTranscript(ctx context.Context, path, host, podcast string) (*domain.TranscriptAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	text := string(data)
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTranscriptRunes {
		return nil, fmt.Errorf("%w: %s", ErrTranscriptTooShort, filepath.Base(path))
	}

	episode := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	result := a.analyze(ctx, hostPrompt(truncate(text, MaxPromptRunes), host), host, podcast+"/"+episode)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return &domain.TranscriptAnalysis{
		File:                path,
		EpisodeName:         episode,
		HostStatementsCount: len(HostStatements(text)),
		Analysis:            result,
		TextLength:          utf8.RuneCountInString(text),
		ParagraphCount:      len(strings.Split(text, "\n\n")),
	}, nil
}

// AnalyzeDir analyses every transcript under dir, grouped by the show
// directory directly below dir, and merges each group into a HostSummary
// keyed by show directory name. Files directly in dir are ignored.
func (a *Analyzer) AnalyzeDir(ctx context.Context, dir string) (map[string]domain.HostSummary, error) {
	groups, err := transcriptsByShow(dir)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		log.Printf("Analyzer: no transcripts found in %s", dir)
		return map[string]domain.HostSummary{}, nil
	}

	shows := make([]string, 0, len(groups))
	for show := range groups {
		shows = append(shows, show)
	}
	sort.Strings(shows)

	summaries := make(map[string]domain.HostSummary, len(groups))
	for _, show := range shows {
		host := HostName(show)
		var analyses []domain.TranscriptAnalysis
		for _, path := range groups[show] {
			if err := a.pace.Wait(ctx); err != nil {
				return summaries, err
			}
			log.Printf("Analyzer: analysing %s", filepath.Base(path))
			ta, err := a.AnalyzeTranscript(ctx, path, host, show)
			if err != nil {
				if ctx.Err() != nil {
					return summaries, ctx.Err()
				}
				log.Printf("Analyzer: skipping %s: %v", filepath.Base(path), err)
				continue
			}
			analyses = append(analyses, *ta)
		}
		summaries[show] = Merge(host, show, analyses)
	}
	return summaries, nil
}

// AnalyzeGuest analyses a guest from collected research text, for guests
// without a show of their own.
func (a *Analyzer) AnalyzeGuest(ctx context.Context, g domain.Guest, collected string) domain.Analysis {
	return a.analyze(ctx, guestPrompt(g, collected), g.Name, GuestSource)
}

// AnalyzeGuests analyses every guest without a show of their own, one
// paced model call each. research supplies the collected text for a guest
// and may be nil.
func (a *Analyzer) AnalyzeGuests(ctx context.Context, guests []domain.Guest, research func(context.Context, domain.Guest) string) (map[string]domain.Analysis, error) {
	analyses := make(map[string]domain.Analysis)
	for _, g := range guests {
		if g.HasPodcast() {
			continue
		}
		var collected string
		if research != nil {
			collected = research(ctx, g)
		}
		if err := a.pace.Wait(ctx); err != nil {
			return analyses, err
		}
		log.Printf("Analyzer: analysing guest %s", g.Name)
		analyses[g.Name] = a.AnalyzeGuest(ctx, g, collected)
		if err := ctx.Err(); err != nil {
			return analyses, err
		}
	}
	return analyses, nil
}

// DesignQuestion asks for one tailored question for g. summary may be nil
// when the guest has no analysed show.
func (a *Analyzer) DesignQuestion(ctx context.Context, g domain.Guest, summary *domain.HostSummary) (domain.InterviewQuestion, error) {
	q, err := a.question(ctx, questionPrompt(g, summary, a.cfg.Audience, a.cfg.PanelSize))
	if err != nil {
		return q, fmt.Errorf("design question for %s: %w", g.Name, err)
	}
	q.Guest = g.Name
	return q, nil
}

// DesignTopicQuestion asks for one question on topic for the whole panel.
func (a *Analyzer) DesignTopicQuestion(ctx context.Context, topic domain.Topic) (domain.InterviewQuestion, error) {
	q, err := a.question(ctx, topicPrompt(topic, a.cfg.Audience, a.cfg.PanelSize))
	if err != nil {
		return q, fmt.Errorf("design %s question: %w", topic.Name, err)
	}
	q.Topic = topic.Name
	return q, nil
}

// DesignQuestions designs a question per guest plus one per topic. Guests
// whose question cannot be designed are logged and left out.
func (a *Analyzer) DesignQuestions(ctx context.Context, guests []domain.Guest, summaries map[string]domain.HostSummary, topics []domain.Topic) (domain.QuestionSet, error) {
	set := domain.QuestionSet{GuestQuestions: make(map[string]domain.InterviewQuestion, len(guests))}
	for _, g := range guests {
		if err := a.pace.Wait(ctx); err != nil {
			return set, err
		}
		q, err := a.DesignQuestion(ctx, g, SummaryFor(g, summaries))
		if err != nil {
			if ctx.Err() != nil {
				return set, ctx.Err()
			}
			log.Printf("Analyzer: %v", err)
			continue
		}
		set.GuestQuestions[g.Name] = q
	}
	for _, t := range topics {
		if err := a.pace.Wait(ctx); err != nil {
			return set, err
		}
		q, err := a.DesignTopicQuestion(ctx, t)
		if err != nil {
			if ctx.Err() != nil {
				return set, ctx.Err()
			}
			log.Printf("Analyzer: %v", err)
			continue
		}
		set.TopicQuestions = append(set.TopicQuestions, q)
	}
	return set, nil
}

func (a *Analyzer) question(ctx context.Context, prompt string) (domain.InterviewQuestion, error) {
	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.holdOffOnQuota(err)
		return domain.InterviewQuestion{}, err
	}
	var q domain.InterviewQuestion
	if !insight.ExtractObject(text, &q) || strings.TrimSpace(q.Question) == "" {
		q = domain.InterviewQuestion{Question: strings.TrimSpace(text)}
	}
	if q.KeyPoints == nil {
		q.KeyPoints = []string{}
	}
	return q, nil
}

func (a *Analyzer) analyze(ctx context.Context, prompt, subject, source string) domain.Analysis {
	var result domain.Analysis
	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Analyzer: model call for %s failed: %v", subject, err)
		a.holdOffOnQuota(err)
		rec := domain.InsightRecord{}
		insight.FillDefaults(&rec)
		result = domain.Analysis{Subject: subject, Source: source, Insights: rec, Error: err.Error()}
	} else {
		result = insight.ExtractFor(text, subject, source)
		if !result.Structured {
			log.Printf("Analyzer: no JSON in model output for %s, keeping raw text", subject)
		}
	}
	result.RunID = a.runID
	result.AnalyzedAt = a.now().UTC()

	if a.sink != nil && ctx.Err() == nil {
		if err := a.sink.SaveAnalysis(ctx, result); err != nil {
			log.Printf("Analyzer: failed to store analysis for %s: %v", subject, err)
		}
	}
	return result
}

func (a *Analyzer) holdOffOnQuota(err error) {
	if gemini.IsQuota(err) {
		log.Printf("Analyzer: quota exceeded, holding off for %s", a.quotaBackoff)
		a.pace.Backoff(a.quotaBackoff)
	}
}

// HostName derives the host from a show directory named "<show>_<host>".
func HostName(showDir string) string {
	parts := strings.Split(showDir, "_")
	if len(parts) < 2 || parts[1] == "" {
		return showDir
	}
	return parts[1]
}

// SummaryFor finds the summary of the show g hosts, matching the guest
// name against the show key or the summary's host name.
func SummaryFor(g domain.Guest, summaries map[string]domain.HostSummary) *domain.HostSummary {
	keys := make([]string, 0, len(summaries))
	for k := range summaries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := summaries[k]
		if strings.Contains(k, g.Name) || strings.Contains(s.HostName, g.Name) {
			return &s
		}
	}
	return nil
}

func transcriptsByShow(dir string) (map[string][]string, error) {
	groups := make(map[string][]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 2 {
			return nil
		}
		groups[parts[0]] = append(groups[parts[0]], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return groups, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
