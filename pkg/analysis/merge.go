package analysis

import (
	"strings"

	"panel-brief/pkg/domain"
	"panel-brief/pkg/insight"
)

const (
	maxMergedItems  = 15
	maxKeyThemes    = 10
	maxStylesMerged = 3
)

// Merge folds the per-episode analyses of one show into a HostSummary.
// Lists keep first-seen order, drop duplicates and are capped at 15; key
// themes come from topics and are capped at 10; the style summary joins
// the first three non-empty styles with " | ".
func Merge(host, podcast string, analyses []domain.TranscriptAnalysis) domain.HostSummary {
	var (
		observations, philosophy, industry, personal, topics []string
		styles                                               []string
	)
	for _, a := range analyses {
		in := a.Analysis.Insights
		observations = append(observations, in.Observations...)
		philosophy = append(philosophy, in.Philosophy...)
		industry = append(industry, in.IndustryViews...)
		personal = append(personal, in.PersonalViews...)
		topics = append(topics, in.Topics...)
		if s := strings.TrimSpace(in.Style); s != "" {
			styles = append(styles, s)
		}
	}

	if len(styles) > maxStylesMerged {
		styles = styles[:maxStylesMerged]
	}
	styleSummary := strings.Join(styles, " | ")

	rec := domain.InsightRecord{
		Observations:  dedupe(observations, maxMergedItems),
		Philosophy:    dedupe(philosophy, maxMergedItems),
		IndustryViews: dedupe(industry, maxMergedItems),
		PersonalViews: dedupe(personal, maxMergedItems),
		Topics:        dedupe(topics, maxMergedItems),
		Style:         styleSummary,
	}
	insight.FillDefaults(&rec)

	return domain.HostSummary{
		HostName:               host,
		PodcastName:            podcast,
		EpisodeCount:           len(analyses),
		Insights:               rec,
		ExpressionStyleSummary: styleSummary,
		KeyThemes:              dedupe(topics, maxKeyThemes),
	}
}

func dedupe(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, min(len(items), limit))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}
