package domain

import "time"

// InsightRecord is the fixed six-field schema extracted from model analysis text.
//
// Every list is non-nil after extraction so it encodes as [] rather than null.
type InsightRecord struct {
	Observations  []string `bson:"observations" json:"observations"`
	Philosophy    []string `bson:"philosophy" json:"philosophy"`
	IndustryViews []string `bson:"industry_views" json:"industry_views"`
	PersonalViews []string `bson:"personal_views" json:"personal_views"`
	Topics        []string `bson:"topics" json:"topics"`
	Style         string   `bson:"style" json:"style"`
}

// Analysis is one InsightRecord plus the identity of what it describes.
type Analysis struct {
	// Subject is the person the insights are about (host or guest).
	Subject string `bson:"subject" json:"subject"`

	// Source labels where the analysed text came from (podcast or file name).
	Source string `bson:"source" json:"source"`

	Insights InsightRecord `bson:"insights" json:"insights"`

	// RawText carries the model output when no JSON object could be recovered.
	RawText string `bson:"raw_text,omitempty" json:"raw_text,omitempty"`

	// Structured is false when RawText fallback was used.
	Structured bool `bson:"structured" json:"structured"`

	// Error is set when the analysis service itself failed.
	Error string `bson:"error,omitempty" json:"error,omitempty"`

	RunID      string    `bson:"run_id,omitempty" json:"run_id,omitempty"`
	AnalyzedAt time.Time `bson:"analyzed_at" json:"analyzed_at"`
}

// TranscriptAnalysis is the analysis of a single transcript file.
type TranscriptAnalysis struct {
	File                string   `json:"file"`
	EpisodeName         string   `json:"episode_name"`
	HostStatementsCount int      `json:"host_statements_count"`
	Analysis            Analysis `json:"insights"`
	TextLength          int      `json:"text_length"`
	ParagraphCount      int      `json:"paragraph_count"`
}

// HostSummary merges every transcript analysis of one show.
type HostSummary struct {
	HostName               string        `json:"host_name"`
	PodcastName            string        `json:"podcast_name"`
	EpisodeCount           int           `json:"episode_count"`
	Insights               InsightRecord `json:"insights"`
	ExpressionStyleSummary string        `json:"expression_style_summary"`
	KeyThemes              []string      `json:"key_themes"`
}
