// Package insight recovers the six-field InsightRecord from free-form model
// output that is supposed to contain one JSON object but usually arrives
// wrapped in prose or markdown fences, or with a stray trailing brace.
//
// Extraction never fails. When no object can be recovered, the result carries
// an all-default record and the original text in RawText.
package insight

import (
	"bytes"
	"encoding/json"
	"strings"

	"panel-brief/pkg/domain"
)

// DefaultMaxNarrowing bounds how many times the right edge of the candidate
// span is moved back to an earlier '}' before giving up.
const DefaultMaxNarrowing = 64

// Config for an Extractor.
type Config struct {
	MaxNarrowing int
}

// Result of a single extraction.
type Result struct {
	Record domain.InsightRecord

	// Structured is true when a JSON object was recovered from the text.
	Structured bool

	// RawText is the full input when Structured is false, and empty otherwise.
	RawText string
}

// Extractor holds no mutable state; one instance can serve concurrent callers.
type Extractor struct {
	maxNarrowing int
}

// NewExtractor creates an Extractor. Non-positive MaxNarrowing uses the default.
func NewExtractor(cfg Config) *Extractor {
	if cfg.MaxNarrowing <= 0 {
		cfg.MaxNarrowing = DefaultMaxNarrowing
	}
	return &Extractor{maxNarrowing: cfg.MaxNarrowing}
}

var defaultExtractor = NewExtractor(Config{})

// Extract runs the default extractor.
func Extract(text string) Result {
	return defaultExtractor.Extract(text)
}

// ExtractFor runs the default extractor and attaches identity metadata.
func ExtractFor(text, subject, source string) domain.Analysis {
	return defaultExtractor.ExtractFor(text, subject, source)
}

// ExtractObject decodes the embedded JSON object of text into v using the
// default extractor's span scan.
func ExtractObject(text string, v any) bool {
	return defaultExtractor.ExtractObject(text, v)
}

// Extract locates the JSON object in text and maps it onto an InsightRecord.
//
// The candidate span runs from the first '{' to the last '}'. If that is
// not valid JSON the right edge is narrowed to the previous '}' and
// retried. On text holding several objects this means the outermost valid
// prefix wins, which is usually but not always the intended one.
func (e *Extractor) Extract(text string) Result {
	fields, ok := e.objectFields(text)
	if !ok {
		rec := domain.InsightRecord{}
		FillDefaults(&rec)
		return Result{Record: rec, RawText: text}
	}

	rec := mapRecord(fields)
	FillDefaults(&rec)
	return Result{Record: rec, Structured: true}
}

// ExtractFor is Extract plus the caller's subject and source. Metadata is
// attached after default-filling and is never touched by it.
func (e *Extractor) ExtractFor(text, subject, source string) domain.Analysis {
	res := e.Extract(text)
	return domain.Analysis{
		Subject:    subject,
		Source:     source,
		Insights:   res.Record,
		RawText:    res.RawText,
		Structured: res.Structured,
	}
}

// ExtractObject decodes the first recoverable JSON object in text into v.
// It reports false, leaving v untouched, when none is found.
func (e *Extractor) ExtractObject(text string, v any) bool {
	span, ok := e.span(text)
	if !ok {
		return false
	}
	return json.Unmarshal(span, v) == nil
}

func (e *Extractor) objectFields(text string) (map[string]json.RawMessage, bool) {
	span, ok := e.span(text)
	if !ok {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(span, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// span returns the widest valid JSON object starting at the first '{'.
func (e *Extractor) span(text string) ([]byte, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, false
	}
	end := strings.LastIndexByte(text, '}')

	for tries := 0; end > start && tries <= e.maxNarrowing; tries++ {
		candidate := []byte(text[start : end+1])
		if json.Valid(candidate) {
			return candidate, true
		}
		end = strings.LastIndexByte(text[:end], '}')
	}
	return nil, false
}

// fieldKeys lists the accepted keys per field, canonical name first.
var (
	observationKeys  = []string{"observations", "professional_observations"}
	philosophyKeys   = []string{"philosophy", "content_creation_philosophy"}
	industryKeys     = []string{"industry_views", "industry_insights"}
	personalViewKeys = []string{"personal_views"}
	topicKeys        = []string{"topics", "discussion_topics"}
	styleKeys        = []string{"style", "expression_style"}
)

func mapRecord(fields map[string]json.RawMessage) domain.InsightRecord {
	return domain.InsightRecord{
		Observations:  stringList(lookup(fields, observationKeys)),
		Philosophy:    stringList(lookup(fields, philosophyKeys)),
		IndustryViews: stringList(lookup(fields, industryKeys)),
		PersonalViews: stringList(lookup(fields, personalViewKeys)),
		Topics:        stringList(lookup(fields, topicKeys)),
		Style:         styleText(lookup(fields, styleKeys)),
	}
}

func lookup(fields map[string]json.RawMessage, keys []string) json.RawMessage {
	for _, k := range keys {
		if raw, ok := fields[k]; ok && !isNull(raw) {
			return raw
		}
	}
	return nil
}

// stringList accepts a list or a single string. List items that are not
// strings are kept as compact JSON. Anything else yields nil.
func stringList(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}

	var single string
	if json.Unmarshal(raw, &single) == nil {
		if strings.TrimSpace(single) == "" {
			return []string{}
		}
		return []string{single}
	}

	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
			continue
		}
		out = append(out, compact(item))
	}
	return out
}

func styleText(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	if list := stringList(raw); len(list) > 0 {
		return strings.Join(list, "; ")
	}
	return ""
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// FillDefaults replaces nil lists with empty ones. Present values are left
// alone, so applying it twice is the same as applying it once.
func FillDefaults(rec *domain.InsightRecord) {
	if rec == nil {
		return
	}
	for _, list := range []*[]string{
		&rec.Observations,
		&rec.Philosophy,
		&rec.IndustryViews,
		&rec.PersonalViews,
		&rec.Topics,
	} {
		if *list == nil {
			*list = []string{}
		}
	}
}
