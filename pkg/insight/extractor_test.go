package insight

import (
	"encoding/json"
	"strings"
	"testing"

	"panel-brief/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PartialObjectInProse(t *testing.T) {
	res := Extract(`Here is the result: {"observations": ["A"], "style": "direct"}`)

	require.True(t, res.Structured)
	assert.Empty(t, res.RawText)
	assert.Equal(t, domain.InsightRecord{
		Observations:  []string{"A"},
		Philosophy:    []string{},
		IndustryViews: []string{},
		PersonalViews: []string{},
		Topics:        []string{},
		Style:         "direct",
	}, res.Record)
}

func TestExtract_EncodesEmptyListsNotNull(t *testing.T) {
	res := Extract(`{"observations": ["A"]}`)

	b, err := json.Marshal(res.Record)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"observations": ["A"],
		"philosophy": [],
		"industry_views": [],
		"personal_views": [],
		"topics": [],
		"style": ""
	}`, string(b))
}

func TestExtract_NoBraceFallsBackToRawText(t *testing.T) {
	inputs := []string{
		"",
		"the model refused to answer",
		"closing only }",
	}
	for _, in := range inputs {
		res := Extract(in)
		assert.False(t, res.Structured, in)
		assert.Equal(t, in, res.RawText)
		assert.Equal(t, emptyRecord(), res.Record)
	}
}

func TestExtract_InvalidJSONFallsBack(t *testing.T) {
	in := "```json\n{\"observations\": [\"A\", }\n```"
	res := Extract(in)

	assert.False(t, res.Structured)
	assert.Equal(t, in, res.RawText)
	assert.Equal(t, emptyRecord(), res.Record)
}

func TestExtract_RoundTripIdentity(t *testing.T) {
	want := domain.InsightRecord{
		Observations:  []string{"Audio is growing", "Clips drive discovery"},
		Philosophy:    []string{"Prepare questions for days"},
		IndustryViews: []string{"Platforms consolidate"},
		PersonalViews: []string{"Curiosity beats expertise"},
		Topics:        []string{"播客", "AI", "creator economy"},
		Style:         "calm, probing follow-ups",
	}
	b, err := json.Marshal(want)
	require.NoError(t, err)

	res := Extract("```json\n" + string(b) + "\n```\nLet me know if you need more.")
	require.True(t, res.Structured)
	assert.Equal(t, want, res.Record)
}

func TestExtract_PresentFieldsPassThrough(t *testing.T) {
	res := Extract(`{"topics": ["x", "y"], "personal_views": ["v"]}`)

	require.True(t, res.Structured)
	assert.Equal(t, []string{"x", "y"}, res.Record.Topics)
	assert.Equal(t, []string{"v"}, res.Record.PersonalViews)
	assert.Equal(t, []string{}, res.Record.Observations)
	assert.Equal(t, []string{}, res.Record.Philosophy)
	assert.Equal(t, []string{}, res.Record.IndustryViews)
	assert.Equal(t, "", res.Record.Style)
}

func TestExtract_PromptKeyAliases(t *testing.T) {
	res := Extract(`{
		"professional_observations": ["o"],
		"content_creation_philosophy": ["p"],
		"industry_insights": ["i"],
		"personal_views": ["v"],
		"discussion_topics": ["t"],
		"expression_style": "s"
	}`)

	require.True(t, res.Structured)
	assert.Equal(t, domain.InsightRecord{
		Observations:  []string{"o"},
		Philosophy:    []string{"p"},
		IndustryViews: []string{"i"},
		PersonalViews: []string{"v"},
		Topics:        []string{"t"},
		Style:         "s",
	}, res.Record)
}

func TestExtract_CanonicalKeyWinsOverAlias(t *testing.T) {
	res := Extract(`{"topics": ["canonical"], "discussion_topics": ["alias"]}`)
	assert.Equal(t, []string{"canonical"}, res.Record.Topics)
}

func TestExtract_LooseTypes(t *testing.T) {
	res := Extract(`{
		"observations": "single string",
		"philosophy": [{"idea": "x"}, 3, "plain"],
		"industry_views": 42,
		"personal_views": null,
		"topics": "",
		"style": ["short", "warm"]
	}`)

	require.True(t, res.Structured)
	assert.Equal(t, []string{"single string"}, res.Record.Observations)
	assert.Equal(t, []string{`{"idea":"x"}`, "3", "plain"}, res.Record.Philosophy)
	assert.Equal(t, []string{}, res.Record.IndustryViews)
	assert.Equal(t, []string{}, res.Record.PersonalViews)
	assert.Equal(t, []string{}, res.Record.Topics)
	assert.Equal(t, "short; warm", res.Record.Style)
}

func TestExtract_NarrowsPastTrailingBrace(t *testing.T) {
	res := Extract(`Result: {"observations": ["A"]} (note: ignore the } above)`)

	require.True(t, res.Structured)
	assert.Equal(t, []string{"A"}, res.Record.Observations)
}

func TestExtract_MultipleObjectsFirstWins(t *testing.T) {
	res := Extract(`{"observations": ["first"]} and later {"observations": ["second"]}`)

	require.True(t, res.Structured)
	assert.Equal(t, []string{"first"}, res.Record.Observations)
}

func TestExtract_NestedObject(t *testing.T) {
	res := Extract(`{"observations": ["A"], "meta": {"model": "x"}, "style": "dry"}`)

	require.True(t, res.Structured)
	assert.Equal(t, []string{"A"}, res.Record.Observations)
	assert.Equal(t, "dry", res.Record.Style)
}

func TestExtractor_NarrowingLimit(t *testing.T) {
	in := `{"observations": ["A"]}` + strings.Repeat(" }", 5)

	assert.False(t, NewExtractor(Config{MaxNarrowing: 2}).Extract(in).Structured)
	assert.True(t, NewExtractor(Config{MaxNarrowing: 5}).Extract(in).Structured)
}

func TestFillDefaults_Idempotent(t *testing.T) {
	rec := domain.InsightRecord{Topics: []string{"t"}, Style: "s"}
	FillDefaults(&rec)
	once := rec
	FillDefaults(&rec)
	assert.Equal(t, once, rec)
	assert.Equal(t, []string{"t"}, rec.Topics)
	assert.NotNil(t, rec.Observations)

	FillDefaults(nil)
}

func TestExtractFor_AttachesMetadata(t *testing.T) {
	a := ExtractFor(`{"style": "direct"}`, "Host", "show_Host")

	assert.Equal(t, "Host", a.Subject)
	assert.Equal(t, "show_Host", a.Source)
	assert.True(t, a.Structured)
	assert.Equal(t, "direct", a.Insights.Style)
	assert.Equal(t, []string{}, a.Insights.Topics)

	raw := ExtractFor("no json here", "Host", "show_Host")
	assert.False(t, raw.Structured)
	assert.Equal(t, "no json here", raw.RawText)
	assert.Equal(t, "Host", raw.Subject)
}

func TestExtractObject(t *testing.T) {
	var q domain.InterviewQuestion
	ok := ExtractObject("Sure!\n```json\n{\"question\": \"Why audio?\", \"rationale\": \"r\", \"key_points\": [\"a\", \"b\"]}\n```", &q)

	require.True(t, ok)
	assert.Equal(t, "Why audio?", q.Question)
	assert.Equal(t, []string{"a", "b"}, q.KeyPoints)

	assert.False(t, ExtractObject("nothing", &q))
}

func emptyRecord() domain.InsightRecord {
	return domain.InsightRecord{
		Observations:  []string{},
		Philosophy:    []string{},
		IndustryViews: []string{},
		PersonalViews: []string{},
		Topics:        []string{},
	}
}
