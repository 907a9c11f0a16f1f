package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"panel-brief/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_Readable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	in := map[string]string{"name": "晚点聊 <news> & more"}

	require.NoError(t, WriteJSON(path, in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "晚点聊 <news> & more")
	assert.Contains(t, string(data), "\n  \"name\"")

	var out map[string]string
	require.NoError(t, ReadJSON(path, &out))
	assert.Equal(t, in, out)
}

func TestReadJSON_Errors(t *testing.T) {
	dir := t.TempDir()
	var v any
	assert.Error(t, ReadJSON(filepath.Join(dir, "missing.json"), &v))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	assert.ErrorContains(t, ReadJSON(bad, &v), "decode bad.json")
}

func TestHostInsights(t *testing.T) {
	long := strings.Repeat("长", 250)
	summaries := map[string]domain.HostSummary{
		"晚点聊_黄俊杰": {
			HostName:     "黄俊杰",
			EpisodeCount: 3,
			Insights: domain.InsightRecord{
				Observations:  []string{"o1", "o2", "o3", "o4", "o5", "o6"},
				Philosophy:    []string{long},
				IndustryViews: []string{},
				PersonalViews: []string{},
			},
			ExpressionStyleSummary: "calm | direct",
			KeyThemes:              []string{"AI", "media"},
		},
	}

	md := HostInsights(summaries)

	assert.Contains(t, md, "## 黄俊杰 - 晚点聊_黄俊杰\n\n**分析期数**: 3 期")
	assert.Contains(t, md, "5. o5\n")
	assert.NotContains(t, md, "o6")
	assert.Contains(t, md, "1. "+strings.Repeat("长", 200)+"\n")
	assert.NotContains(t, md, strings.Repeat("长", 201))
	assert.NotContains(t, md, "### 行业见解")
	assert.Contains(t, md, "### 表达风格\n\ncalm | direct")
	assert.Contains(t, md, "- AI\n- media\n")
}

func TestGuestNotes(t *testing.T) {
	guests := []domain.Guest{
		{Name: "李翔", Podcast: "高能量"},
		{Name: "张晶", Role: "知乎副总裁", Podcast: "无"},
		{Name: "曾鸣", Role: "学者"},
	}
	summaries := map[string]domain.HostSummary{
		"高能量_李翔": {HostName: "李翔", PodcastName: "高能量_李翔", Insights: domain.InsightRecord{Observations: []string{"obs"}}},
	}
	analyses := map[string]domain.Analysis{
		"张晶": {Structured: true, Insights: domain.InsightRecord{Topics: []string{"社区"}}},
	}

	md := GuestNotes(guests, summaries, analyses)

	assert.Contains(t, md, "包含3位嘉宾")
	assert.Contains(t, md, "## 有播客转录的1位嘉宾")
	assert.Contains(t, md, "### 李翔 - 高能量_李翔\n\n#### 专业观察\n\n- obs\n")
	assert.Contains(t, md, "## 其他2位嘉宾")
	assert.Contains(t, md, "**身份**: 知乎副总裁")
	assert.Contains(t, md, "#### 讨论主题\n\n- 社区\n")
	assert.Contains(t, md, "### 曾鸣\n\n**身份**: 学者\n\n**播客/作品**: 无\n\n_暂无分析_")
}

func TestInterviewOutline(t *testing.T) {
	ev := Event{Audience: "engineers", Venue: "NYC", Duration: "1 hour"}
	guests := []domain.Guest{{Name: "B"}, {Name: "A"}, {Name: "C"}}
	set := domain.QuestionSet{
		GuestQuestions: map[string]domain.InterviewQuestion{
			"A": {Question: "qa", Rationale: "ra", KeyPoints: []string{"p1"}},
			"B": {Question: "qb"},
		},
		TopicQuestions: []domain.InterviewQuestion{{Topic: "AI", Question: "qai"}},
	}

	md := InterviewOutline(ev, guests, set)

	assert.Contains(t, md, "**听众**: engineers")
	assert.Contains(t, md, "介绍主题和3位嘉宾")
	assert.Less(t, strings.Index(md, "### B"), strings.Index(md, "### A"))
	assert.NotContains(t, md, "### C")
	assert.Contains(t, md, "**问题**: qa\n\n**设计理由**: ra\n\n**讨论要点**:\n- p1\n")
	assert.Contains(t, md, "### 关于AI的问题\n\n**问题**: qai")
	assert.Contains(t, md, "4. **观众提问**")
}

func TestGuestProfiles(t *testing.T) {
	guests := []domain.Guest{
		{Name: "潘乱", NameEn: "Pan Luan", Role: "主播", RoleEn: "Host", Podcast: "乱翻书",
			HighlightsZh: []string{"亮点一", "亮点二"}, HighlightsEn: []string{"one", "two"}},
		{Name: "张晶", NameEn: "Zhang Jing", Role: "副总裁", RoleEn: "VP", Podcast: "无"},
	}

	zh, err := GuestProfiles(guests, Chinese)
	require.NoError(t, err)
	assert.Contains(t, zh, "**播客**: 乱翻书")
	assert.Equal(t, 1, strings.Count(zh, "**播客**"))
	assert.Contains(t, zh, "- 亮点二\n")

	en, err := GuestProfiles(guests, English)
	require.NoError(t, err)
	assert.Contains(t, en, "## Zhang Jing\n\n**Title**: VP")

	both, err := GuestProfiles(guests, Bilingual)
	require.NoError(t, err)
	assert.Contains(t, both, "2. **中文**: 亮点二\n   **English**: two\n")

	_, err = GuestProfiles(guests, "fr")
	assert.Error(t, err)
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "notes.md")
	require.NoError(t, WriteMarkdown(path, "# title\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# title\n", string(data))
}
