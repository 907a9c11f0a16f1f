package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"panel-brief/pkg/domain"
)

const (
	summaryItems    = 5
	summaryItemLen  = 200
	summaryTopics   = 10
	summaryTopicLen = 150
	divider         = "---\n\n"
)

// Event describes the panel the briefing documents are written for.
type Event struct {
	Title    string `toml:"title" json:"title"`
	Audience string `toml:"audience" json:"audience"`
	Venue    string `toml:"venue" json:"venue"`
	Duration string `toml:"duration" json:"duration"`
}

// HostInsights renders the per-show host summaries, shows in name order.
func HostInsights(summaries map[string]domain.HostSummary) string {
	var b strings.Builder
	b.WriteString("# 播客主播观点分析总结\n\n")
	b.WriteString("**重要说明**: 本分析重点关注播客主播（Panel嘉宾）的观点，而非播客节目中邀请的嘉宾观点。\n\n")

	for _, name := range sortedKeys(summaries) {
		s := summaries[name]
		fmt.Fprintf(&b, "## %s - %s\n\n", s.HostName, name)
		fmt.Fprintf(&b, "**分析期数**: %d 期\n\n", s.EpisodeCount)

		numbered(&b, "### 专业观察", s.Insights.Observations)
		numbered(&b, "### 内容创作理念", s.Insights.Philosophy)
		numbered(&b, "### 行业见解", s.Insights.IndustryViews)
		numbered(&b, "### 个人观点", s.Insights.PersonalViews)

		if s.ExpressionStyleSummary != "" {
			fmt.Fprintf(&b, "### 表达风格\n\n%s\n\n", s.ExpressionStyleSummary)
		}
		if len(s.KeyThemes) > 0 {
			b.WriteString("### 讨论主题\n\n")
			for _, theme := range head(s.KeyThemes, summaryTopics) {
				fmt.Fprintf(&b, "- %s\n", clip(theme, summaryTopicLen))
			}
			b.WriteString("\n")
		}
		b.WriteString(divider)
	}
	return b.String()
}

// GuestNotes renders research notes for every guest: show-based guests
// from their host summary, the others from their guest analysis.
func GuestNotes(guests []domain.Guest, summaries map[string]domain.HostSummary, analyses map[string]domain.Analysis) string {
	var withShow, without []domain.Guest
	for _, g := range guests {
		if _, ok := summaryOf(g, summaries); ok {
			withShow = append(withShow, g)
		} else {
			without = append(without, g)
		}
	}

	var b strings.Builder
	b.WriteString("# Panel嘉宾研究笔记\n\n")
	fmt.Fprintf(&b, "包含%d位嘉宾的分析结果\n\n", len(guests))
	b.WriteString(divider)

	if len(withShow) > 0 {
		fmt.Fprintf(&b, "## 有播客转录的%d位嘉宾（基于播客转录分析）\n\n", len(withShow))
		b.WriteString(divider)
		for _, g := range withShow {
			s, _ := summaryOf(g, summaries)
			fmt.Fprintf(&b, "### %s - %s\n\n", g.Name, s.PodcastName)
			bulleted(&b, "#### 专业观察", head(s.Insights.Observations, summaryItems))
			bulleted(&b, "#### 内容创作理念", head(s.Insights.Philosophy, summaryItems))
			b.WriteString(divider)
		}
	}

	if len(without) > 0 {
		fmt.Fprintf(&b, "## 其他%d位嘉宾（基于公开信息分析）\n\n", len(without))
		b.WriteString(divider)
		for _, g := range without {
			fmt.Fprintf(&b, "### %s\n\n", g.Name)
			fmt.Fprintf(&b, "**身份**: %s\n\n", g.Role)
			fmt.Fprintf(&b, "**播客/作品**: %s\n\n", orNone(g.Podcast))
			a, ok := analyses[g.Name]
			switch {
			case !ok:
				b.WriteString("_暂无分析_\n\n")
			case !a.Structured && a.RawText != "":
				fmt.Fprintf(&b, "%s\n\n", a.RawText)
			default:
				bulleted(&b, "#### 专业观察", a.Insights.Observations)
				bulleted(&b, "#### 内容创作理念", a.Insights.Philosophy)
				bulleted(&b, "#### 行业见解", a.Insights.IndustryViews)
				bulleted(&b, "#### 讨论主题", a.Insights.Topics)
			}
			b.WriteString(divider)
		}
	}
	return b.String()
}

// InterviewOutline renders the panel run sheet with every designed
// question. Guests appear in the given order.
func InterviewOutline(ev Event, guests []domain.Guest, set domain.QuestionSet) string {
	var b strings.Builder
	b.WriteString("# Panel访谈大纲\n\n")
	if ev.Title != "" {
		fmt.Fprintf(&b, "**主题**: %s\n", ev.Title)
	}
	fmt.Fprintf(&b, "**听众**: %s\n", ev.Audience)
	fmt.Fprintf(&b, "**地点**: %s\n", ev.Venue)
	fmt.Fprintf(&b, "**时长**: %s\n\n", ev.Duration)
	b.WriteString(divider)

	b.WriteString("## 时间分配\n\n")
	fmt.Fprintf(&b, "1. **开场介绍**\n   - 介绍主题和%d位嘉宾\n\n", len(guests))
	b.WriteString("2. **定制问题环节**\n   - 为每位嘉宾设计1个定制问题\n   - 问题既有针对性又具普适性，其他嘉宾也可参与\n\n")
	if len(set.TopicQuestions) > 0 {
		b.WriteString("3. **通用问题环节**\n")
		for _, q := range set.TopicQuestions {
			fmt.Fprintf(&b, "   - 关于%s的问题\n", q.Topic)
		}
		b.WriteString("\n4. **观众提问**\n\n")
	} else {
		b.WriteString("3. **观众提问**\n\n")
	}
	b.WriteString(divider)

	b.WriteString("## 定制问题设计\n\n")
	for _, g := range guests {
		q, ok := set.GuestQuestions[g.Name]
		if !ok {
			continue
		}
		question(&b, "### "+g.Name, q)
	}
	b.WriteString(divider)

	if len(set.TopicQuestions) > 0 {
		b.WriteString("## 通用问题\n\n")
		for _, q := range set.TopicQuestions {
			question(&b, fmt.Sprintf("### 关于%s的问题", q.Topic), q)
		}
		b.WriteString(divider)
	}

	b.WriteString("## 主持人引导建议\n\n")
	b.WriteString("1. 在每个定制问题后，鼓励其他嘉宾分享观点\n")
	b.WriteString("2. 注意时间控制，确保每位嘉宾都有机会发言\n")
	b.WriteString("3. 在通用问题环节，可以邀请对该话题有特别看法的嘉宾先发言\n")
	b.WriteString("4. 预留观众提问时间，鼓励互动\n")
	return b.String()
}

// Profile languages.
const (
	Chinese   = "zh"
	English   = "en"
	Bilingual = "bilingual"
)

// GuestProfiles renders introduction cards in the given language.
func GuestProfiles(guests []domain.Guest, lang string) (string, error) {
	var b strings.Builder
	switch lang {
	case Chinese:
		b.WriteString("# Panel嘉宾简介卡片（中文版）\n\n用于Panel访谈开场介绍\n\n")
		b.WriteString(divider)
		for _, g := range guests {
			fmt.Fprintf(&b, "## %s\n\n**职位**: %s\n\n", g.Name, g.Role)
			if g.HasPodcast() {
				fmt.Fprintf(&b, "**播客**: %s\n\n", g.Podcast)
			}
			b.WriteString("**亮点**:\n\n")
			for _, h := range g.HighlightsZh {
				fmt.Fprintf(&b, "- %s\n", h)
			}
			b.WriteString("\n" + divider)
		}
	case English:
		b.WriteString("# Panel Guest Profiles (English)\n\nFor panel discussion introduction\n\n")
		b.WriteString(divider)
		for _, g := range guests {
			fmt.Fprintf(&b, "## %s\n\n**Title**: %s\n\n", g.NameEn, g.RoleEn)
			if g.HasPodcast() {
				fmt.Fprintf(&b, "**Podcast**: %s\n\n", g.Podcast)
			}
			b.WriteString("**Highlights**:\n\n")
			for _, h := range g.HighlightsEn {
				fmt.Fprintf(&b, "- %s\n", h)
			}
			b.WriteString("\n" + divider)
		}
	case Bilingual:
		b.WriteString("# Panel嘉宾简介卡片（双语版）\n\nBilingual guest profiles for panel introduction\n\n")
		b.WriteString(divider)
		for _, g := range guests {
			fmt.Fprintf(&b, "## %s / %s\n\n", g.Name, g.NameEn)
			fmt.Fprintf(&b, "**职位 / Title**: %s / %s\n\n", g.Role, g.RoleEn)
			if g.HasPodcast() {
				fmt.Fprintf(&b, "**播客 / Podcast**: %s\n\n", g.Podcast)
			}
			b.WriteString("**亮点 / Highlights**:\n\n")
			n := min(len(g.HighlightsZh), len(g.HighlightsEn))
			for i := 0; i < n; i++ {
				fmt.Fprintf(&b, "%d. **中文**: %s\n   **English**: %s\n\n", i+1, g.HighlightsZh[i], g.HighlightsEn[i])
			}
			b.WriteString(divider)
		}
	default:
		return "", fmt.Errorf("unknown profile language %q", lang)
	}
	return b.String(), nil
}

// WriteMarkdown writes rendered markdown to path, creating its directory.
func WriteMarkdown(path, content string) error {
	return writeFile(path, []byte(content))
}

func numbered(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n\n", heading)
	for i, it := range head(items, summaryItems) {
		fmt.Fprintf(b, "%d. %s\n\n", i+1, clip(it, summaryItemLen))
	}
}

func bulleted(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n\n", heading)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

func question(b *strings.Builder, heading string, q domain.InterviewQuestion) {
	fmt.Fprintf(b, "%s\n\n", heading)
	fmt.Fprintf(b, "**问题**: %s\n\n", q.Question)
	fmt.Fprintf(b, "**设计理由**: %s\n\n", q.Rationale)
	if len(q.KeyPoints) > 0 {
		b.WriteString("**讨论要点**:\n")
		for _, p := range q.KeyPoints {
			fmt.Fprintf(b, "- %s\n", p)
		}
	}
	b.WriteString("\n")
}

// summaryOf finds the summary of the show hosted by g.
func summaryOf(g domain.Guest, summaries map[string]domain.HostSummary) (domain.HostSummary, bool) {
	for _, name := range sortedKeys(summaries) {
		s := summaries[name]
		if s.HostName == g.Name || strings.Contains(name, g.Name) {
			return s, true
		}
	}
	return domain.HostSummary{}, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func orNone(s string) string {
	if s == "" {
		return "无"
	}
	return s
}
