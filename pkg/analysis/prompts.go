package analysis

import (
	"fmt"
	"strings"

	"panel-brief/pkg/domain"
)

const insightSchema = `{
    "professional_observations": ["观察1", "观察2", ...],
    "content_creation_philosophy": ["理念1", "理念2", ...],
    "industry_insights": ["见解1", "见解2", ...],
    "personal_views": ["观点1", "观点2", ...],
    "discussion_topics": ["主题1", "主题2", ...],
    "expression_style": "表达风格描述"
}`

const questionSchema = `{
    "question": "问题内容",
    "rationale": "设计理由",
    "key_points": ["讨论要点1", "讨论要点2", "讨论要点3"]
}`

func hostPrompt(text, host string) string {
	return fmt.Sprintf(`请分析以下播客转录文本，重点提取主播（%[1]s）的核心观点和洞察。

**重要说明**：
- 主播是播客的主持人/制作者（%[1]s），这是Panel的嘉宾
- 节目中的嘉宾是播客邀请的访谈对象，不是我们要分析的
- 请重点关注主播的观点、观察、提问方式和内容创作理念

**请提取以下内容**：

1. **专业观察**：主播对行业、技术、商业的专业观察和判断（3-5条）
2. **内容创作理念**：主播如何做内容、选择话题、采访嘉宾的理念和方法（3-5条）
3. **行业见解**：主播对媒体、内容、科技行业的看法和趋势判断（3-5条）
4. **个人观点**：主播独特的个人观点和价值判断（3-5条）
5. **讨论主题**：主播在这一期节目中关注的主要话题（列出5-10个关键词或短语）
6. **表达风格**：主播的提问方式、引导技巧、表达风格的特点

**输出格式（JSON）**：
%[2]s

**转录文本**：
%[3]s

请以JSON格式输出，确保提取的都是主播的观点，而非节目中嘉宾的观点。
`, host, insightSchema, text)
}

func guestPrompt(g domain.Guest, collected string) string {
	if strings.TrimSpace(collected) == "" {
		collected = "基于公开信息和一般了解"
	}
	podcast := g.Podcast
	if podcast == "" {
		podcast = "无"
	}
	return fmt.Sprintf(`请分析以下嘉宾信息，提取其核心观点和洞察。

**嘉宾信息**：
- 姓名：%s
- 身份：%s
- 播客/作品：%s
- 知名作品/成就：%s
- 关注领域：%s

**收集到的内容**：
%s

**请提取以下内容**：

1. **专业观察**：该嘉宾对行业、技术、商业的专业观察和判断（3-5条）
2. **内容创作理念**：如何做内容、选择话题的理念和方法（3-5条）
3. **行业见解**：对媒体、内容、科技行业的看法和趋势判断（3-5条）
4. **个人观点**：独特的个人观点和价值判断（3-5条）
5. **讨论主题**：该嘉宾可能关注的主要话题（5-10个关键词或短语）
6. **表达风格**：推测的提问方式、引导技巧、表达风格的特点

**输出格式（JSON）**：
%s

请基于已有信息进行合理分析和推断。
`, g.Name, g.Role, podcast, g.KnownFor, g.Focus, collected, insightSchema)
}

func questionPrompt(g domain.Guest, summary *domain.HostSummary, audience string, panelSize int) string {
	var analysis string
	if summary != nil {
		in := summary.Insights
		analysis = fmt.Sprintf(`
基于播客分析结果：
- 专业观察：%s
- 内容创作理念：%s
- 行业见解：%s
- 讨论主题：%s
`, listHead(in.Observations, 3), listHead(in.Philosophy, 3), listHead(in.IndustryViews, 3), listHead(summary.KeyThemes, 5))
	}

	return fmt.Sprintf(`请为Panel访谈设计一个问题。以下是嘉宾信息：

**嘉宾**: %s
**身份**: %s
**播客**: %s
**关注领域**: %s
%s
**设计要求**：
1. 问题要体现该嘉宾的独特背景和工作特点
2. 问题要有普适性，其他%d位嘉宾也能参与回答
3. 偏向行业观点讨论，而非个人经历
4. 适合面向%s提问
5. 问题长度：1-2句话

**输出格式（JSON）**：
%s

请只输出JSON，不要其他文字。
`, g.Name, g.Role, g.Podcast, g.Focus, analysis, max(panelSize-1, 0), audience, questionSchema)
}

func topicPrompt(topic domain.Topic, audience string, panelSize int) string {
	var reqs strings.Builder
	for i, r := range topic.Requirements {
		fmt.Fprintf(&reqs, "%d. %s\n", i+1, r)
	}
	return fmt.Sprintf(`请设计一个关于%s的问题，适合在Panel访谈中向%d位中国内容创作者提问。

**听众背景**: %s

**问题要求**：
%s
**输出格式（JSON）**：
%s

请只输出JSON，不要其他文字。
`, topic.Name, panelSize, audience, reqs.String(), questionSchema)
}

func listHead(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return "[" + strings.Join(items, "; ") + "]"
}
