package analysis

import (
	"strings"
)

const hostTag = "[主播]"

var (
	hostKeywords   = []string{"主持人", "主播", "我", "我们", "今天", "这一期", "邀请", "欢迎", "接下来", "刚才"}
	guestMarkers   = []string{"嘉宾", "受访者", "被访谈"}
	openingPhrases = []string{"让我们", "现在", "接下来", "这一期", "今天", "欢迎"}
	framingPhrases = []string{"要聊", "要讨论", "来聊聊", "来谈谈", "来听听"}
)

// HostStatements picks out what the host said in a transcript. Speaker
// tagged transcripts are split on [主播] lines; untagged ones fall back to
// a paragraph heuristic favouring questions and show framing. The count is
// a rough signal, not an exact attribution.
func HostStatements(text string) []string {
	if strings.Contains(text, "主播") {
		if stmts := taggedStatements(text); len(stmts) > 0 {
			return stmts
		}
	}
	return heuristicStatements(text)
}

func taggedStatements(text string) []string {
	var (
		stmts   []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			stmts = append(stmts, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.Contains(line, hostTag):
			flush()
			current = []string{line}
		case len(current) > 0 && !strings.HasPrefix(trimmed, "["):
			current = append(current, line)
		default:
			flush()
		}
	}
	flush()
	return stmts
}

func heuristicStatements(text string) []string {
	var stmts []string
	for _, para := range strings.Split(text, "\n\n") {
		if strings.Contains(para, hostTag) || strings.Contains(para, "主播：") || strings.Contains(para, "主播:") {
			stmts = append(stmts, para)
			continue
		}
		if !containsAny(strings.ToLower(para), hostKeywords) || containsAny(para, guestMarkers) {
			continue
		}
		trimmed := strings.TrimSpace(para)
		switch {
		case strings.ContainsAny(para, "?？"):
			stmts = append(stmts, para)
		case hasAnyPrefix(trimmed, openingPhrases):
			stmts = append(stmts, para)
		case containsAny(para, framingPhrases):
			stmts = append(stmts, para)
		}
	}
	return stmts
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
