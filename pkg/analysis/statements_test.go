package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostStatements_Tagged(t *testing.T) {
	text := "[主播]：欢迎收听本期节目\n继续说明背景\n[嘉宾]：谢谢邀请\n[主播]：你怎么看行业？"

	got := HostStatements(text)
	assert.Equal(t, []string{
		"[主播]：欢迎收听本期节目 继续说明背景",
		"[主播]：你怎么看行业？",
	}, got)
}

func TestHostStatements_Heuristic(t *testing.T) {
	text := "今天我们来聊聊内容平台。\n\n" +
		"这是一段普通的叙述。\n\n" +
		"我觉得这个问题很好？\n\n" +
		"嘉宾说我们应该这样做？\n\n" +
		"主播：下一个话题"

	got := HostStatements(text)
	assert.Equal(t, []string{
		"今天我们来聊聊内容平台。",
		"我觉得这个问题很好？",
		"主播：下一个话题",
	}, got)
}

func TestHostStatements_Empty(t *testing.T) {
	assert.Empty(t, HostStatements(""))
	assert.Empty(t, HostStatements("plain english text without markers"))
}
