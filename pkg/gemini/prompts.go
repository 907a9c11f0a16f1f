package gemini

// TranscriptionPrompt asks for a Chinese transcript with [主播]/[嘉宾] speaker tags.
const TranscriptionPrompt = `请将这段中文播客音频完整转录为文字。重要要求：

**关键要求**：
- 必须明确区分"主播/主持人"和"节目嘉宾"的发言
- 主播是播客的主持人/制作者，通常是提问者和讨论引导者
- 节目嘉宾是播客邀请的访谈对象
- 在转录时，请清晰标注说话人身份，例如：[主播]、[嘉宾]

**转录要求**：
1. 保持对话的原始顺序和时间顺序
2. 明确区分并标注说话人：使用[主播]、[嘉宾]、[其他]等标签
3. 主播的发言要特别标记清楚
4. 保留重要的语气词和停顿标记
5. 使用中文标点符号
6. 如果内容较长，请分段输出，每段标明大致时间点
7. 保持原意，不要添加或删减内容
8. 转录格式示例：
   [主播]：今天我们要聊的话题是...
   [嘉宾]：我认为这个问题...
   [主播]：那你觉得...
`
