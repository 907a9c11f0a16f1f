package config

import (
	"panel-brief/pkg/domain"
	"panel-brief/pkg/gemini"
	"panel-brief/pkg/report"
	"panel-brief/pkg/sites"
)

// Default returns the configuration of the NYC panel: six shows on the
// podcast platform and seven guests.
func Default() Config {
	return Config{
		Dirs: Dirs{
			Podcasts:       "podcasts",
			Transcriptions: "transcriptions",
			Research:       "research",
			Outputs:        "outputs",
		},
		Site: Site{
			BaseURL:        sites.XiaoyuzhouBaseURL,
			TimeoutSeconds: 10,
		},
		Gemini: Gemini{
			Model:                    gemini.DefaultModel,
			FallbackModels:           append([]string(nil), gemini.DefaultFallbackModels...),
			PollIntervalSeconds:      10,
			MaxProcessingWaitSeconds: 300,
		},
		Pacing: Pacing{
			PageMinMillis:  1000,
			PageMaxMillis:  3000,
			ShowMinMillis:  3000,
			ShowMaxMillis:  5000,
			ModelGapMillis: 2000,
		},
		Download: Download{
			EpisodesPerShow: 10,
			Keep:            10,
		},
		Store: Store{
			Kind:          "none",
			MongoDatabase: "panel_brief",
		},
		Event: report.Event{
			Title:    "内容创作者Panel",
			Audience: "Chinese Google Network的华人Google员工，在Google NYC举行",
			Venue:    "Google NYC",
			Duration: "1小时（包含观众提问）",
		},
		Topics: []domain.Topic{
			{Name: "Google", Requirements: []string{
				"询问他们对Google公司和产品的看法",
				"适合内容创作者的角度",
				"能引发深入讨论",
				"与嘉宾（播客主播、媒体创始人、内容创作者）相关",
			}},
			{Name: "AI", Requirements: []string{
				"询问AI对内容创作和传播媒介在未来5年的影响",
				"适合内容创作者的角度",
				"能引发深入讨论",
				"与嘉宾（播客主播、媒体创始人、内容创作者）相关",
			}},
		},
		Shows:  defaultShows(),
		Guests: defaultGuests(),
	}
}

func defaultShows() []domain.Show {
	return []domain.Show{
		{ID: "61933ace1b4320461e91fd55", Name: "晚点聊_黄俊杰", Host: "黄俊杰"},
		{ID: "6013f9f58e2f7ee375cf4216", Name: "知行小酒馆_李路野", Host: "李路野"},
		{ID: "62c6ae08c4eaa82b112b9c84", Name: "高能量_李翔", Host: "李翔"},
		{ID: "61dd99a47b29652ff572257b", Name: "起朱楼宴宾客_翁放", Host: "翁放"},
		{ID: "61358d971c5d56efe5bcb5d2", Name: "乱翻书_潘乱", Host: "潘乱"},
		{ID: "61a3847fc9d6793ec50e0e65", Name: "正面连接_曾鸣", Host: "曾鸣"},
	}
}

func defaultGuests() []domain.Guest {
	return []domain.Guest{
		{
			Name:    "黄俊杰",
			NameEn:  "Junjie Huang",
			Role:    "晚点LatePost联合创始人兼总编辑",
			RoleEn:  "Co-founder and Editor-in-Chief of LatePost",
			Podcast: "晚点聊 LateTalk",
			Focus:   "科技报道、商业观察",
			HighlightsZh: []string{
				"专注互联网和科技领域的深度商业报道",
				"微信公众号超过120万订阅者",
				"2025年上半年报道观看量超过1200万次",
				"播客《晚点聊》提供最一手的科技访谈",
			},
			HighlightsEn: []string{
				"Focuses on in-depth business reporting in internet and technology sectors",
				"Over 1.2 million WeChat subscribers",
				"Over 12 million views in first half of 2025",
				"Podcast 'LateTalk' delivers first-hand tech interviews",
			},
		},
		{
			Name:    "李路野",
			NameEn:  "Luye Li",
			Role:    "有知有行营销负责人",
			RoleEn:  "Marketing Manager of Youzhi Youxing",
			Podcast: "知行小酒馆",
			Focus:   "投资理财、生活哲学",
			HighlightsZh: []string{
				"播客《知行小酒馆》帮助用户深化投资理解和实践长期投资",
				"播客订阅量超过800万",
				"致力于投资理财与美好生活的结合",
				"擅长引导用户深度思考",
			},
			HighlightsEn: []string{
				"Podcast '知行小酒馆' helps users deepen investment understanding",
				"Over 8 million podcast subscribers",
				"Combines investment with meaningful living",
				"Expert in guiding deep thinking",
			},
		},
		{
			Name:    "李翔",
			NameEn:  "Xiang Li",
			Role:    "《详谈》丛书作者、《高能量》主理人",
			RoleEn:  "Author of 'Detailed Conversations' series, Host of 'High Energy' podcast",
			Podcast: "高能量",
			Focus:   "商业观察、个人成长",
			HighlightsZh: []string{
				"《详谈》系列销量超过50万册，记录当代商业历史",
				"播客《高能量》从商业观察者视角重新理解日常现象",
				"深度对话商业实践者和价值创造者",
				"关注个人成长、职业转型和行业趋势",
			},
			HighlightsEn: []string{
				"'Detailed Conversations' series sold over 500,000 copies",
				"Podcast 'High Energy' reexamines everyday phenomena through business lens",
				"Deep dialogues with business practitioners and value creators",
				"Focuses on personal growth, career transitions, and industry trends",
			},
		},
		{
			Name:    "翁放",
			NameEn:  "David Weng",
			Role:    "《起朱楼宴宾客》主播",
			RoleEn:  "Host of '起朱楼宴宾客' podcast",
			Podcast: "起朱楼宴宾客",
			Focus:   "投资金融、国际观察",
			HighlightsZh: []string{
				"播客聚焦投资和金融洞察，对话金融界内行",
				"订阅量超过50万",
				"通过不同地域视角洞察国际间人才和资本竞争",
				"擅长宏观趋势分析和跨文化观察",
			},
			HighlightsEn: []string{
				"Podcast focuses on investment and finance insights",
				"Over 500,000 subscribers",
				"Observes international talent and capital competition through multi-regional perspectives",
				"Expert in macro trend analysis and cross-cultural observations",
			},
		},
		{
			Name:     "潘乱",
			NameEn:   "Luan Pan",
			Role:     "《乱翻书》主播",
			RoleEn:   "Founder and Host of 'Luan Books' podcast",
			Podcast:  "乱翻书",
			Focus:    "科技评论、行业分析",
			KnownFor: "2018年《腾讯没有梦想》成为现象级爆款，超过1000万观看",
			HighlightsZh: []string{
				"2018年《腾讯没有梦想》成为现象级爆款",
				"播客《乱翻书》订阅量超过100万",
				"通过对话深入探讨商业和科技话题",
				"擅长挑战既有观点、揭示深层趋势",
			},
			HighlightsEn: []string{
				"2018 article 'Tencent Without Dreams' became viral with over 10 million views",
				"Podcast 'Luan Books' has over 1 million subscribers",
				"Deep dialogues on business and technology topics",
				"Expert at challenging conventional wisdom and revealing underlying trends",
			},
		},
		{
			Name:     "曾鸣",
			NameEn:   "Ming Zeng",
			Role:     "正面连接创始人",
			RoleEn:   "Founder of Positive Connection",
			Podcast:  "无",
			Focus:    "非虚构写作、媒体、深度内容",
			KnownFor: "正面连接专注深度非虚构和特稿写作，前三大文章一年内超过300万观看量",
			HighlightsZh: []string{
				"正面连接专注于深度非虚构和特稿写作",
				"前三大文章在一年内获得超过300万观看量",
				"通过人性化的叙述，捕捉当代中国社会文化脉搏",
				"关注内容真实性、人文关怀和信息生态",
			},
			HighlightsEn: []string{
				"Positive Connection dedicated to in-depth non-fiction storytelling",
				"Top three articles garnered over 3 million views within a year",
				"Captures contemporary Chinese social and cultural pulse through human-centered narratives",
				"Focuses on content authenticity, humanistic care, and information ecosystem",
			},
		},
		{
			Name:     "张晶",
			NameEn:   "Selina Zhang",
			Role:     "知乎副总裁",
			RoleEn:   "Vice President of Zhihu",
			Podcast:  "无",
			Focus:    "内容平台、社区运营",
			KnownFor: "知乎是中国领先的问答和新闻聚合平台",
			HighlightsZh: []string{
				"知乎是中国领先的问答和新闻聚合平台",
				"负责内容平台运营和社区建设",
				"关注内容生态和用户体验",
			},
			HighlightsEn: []string{
				"Zhihu is China's leading Q&A and news aggregation platform",
				"Responsible for content platform operations and community building",
				"Focuses on content ecosystem and user experience",
			},
		},
	}
}
