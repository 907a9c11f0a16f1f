package domain

// Guest is one panel guest.
type Guest struct {
	Name    string `toml:"name" json:"name"`
	NameEn  string `toml:"name_en" json:"name_en"`
	Role    string `toml:"role" json:"role"`
	RoleEn  string `toml:"role_en" json:"role_en"`
	Podcast string `toml:"podcast" json:"podcast"`
	Focus   string `toml:"focus" json:"focus"`

	// KnownFor is a one-line summary used when the guest has no show to analyse.
	KnownFor string `toml:"known_for,omitempty" json:"known_for,omitempty"`

	HighlightsZh []string `toml:"highlights_zh" json:"highlights_zh"`
	HighlightsEn []string `toml:"highlights_en" json:"highlights_en"`

	// SourceURLs are pages whose readable text is collected for research.
	SourceURLs []string `toml:"source_urls,omitempty" json:"source_urls,omitempty"`
}

// HasPodcast reports whether the guest hosts a show of their own.
func (g Guest) HasPodcast() bool {
	return g.Podcast != "" && g.Podcast != "无"
}

// InterviewQuestion is one tailored panel question.
type InterviewQuestion struct {
	Guest     string   `json:"guest,omitempty"`
	Topic     string   `json:"topic,omitempty"`
	Question  string   `json:"question"`
	Rationale string   `json:"rationale"`
	KeyPoints []string `json:"key_points"`
}

// Topic is a question theme put to the whole panel rather than one guest.
type Topic struct {
	Name         string   `toml:"name" json:"name"`
	Requirements []string `toml:"requirements" json:"requirements"`
}

// QuestionSet is every designed question of the panel.
type QuestionSet struct {
	GuestQuestions map[string]InterviewQuestion `json:"guest_questions"`
	TopicQuestions []InterviewQuestion          `json:"topic_questions"`
}
