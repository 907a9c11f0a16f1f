package domain

import "time"

// Episode identifies one item within a show.
//
// AudioURL is empty when the source did not expose it; callers resolve it
// lazily through a separate lookup.
type Episode struct {
	// ID is the opaque per-show episode identifier.
	ID string `bson:"episode_id" json:"episode_id"`

	// Title is the episode title, or a provisional one derived from the ID.
	Title string `bson:"title" json:"title"`

	// AudioURL is the direct audio URL, when known.
	AudioURL string `bson:"audio_url,omitempty" json:"audio_url,omitempty"`
}

// HasAudio reports whether the audio URL is already known.
func (e Episode) HasAudio() bool {
	return e.AudioURL != ""
}

// Show is a podcast series followed for one panel guest.
type Show struct {
	ID      string `toml:"id" json:"id"`
	Name    string `toml:"name" json:"name"`
	Host    string `toml:"host" json:"host"`
	FeedURL string `toml:"feed_url,omitempty" json:"feed_url,omitempty"`
}

// DownloadRecord describes one downloaded audio file.
type DownloadRecord struct {
	Show      string    `bson:"show" json:"-"`
	EpisodeID string    `bson:"episode_id" json:"episode_id"`
	Title     string    `bson:"title" json:"title"`
	AudioFile string    `bson:"audio_file" json:"audio_file"`
	AudioURL  string    `bson:"audio_url" json:"audio_url"`
	Bytes     int64     `bson:"bytes" json:"bytes"`
	FetchedAt time.Time `bson:"fetched_at" json:"fetched_at"`
}

// TranscriptionRecord describes one audio file that has a transcript.
type TranscriptionRecord struct {
	AudioFile         string `json:"audio_file"`
	TranscriptionFile string `json:"transcription_file"`
	Status            string `json:"status"`
}
