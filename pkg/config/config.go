// Package config loads the panel-brief configuration: the shows to follow,
// the panel guests, working directories, Gemini settings and pacing.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"panel-brief/pkg/domain"
	"panel-brief/pkg/gemini"
	"panel-brief/pkg/pacer"
	"panel-brief/pkg/report"

	"github.com/pelletier/go-toml/v2"
)

// APIKeyEnv is read when gemini.api_key is not set in the file.
const APIKeyEnv = "GEMINI_API_KEY"

// Config is the whole configuration.
type Config struct {
	// Workdir anchors every relative directory below.
	Workdir string `toml:"workdir"`

	Dirs     Dirs           `toml:"dirs"`
	Site     Site           `toml:"site"`
	Gemini   Gemini         `toml:"gemini"`
	Pacing   Pacing         `toml:"pacing"`
	Download Download       `toml:"download"`
	Store    Store          `toml:"store"`
	Event    report.Event   `toml:"event"`
	Topics   []domain.Topic `toml:"topics"`
	Shows    []domain.Show  `toml:"shows"`
	Guests   []domain.Guest `toml:"guests"`
}

// Dirs are the working directories, relative to Workdir unless absolute.
type Dirs struct {
	Podcasts       string `toml:"podcasts"`
	Transcriptions string `toml:"transcriptions"`
	Research       string `toml:"research"`
	Outputs        string `toml:"outputs"`
}

// Site configures access to the podcast platform.
type Site struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	UserAgent      string `toml:"user_agent"`
}

// Gemini configures the generative API.
type Gemini struct {
	APIKey                   string   `toml:"api_key"`
	Model                    string   `toml:"model"`
	FallbackModels           []string `toml:"fallback_models"`
	PollIntervalSeconds      int      `toml:"poll_interval_seconds"`
	MaxProcessingWaitSeconds int      `toml:"max_processing_wait_seconds"`
}

// Pacing sets the random gap between calls, in milliseconds.
type Pacing struct {
	PageMinMillis  int `toml:"page_min_ms"`
	PageMaxMillis  int `toml:"page_max_ms"`
	ShowMinMillis  int `toml:"show_min_ms"`
	ShowMaxMillis  int `toml:"show_max_ms"`
	ModelGapMillis int `toml:"model_gap_ms"`
}

// Download configures the audio downloader.
type Download struct {
	EpisodesPerShow int `toml:"episodes_per_show"`

	// Keep is how many audio files per show prune leaves in place.
	Keep int `toml:"keep"`
}

// Store selects where analyses and download records are persisted.
type Store struct {
	// Kind is none, mongo, postgres or supabase.
	Kind          string `toml:"kind"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	PostgresDSN   string `toml:"postgres_dsn"`

	// Supabase uses SQL when a password or DSN is set, REST with URL and key.
	SupabaseURL      string `toml:"supabase_url"`
	SupabaseKey      string `toml:"supabase_key"`
	SupabasePassword string `toml:"supabase_password"`
	SupabaseDSN      string `toml:"supabase_dsn"`
}

// Load reads path over Default. A missing file yields the defaults, and
// found reports whether the file existed.
func Load(path string) (cfg *Config, found bool, err error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, false, fmt.Errorf("read config: %w", err)
		default:
			found = true
			if err := toml.Unmarshal(data, &c); err != nil {
				return nil, false, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = os.Getenv(APIKeyEnv)
	}
	if err := c.Validate(); err != nil {
		return nil, found, err
	}
	return &c, found, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if len(c.Shows) == 0 {
		return errors.New("at least one show must be configured")
	}
	seen := make(map[string]bool, len(c.Shows))
	for i, s := range c.Shows {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("shows[%d]: id and name are required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("shows[%d]: duplicate show name %q", i, s.Name)
		}
		seen[s.Name] = true
	}
	for i, g := range c.Guests {
		if g.Name == "" {
			return fmt.Errorf("guests[%d]: name is required", i)
		}
	}
	if c.Pacing.PageMaxMillis < c.Pacing.PageMinMillis || c.Pacing.ShowMaxMillis < c.Pacing.ShowMinMillis {
		return errors.New("pacing: max gap must not be below min gap")
	}
	if c.Download.EpisodesPerShow < 0 || c.Download.Keep < 0 {
		return errors.New("download: counts must not be negative")
	}
	switch c.Store.Kind {
	case "", "none", "mongo", "postgres", "supabase":
	default:
		return fmt.Errorf("store.kind %q is not one of none, mongo, postgres, supabase", c.Store.Kind)
	}
	return nil
}

// Path resolves a configured directory against Workdir.
func (c *Config) Path(dir string) string {
	if filepath.IsAbs(dir) || c.Workdir == "" {
		return dir
	}
	return filepath.Join(c.Workdir, dir)
}

// Show finds a configured show by id or name.
func (c *Config) Show(key string) (domain.Show, bool) {
	for _, s := range c.Shows {
		if s.ID == key || s.Name == key {
			return s, true
		}
	}
	return domain.Show{}, false
}

// Timeout is the per-fetch timeout for the podcast platform.
func (s Site) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// ClientConfig converts the file settings into a gemini.Config.
func (g Gemini) ClientConfig() gemini.Config {
	return gemini.Config{
		APIKey:            g.APIKey,
		Model:             g.Model,
		FallbackModels:    g.FallbackModels,
		PollInterval:      time.Duration(g.PollIntervalSeconds) * time.Second,
		MaxProcessingWait: time.Duration(g.MaxProcessingWaitSeconds) * time.Second,
	}
}

// Page is the gap between page and episode fetches.
func (p Pacing) Page() pacer.Config {
	return pacer.Config{Min: millis(p.PageMinMillis), Max: millis(p.PageMaxMillis)}
}

// Show is the gap between shows.
func (p Pacing) Show() pacer.Config {
	return pacer.Config{Min: millis(p.ShowMinMillis), Max: millis(p.ShowMaxMillis)}
}

// Model is the gap between model calls.
func (p Pacing) Model() pacer.Config {
	return pacer.Config{Min: millis(p.ModelGapMillis), Max: millis(p.ModelGapMillis)}
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
