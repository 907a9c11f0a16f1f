package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"panel-brief/pkg/analysis"
	"panel-brief/pkg/config"
	"panel-brief/pkg/db"
	"panel-brief/pkg/gemini"
	"panel-brief/pkg/locator"
)

const lockFile = ".panelbrief.lock"

type globalFlags struct {
	config      string
	workdir     string
	store       string
	mongoURI    string
	postgresDSN string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, found, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if !found {
			log.Printf("Config: %s not found, using built-in defaults", c.flags.config)
		}
		applyFlags(cfg, c.flags, cmd)
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// applyFlags lets explicitly set global flags override the file.
func applyFlags(cfg *config.Config, flags *globalFlags, cmd *cobra.Command) {
	changed := func(name string) bool {
		if cmd == nil {
			return false
		}
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("workdir") {
		cfg.Workdir = flags.workdir
	}
	if changed("store") {
		cfg.Store.Kind = flags.store
	}
	if changed("mongo-uri") {
		cfg.Store.MongoURI = flags.mongoURI
	}
	if changed("postgres-dsn") {
		cfg.Store.PostgresDSN = flags.postgresDSN
	}
}

func (c *commandContext) dir(name string) string {
	return c.config.Path(name)
}

func (c *commandContext) outputPath(name string) string {
	return filepath.Join(c.dir(c.config.Dirs.Outputs), name)
}

func (c *commandContext) lockPath() string {
	return filepath.Join(c.config.Path("."), lockFile)
}

func (c *commandContext) newLocator() *locator.Locator {
	return locator.New(locator.Config{
		BaseURL:    c.config.Site.BaseURL,
		Timeout:    c.config.Site.Timeout(),
		MaxRetries: c.config.Site.MaxRetries,
		UserAgent:  c.config.Site.UserAgent,
	})
}

func (c *commandContext) newGemini(ctx context.Context) (*gemini.Client, error) {
	client, err := gemini.New(ctx, c.config.Gemini.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini: %w (set %s or gemini.api_key)", err, config.APIKeyEnv)
	}
	return client, nil
}

func (c *commandContext) newAnalyzer(gen analysis.Generator, sink analysis.Sink) *analysis.Analyzer {
	return analysis.New(gen, sink, analysis.Config{
		Audience:  c.config.Event.Audience,
		PanelSize: len(c.config.Guests),
		Gap:       c.config.Pacing.Model(),
	})
}

// withStore opens the configured store for the duration of fn. fn gets a
// nil store when none is configured.
func (c *commandContext) withStore(ctx context.Context, fn func(db.Store) error) error {
	store, err := openStore(ctx, c.config.Store)
	if err != nil {
		return err
	}
	if store == nil {
		return fn(nil)
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			log.Printf("Store: close: %v", err)
		}
	}()
	return fn(store)
}

func openStore(ctx context.Context, cfg config.Store) (db.Store, error) {
	switch cfg.Kind {
	case "", "none":
		return nil, nil
	case "mongo":
		client := db.NewClient(cfg.MongoURI, cfg.MongoDatabase)
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return client, nil
	case "postgres":
		client := db.NewPostgresClient(db.PostgresConfig{DSN: cfg.PostgresDSN})
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		store := db.NewPostgresStore(client)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return store, nil
	case "supabase":
		client := db.NewSupabaseClient(db.SupabaseConfig{
			ConnectionString: cfg.SupabaseDSN,
			SupabaseURL:      cfg.SupabaseURL,
			SupabaseKey:      cfg.SupabaseKey,
			Password:         cfg.SupabasePassword,
		})
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect supabase: %w", err)
		}
		store := db.NewSupabaseStore(client)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Kind)
	}
}
