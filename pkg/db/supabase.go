package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"panel-brief/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
	supabase "github.com/supabase-community/supabase-go"
)

// SupabaseConfig holds configuration required to connect to Supabase.
type SupabaseConfig struct {
	// ConnectionString is the Supabase Postgres connection string.
	// If not provided, will be constructed from SupabaseURL and Password.
	ConnectionString string

	// SupabaseURL is the project URL, e.g. "https://[project-ref].supabase.co".
	SupabaseURL string

	// SupabaseKey is the API key used in REST mode.
	SupabaseKey string

	// Password is the database password, not the API key.
	Password string

	MaxOpenConns int
	MaxIdleConns int
	ConnMaxIdle  time.Duration
	ConnMaxLife  time.Duration
}

// SupabaseClient provides a direct Postgres handle when a password or
// connection string is configured, and the REST SDK when URL and key are.
type SupabaseClient struct {
	db          *sql.DB
	supabaseSDK *supabase.Client
	cfg         SupabaseConfig
}

// NewSupabaseClient constructs a Supabase client.
func NewSupabaseClient(cfg SupabaseConfig) *SupabaseClient {
	return &SupabaseClient{cfg: cfg}
}

// Connect initializes the SDK and, when possible, the direct connection.
// A failing direct connection is tolerated when the SDK is available.
func (c *SupabaseClient) Connect(ctx context.Context) error {
	if c.cfg.SupabaseURL != "" && c.cfg.SupabaseKey != "" {
		sdkClient, err := supabase.NewClient(c.cfg.SupabaseURL, c.cfg.SupabaseKey, nil)
		if err != nil {
			return fmt.Errorf("initialize supabase SDK: %w", err)
		}
		c.supabaseSDK = sdkClient
	}

	connStr := c.cfg.ConnectionString
	if connStr == "" && c.cfg.Password != "" {
		var err error
		connStr, err = c.buildConnectionString()
		if err != nil && c.supabaseSDK == nil {
			return fmt.Errorf("build connection string: %w", err)
		}
	}

	if connStr != "" {
		if err := c.openDirect(ctx, connStr); err != nil && c.supabaseSDK == nil {
			return err
		}
	}

	if c.db == nil && c.supabaseSDK == nil {
		return errors.New("either connection string/password or Supabase URL+key must be provided")
	}
	return nil
}

func (c *SupabaseClient) openDirect(ctx context.Context, connStr string) error {
	// The pooler rejects cached prepared statements.
	connStr = addConnectionParam(connStr, "statement_cache_capacity", "0")
	connStr = addConnectionParam(connStr, "default_query_exec_mode", "simple_protocol")

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("open supabase postgres: %w", err)
	}
	applyPool(db, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns, c.cfg.ConnMaxIdle, c.cfg.ConnMaxLife)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping supabase postgres: %w", err)
	}
	c.db = db
	return nil
}

// Close closes the database connection.
func (c *SupabaseClient) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB exposes the direct handle; nil in REST-only mode.
func (c *SupabaseClient) DB() *sql.DB {
	return c.db
}

// HasDirectDB returns true if direct database connection is available.
func (c *SupabaseClient) HasDirectDB() bool {
	return c.db != nil
}

// SDK returns the Supabase SDK client, or nil.
func (c *SupabaseClient) SDK() *supabase.Client {
	return c.supabaseSDK
}

// buildConnectionString derives the direct Postgres URL from the project URL.
func (c *SupabaseClient) buildConnectionString() (string, error) {
	if c.cfg.SupabaseURL == "" {
		return "", fmt.Errorf("supabase URL is required when connection string is not provided")
	}
	if c.cfg.Password == "" {
		return "", fmt.Errorf("supabase password is required when connection string is not provided")
	}

	parsedURL, err := url.Parse(c.cfg.SupabaseURL)
	if err != nil {
		return "", fmt.Errorf("parse supabase URL: %w", err)
	}
	parts := strings.Split(parsedURL.Host, ".")
	if len(parts) < 2 || parts[0] == "" {
		return "", fmt.Errorf("invalid supabase URL format: expected [project-ref].supabase.co")
	}

	return fmt.Sprintf("postgresql://postgres:%s@db.%s.supabase.co:5432/postgres?sslmode=require",
		url.QueryEscape(c.cfg.Password), parts[0]), nil
}

// addConnectionParam adds a query parameter to the connection string if not already present.
func addConnectionParam(connStr, key, value string) string {
	if strings.Contains(connStr, key+"=") {
		return connStr
	}
	separator := "?"
	if strings.Contains(connStr, "?") {
		separator = "&"
	}
	return connStr + separator + key + "=" + value
}

// SupabaseStore is a Store over a SupabaseClient. It uses SQL when the
// direct connection is up and the REST API otherwise; in REST mode the
// tables must already exist.
type SupabaseStore struct {
	client *SupabaseClient
	direct *PostgresStore
}

// NewSupabaseStore creates a store over a connected client.
func NewSupabaseStore(client *SupabaseClient) *SupabaseStore {
	return &SupabaseStore{client: client, direct: NewPostgresStore(client)}
}

// EnsureSchema creates the tables over the direct connection; it does
// nothing in REST mode.
func (s *SupabaseStore) EnsureSchema(ctx context.Context) error {
	if !s.client.HasDirectDB() {
		return nil
	}
	return s.direct.EnsureSchema(ctx)
}

// SaveAnalysis upserts an analysis by subject and source.
func (s *SupabaseStore) SaveAnalysis(ctx context.Context, a domain.Analysis) error {
	if s.client.HasDirectDB() {
		return s.direct.SaveAnalysis(ctx, a)
	}
	row, err := newAnalysisRow(a)
	if err != nil {
		return err
	}
	return s.upsert("analysis", row, "subject,source")
}

// SaveDownloadRecord upserts a download record by episode id.
func (s *SupabaseStore) SaveDownloadRecord(ctx context.Context, rec domain.DownloadRecord) error {
	if s.client.HasDirectDB() {
		return s.direct.SaveDownloadRecord(ctx, rec)
	}
	return s.upsert("download_record", newDownloadRow(rec), "episode_id")
}

// EpisodeIDs returns the stored episode ids of show.
func (s *SupabaseStore) EpisodeIDs(ctx context.Context, show string) (map[string]bool, error) {
	if s.client.HasDirectDB() {
		return s.direct.EpisodeIDs(ctx, show)
	}
	sdk := s.client.SDK()
	if sdk == nil {
		return nil, ErrNotConnected
	}
	body, _, err := sdk.From("download_record").Select("episode_id", "", false).Eq("show", show).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to query episode ids: %w", err)
	}
	var rows []struct {
		EpisodeID string `json:"episode_id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode episode ids: %w", err)
	}
	ids := make(map[string]bool, len(rows))
	for _, r := range rows {
		if r.EpisodeID != "" {
			ids[r.EpisodeID] = true
		}
	}
	return ids, nil
}

// Close closes the direct connection, if any.
func (s *SupabaseStore) Close(context.Context) error {
	return s.client.Close()
}

func (s *SupabaseStore) upsert(table string, row any, onConflict string) error {
	sdk := s.client.SDK()
	if sdk == nil {
		return ErrNotConnected
	}
	if _, _, err := sdk.From(table).Upsert(row, onConflict, "minimal", "").Execute(); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}
