package db

import (
	"context"
	"database/sql"
	"errors"

	"panel-brief/pkg/domain"
)

var ErrNotConnected = errors.New("store is not connected")

// DBProvider is an interface for database clients that provide access to a sql.DB handle.
// This allows both PostgresClient and SupabaseClient to back a PostgresStore.
type DBProvider interface {
	DB() *sql.DB
}

// Store persists analyses and download records beyond the JSON files.
// Saves are upserts: analyses are keyed by subject and source, download
// records by episode id.
type Store interface {
	SaveAnalysis(ctx context.Context, a domain.Analysis) error
	SaveDownloadRecord(ctx context.Context, rec domain.DownloadRecord) error

	// EpisodeIDs returns the ids of the stored download records of a show.
	EpisodeIDs(ctx context.Context, show string) (map[string]bool, error)

	Close(ctx context.Context) error
}
