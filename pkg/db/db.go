package db

import (
	"context"
	"fmt"

	"panel-brief/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	analysisCollection = "analyses"
	downloadCollection = "downloads"
)

// Client wraps the MongoDB client and the panel-brief collections
type Client struct {
	mongoClient *mongo.Client
	analyses    *mongo.Collection
	downloads   *mongo.Collection
}

// NewClient creates a new database client
func NewClient(connectionString, databaseName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &Client{}
	}

	database := mongoClient.Database(databaseName)
	return &Client{
		mongoClient: mongoClient,
		analyses:    database.Collection(analysisCollection),
		downloads:   database.Collection(downloadCollection),
	}
}

// Connect verifies the connection to MongoDB
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// SaveAnalysis upserts an analysis by subject and source
func (c *Client) SaveAnalysis(ctx context.Context, a domain.Analysis) error {
	if c.analyses == nil {
		return ErrNotConnected
	}
	_, err := c.analyses.UpdateOne(ctx, analysisFilter(a), bson.M{"$set": a}, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// SaveDownloadRecord upserts a download record by episode id
func (c *Client) SaveDownloadRecord(ctx context.Context, rec domain.DownloadRecord) error {
	if c.downloads == nil {
		return ErrNotConnected
	}
	_, err := c.downloads.UpdateOne(ctx, downloadFilter(rec), bson.M{"$set": rec}, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save download record: %w", err)
	}
	return nil
}

// EpisodeIDs fetches the episode ids stored for show and returns them as a set
func (c *Client) EpisodeIDs(ctx context.Context, show string) (map[string]bool, error) {
	if c.downloads == nil {
		return nil, ErrNotConnected
	}

	cursor, err := c.downloads.Find(ctx, bson.M{"show": show}, options.Find().SetProjection(bson.M{"episode_id": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query episode ids: %w", err)
	}
	defer cursor.Close(ctx)

	ids := make(map[string]bool)
	for cursor.Next(ctx) {
		var result struct {
			EpisodeID string `bson:"episode_id"`
		}
		if err := cursor.Decode(&result); err != nil {
			continue // Skip invalid documents
		}
		if result.EpisodeID != "" {
			ids[result.EpisodeID] = true
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ids, nil
}

// AllAnalyses fetches every stored analysis
func (c *Client) AllAnalyses(ctx context.Context) ([]domain.Analysis, error) {
	if c.analyses == nil {
		return nil, ErrNotConnected
	}
	var out []domain.Analysis
	if err := findAll(ctx, c.analyses, &out); err != nil {
		return nil, fmt.Errorf("failed to read analyses: %w", err)
	}
	return out, nil
}

// AllDownloadRecords fetches every stored download record
func (c *Client) AllDownloadRecords(ctx context.Context) ([]domain.DownloadRecord, error) {
	if c.downloads == nil {
		return nil, ErrNotConnected
	}
	var out []domain.DownloadRecord
	if err := findAll(ctx, c.downloads, &out); err != nil {
		return nil, fmt.Errorf("failed to read download records: %w", err)
	}
	return out, nil
}

func findAll(ctx context.Context, coll *mongo.Collection, out any) error {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func analysisFilter(a domain.Analysis) bson.M {
	return bson.M{"subject": a.Subject, "source": a.Source}
}

func downloadFilter(rec domain.DownloadRecord) bson.M {
	return bson.M{"episode_id": rec.EpisodeID}
}
