package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ghostal/pkg/domain"
)

const (
	rawCollection       = "episodes_raw"
	processedCollection = "episodes_processed"
)

var errArchiveNotConnected = errors.New("archive not connected")

// ArchiveClient mirrors episode documents into MongoDB, one collection for raw
// episodes and one for processed ones, keyed by url.
type ArchiveClient struct {
	mongoClient *mongo.Client
	raw         *mongo.Collection
	processed   *mongo.Collection
}

// NewArchiveClient connects to MongoDB and verifies the connection.
func NewArchiveClient(ctx context.Context, uri, databaseName string) (*ArchiveClient, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	database := mongoClient.Database(databaseName)
	return &ArchiveClient{
		mongoClient: mongoClient,
		raw:         database.Collection(rawCollection),
		processed:   database.Collection(processedCollection),
	}, nil
}

// Close disconnects from MongoDB.
func (c *ArchiveClient) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// SaveRawEpisode upserts a scraped episode by url.
func (c *ArchiveClient) SaveRawEpisode(ctx context.Context, ep *domain.Episode) error {
	if c.raw == nil {
		return errArchiveNotConnected
	}
	return upsertByURL(ctx, c.raw, ep.URL, ep)
}

// SaveProcessedEpisode upserts a processed episode by url. The document has the
// same shape as the processed JSON file.
func (c *ArchiveClient) SaveProcessedEpisode(ctx context.Context, ep *domain.ProcessedEpisode) error {
	if c.processed == nil {
		return errArchiveNotConnected
	}
	doc, err := processedDocument(ep)
	if err != nil {
		return err
	}
	return upsertByURL(ctx, c.processed, ep.URL, doc)
}

// processedDocument converts ep through its JSON form so the ragged subword
// tokens and entity pairs are stored exactly as in the file.
func processedDocument(ep *domain.ProcessedEpisode) (bson.M, error) {
	data, err := json.Marshal(ep)
	if err != nil {
		return nil, fmt.Errorf("encode processed episode: %w", err)
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("convert processed episode: %w", err)
	}
	return doc, nil
}

func upsertByURL(ctx context.Context, coll *mongo.Collection, url string, doc any) error {
	_, err := coll.UpdateOne(ctx,
		bson.M{"url": url},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", url, err)
	}
	return nil
}
