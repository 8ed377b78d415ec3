package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/airsenselabs/airsense-core/internal/models"
)

// ReadingStore persists raw samples in the "readings" collection.
type ReadingStore struct {
	coll *mongo.Collection
}

func NewReadingStore(db *mongo.Database) *ReadingStore {
	return &ReadingStore{coll: db.Collection("readings")}
}

func (s *ReadingStore) Insert(ctx context.Context, reading *models.Reading) error {
	if _, err := s.coll.InsertOne(ctx, reading); err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func (s *ReadingStore) Latest(ctx context.Context, sensorID string) (*models.Reading, error) {
	var reading models.Reading
	err := s.coll.FindOne(ctx,
		bson.M{"sensorId": sensorID},
		options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}}),
	).Decode(&reading)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("no readings for sensor %s", sensorID)
	}
	if err != nil {
		return nil, fmt.Errorf("latest reading: %w", err)
	}
	return &reading, nil
}

func (s *ReadingStore) ListBySensor(ctx context.Context, sensorID string, limit int64) ([]*models.Reading, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cur, err := s.coll.Find(ctx, bson.M{"sensorId": sensorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer cur.Close(ctx)

	var out []*models.Reading
	for cur.Next(ctx) {
		var reading models.Reading
		if err := cur.Decode(&reading); err != nil {
			return nil, fmt.Errorf("decode reading: %w", err)
		}
		out = append(out, &reading)
	}
	return out, cur.Err()
}
