package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/internal/services"
)

// alertDoc is the persisted shape. Severity is stored as its string form
// so documents stay readable in the shell.
type alertDoc struct {
	ID              string          `bson:"_id"`
	Type            string          `bson:"type"`
	Severity        string          `bson:"severity"`
	Message         string          `bson:"message"`
	SensorID        string          `bson:"sensorId"`
	Reading         *models.Reading `bson:"reading,omitempty"`
	TriggeredAt     time.Time       `bson:"triggeredAt"`
	Resolved        bool            `bson:"resolved"`
	ResolutionNotes string          `bson:"resolutionNotes,omitempty"`
	ResolvedAt      *time.Time      `bson:"resolvedAt,omitempty"`
}

func toDoc(a *models.Alert) alertDoc {
	return alertDoc{
		ID:              a.ID,
		Type:            a.Type,
		Severity:        a.Severity.String(),
		Message:         a.Message,
		SensorID:        a.SensorID,
		Reading:         a.Reading,
		TriggeredAt:     a.TriggeredAt,
		Resolved:        a.Resolved,
		ResolutionNotes: a.ResolutionNotes,
		ResolvedAt:      a.ResolvedAt,
	}
}

func fromDoc(d alertDoc) (*models.Alert, error) {
	sev, err := models.ParseSeverity(d.Severity)
	if err != nil {
		return nil, fmt.Errorf("alert %s: %w", d.ID, err)
	}
	return &models.Alert{
		ID:              d.ID,
		Type:            d.Type,
		Severity:        sev,
		Message:         d.Message,
		SensorID:        d.SensorID,
		Reading:         d.Reading,
		TriggeredAt:     d.TriggeredAt,
		Resolved:        d.Resolved,
		ResolutionNotes: d.ResolutionNotes,
		ResolvedAt:      d.ResolvedAt,
	}, nil
}

// AlertStore persists alerts in the "alerts" collection.
type AlertStore struct {
	coll *mongo.Collection
}

func NewAlertStore(db *mongo.Database) *AlertStore {
	return &AlertStore{coll: db.Collection("alerts")}
}

// InsertIfAbsent performs a single upsert with $setOnInsert so the
// insert-or-skip decision happens atomically on the server.
func (s *AlertStore) InsertIfAbsent(ctx context.Context, alert *models.Alert) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": alert.ID},
		bson.M{"$setOnInsert": toDoc(alert)},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("insert alert: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

func (s *AlertStore) Upsert(ctx context.Context, alert *models.Alert) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": alert.ID},
		toDoc(alert),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert alert: %w", err)
	}
	return nil
}

func (s *AlertStore) FindByID(ctx context.Context, id string) (*models.Alert, error) {
	var doc alertDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("alert %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find alert: %w", err)
	}
	return fromDoc(doc)
}

func (s *AlertStore) List(ctx context.Context, filter services.AlertFilter) ([]*models.Alert, error) {
	query := bson.M{}
	if filter.SensorID != "" {
		query["sensorId"] = filter.SensorID
	}
	if filter.Severity != nil {
		query["severity"] = filter.Severity.String()
	}

	cur, err := s.coll.Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "triggeredAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer cur.Close(ctx)

	var out []*models.Alert
	for cur.Next(ctx) {
		var doc alertDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode alert: %w", err)
		}
		alert, err := fromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, alert)
	}
	return out, cur.Err()
}

func (s *AlertStore) Resolve(ctx context.Context, id, notes string) error {
	now := time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "resolved": false},
		bson.M{"$set": bson.M{
			"resolved":        true,
			"resolutionNotes": notes,
			"resolvedAt":      now,
		}},
	)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("alert %s not found or already resolved", id)
	}
	return nil
}

func (s *AlertStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("alert %s not found", id)
	}
	return nil
}
