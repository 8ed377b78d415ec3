package services

import (
	"context"

	"github.com/airsenselabs/airsense-core/internal/models"
)

// AlertFilter narrows alert listings.
type AlertFilter struct {
	SensorID string
	Severity *models.Severity
}

// AlertStore is the durable alert record boundary. InsertIfAbsent is the
// single atomic "insert and tell me if it was new" operation the pipeline
// relies on to avoid re-notifying on repeat persistence of the same alert.
type AlertStore interface {
	InsertIfAbsent(ctx context.Context, alert *models.Alert) (isNew bool, err error)
	Upsert(ctx context.Context, alert *models.Alert) error
	FindByID(ctx context.Context, id string) (*models.Alert, error)
	List(ctx context.Context, filter AlertFilter) ([]*models.Alert, error)
	Resolve(ctx context.Context, id, notes string) error
	Delete(ctx context.Context, id string) error
}

// ReadingStore persists sensor samples for the dashboard and analytics.
type ReadingStore interface {
	Insert(ctx context.Context, reading *models.Reading) error
	Latest(ctx context.Context, sensorID string) (*models.Reading, error)
	ListBySensor(ctx context.Context, sensorID string, limit int64) ([]*models.Reading, error)
}
