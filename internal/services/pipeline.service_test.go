package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

// fakeAlertStore lets tests force persistence outcomes.
type fakeAlertStore struct {
	mu        sync.Mutex
	inserted  []*models.Alert
	insertErr error
	notNew    bool
}

func (s *fakeAlertStore) InsertIfAbsent(_ context.Context, alert *models.Alert) (bool, error) {
	if s.insertErr != nil {
		return false, s.insertErr
	}
	s.mu.Lock()
	s.inserted = append(s.inserted, alert)
	s.mu.Unlock()
	return !s.notNew, nil
}

func (s *fakeAlertStore) Upsert(context.Context, *models.Alert) error { return nil }
func (s *fakeAlertStore) FindByID(context.Context, string) (*models.Alert, error) {
	return nil, errors.New("not implemented")
}
func (s *fakeAlertStore) List(context.Context, AlertFilter) ([]*models.Alert, error) {
	return nil, nil
}
func (s *fakeAlertStore) Resolve(context.Context, string, string) error { return nil }
func (s *fakeAlertStore) Delete(context.Context, string) error          { return nil }

func newTestPipeline(store AlertStore, ch Channel) (*AlertPipeline, *NotificationDispatcher) {
	var channels []Channel
	if ch != nil {
		channels = []Channel{ch}
	}
	d := NewNotificationDispatcher(channels, NewMemoryCooldownTracker(2*time.Hour),
		16, 1, time.Second, logger.NewNop())
	p := NewAlertPipeline(NewThresholdService(logger.NewNop()), store, d, logger.NewNop())
	return p, d
}

func TestPipelineGeneratesAndDispatches(t *testing.T) {
	store := &fakeAlertStore{}
	ch := &fakeChannel{name: "test", enabled: true}
	pipeline, dispatcher := newTestPipeline(store, ch)

	reading := newTestReading()
	reading.CO2 = 2500

	alerts := pipeline.ProcessReading(context.Background(), reading)
	dispatcher.Close()

	require.Len(t, alerts, 1)
	assert.Equal(t, "CO2_HIGH", alerts[0].Type)
	assert.Equal(t, "sensor-1", alerts[0].SensorID)
	assert.NotEmpty(t, alerts[0].ID)
	assert.False(t, alerts[0].Resolved)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, []string{alerts[0].ID}, ch.sent())
}

func TestPipelineCleanReadingNoAlerts(t *testing.T) {
	store := &fakeAlertStore{}
	ch := &fakeChannel{name: "test", enabled: true}
	pipeline, dispatcher := newTestPipeline(store, ch)

	alerts := pipeline.ProcessReading(context.Background(), newTestReading())
	dispatcher.Close()

	assert.Empty(t, alerts)
	assert.Empty(t, store.inserted)
	assert.Empty(t, ch.sent())
}

// A persistence failure must not notify: anything not durably recorded is
// not announced.
func TestPipelinePersistFailureSkipsNotification(t *testing.T) {
	store := &fakeAlertStore{insertErr: errors.New("mongo down")}
	ch := &fakeChannel{name: "test", enabled: true}
	pipeline, dispatcher := newTestPipeline(store, ch)

	reading := newTestReading()
	reading.CO2 = 2500

	alerts := pipeline.ProcessReading(context.Background(), reading)
	dispatcher.Close()

	assert.Len(t, alerts, 1, "the alert is still reported to the caller")
	assert.Empty(t, ch.sent())
}

// An alert the store reports as already present must not re-notify.
func TestPipelineDuplicateAlertNotRedispatched(t *testing.T) {
	store := &fakeAlertStore{notNew: true}
	ch := &fakeChannel{name: "test", enabled: true}
	pipeline, dispatcher := newTestPipeline(store, ch)

	reading := newTestReading()
	reading.CO2 = 2500

	pipeline.ProcessReading(context.Background(), reading)
	dispatcher.Close()

	assert.Empty(t, ch.sent())
}

// One candidate failing to persist does not abort the others.
func TestPipelineContinuesAfterPersistFailure(t *testing.T) {
	// Fails the first insert, accepts the rest.
	store := &flakyAlertStore{failFirst: true}
	ch := &fakeChannel{name: "test", enabled: true}
	pipeline, dispatcher := newTestPipeline(store, ch)

	reading := newTestReading()
	reading.PM25 = 275.0
	reading.CO2 = 2500

	alerts := pipeline.ProcessReading(context.Background(), reading)
	dispatcher.Close()

	assert.Len(t, alerts, 2)
	assert.Len(t, ch.sent(), 1, "the surviving alert was still dispatched")
}

type flakyAlertStore struct {
	fakeAlertStore
	failFirst bool
}

func (s *flakyAlertStore) InsertIfAbsent(ctx context.Context, alert *models.Alert) (bool, error) {
	if s.failFirst {
		s.failFirst = false
		return false, errors.New("transient write failure")
	}
	return s.fakeAlertStore.InsertIfAbsent(ctx, alert)
}
