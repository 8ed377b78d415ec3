package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/airsenselabs/airsense-core/internal/models"
)

const readingsPerSensor = 1000

// ReadingStore keeps a bounded per-sensor ring of recent readings, newest
// last. Enough for dashboard history without unbounded growth.
type ReadingStore struct {
	mu       sync.RWMutex
	readings map[string][]*models.Reading
}

func NewReadingStore() *ReadingStore {
	return &ReadingStore{readings: make(map[string][]*models.Reading)}
}

func (s *ReadingStore) Insert(_ context.Context, reading *models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *reading
	buf := append(s.readings[reading.SensorID], &cp)
	if len(buf) > readingsPerSensor {
		buf = buf[len(buf)-readingsPerSensor:]
	}
	s.readings[reading.SensorID] = buf
	return nil
}

func (s *ReadingStore) Latest(_ context.Context, sensorID string) (*models.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.readings[sensorID]
	if len(buf) == 0 {
		return nil, fmt.Errorf("no readings for sensor %s", sensorID)
	}
	cp := *buf[len(buf)-1]
	return &cp, nil
}

func (s *ReadingStore) ListBySensor(_ context.Context, sensorID string, limit int64) ([]*models.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.readings[sensorID]
	if limit > 0 && int64(len(buf)) > limit {
		buf = buf[int64(len(buf))-limit:]
	}
	out := make([]*models.Reading, 0, len(buf))
	// Newest first for API consumers.
	for i := len(buf) - 1; i >= 0; i-- {
		cp := *buf[i]
		out = append(out, &cp)
	}
	return out, nil
}
