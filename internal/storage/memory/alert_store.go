// Package memory provides in-process stores backing the service when no
// MongoDB URI is configured. Useful for development and tests; state is
// lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/internal/services"
)

// AlertStore is a mutex-guarded map keyed by alert ID.
type AlertStore struct {
	mu     sync.RWMutex
	alerts map[string]*models.Alert
}

func NewAlertStore() *AlertStore {
	return &AlertStore{alerts: make(map[string]*models.Alert)}
}

func (s *AlertStore) InsertIfAbsent(_ context.Context, alert *models.Alert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.alerts[alert.ID]; exists {
		return false, nil
	}
	cp := *alert
	s.alerts[alert.ID] = &cp
	return true, nil
}

func (s *AlertStore) Upsert(_ context.Context, alert *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *alert
	s.alerts[alert.ID] = &cp
	return nil
}

func (s *AlertStore) FindByID(_ context.Context, id string) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, ok := s.alerts[id]
	if !ok {
		return nil, fmt.Errorf("alert %s not found", id)
	}
	cp := *alert
	return &cp, nil
}

func (s *AlertStore) List(_ context.Context, filter services.AlertFilter) ([]*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Alert, 0, len(s.alerts))
	for _, alert := range s.alerts {
		if filter.SensorID != "" && alert.SensorID != filter.SensorID {
			continue
		}
		if filter.Severity != nil && alert.Severity != *filter.Severity {
			continue
		}
		cp := *alert
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TriggeredAt.After(out[j].TriggeredAt)
	})
	return out, nil
}

func (s *AlertStore) Resolve(_ context.Context, id, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return fmt.Errorf("alert %s not found", id)
	}
	if alert.Resolved {
		return fmt.Errorf("alert %s already resolved", id)
	}
	now := time.Now().UTC()
	alert.Resolved = true
	alert.ResolutionNotes = notes
	alert.ResolvedAt = &now
	return nil
}

func (s *AlertStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alerts[id]; !ok {
		return fmt.Errorf("alert %s not found", id)
	}
	delete(s.alerts, id)
	return nil
}
