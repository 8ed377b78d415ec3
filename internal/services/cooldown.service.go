package services

import (
	"context"
	"sync"
	"time"
)

// CooldownTracker rate-limits notification sends per (sensor, alert-type)
// pair. Implementations are best-effort: slight races around the window
// boundary are acceptable, this is not a distributed lock.
type CooldownTracker interface {
	// ShouldSend reports whether no notification for the key was sent
	// within the cooldown window.
	ShouldSend(ctx context.Context, sensorID, alertType string) bool
	// RecordSent marks the key as notified now.
	RecordSent(ctx context.Context, sensorID, alertType string)
}

// MemoryCooldownTracker is the single-instance tracker: a mutex-guarded
// key→timestamp map. State resets on restart, which is an accepted
// tradeoff; entries are bounded by sensor × alert-type cardinality so no
// expiry sweep is needed.
type MemoryCooldownTracker struct {
	mu       sync.Mutex
	window   time.Duration
	lastSent map[string]time.Time
	now      func() time.Time
}

func NewMemoryCooldownTracker(window time.Duration) *MemoryCooldownTracker {
	return &MemoryCooldownTracker{
		window:   window,
		lastSent: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (t *MemoryCooldownTracker) ShouldSend(_ context.Context, sensorID, alertType string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.lastSent[cooldownKey(sensorID, alertType)]
	if !ok {
		return true
	}
	return t.now().Sub(last) >= t.window
}

func (t *MemoryCooldownTracker) RecordSent(_ context.Context, sensorID, alertType string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSent[cooldownKey(sensorID, alertType)] = t.now()
}

// Reset clears all tracked entries. Intended for tests.
func (t *MemoryCooldownTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSent = make(map[string]time.Time)
}

func cooldownKey(sensorID, alertType string) string {
	return sensorID + ":" + alertType
}
