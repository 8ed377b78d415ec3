package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

// fakeChannel records sends and can be told to fail, panic, or opt into
// the critical-only and cooldown policies.
type fakeChannel struct {
	mu   sync.Mutex
	name string

	enabled      bool
	critOnly     bool
	cooldowned   bool
	failWith     error
	panicOnSend  bool
	sentAlertIDs []string
}

func (f *fakeChannel) Name() string        { return f.name }
func (f *fakeChannel) Enabled() bool       { return f.enabled }
func (f *fakeChannel) CriticalOnly() bool  { return f.critOnly }
func (f *fakeChannel) CooldownGated() bool { return f.cooldowned }

func (f *fakeChannel) Send(_ context.Context, alert *models.Alert) error {
	if f.panicOnSend {
		panic("channel exploded")
	}
	f.mu.Lock()
	f.sentAlertIDs = append(f.sentAlertIDs, alert.ID)
	f.mu.Unlock()
	return f.failWith
}

func (f *fakeChannel) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sentAlertIDs...)
}

func testAlert(severity models.Severity) *models.Alert {
	return models.NewAlert(models.CandidateAlert{
		Type:     "CO2_HIGH",
		Severity: severity,
		Message:  "test",
		Metric:   "co2",
		Value:    2500,
	}, &models.Reading{SensorID: "sensor-1"})
}

func newTestDispatcher(channels []Channel, cooldown CooldownTracker) *NotificationDispatcher {
	if cooldown == nil {
		cooldown = NewMemoryCooldownTracker(2 * time.Hour)
	}
	// Single worker keeps delivery order deterministic for assertions.
	return NewNotificationDispatcher(channels, cooldown, 16, 1, time.Second, logger.NewNop())
}

func TestDispatcherFansOutToAllChannels(t *testing.T) {
	a := &fakeChannel{name: "a", enabled: true}
	b := &fakeChannel{name: "b", enabled: true}

	d := newTestDispatcher([]Channel{a, b}, nil)
	alert := testAlert(models.SeverityWarning)
	d.Dispatch(alert)
	d.Close()

	assert.Equal(t, []string{alert.ID}, a.sent())
	assert.Equal(t, []string{alert.ID}, b.sent())
}

// One channel failing, or even panicking, must not stop the others.
func TestDispatcherIsolatesChannelFailures(t *testing.T) {
	failing := &fakeChannel{name: "failing", enabled: true, failWith: errors.New("gateway down")}
	panicking := &fakeChannel{name: "panicking", enabled: true, panicOnSend: true}
	healthy := &fakeChannel{name: "healthy", enabled: true}

	d := newTestDispatcher([]Channel{failing, panicking, healthy}, nil)
	alert := testAlert(models.SeverityCritical)
	d.Dispatch(alert)
	d.Close()

	assert.Equal(t, []string{alert.ID}, healthy.sent())
	assert.Equal(t, []string{alert.ID}, failing.sent(), "failing channel was still attempted")
}

func TestDispatcherSkipsDisabledChannels(t *testing.T) {
	ch := &fakeChannel{name: "off", enabled: false}

	d := newTestDispatcher([]Channel{ch}, nil)
	d.Dispatch(testAlert(models.SeverityCritical))
	d.Close()

	assert.Empty(t, ch.sent())
}

func TestDispatcherCriticalOnlyGate(t *testing.T) {
	ch := &fakeChannel{name: "sms", enabled: true, critOnly: true}

	d := newTestDispatcher([]Channel{ch}, nil)
	d.Dispatch(testAlert(models.SeverityWarning))
	d.Dispatch(testAlert(models.SeverityInfo))
	critical := testAlert(models.SeverityCritical)
	d.Dispatch(critical)
	d.Close()

	assert.Equal(t, []string{critical.ID}, ch.sent())
}

func TestDispatcherCooldownGate(t *testing.T) {
	ch := &fakeChannel{name: "sms", enabled: true, cooldowned: true}
	cooldown := NewMemoryCooldownTracker(2 * time.Hour)

	d := newTestDispatcher([]Channel{ch}, cooldown)
	first := testAlert(models.SeverityCritical)
	second := testAlert(models.SeverityCritical) // same sensor and type
	d.Dispatch(first)
	d.Dispatch(second)
	d.Close()

	assert.Equal(t, []string{first.ID}, ch.sent(), "second send suppressed by cooldown")
}

// The cooldown window opens at the attempt even when the send fails, so a
// broken gateway does not get hammered.
func TestDispatcherCooldownRecordsFailedAttempts(t *testing.T) {
	ch := &fakeChannel{name: "sms", enabled: true, cooldowned: true, failWith: errors.New("boom")}
	cooldown := NewMemoryCooldownTracker(2 * time.Hour)

	d := newTestDispatcher([]Channel{ch}, cooldown)
	d.Dispatch(testAlert(models.SeverityCritical))
	d.Close()

	assert.False(t, cooldown.ShouldSend(context.Background(), "sensor-1", "CO2_HIGH"))
}

// Cooldown applies only to channels that opt in.
func TestDispatcherUngatedChannelIgnoresCooldown(t *testing.T) {
	gated := &fakeChannel{name: "sms", enabled: true, cooldowned: true}
	ungated := &fakeChannel{name: "slack", enabled: true}

	d := newTestDispatcher([]Channel{gated, ungated}, nil)
	first := testAlert(models.SeverityCritical)
	second := testAlert(models.SeverityCritical)
	d.Dispatch(first)
	d.Dispatch(second)
	d.Close()

	assert.Len(t, gated.sent(), 1)
	assert.Len(t, ungated.sent(), 2)
}

// A full queue drops the notification but Dispatch never blocks.
func TestDispatcherQueueFullDrops(t *testing.T) {
	cooldown := NewMemoryCooldownTracker(2 * time.Hour)
	d := &NotificationDispatcher{
		channels:    nil,
		cooldown:    cooldown,
		logger:      logger.NewNop(),
		sendTimeout: time.Second,
		queue:       make(chan *models.Alert, 1), // no workers draining
	}

	done := make(chan struct{})
	go func() {
		d.Dispatch(testAlert(models.SeverityInfo))
		d.Dispatch(testAlert(models.SeverityInfo)) // queue full here
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
}
