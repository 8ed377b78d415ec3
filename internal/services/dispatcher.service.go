package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/airsenselabs/airsense-core/internal/metrics"
	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

// NotificationDispatcher fans a new alert out to every enabled channel.
// Dispatch is fire-and-forget: alerts go onto a bounded queue drained by a
// worker pool, so alert persistence is never blocked by slow network I/O.
// Channel failure isolation is a hard invariant: one channel failing, or
// even panicking, never prevents the remaining channels from being
// attempted.
type NotificationDispatcher struct {
	channels    []Channel
	cooldown    CooldownTracker
	logger      logger.Logger
	sendTimeout time.Duration

	queue chan *models.Alert
	wg    sync.WaitGroup
}

func NewNotificationDispatcher(
	channels []Channel,
	cooldown CooldownTracker,
	queueSize, workers int,
	sendTimeout time.Duration,
	log logger.Logger,
) *NotificationDispatcher {
	d := &NotificationDispatcher{
		channels:    channels,
		cooldown:    cooldown,
		logger:      log,
		sendTimeout: sendTimeout,
		queue:       make(chan *models.Alert, queueSize),
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Dispatch enqueues the alert for notification. It never blocks: when the
// queue is full the alert is dropped from the notification path (the alert
// record itself is already persisted) and the drop is logged.
func (d *NotificationDispatcher) Dispatch(alert *models.Alert) {
	select {
	case d.queue <- alert:
		metrics.DispatchQueueDepth.Set(float64(len(d.queue)))
	default:
		metrics.DispatchDropped.Inc()
		d.logger.Warn("dispatch queue full, alert dropped from notification path",
			"alert_id", alert.ID, "type", alert.Type, "sensor", alert.SensorID)
	}
}

// Close drains the queue and stops the workers. Pending alerts are still
// delivered.
func (d *NotificationDispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for alert := range d.queue {
		metrics.DispatchQueueDepth.Set(float64(len(d.queue)))
		d.dispatchAlert(context.Background(), alert)
	}
}

// dispatchAlert attempts every channel for one alert. Channel order is not
// significant; each send is independently gated, timed out and error
// isolated.
func (d *NotificationDispatcher) dispatchAlert(ctx context.Context, alert *models.Alert) {
	for _, ch := range d.channels {
		d.sendOn(ctx, ch, alert)
	}
}

func (d *NotificationDispatcher) sendOn(ctx context.Context, ch Channel, alert *models.Alert) {
	defer func() {
		if r := recover(); r != nil {
			d.deadLetter(ch, alert, fmt.Errorf("channel panicked: %v", r))
		}
	}()

	if !ch.Enabled() {
		return
	}

	if co, ok := ch.(criticalOnly); ok && co.CriticalOnly() {
		if !alert.Severity.AtLeast(models.SeverityCritical) {
			metrics.NotificationsSuppressed.WithLabelValues(ch.Name(), "severity").Inc()
			return
		}
	}

	gated := false
	if cg, ok := ch.(cooldownGated); ok && cg.CooldownGated() {
		gated = true
		if !d.cooldown.ShouldSend(ctx, alert.SensorID, alert.Type) {
			metrics.NotificationsSuppressed.WithLabelValues(ch.Name(), "cooldown").Inc()
			d.logger.Debug("notification suppressed by cooldown",
				"channel", ch.Name(), "type", alert.Type, "sensor", alert.SensorID)
			return
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	err := ch.Send(sendCtx, alert)

	// The cooldown clock starts at the attempt, not at confirmed
	// delivery: a failing gateway must not cause a send storm.
	if gated {
		d.cooldown.RecordSent(ctx, alert.SensorID, alert.Type)
	}

	metrics.NotificationsSent.WithLabelValues(
		ch.Name(), alert.Severity.String(), strconv.FormatBool(err == nil)).Inc()

	if err != nil {
		d.deadLetter(ch, alert, err)
		return
	}
	d.logger.Debug("notification sent", "channel", ch.Name(), "alert_id", alert.ID)
}

// deadLetter records a failed channel send so operators can replay it.
// Channel errors are terminal here: logged, counted, never escalated.
func (d *NotificationDispatcher) deadLetter(ch Channel, alert *models.Alert, err error) {
	metrics.NotificationsDeadLettered.WithLabelValues(ch.Name()).Inc()
	d.logger.Error("notification dead-letter",
		"channel", ch.Name(),
		"alert_id", alert.ID,
		"type", alert.Type,
		"severity", alert.Severity.String(),
		"sensor", alert.SensorID,
		"triggered_at", alert.TriggeredAt.Format(time.RFC3339),
		"error", err,
	)
}
