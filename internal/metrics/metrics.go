package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reading ingestion metrics
	ReadingsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airsense_core_readings_processed_total",
			Help: "Total number of sensor readings processed",
		},
		[]string{"source"}, // mqtt, http
	)

	ReadingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airsense_core_readings_rejected_total",
			Help: "Total number of sensor readings rejected before evaluation",
		},
		[]string{"source", "reason"},
	)

	// Alert pipeline metrics
	AlertsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airsense_core_alerts_generated_total",
			Help: "Total number of alerts generated by the threshold evaluator",
		},
		[]string{"metric", "severity"},
	)

	AlertPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airsense_core_alert_persist_failures_total",
			Help: "Total number of alerts that could not be durably recorded",
		},
	)

	// Notification dispatch metrics
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airsense_core_notifications_sent_total",
			Help: "Total number of notification channel sends attempted",
		},
		[]string{"channel", "severity", "success"},
	)

	NotificationsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airsense_core_notifications_suppressed_total",
			Help: "Total number of notifications suppressed by policy or cooldown",
		},
		[]string{"channel", "reason"}, // cooldown, severity
	)

	NotificationsDeadLettered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airsense_core_notifications_dead_lettered_total",
			Help: "Total number of failed channel sends recorded to the dead-letter log",
		},
		[]string{"channel"},
	)

	DispatchQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airsense_core_dispatch_queue_depth",
			Help: "Number of alerts waiting in the notification dispatch queue",
		},
	)

	DispatchDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airsense_core_dispatch_dropped_total",
			Help: "Total number of alerts dropped because the dispatch queue was full",
		},
	)
)
