package services

import (
	"context"

	"github.com/airsenselabs/airsense-core/internal/metrics"
	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

// AlertPipeline ties the stages together: evaluate a reading against the
// threshold catalog, persist any resulting alerts, and hand new ones to the
// dispatcher. A reading that trips nothing passes through silently.
type AlertPipeline struct {
	thresholds *ThresholdService
	store      AlertStore
	dispatcher *NotificationDispatcher
	logger     logger.Logger
}

func NewAlertPipeline(
	thresholds *ThresholdService,
	store AlertStore,
	dispatcher *NotificationDispatcher,
	log logger.Logger,
) *AlertPipeline {
	return &AlertPipeline{
		thresholds: thresholds,
		store:      store,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// ProcessReading evaluates one reading and returns the alerts it generated.
// Notifications fire only for alerts persisted as new and not already
// resolved; a persistence failure skips notification for that alert but
// never aborts the remaining candidates.
func (p *AlertPipeline) ProcessReading(ctx context.Context, reading *models.Reading) []*models.Alert {
	candidates := p.thresholds.Evaluate(reading)
	if len(candidates) == 0 {
		return nil
	}

	alerts := make([]*models.Alert, 0, len(candidates))
	for _, c := range candidates {
		alert := models.NewAlert(c, reading)
		alerts = append(alerts, alert)

		metrics.AlertsGenerated.WithLabelValues(c.Metric, c.Severity.String()).Inc()
		p.logger.Info("alert generated",
			"alert_id", alert.ID,
			"type", alert.Type,
			"severity", alert.Severity.String(),
			"sensor", alert.SensorID,
			"value", c.Value,
		)

		isNew, err := p.store.InsertIfAbsent(ctx, alert)
		if err != nil {
			metrics.AlertPersistFailures.Inc()
			p.logger.Error("alert persist failed, notification skipped",
				"alert_id", alert.ID, "type", alert.Type, "error", err)
			continue
		}
		if isNew && !alert.Resolved {
			p.dispatcher.Dispatch(alert)
		}
	}
	return alerts
}
