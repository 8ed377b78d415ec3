package services

import (
	"context"
	"strings"
	"time"

	"github.com/airsenselabs/airsense-core/internal/config"
	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

// ConsoleChannel writes a bordered audit block to the process log. It is
// the guaranteed fallback: it never fails, so no alert is ever silent.
type ConsoleChannel struct {
	cfg    config.ConsoleConfig
	logger logger.Logger
}

func NewConsoleChannel(cfg config.ConsoleConfig, log logger.Logger) *ConsoleChannel {
	return &ConsoleChannel{cfg: cfg, logger: log}
}

func (c *ConsoleChannel) Name() string { return "console" }

func (c *ConsoleChannel) Enabled() bool { return c.cfg.Enabled }

func (c *ConsoleChannel) Send(_ context.Context, alert *models.Alert) error {
	border := strings.Repeat("═", 60)

	c.logger.Info(border)
	c.logger.Info(severityEmoji(alert.Severity) + " ALERT NOTIFICATION")
	c.logger.Info(border)
	c.logger.Info("Type:     " + alert.Type)
	c.logger.Info("Severity: " + alert.Severity.String())
	c.logger.Info("Sensor:   " + alert.SensorID)
	c.logger.Info("Message:  " + alert.Message)
	c.logger.Info("Time:     " + alert.TriggeredAt.Format(time.RFC3339))
	c.logger.Info(border)
	return nil
}

// AlertBroadcaster pushes alerts to connected dashboard clients. The
// websocket hub in the API layer implements it.
type AlertBroadcaster interface {
	Broadcast(alert *models.Alert)
}

// StreamChannel forwards alerts to the live dashboard feed. Broadcasting
// is in-process and non-blocking, so it never fails.
type StreamChannel struct {
	hub AlertBroadcaster
}

func NewStreamChannel(hub AlertBroadcaster) *StreamChannel {
	return &StreamChannel{hub: hub}
}

func (c *StreamChannel) Name() string { return "stream" }

func (c *StreamChannel) Enabled() bool { return c.hub != nil }

func (c *StreamChannel) Send(_ context.Context, alert *models.Alert) error {
	c.hub.Broadcast(alert)
	return nil
}
