package services

import (
	"context"
	"net/http"
	"time"

	"github.com/airsenselabs/airsense-core/internal/config"
	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

// SlackChannel posts alerts to a Slack incoming webhook as a Block Kit
// attachment.
type SlackChannel struct {
	cfg          config.SlackConfig
	dashboardURL string
	client       *http.Client
	logger       logger.Logger
}

func NewSlackChannel(cfg config.SlackConfig, dashboardURL string, log logger.Logger) *SlackChannel {
	return &SlackChannel{
		cfg:          cfg,
		dashboardURL: dashboardURL,
		client:       &http.Client{Timeout: 10 * time.Second},
		logger:       log,
	}
}

func (c *SlackChannel) Name() string { return "slack" }

func (c *SlackChannel) Enabled() bool {
	return c.cfg.Enabled && c.cfg.WebhookURL != ""
}

func (c *SlackChannel) Send(ctx context.Context, alert *models.Alert) error {
	payload := map[string]interface{}{
		"attachments": []map[string]interface{}{
			{
				"color": severityHexColor(alert.Severity),
				"blocks": []map[string]interface{}{
					{
						"type": "header",
						"text": map[string]interface{}{
							"type":  "plain_text",
							"text":  severityEmoji(alert.Severity) + " AirSense Alert: " + alert.Type,
							"emoji": true,
						},
					},
					{
						"type": "section",
						"fields": []map[string]interface{}{
							{"type": "mrkdwn", "text": "*Type:*\n" + alert.Type},
							{"type": "mrkdwn", "text": "*Severity:*\n" + alert.Severity.String()},
							{"type": "mrkdwn", "text": "*Sensor:*\n" + alert.SensorID},
							{"type": "mrkdwn", "text": "*Time:*\n" + alert.TriggeredAt.Format(time.RFC3339)},
						},
					},
					{
						"type": "section",
						"text": map[string]interface{}{
							"type": "mrkdwn",
							"text": "*Message:* " + alert.Message,
						},
					},
					{
						"type": "actions",
						"elements": []map[string]interface{}{
							{
								"type": "button",
								"text": map[string]interface{}{"type": "plain_text", "text": "View Dashboard"},
								"url":  c.dashboardURL + "/alerts",
							},
						},
					},
				},
			},
		},
	}

	if err := postJSON(ctx, c.client, c.cfg.WebhookURL, payload); err != nil {
		return err
	}
	c.logger.Info("Slack notification sent", "type", alert.Type, "sensor", alert.SensorID)
	return nil
}

// DiscordChannel posts alerts to a Discord webhook as an embed.
type DiscordChannel struct {
	cfg    config.DiscordConfig
	client *http.Client
	logger logger.Logger
}

func NewDiscordChannel(cfg config.DiscordConfig, log logger.Logger) *DiscordChannel {
	return &DiscordChannel{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: log,
	}
}

func (c *DiscordChannel) Name() string { return "discord" }

func (c *DiscordChannel) Enabled() bool {
	return c.cfg.Enabled && c.cfg.WebhookURL != ""
}

func (c *DiscordChannel) Send(ctx context.Context, alert *models.Alert) error {
	payload := map[string]interface{}{
		"embeds": []map[string]interface{}{
			{
				"title":       severityEmoji(alert.Severity) + " AirSense Alert",
				"description": alert.Message,
				"color":       severityDiscordColor(alert.Severity),
				"fields": []map[string]interface{}{
					{"name": "Type", "value": alert.Type, "inline": true},
					{"name": "Severity", "value": alert.Severity.String(), "inline": true},
					{"name": "Sensor", "value": alert.SensorID, "inline": true},
				},
				"footer":    map[string]interface{}{"text": "AirSense - Air Quality Monitoring"},
				"timestamp": alert.TriggeredAt.Format(time.RFC3339),
			},
		},
	}

	if err := postJSON(ctx, c.client, c.cfg.WebhookURL, payload); err != nil {
		return err
	}
	c.logger.Info("Discord notification sent", "type", alert.Type, "sensor", alert.SensorID)
	return nil
}
