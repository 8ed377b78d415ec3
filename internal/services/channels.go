package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/airsenselabs/airsense-core/internal/models"
)

// Channel delivers one alert notification. A disabled channel's Send is
// never called; senders therefore only deal with transport concerns.
type Channel interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, alert *models.Alert) error
}

// criticalOnly is implemented by channels that only fire for CRITICAL
// alerts (SMS).
type criticalOnly interface {
	CriticalOnly() bool
}

// cooldownGated is implemented by channels whose sends consult the
// cooldown tracker before firing (SMS).
type cooldownGated interface {
	CooldownGated() bool
}

func severityEmoji(s models.Severity) string {
	switch s {
	case models.SeverityCritical:
		return "🚨"
	case models.SeverityWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

func severityHexColor(s models.Severity) string {
	switch s {
	case models.SeverityCritical:
		return "#dc2626"
	case models.SeverityWarning:
		return "#f59e0b"
	default:
		return "#3b82f6"
	}
}

// severityDiscordColor returns the decimal RGB form Discord embeds expect.
func severityDiscordColor(s models.Severity) int {
	switch s {
	case models.SeverityCritical:
		return 14370832 // red
	case models.SeverityWarning:
		return 16098851 // orange
	default:
		return 3901635 // blue
	}
}

// postJSON delivers a webhook payload and treats any non-2xx status as an
// error. The caller's context bounds the request.
func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
