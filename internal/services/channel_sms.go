package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/airsenselabs/airsense-core/internal/config"
	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

const twilioAPIBase = "https://api.twilio.com"

// SMSChannel sends critical alerts through the Twilio messages API. It is
// the only cooldown-gated channel: SMS is expensive and loud, so repeat
// alerts for the same (sensor, type) pair inside the window are suppressed
// by the dispatcher.
type SMSChannel struct {
	cfg     config.SMSConfig
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

func NewSMSChannel(cfg config.SMSConfig, log logger.Logger) *SMSChannel {
	return &SMSChannel{
		cfg:     cfg,
		baseURL: twilioAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  log,
	}
}

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Enabled() bool {
	return c.cfg.Enabled && c.cfg.AccountSID != "" && c.cfg.AuthToken != "" &&
		c.cfg.FromNumber != "" && len(c.cfg.Recipients) > 0
}

func (c *SMSChannel) CriticalOnly() bool  { return true }
func (c *SMSChannel) CooldownGated() bool { return true }

func (c *SMSChannel) Send(ctx context.Context, alert *models.Alert) error {
	body := fmt.Sprintf("🚨 AirSense CRITICAL ALERT\n%s\nSensor: %s\n%s",
		alert.Type, alert.SensorID, alert.Message)

	var failed int
	for _, recipient := range c.cfg.Recipients {
		if err := c.sendOne(ctx, strings.TrimSpace(recipient), body); err != nil {
			failed++
			c.logger.Warn("Twilio SMS failed", "to", recipient, "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("sms partially failed: %d/%d recipients failed", failed, len(c.cfg.Recipients))
	}
	c.logger.Info("SMS notifications sent",
		"type", alert.Type, "sensor", alert.SensorID, "recipients", len(c.cfg.Recipients))
	return nil
}

func (c *SMSChannel) sendOne(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.cfg.AccountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.cfg.FromNumber)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Twilio answers 201 Created for an accepted message.
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("twilio returned status %d", resp.StatusCode)
	}
	return nil
}
