package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/airsenselabs/airsense-core/internal/config"
	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

const emailBodyTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: 'Segoe UI', Arial, sans-serif; background: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 12px; overflow: hidden;">
    <div style="background: %s; color: white; padding: 24px; text-align: center;">
      <h1 style="margin: 0; font-size: 24px;">🌍 AirSense Alert</h1>
    </div>
    <div style="padding: 24px;">
      <div style="background: #f8fafc; border-left: 4px solid %s; padding: 16px; margin: 16px 0;">
        <strong style="font-size: 18px;">%s</strong>
        <p style="margin: 8px 0 0 0; color: #475569;">%s</p>
      </div>
      <p><strong>Alert Type:</strong> %s</p>
      <p><strong>Sensor ID:</strong> %s</p>
      <p><strong>Triggered At:</strong> %s</p>
      <a href="%s/alerts" style="display: inline-block; background: #0ea5e9; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none;">View Dashboard →</a>
    </div>
    <div style="background: #f8fafc; padding: 16px 24px; text-align: center; color: #64748b; font-size: 12px;">
      <p>AirSense - IoT Air Quality Monitoring</p>
    </div>
  </div>
</body>
</html>`

// EmailChannel sends HTML alert mail over SMTP. Two independent gates
// control it: the config Enabled flag and the operational Suspended kill
// switch; both must pass before a message goes out.
type EmailChannel struct {
	cfg          config.EmailConfig
	dashboardURL string
	dialTimeout  time.Duration
	logger       logger.Logger
}

func NewEmailChannel(cfg config.EmailConfig, dashboardURL string, log logger.Logger) *EmailChannel {
	return &EmailChannel{
		cfg:          cfg,
		dashboardURL: dashboardURL,
		dialTimeout:  10 * time.Second,
		logger:       log,
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Enabled() bool {
	return c.cfg.Enabled && c.cfg.SMTPHost != "" && len(c.cfg.Recipients) > 0
}

func (c *EmailChannel) Send(ctx context.Context, alert *models.Alert) error {
	if c.cfg.Suspended {
		c.logger.Info("email notifications suspended, alert not mailed",
			"type", alert.Type, "sensor", alert.SensorID)
		return nil
	}

	from, err := sanitizeHeader("from address", c.cfg.Username)
	if err != nil {
		return err
	}
	if from == "" {
		return fmt.Errorf("smtp username (from address) is empty")
	}

	recipients := make([]string, 0, len(c.cfg.Recipients))
	for _, r := range c.cfg.Recipients {
		safe, err := sanitizeHeader("recipient", r)
		if err != nil {
			return err
		}
		if safe != "" {
			recipients = append(recipients, safe)
		}
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no valid email recipients")
	}

	subject := fmt.Sprintf("%s AirSense Alert: %s [%s]",
		severityEmoji(alert.Severity), alert.Type, alert.Severity)
	color := severityHexColor(alert.Severity)
	body := fmt.Sprintf(emailBodyTemplate,
		color, color,
		alert.Severity, alert.Message,
		alert.Type, alert.SensorID,
		alert.TriggeredAt.Format(time.RFC3339),
		c.dashboardURL,
	)

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + strings.Join(recipients, ",") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := c.sendMail(ctx, from, recipients, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Info("Email notification sent",
		"type", alert.Type, "sensor", alert.SensorID, "recipients", len(recipients))
	return nil
}

// sendMail runs the SMTP conversation over a deadline-bounded connection
// so a hung server cannot pin a dispatch worker.
func (c *EmailChannel) sendMail(ctx context.Context, from string, to []string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", c.cfg.SMTPHost, c.cfg.SMTPPort)

	dialer := &net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	client, err := smtp.NewClient(conn, c.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: c.cfg.SMTPHost}); err != nil {
			return err
		}
	}

	if c.cfg.Username != "" && c.cfg.Password != "" {
		auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.SMTPHost)
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

// sanitizeHeader rejects values that could break out of mail headers.
func sanitizeHeader(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if strings.ContainsAny(trimmed, "\r\n") {
		return "", fmt.Errorf("%s contains invalid newline characters", field)
	}
	return trimmed, nil
}
