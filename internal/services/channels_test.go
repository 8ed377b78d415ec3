package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsenselabs/airsense-core/internal/config"
	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

func TestSlackChannelPayload(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewSlackChannel(config.SlackConfig{Enabled: true, WebhookURL: srv.URL},
		"https://dash.example.com", logger.NewNop())
	require.True(t, ch.Enabled())

	alert := testAlert(models.SeverityCritical)
	require.NoError(t, ch.Send(context.Background(), alert))

	attachments, ok := received["attachments"].([]interface{})
	require.True(t, ok)
	require.Len(t, attachments, 1)

	att := attachments[0].(map[string]interface{})
	assert.Equal(t, "#dc2626", att["color"], "critical maps to red")
	blocks := att["blocks"].([]interface{})
	assert.Len(t, blocks, 4, "header, fields, message, actions")
}

func TestSlackChannelNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ch := NewSlackChannel(config.SlackConfig{Enabled: true, WebhookURL: srv.URL},
		"", logger.NewNop())
	err := ch.Send(context.Background(), testAlert(models.SeverityWarning))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestSlackChannelDisabledWithoutURL(t *testing.T) {
	ch := NewSlackChannel(config.SlackConfig{Enabled: true}, "", logger.NewNop())
	assert.False(t, ch.Enabled())
}

func TestDiscordChannelPayload(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ch := NewDiscordChannel(config.DiscordConfig{Enabled: true, WebhookURL: srv.URL}, logger.NewNop())

	alert := testAlert(models.SeverityWarning)
	require.NoError(t, ch.Send(context.Background(), alert))

	embeds := received["embeds"].([]interface{})
	require.Len(t, embeds, 1)
	embed := embeds[0].(map[string]interface{})
	assert.Equal(t, float64(16098851), embed["color"], "warning maps to orange")
	assert.Equal(t, alert.Message, embed["description"])
	fields := embed["fields"].([]interface{})
	assert.Len(t, fields, 3)
}

func TestSMSChannelPostsPerRecipient(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		requests = append(requests, r.PostForm.Get("To"))
		assert.Equal(t, "+15550000", r.PostForm.Get("From"))
		assert.Contains(t, r.PostForm.Get("Body"), "CRITICAL ALERT")

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ch := NewSMSChannel(config.SMSConfig{
		Enabled:    true,
		AccountSID: "AC123",
		AuthToken:  "secret",
		FromNumber: "+15550000",
		Recipients: []string{"+15551111", "+15552222"},
	}, logger.NewNop())
	ch.baseURL = srv.URL

	require.NoError(t, ch.Send(context.Background(), testAlert(models.SeverityCritical)))
	assert.Equal(t, []string{"+15551111", "+15552222"}, requests)
}

// Twilio acknowledges with 201; anything else is a failure, reported as a
// partial failure when some recipients succeeded.
func TestSMSChannelPartialFailure(t *testing.T) {
	var n int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n++
		if n == 1 {
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	ch := NewSMSChannel(config.SMSConfig{
		Enabled:    true,
		AccountSID: "AC123",
		AuthToken:  "secret",
		FromNumber: "+15550000",
		Recipients: []string{"+15551111", "+15552222"},
	}, logger.NewNop())
	ch.baseURL = srv.URL

	err := ch.Send(context.Background(), testAlert(models.SeverityCritical))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1/2")
}

func TestSMSChannelPolicies(t *testing.T) {
	ch := NewSMSChannel(config.SMSConfig{}, logger.NewNop())
	assert.True(t, ch.CriticalOnly())
	assert.True(t, ch.CooldownGated())
	assert.False(t, ch.Enabled(), "missing credentials disables the channel")
}

// Suspension is a second, independent gate on top of Enabled: the channel
// stays enabled but silently sends nothing.
func TestEmailChannelSuspended(t *testing.T) {
	ch := NewEmailChannel(config.EmailConfig{
		Enabled:    true,
		Suspended:  true,
		SMTPHost:   "smtp.example.com",
		SMTPPort:   587,
		Recipients: []string{"ops@example.com"},
	}, "", logger.NewNop())

	assert.True(t, ch.Enabled())
	assert.NoError(t, ch.Send(context.Background(), testAlert(models.SeverityCritical)))
}

func TestEmailChannelDisabledWithoutConfig(t *testing.T) {
	ch := NewEmailChannel(config.EmailConfig{Enabled: true}, "", logger.NewNop())
	assert.False(t, ch.Enabled(), "no SMTP host means disabled")

	ch = NewEmailChannel(config.EmailConfig{
		Enabled:  true,
		SMTPHost: "smtp.example.com",
	}, "", logger.NewNop())
	assert.False(t, ch.Enabled(), "no recipients means disabled")
}

func TestConsoleChannelNeverFails(t *testing.T) {
	ch := NewConsoleChannel(config.ConsoleConfig{Enabled: true}, logger.NewNop())
	assert.True(t, ch.Enabled())
	assert.NoError(t, ch.Send(context.Background(), testAlert(models.SeverityInfo)))
}

func TestStreamChannelBroadcasts(t *testing.T) {
	var got *models.Alert
	ch := NewStreamChannel(broadcasterFunc(func(a *models.Alert) { got = a }))
	require.True(t, ch.Enabled())

	alert := testAlert(models.SeverityWarning)
	require.NoError(t, ch.Send(context.Background(), alert))
	assert.Equal(t, alert, got)
}

type broadcasterFunc func(*models.Alert)

func (f broadcasterFunc) Broadcast(a *models.Alert) { f(a) }
