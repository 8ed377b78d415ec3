package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

func TestHubBroadcastReachesClient(t *testing.T) {
	hub := NewHub(logger.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration happens in the upgrade handler before ServeWS returns,
	// but give the server goroutine a moment on slow machines.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, time.Second, 10*time.Millisecond)

	alert := models.NewAlert(models.CandidateAlert{
		Type:     "VOC_DANGEROUS",
		Severity: models.SeverityCritical,
		Message:  "toxic levels",
		Metric:   "voc",
		Value:    3.5,
	}, &models.Reading{SensorID: "s1"})
	hub.Broadcast(alert)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got models.Alert
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, alert.ID, got.ID)
	assert.Equal(t, "VOC_DANGEROUS", got.Type)
	assert.Equal(t, models.SeverityCritical, got.Severity)
}

func TestHubDropsDisconnectedClient(t *testing.T) {
	hub := NewHub(logger.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	conn.Close()

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 0
	}, time.Second, 10*time.Millisecond)

	// Broadcasting with no clients is a no-op, not a panic.
	hub.Broadcast(models.NewAlert(models.CandidateAlert{
		Type: "CO2_ELEVATED", Severity: models.SeverityInfo, Metric: "co2",
	}, &models.Reading{SensorID: "s1"}))
}
