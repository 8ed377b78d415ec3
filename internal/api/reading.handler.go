package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/airsenselabs/airsense-core/internal/ingest"
	"github.com/airsenselabs/airsense-core/internal/metrics"
	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/internal/services"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

const sourceHTTP = "http"

// ReadingHandler ingests readings over HTTP (sensors without MQTT, and
// backfill tooling) and serves reading history plus derived AQI.
type ReadingHandler struct {
	readings services.ReadingStore
	pipeline *services.AlertPipeline
	logger   logger.Logger
}

func NewReadingHandler(readings services.ReadingStore, pipeline *services.AlertPipeline, log logger.Logger) *ReadingHandler {
	return &ReadingHandler{readings: readings, pipeline: pipeline, logger: log}
}

// Ingest accepts one reading and runs it through the alert pipeline. The
// generated alerts come back in the response so callers can see what the
// sample tripped.
func (h *ReadingHandler) Ingest(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	reading, err := ingest.ParseReading(body)
	if err != nil {
		metrics.ReadingsRejected.WithLabelValues(sourceHTTP, "parse").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.readings.Insert(ctx, reading); err != nil {
		h.logger.Error("reading persist failed", "sensor", reading.SensorID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store reading"})
		return
	}

	metrics.ReadingsProcessed.WithLabelValues(sourceHTTP).Inc()
	alerts := h.pipeline.ProcessReading(ctx, reading)
	if alerts == nil {
		alerts = []*models.Alert{}
	}
	c.JSON(http.StatusCreated, gin.H{"status": "accepted", "alerts": alerts})
}

// ListBySensor returns recent readings for a sensor, newest first.
// ?limit= caps the result, default 100.
func (h *ReadingHandler) ListBySensor(c *gin.Context) {
	limit := int64(100)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	readings, err := h.readings.ListBySensor(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.logger.Error("reading list failed", "sensor", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list readings"})
		return
	}
	if readings == nil {
		readings = []*models.Reading{}
	}
	c.JSON(http.StatusOK, gin.H{"readings": readings, "count": len(readings)})
}

// AQI computes the EPA air quality index from the sensor's latest PM2.5
// sample.
func (h *ReadingHandler) AQI(c *gin.Context) {
	sensorID := c.Param("id")
	reading, err := h.readings.Latest(c.Request.Context(), sensorID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	aqi := services.AQIFromPM25(reading.PM25)
	c.JSON(http.StatusOK, gin.H{
		"sensorId":  sensorID,
		"pm25":      reading.PM25,
		"aqi":       aqi,
		"category":  services.AQICategory(aqi),
		"timestamp": reading.Timestamp,
	})
}
