package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/internal/services"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

// AlertHandler serves the alert management endpoints.
type AlertHandler struct {
	store  services.AlertStore
	logger logger.Logger
}

func NewAlertHandler(store services.AlertStore, log logger.Logger) *AlertHandler {
	return &AlertHandler{store: store, logger: log}
}

// List returns alerts, optionally filtered by ?severity= and ?sensor=.
func (h *AlertHandler) List(c *gin.Context) {
	filter := services.AlertFilter{SensorID: c.Query("sensor")}

	if raw := c.Query("severity"); raw != "" {
		sev, err := models.ParseSeverity(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Severity = &sev
	}

	alerts, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("alert list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}
	if alerts == nil {
		alerts = []*models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

func (h *AlertHandler) GetByID(c *gin.Context) {
	alert, err := h.store.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alert)
}

type resolveRequest struct {
	Notes string `json:"notes"`
}

// Resolve marks an alert resolved. Resolution is terminal; resolving an
// already resolved alert is a conflict.
func (h *AlertHandler) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id := c.Param("id")
	if err := h.store.Resolve(c.Request.Context(), id, req.Notes); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("alert resolved", "alert_id", id)
	c.JSON(http.StatusOK, gin.H{"status": "resolved", "id": id})
}

func (h *AlertHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}
