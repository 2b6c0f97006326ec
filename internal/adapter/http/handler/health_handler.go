package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ressKim-io/prompt-guard/internal/usecase"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	gate    *usecase.ReadinessGate
	modelID string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(gate *usecase.ReadinessGate, modelID string) *HealthHandler {
	return &HealthHandler{
		gate:    gate,
		modelID: modelID,
	}
}

// HealthStatus represents the health check response. Error is null unless
// the model failed to load.
type HealthStatus struct {
	OK    bool    `json:"ok"`
	Model string  `json:"model"`
	Ready bool    `json:"ready"`
	Error *string `json:"error"`
}

// Health handles GET /health. It always answers 200; ok is false only once
// the model load has failed.
func (h *HealthHandler) Health(c *gin.Context) {
	state := h.gate.Snapshot()

	respondJSON(c, http.StatusOK, HealthStatus{
		OK:    state.OK(),
		Model: h.modelID,
		Ready: state.Ready,
		Error: state.Error,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	state := h.gate.Snapshot()
	if !state.Ready {
		reason := "model loading"
		if state.Error != nil {
			reason = *state.Error
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": reason})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
