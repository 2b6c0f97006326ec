package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ressKim-io/prompt-guard/internal/usecase"
)

// ClassifyRequest is the body of POST /classify. Text may be empty but not absent.
type ClassifyRequest struct {
	Text *string `json:"text" binding:"required"`
}

// ClassifyBatchRequest is the body of POST /classify/batch
type ClassifyBatchRequest struct {
	Texts []string `json:"texts" binding:"required"`
}

// ClassifyHandler handles classification requests
type ClassifyHandler struct {
	classifyUC usecase.ClassifyUsecase
}

// NewClassifyHandler creates a new classify handler
func NewClassifyHandler(classifyUC usecase.ClassifyUsecase) *ClassifyHandler {
	return &ClassifyHandler{classifyUC: classifyUC}
}

// Classify handles POST /classify
func (h *ClassifyHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.classifyUC.Classify(c.Request.Context(), *req.Text)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, result)
}

// ClassifyBatch handles POST /classify/batch
func (h *ClassifyHandler) ClassifyBatch(c *gin.Context) {
	var req ClassifyBatchRequest
	if !bindJSON(c, &req) {
		return
	}

	results, err := h.classifyUC.ClassifyBatch(c.Request.Context(), req.Texts)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, results)
}
