package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ressKim-io/prompt-guard/internal/usecase"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// Error codes carried in the response envelope
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeModelNotReady   = "MODEL_NOT_READY"
	CodeInferenceFailed = "INFERENCE_FAILED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// MapUsecaseError maps usecase errors to HTTP error responses.
func MapUsecaseError(err error) ErrorResponse {
	switch {
	case errors.Is(err, usecase.ErrModelNotReady):
		return ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Code:       CodeModelNotReady,
			Message:    "Model not ready",
		}
	case errors.Is(err, usecase.ErrInferenceFailed):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       CodeInferenceFailed,
			Message:    "inference failed",
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       CodeInternalError,
			Message:    "internal server error",
		}
	}
}

// HandleUsecaseError handles a usecase error by sending an appropriate HTTP response.
func HandleUsecaseError(c *gin.Context, err error) {
	errResp := MapUsecaseError(err)
	_ = c.Error(err)
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}

// HandleInvalidRequest handles a generic invalid request error.
func HandleInvalidRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, CodeInvalidRequest, message)
}
