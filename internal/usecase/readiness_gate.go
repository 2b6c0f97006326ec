package usecase

import (
	"errors"
	"sync/atomic"

	"github.com/ressKim-io/prompt-guard/internal/domain/entity"
	"github.com/ressKim-io/prompt-guard/internal/domain/service"
)

// modelState is either Ok(model) or Err(reason). A nil state means loading.
type modelState struct {
	model  service.SequenceClassifier
	reason string
}

// ReadinessGate tracks the single loading -> ready|failed transition of the model.
// Reads are lock-free; only the first Mark call takes effect.
type ReadinessGate struct {
	state atomic.Pointer[modelState]
}

// NewReadinessGate creates a gate in the loading phase
func NewReadinessGate() *ReadinessGate {
	return &ReadinessGate{}
}

// MarkReady publishes the loaded model. It reports false if the gate already transitioned.
func (g *ReadinessGate) MarkReady(model service.SequenceClassifier) bool {
	if model == nil {
		return g.MarkFailed(&LoadError{Op: "open model", Err: errors.New("runtime returned no model")})
	}
	return g.state.CompareAndSwap(nil, &modelState{model: model})
}

// MarkFailed records the load failure. It reports false if the gate already transitioned.
func (g *ReadinessGate) MarkFailed(err error) bool {
	reason := "unknown load error"
	if err != nil {
		reason = err.Error()
	}
	return g.state.CompareAndSwap(nil, &modelState{reason: reason})
}

// Ready reports whether the model is loaded
func (g *ReadinessGate) Ready() bool {
	s := g.state.Load()
	return s != nil && s.model != nil
}

// LastError returns the load failure message, or nil
func (g *ReadinessGate) LastError() *string {
	s := g.state.Load()
	if s == nil || s.model != nil {
		return nil
	}
	reason := s.reason
	return &reason
}

// Model returns the loaded model or ErrModelNotReady
func (g *ReadinessGate) Model() (service.SequenceClassifier, error) {
	s := g.state.Load()
	if s == nil || s.model == nil {
		return nil, ErrModelNotReady
	}
	return s.model, nil
}

// Snapshot returns a consistent view of the gate
func (g *ReadinessGate) Snapshot() entity.Readiness {
	s := g.state.Load()
	switch {
	case s == nil:
		return entity.Readiness{Phase: entity.ModelPhaseLoading}
	case s.model != nil:
		return entity.Readiness{Phase: entity.ModelPhaseReady, Ready: true}
	default:
		reason := s.reason
		return entity.Readiness{Phase: entity.ModelPhaseFailed, Error: &reason}
	}
}
