package entity

// ModelPhase represents where the model lifecycle currently is
type ModelPhase string

const (
	ModelPhaseLoading ModelPhase = "loading"
	ModelPhaseReady   ModelPhase = "ready"
	ModelPhaseFailed  ModelPhase = "failed"
)

// Readiness is a point-in-time view of the model lifecycle.
// Error is nil unless Phase is ModelPhaseFailed.
type Readiness struct {
	Phase ModelPhase
	Ready bool
	Error *string
}

// OK reports whether no load error has been recorded
func (r Readiness) OK() bool {
	return r.Error == nil
}
