package entity

import (
	"fmt"
	"math"
)

// Label is one of the fixed classes emitted by the prompt guard model
type Label string

const (
	LabelBenign    Label = "BENIGN"
	LabelInjection Label = "INJECTION"
	LabelJailbreak Label = "JAILBREAK"
)

// Labels lists the model classes in output index order
var Labels = [...]Label{LabelBenign, LabelInjection, LabelJailbreak}

// NumLabels is the width of the model's logits vector
const NumLabels = len(Labels)

// scorePrecision is the number of decimal digits kept in exposed scores
const scorePrecision = 4

// Scores holds the per-class probabilities
type Scores struct {
	Benign    float64 `json:"benign"`
	Injection float64 `json:"injection"`
	Jailbreak float64 `json:"jailbreak"`
}

// Sum returns the total probability mass
func (s Scores) Sum() float64 {
	return s.Benign + s.Injection + s.Jailbreak
}

// ClassificationResult is the outcome of classifying a single text
type ClassificationResult struct {
	Injection bool   `json:"injection"`
	Jailbreak bool   `json:"jailbreak"`
	Label     Label  `json:"label"`
	Scores    Scores `json:"scores"`
}

// NewClassificationResult builds a result from a probability distribution
// laid out in Labels order. The top label is the first maximum.
func NewClassificationResult(probs []float64) (*ClassificationResult, error) {
	if len(probs) != NumLabels {
		return nil, fmt.Errorf("expected %d class probabilities, got %d", NumLabels, len(probs))
	}

	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("probability for %s is not finite", Labels[i])
		}
	}

	top := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[top] {
			top = i
		}
	}
	label := Labels[top]

	return &ClassificationResult{
		Injection: label == LabelInjection,
		Jailbreak: label == LabelJailbreak,
		Label:     label,
		Scores: Scores{
			Benign:    roundScore(probs[0]),
			Injection: roundScore(probs[1]),
			Jailbreak: roundScore(probs[2]),
		},
	}, nil
}

func roundScore(p float64) float64 {
	scale := math.Pow10(scorePrecision)
	return math.Round(p*scale) / scale
}
