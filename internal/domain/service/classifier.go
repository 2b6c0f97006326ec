package service

import (
	"context"

	"github.com/ressKim-io/prompt-guard/internal/domain/entity"
)

// SequenceClassifier is a loaded text classification model
type SequenceClassifier interface {
	// Logits runs one forward pass and returns the raw per-class scores
	Logits(text string) ([]float32, error)

	// Close releases the runtime resources held by the model
	Close() error
}

// ModelOpener opens a SequenceClassifier from a directory of model artifacts
type ModelOpener interface {
	Open(dir string) (SequenceClassifier, error)
}

// ModelFetcher downloads a single model artifact file from a remote model hub
type ModelFetcher interface {
	Fetch(ctx context.Context, modelID, file, dst string) error
}

// ResultCache memoizes classification results. Implementations treat
// backend failures as misses.
type ResultCache interface {
	Get(ctx context.Context, key string) (*entity.ClassificationResult, bool)
	Set(ctx context.Context, key string, result *entity.ClassificationResult)
}
