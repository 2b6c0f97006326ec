package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ressKim-io/prompt-guard/internal/domain/entity"
	"github.com/ressKim-io/prompt-guard/internal/domain/service"
	"github.com/ressKim-io/prompt-guard/internal/infrastructure/metrics"
)

// ClassifyUsecase defines the interface for prompt classification
type ClassifyUsecase interface {
	Classify(ctx context.Context, text string) (*entity.ClassificationResult, error)
	ClassifyBatch(ctx context.Context, texts []string) ([]*entity.ClassificationResult, error)
}

type classifyUsecase struct {
	gate    *ReadinessGate
	cache   service.ResultCache
	modelID string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewClassifyUsecase creates a new classify usecase. cache may be nil.
func NewClassifyUsecase(
	gate *ReadinessGate,
	cache service.ResultCache,
	modelID string,
	logger *zap.Logger,
	m *metrics.Metrics,
) ClassifyUsecase {
	return &classifyUsecase{
		gate:    gate,
		cache:   cache,
		modelID: modelID,
		logger:  logger,
		metrics: m,
	}
}

func (u *classifyUsecase) Classify(ctx context.Context, text string) (*entity.ClassificationResult, error) {
	model, err := u.gate.Model()
	if err != nil {
		return nil, err
	}
	return u.classify(ctx, model, text)
}

func (u *classifyUsecase) ClassifyBatch(ctx context.Context, texts []string) ([]*entity.ClassificationResult, error) {
	results := make([]*entity.ClassificationResult, 0, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	model, err := u.gate.Model()
	if err != nil {
		return nil, err
	}

	for i, text := range texts {
		result, err := u.classify(ctx, model, text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (u *classifyUsecase) classify(ctx context.Context, model service.SequenceClassifier, text string) (*entity.ClassificationResult, error) {
	var key string
	if u.cache != nil {
		key = u.cacheKey(text)
		if result, ok := u.cache.Get(ctx, key); ok {
			u.metrics.ObserveCacheLookup(true)
			return result, nil
		}
		u.metrics.ObserveCacheLookup(false)
	}

	start := time.Now()
	logits, err := model.Logits(text)
	if err != nil {
		u.metrics.ObserveInferenceError()
		u.logger.Error("Forward pass failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInferenceFailed, err)
	}

	result, err := entity.NewClassificationResult(Softmax(logits))
	if err != nil {
		u.metrics.ObserveInferenceError()
		return nil, fmt.Errorf("%w: %v", ErrInferenceFailed, err)
	}
	u.metrics.ObserveClassification(result.Label, time.Since(start))

	if u.cache != nil {
		u.cache.Set(ctx, key, result)
	}
	return result, nil
}

// cacheKey is the model id plus the sha256 of the text
func (u *classifyUsecase) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return u.modelID + ":" + hex.EncodeToString(sum[:])
}

// Softmax turns raw logits into a probability distribution
func Softmax(logits []float32) []float64 {
	probs := make([]float64, len(logits))
	if len(logits) == 0 {
		return probs
	}

	maxLogit := math.Inf(-1)
	for _, l := range logits {
		maxLogit = math.Max(maxLogit, float64(l))
	}

	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
