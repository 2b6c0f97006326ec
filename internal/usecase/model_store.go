package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ressKim-io/prompt-guard/internal/domain/entity"
	"github.com/ressKim-io/prompt-guard/internal/domain/service"
	"github.com/ressKim-io/prompt-guard/internal/infrastructure/metrics"
)

// Artifact file names inside the cache directory. The marker is written last,
// so its presence means every other artifact is in place.
const (
	MarkerFile    = "config.json"
	TokenizerFile = "tokenizer.json"
	GraphFile     = "model.onnx"
)

// stagingPrefix names the per-download directories inside the cache directory
const stagingPrefix = ".download-"

// ModelStoreConfig holds what the store needs to resolve a model
type ModelStoreConfig struct {
	ModelID    string
	CacheDir   string
	Token      string
	RemoteONNX string
}

type artifact struct {
	remote string
	local  string
}

// ModelStore resolves the configured model from the local cache or the hub,
// opens it and publishes the outcome on the readiness gate.
type ModelStore struct {
	cfg     ModelStoreConfig
	fetcher service.ModelFetcher
	opener  service.ModelOpener
	gate    *ReadinessGate
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewModelStore creates a new model store
func NewModelStore(
	cfg ModelStoreConfig,
	fetcher service.ModelFetcher,
	opener service.ModelOpener,
	gate *ReadinessGate,
	logger *zap.Logger,
	m *metrics.Metrics,
) *ModelStore {
	if cfg.RemoteONNX == "" {
		cfg.RemoteONNX = GraphFile
	}
	return &ModelStore{
		cfg:     cfg,
		fetcher: fetcher,
		opener:  opener,
		gate:    gate,
		logger:  logger,
		metrics: m,
	}
}

// Start runs Load in a background goroutine. The returned channel is closed
// once the gate has transitioned.
func (s *ModelStore) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Load(ctx)
	}()
	return done
}

// Load resolves and opens the model, then flips the readiness gate. Every
// failure, panics from the runtime included, ends up on the gate; the
// returned error is informational.
func (s *ModelStore) Load(ctx context.Context) error {
	start := time.Now()
	s.logger.Info("Loading model",
		zap.String("model", s.cfg.ModelID),
		zap.String("cache_dir", s.cfg.CacheDir),
	)

	model, err := s.safeResolve(ctx)
	s.metrics.ObserveLoad(time.Since(start))
	if err != nil {
		s.gate.MarkFailed(err)
		s.metrics.SetPhase(entity.ModelPhaseFailed)
		s.logger.Error("Failed to load model", zap.Error(err))
		return err
	}

	if !s.gate.MarkReady(model) {
		_ = model.Close()
		return errors.New("model store: gate already transitioned")
	}
	s.metrics.SetPhase(entity.ModelPhaseReady)
	s.logger.Info("Model loaded and ready for inference", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *ModelStore) safeResolve(ctx context.Context) (model service.SequenceClassifier, err error) {
	defer func() {
		if r := recover(); r != nil {
			model = nil
			err = &LoadError{Op: "load model", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return s.resolve(ctx)
}

func (s *ModelStore) resolve(ctx context.Context) (service.SequenceClassifier, error) {
	if err := os.MkdirAll(s.cfg.CacheDir, 0o755); err != nil {
		return nil, &LoadError{Op: "create cache dir", Err: err}
	}

	cached, err := s.Cached()
	if err != nil {
		return nil, &LoadError{Op: "inspect cache", Err: err}
	}

	if cached {
		s.logger.Info("Model found in cache, loading from disk")
	} else {
		if s.cfg.Token == "" {
			return nil, ErrTokenMissing
		}
		s.logger.Info("Model not cached, downloading from hub")
		s.removeStaleStaging()
		if err := s.download(ctx); err != nil {
			return nil, err
		}
		s.logger.Info("Model cached successfully")
	}

	model, err := s.opener.Open(s.cfg.CacheDir)
	if err != nil {
		return nil, &LoadError{Op: "open model", Err: err}
	}
	return model, nil
}

// Cached reports whether the cache marker file is present
func (s *ModelStore) Cached() (bool, error) {
	_, err := os.Stat(filepath.Join(s.cfg.CacheDir, MarkerFile))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *ModelStore) artifacts() []artifact {
	return []artifact{
		{remote: TokenizerFile, local: TokenizerFile},
		{remote: s.cfg.RemoteONNX, local: GraphFile},
		{remote: MarkerFile, local: MarkerFile},
	}
}

// removeStaleStaging deletes staging directories left by a loader that died
// mid-download. Failures are logged and do not stop the load.
func (s *ModelStore) removeStaleStaging() {
	matches, err := filepath.Glob(filepath.Join(s.cfg.CacheDir, stagingPrefix+"*"))
	if err != nil {
		s.logger.Warn("Failed to list stale downloads", zap.Error(err))
		return
	}
	for _, dir := range matches {
		s.logger.Warn("Removing stale download", zap.String("path", dir))
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("Failed to remove stale download", zap.String("path", dir), zap.Error(err))
		}
	}
}

// download fetches every artifact into a staging directory and then moves
// them into the cache directory, marker last.
func (s *ModelStore) download(ctx context.Context) error {
	staging := filepath.Join(s.cfg.CacheDir, stagingPrefix+uuid.NewString())
	if err := os.Mkdir(staging, 0o755); err != nil {
		return &LoadError{Op: "create staging dir", Err: err}
	}
	defer os.RemoveAll(staging)

	for _, a := range s.artifacts() {
		s.logger.Info("Downloading artifact", zap.String("file", a.remote))
		if err := s.fetcher.Fetch(ctx, s.cfg.ModelID, a.remote, filepath.Join(staging, a.local)); err != nil {
			return &LoadError{Op: "download " + a.remote, Err: err}
		}
	}

	s.logger.Info("Saving model to cache")
	for _, a := range s.artifacts() {
		if err := os.Rename(filepath.Join(staging, a.local), filepath.Join(s.cfg.CacheDir, a.local)); err != nil {
			return &LoadError{Op: "persist " + a.local, Err: err}
		}
	}
	return nil
}
