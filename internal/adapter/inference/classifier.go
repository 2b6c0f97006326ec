package inference

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ressKim-io/prompt-guard/internal/domain/entity"
	"github.com/ressKim-io/prompt-guard/internal/domain/service"
)

// Artifact names expected in a model directory
const (
	ConfigFile    = "config.json"
	TokenizerFile = "tokenizer.json"
	GraphFile     = "model.onnx"
)

// ONNXClassifier runs a sequence classification model with ONNX Runtime.
// Forward passes are serialized on the underlying session.
type ONNXClassifier struct {
	mu      sync.Mutex
	session *session
	tok     *tokenizer
	order   []int
	closed  bool
}

// Logits tokenizes text and returns the model scores in entity.Labels order
func (c *ONNXClassifier) Logits(text string) ([]float32, error) {
	ids, mask := c.tok.encode(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("classifier is closed")
	}

	raw, err := c.session.run(ids, mask)
	if err != nil {
		return nil, err
	}
	return reorder(raw, c.order)
}

// Close releases the session and the tokenizer
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return errors.Join(c.session.close(), c.tok.close())
}

// Opener opens ONNXClassifiers from model directories
type Opener struct {
	RuntimeLibrary string
	MaxLength      int
	Threads        int
}

// Open loads config.json, tokenizer.json and model.onnx from dir
func (o Opener) Open(dir string) (service.SequenceClassifier, error) {
	if err := initRuntime(o.RuntimeLibrary); err != nil {
		return nil, err
	}

	cfg, err := readModelConfig(filepath.Join(dir, ConfigFile))
	if err != nil {
		return nil, err
	}
	order, err := cfg.labelOrder()
	if err != nil {
		return nil, err
	}

	maxLength := o.MaxLength
	if maxLength == 0 {
		maxLength = DefaultMaxLength
	}
	tok, err := newTokenizer(filepath.Join(dir, TokenizerFile), maxLength)
	if err != nil {
		return nil, err
	}

	sess, err := newSession(filepath.Join(dir, GraphFile), entity.NumLabels, o.Threads)
	if err != nil {
		_ = tok.close()
		return nil, fmt.Errorf("open %s: %w", GraphFile, err)
	}

	return &ONNXClassifier{session: sess, tok: tok, order: order}, nil
}
