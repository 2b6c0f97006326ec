package inference

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ressKim-io/prompt-guard/internal/domain/entity"
)

// modelConfig is the subset of a HuggingFace config.json read at load time
type modelConfig struct {
	ID2Label map[string]string `json:"id2label"`
}

func readModelConfig(path string) (*modelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model config: %w", err)
	}
	var cfg modelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse model config: %w", err)
	}
	return &cfg, nil
}

// labelOrder returns, for each entity label in entity.Labels order, the
// index of the model output that carries it. When id2label names the
// classes BENIGN/INJECTION/JAILBREAK they are matched by name; generic names
// such as LABEL_0 fall back to positional order.
func (c *modelConfig) labelOrder() ([]int, error) {
	if n := len(c.ID2Label); n != 0 && n != entity.NumLabels {
		return nil, fmt.Errorf("model declares %d labels, expected %d", n, entity.NumLabels)
	}

	order := make([]int, entity.NumLabels)
	for i := range order {
		order[i] = i
	}
	if len(c.ID2Label) == 0 {
		return order, nil
	}

	byName := make(map[entity.Label]int, entity.NumLabels)
	for key, name := range c.ID2Label {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= entity.NumLabels {
			return nil, fmt.Errorf("invalid id2label key %q", key)
		}
		byName[entity.Label(strings.ToUpper(name))] = idx
	}

	named := make([]int, entity.NumLabels)
	for i, label := range entity.Labels {
		idx, ok := byName[label]
		if !ok {
			return order, nil
		}
		named[i] = idx
	}
	return named, nil
}

// reorder maps raw model logits into entity.Labels order
func reorder(logits []float32, order []int) ([]float32, error) {
	if len(logits) != len(order) {
		return nil, fmt.Errorf("model returned %d logits, expected %d", len(logits), len(order))
	}
	out := make([]float32, len(order))
	for i, idx := range order {
		out[i] = logits[idx]
	}
	return out, nil
}
