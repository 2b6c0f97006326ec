package inference

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	inputIDs      = "input_ids"
	attentionMask = "attention_mask"
	tokenTypeIDs  = "token_type_ids"
)

// session wraps a DynamicAdvancedSession for a sequence classification head
// with output shape [batch, numLabels].
type session struct {
	ort        *ort.DynamicAdvancedSession
	withTypes  bool
	outputName string
	numLabels  int64
}

// newSession loads the graph and checks its inputs and output against the
// expected label count.
func newSession(modelPath string, numLabels int, threads int) (*session, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("read model info: %w", err)
	}

	inputNames, withTypes, err := inputOrder(inputs)
	if err != nil {
		return nil, err
	}

	if len(outputs) == 0 {
		return nil, fmt.Errorf("model has no outputs")
	}
	outputName := outputs[0].Name
	if err := checkOutputShape(outputs[0].Dimensions, numLabels); err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer opts.Destroy()
	if threads > 0 {
		_ = opts.SetIntraOpNumThreads(threads)
	}
	_ = opts.SetInterOpNumThreads(1)

	s, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputName}, opts)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &session{
		ort:        s,
		withTypes:  withTypes,
		outputName: outputName,
		numLabels:  int64(numLabels),
	}, nil
}

// inputOrder returns the input names in the order run passes them.
// token_type_ids is optional since DeBERTa style exports drop it.
func inputOrder(inputs []ort.InputOutputInfo) ([]string, bool, error) {
	names := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		names[in.Name] = true
	}
	for _, required := range []string{inputIDs, attentionMask} {
		if !names[required] {
			return nil, false, fmt.Errorf("model missing required input %q", required)
		}
	}
	if names[tokenTypeIDs] {
		return []string{inputIDs, attentionMask, tokenTypeIDs}, true, nil
	}
	return []string{inputIDs, attentionMask}, false, nil
}

// checkOutputShape accepts [batch, numLabels] where either dimension may be
// dynamic (-1).
func checkOutputShape(dims ort.Shape, numLabels int) error {
	if len(dims) != 2 {
		return fmt.Errorf("expected 2D logits output, got %v", dims)
	}
	if dims[1] > 0 && dims[1] != int64(numLabels) {
		return fmt.Errorf("model has %d output classes, expected %d", dims[1], numLabels)
	}
	return nil
}

// run performs one forward pass over a single sequence and returns its logits
func (s *session) run(ids, mask []int64) ([]float32, error) {
	seqLen := int64(len(ids))
	shape := ort.NewShape(1, seqLen)

	tIDs, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer tIDs.Destroy()

	tMask, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer tMask.Destroy()

	inputs := []ort.Value{tIDs, tMask}
	if s.withTypes {
		tTypes, err := ort.NewTensor(shape, make([]int64, seqLen))
		if err != nil {
			return nil, fmt.Errorf("create token_type_ids tensor: %w", err)
		}
		defer tTypes.Destroy()
		inputs = append(inputs, tTypes)
	}

	tOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, s.numLabels))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := s.ort.Run(inputs, []ort.Value{tOut}); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	src := tOut.GetData()
	logits := make([]float32, len(src))
	copy(logits, src)
	return logits, nil
}

func (s *session) close() error {
	return s.ort.Destroy()
}
