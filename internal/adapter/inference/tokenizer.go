package inference

import (
	"fmt"

	"github.com/daulet/tokenizers"
)

// DefaultMaxLength is the longest sequence, special tokens included, fed to the model
const DefaultMaxLength = 512

// tokenizer encodes text with a HuggingFace tokenizer.json
type tokenizer struct {
	tk        *tokenizers.Tokenizer
	maxLength int
}

func newTokenizer(path string, maxLength int) (*tokenizer, error) {
	if maxLength < 2 {
		return nil, fmt.Errorf("max length must be at least 2, got %d", maxLength)
	}
	tk, err := tokenizers.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return &tokenizer{tk: tk, maxLength: maxLength}, nil
}

// encode returns input ids and attention mask for one text, truncated to
// maxLength. A single sequence needs no padding.
func (t *tokenizer) encode(text string) (ids, mask []int64) {
	enc := t.tk.EncodeWithOptions(text, true, tokenizers.WithReturnAttentionMask())
	ids, mask = widen(enc.IDs), widen(enc.AttentionMask)
	if len(mask) != len(ids) {
		mask = onesLike(ids)
	}
	return truncate(ids, mask, t.maxLength)
}

func (t *tokenizer) close() error {
	return t.tk.Close()
}

// truncate cuts a sequence to maxLength while keeping its final special token
func truncate(ids, mask []int64, maxLength int) ([]int64, []int64) {
	if len(ids) <= maxLength {
		return ids, mask
	}
	last := len(ids) - 1
	ids = append(ids[:maxLength-1:maxLength-1], ids[last])
	mask = append(mask[:maxLength-1:maxLength-1], mask[last])
	return ids, mask
}

func widen(in []uint32) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func onesLike(ids []int64) []int64 {
	mask := make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}
	return mask
}
