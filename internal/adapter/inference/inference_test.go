package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		ids      []int64
		max      int
		wantIDs  []int64
		wantMask []int64
	}{
		{
			name:     "shorter than limit",
			ids:      []int64{0, 10, 11, 2},
			max:      8,
			wantIDs:  []int64{0, 10, 11, 2},
			wantMask: []int64{1, 1, 1, 1},
		},
		{
			name:     "exactly at limit",
			ids:      []int64{0, 10, 11, 2},
			max:      4,
			wantIDs:  []int64{0, 10, 11, 2},
			wantMask: []int64{1, 1, 1, 1},
		},
		{
			name:     "keeps the closing special token",
			ids:      []int64{0, 10, 11, 12, 13, 2},
			max:      4,
			wantIDs:  []int64{0, 10, 11, 2},
			wantMask: []int64{1, 1, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, mask := truncate(tt.ids, onesLike(tt.ids), tt.max)

			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantMask, mask)
		})
	}
}

func TestTruncate_DoesNotMutateInput(t *testing.T) {
	ids := []int64{0, 10, 11, 12, 2}
	mask := onesLike(ids)

	_, _ = truncate(ids, mask, 3)

	assert.Equal(t, []int64{0, 10, 11, 12, 2}, ids)
}

func TestTruncate_LongInput(t *testing.T) {
	ids := make([]int64, 2000)
	ids[len(ids)-1] = 2

	got, mask := truncate(ids, onesLike(ids), DefaultMaxLength)

	assert.Len(t, got, DefaultMaxLength)
	assert.Len(t, mask, DefaultMaxLength)
	assert.Equal(t, int64(2), got[DefaultMaxLength-1])
}

func TestWiden(t *testing.T) {
	assert.Equal(t, []int64{0, 1, 250001}, widen([]uint32{0, 1, 250001}))
	assert.Empty(t, widen(nil))
}

func TestModelConfig_LabelOrder(t *testing.T) {
	tests := []struct {
		name     string
		id2label map[string]string
		want     []int
		wantErr  bool
	}{
		{
			name: "named labels in canonical order",
			id2label: map[string]string{
				"0": "BENIGN", "1": "INJECTION", "2": "JAILBREAK",
			},
			want: []int{0, 1, 2},
		},
		{
			name: "named labels in another order",
			id2label: map[string]string{
				"0": "jailbreak", "1": "benign", "2": "injection",
			},
			want: []int{1, 2, 0},
		},
		{
			name: "generic labels are positional",
			id2label: map[string]string{
				"0": "LABEL_0", "1": "LABEL_1", "2": "LABEL_2",
			},
			want: []int{0, 1, 2},
		},
		{
			name: "missing id2label is positional",
			want: []int{0, 1, 2},
		},
		{
			name:     "two class head",
			id2label: map[string]string{"0": "LABEL_0", "1": "LABEL_1"},
			wantErr:  true,
		},
		{
			name: "bad key",
			id2label: map[string]string{
				"0": "BENIGN", "x": "INJECTION", "2": "JAILBREAK",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &modelConfig{ID2Label: tt.id2label}

			got, err := cfg.labelOrder()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadModelConfig(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFile)
		require.NoError(t, os.WriteFile(path, []byte(`{"model_type":"deberta-v2","id2label":{"0":"BENIGN","1":"INJECTION","2":"JAILBREAK"}}`), 0o644))

		cfg, err := readModelConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "INJECTION", cfg.ID2Label["1"])
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFile)
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

		_, err := readModelConfig(path)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "parse model config")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readModelConfig(filepath.Join(t.TempDir(), ConfigFile))

		assert.Error(t, err)
	})
}

func TestReorder(t *testing.T) {
	got, err := reorder([]float32{0.1, 0.2, 0.3}, []int{2, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.3, 0.1, 0.2}, got)

	_, err = reorder([]float32{0.1, 0.2}, []int{0, 1, 2})
	assert.Error(t, err)
}

func TestInputOrder(t *testing.T) {
	t.Run("bert style inputs", func(t *testing.T) {
		names, withTypes, err := inputOrder([]ort.InputOutputInfo{
			{Name: "token_type_ids"}, {Name: "input_ids"}, {Name: "attention_mask"},
		})

		require.NoError(t, err)
		assert.True(t, withTypes)
		assert.Equal(t, []string{inputIDs, attentionMask, tokenTypeIDs}, names)
	})

	t.Run("deberta style inputs", func(t *testing.T) {
		names, withTypes, err := inputOrder([]ort.InputOutputInfo{
			{Name: "input_ids"}, {Name: "attention_mask"},
		})

		require.NoError(t, err)
		assert.False(t, withTypes)
		assert.Equal(t, []string{inputIDs, attentionMask}, names)
	})

	t.Run("missing attention mask", func(t *testing.T) {
		_, _, err := inputOrder([]ort.InputOutputInfo{{Name: "input_ids"}})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), attentionMask)
	})
}

func TestCheckOutputShape(t *testing.T) {
	assert.NoError(t, checkOutputShape(ort.NewShape(-1, 3), 3))
	assert.NoError(t, checkOutputShape(ort.NewShape(1, -1), 3))
	assert.Error(t, checkOutputShape(ort.NewShape(-1, 2), 3))
	assert.Error(t, checkOutputShape(ort.NewShape(-1, -1, 3), 3))
}
