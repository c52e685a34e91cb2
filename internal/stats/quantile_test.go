package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		v        float64
		expected int
	}{
		{"empty input", nil, 3, 0},
		{"single value is top bucket", []float64{0.2}, 0.2, 4},
		{"lowest of five", []float64{1, 2, 3, 4, 5}, 1, 0},
		{"highest of five", []float64{1, 2, 3, 4, 5}, 5, 4},
		{"middle of five", []float64{1, 2, 3, 4, 5}, 3, 2},
		{"second of five", []float64{1, 2, 3, 4, 5}, 2, 1},
		{"unsorted input", []float64{5, 1, 4, 2, 3}, 4, 3},
		{"below minimum keeps rank zero", []float64{1, 2, 3}, 0, 0},
		{"ties take the last index", []float64{1, 1, 1, 1}, 1, 4},
		{"two values low", []float64{0.1, 0.9}, 0.1, 0},
		{"two values high", []float64{0.1, 0.9}, 0.9, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Quantile(tt.values, tt.v))
		})
	}
}

func TestQuantile_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Quantile(values, 2)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestNormalizeToUnit(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeToUnit(nil, 1))
	assert.Equal(t, 1.0, NormalizeToUnit([]float64{2, 2, 2}, 2))
	assert.Equal(t, 0.0, NormalizeToUnit([]float64{1, 3, 5}, 1))
	assert.Equal(t, 0.5, NormalizeToUnit([]float64{1, 3, 5}, 3))
	assert.Equal(t, 1.0, NormalizeToUnit([]float64{1, 3, 5}, 9))
}

func TestClampAndMean(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 1.0, Clamp(2, 0, 1))
	assert.Equal(t, 0.3, Clamp(0.3, 0, 1))
	assert.Equal(t, 5, ClampInt(7, 1, 5))
	assert.Equal(t, 1, ClampInt(-2, 1, 5))
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 0.5, Mean([]float64{0.25, 0.75}), 1e-9)
}
