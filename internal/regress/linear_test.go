// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package regress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearFit(t *testing.T) {
	tests := []struct {
		name          string
		x, y          []float64
		wantIntercept float64
		wantSlope     float64
	}{
		{"exact line", []float64{1, 2, 3, 4}, []float64{5, 7, 9, 11}, 3, 2},
		{"noisy", []float64{0, 1, 2}, []float64{1, 2, 4}, 5.0 / 6.0, 1.5},
		{"constant x", []float64{2, 2, 2}, []float64{1, 2, 6}, 3, 0},
		{"single point", []float64{4}, []float64{9}, 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Linear
			require.NoError(t, l.Fit(tt.x, tt.y))
			assert.InDelta(t, tt.wantIntercept, l.Intercept, 1e-9)
			assert.InDelta(t, tt.wantSlope, l.Slope, 1e-9)
		})
	}
}

func TestLinearPredict(t *testing.T) {
	got, err := FitPredict([]float64{1, 2, 3}, []float64{2, 4, 6})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 4, 6}, got, 1e-9)

	var l Linear
	_, err = l.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestLinearErrors(t *testing.T) {
	var l Linear
	assert.Error(t, l.Fit(nil, nil))
	assert.Error(t, l.Fit([]float64{1, 2}, []float64{1}))
}
