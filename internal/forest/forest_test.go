// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package forest

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepData returns a single-feature step: y=0 for x<10, y=10 otherwise.
func stepData() ([][]float64, []float64) {
	X := make([][]float64, 20)
	y := make([]float64, 20)
	for i := range X {
		X[i] = []float64{float64(i)}
		if i >= 10 {
			y[i] = 10
		}
	}
	return X, y
}

func TestRandomForestLearnsStep(t *testing.T) {
	X, y := stepData()
	rf := NewRandomForest(RegressorOptions{Trees: 50})
	require.NoError(t, rf.Fit(context.Background(), X, y))

	pred, err := rf.Predict([][]float64{{2}, {17}})
	require.NoError(t, err)
	assert.InDelta(t, 0, pred[0], 2)
	assert.InDelta(t, 10, pred[1], 2)
}

func TestRandomForestDefaults(t *testing.T) {
	opts := NewRandomForest(RegressorOptions{}).Options()
	assert.Equal(t, 100, opts.Trees)
	assert.Equal(t, 2, opts.MinSamplesSplit)
	assert.Equal(t, 1, opts.MinSamplesLeaf)
	assert.Equal(t, uint64(DefaultSeed), opts.Seed)
}

func TestRandomForestDeterministic(t *testing.T) {
	X := make([][]float64, 60)
	y := make([]float64, 60)
	for i := range X {
		X[i] = []float64{float64(i % 7), float64(i % 5), float64(i)}
		y[i] = float64(i%7) * 1.5
		if i%5 == 0 {
			y[i] += 3
		}
	}
	query := [][]float64{{3, 0, 61}, {6, 2, 62}, {1, 4, 63}}

	var runs [][]float64
	for _, workers := range []int{1, 4, 1} {
		rf := NewRandomForest(RegressorOptions{Trees: 30, MinSamplesLeaf: 2, Seed: 7, Workers: workers})
		require.NoError(t, rf.Fit(context.Background(), X, y))
		pred, err := rf.Predict(query)
		require.NoError(t, err)
		runs = append(runs, pred)
	}
	assert.Equal(t, runs[0], runs[1])
	assert.Equal(t, runs[0], runs[2])

	other := NewRandomForest(RegressorOptions{Trees: 30, MinSamplesLeaf: 2, Seed: 8})
	require.NoError(t, other.Fit(context.Background(), X, y))
	pred, err := other.Predict(query)
	require.NoError(t, err)
	assert.NotEqual(t, runs[0], pred)
}

func TestRandomForestConstantTarget(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{3, 3, 3, 3}
	rf := NewRandomForest(RegressorOptions{Trees: 5})
	require.NoError(t, rf.Fit(context.Background(), X, y))

	pred, err := rf.Predict([][]float64{{100}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, pred[0])
}

func TestRandomForestMinSamplesLeaf(t *testing.T) {
	// With a leaf minimum of half the data, each tree can split at most once.
	X, y := stepData()
	rf := NewRandomForest(RegressorOptions{Trees: 1, MinSamplesLeaf: 10, MinSamplesSplit: 20})
	require.NoError(t, rf.Fit(context.Background(), X, y))
	assert.LessOrEqual(t, len(rf.trees[0].nodes), 3)
}

func TestRandomForestErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		X    [][]float64
		y    []float64
	}{
		{"no rows", nil, nil},
		{"no features", [][]float64{{}}, []float64{1}},
		{"ragged", [][]float64{{1, 2}, {1}}, []float64{1, 2}},
		{"target mismatch", [][]float64{{1}, {2}}, []float64{1}},
		{"nan feature", [][]float64{{math.NaN()}}, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRandomForest(RegressorOptions{Trees: 2}).Fit(ctx, tt.X, tt.y)
			assert.Error(t, err)
		})
	}

	_, err := NewRandomForest(RegressorOptions{}).Predict([][]float64{{1}})
	assert.ErrorIs(t, err, ErrNotFitted)

	rf := NewRandomForest(RegressorOptions{Trees: 2})
	require.NoError(t, rf.Fit(ctx, [][]float64{{1}, {2}}, []float64{1, 2}))
	_, err = rf.Predict([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestRandomForestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	X, y := stepData()
	err := NewRandomForest(RegressorOptions{Trees: 10}).Fit(ctx, X, y)
	assert.ErrorIs(t, err, context.Canceled)
}

// clusterWithOutlier returns a 10x10 grid near the origin plus one far point.
func clusterWithOutlier() [][]float64 {
	var X [][]float64
	for i := 0; i < 100; i++ {
		X = append(X, []float64{float64(i%10) * 0.1, float64(i/10) * 0.1})
	}
	return append(X, []float64{50, 50})
}

func TestIsolationForestFlagsOutlier(t *testing.T) {
	X := clusterWithOutlier()
	iso := NewIsolationForest(IsolationOptions{})
	labels, err := iso.FitPredict(context.Background(), X)
	require.NoError(t, err)
	require.Len(t, labels, len(X))

	assert.Equal(t, Outlier, labels[len(X)-1])

	outliers := 0
	for _, l := range labels {
		if l == Outlier {
			outliers++
		}
	}
	assert.GreaterOrEqual(t, outliers, 1)
	assert.LessOrEqual(t, outliers, 6)

	scores, err := iso.Scores([][]float64{{0.45, 0.45}, {50, 50}})
	require.NoError(t, err)
	assert.Greater(t, scores[1], scores[0])
	assert.Greater(t, scores[1], 0.5)
}

func TestIsolationForestDeterministic(t *testing.T) {
	X := clusterWithOutlier()
	a, err := NewIsolationForest(IsolationOptions{Seed: 3, Workers: 1}).FitPredict(context.Background(), X)
	require.NoError(t, err)
	b, err := NewIsolationForest(IsolationOptions{Seed: 3, Workers: 8}).FitPredict(context.Background(), X)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIsolationForestIdenticalRows(t *testing.T) {
	X := make([][]float64, 20)
	for i := range X {
		X[i] = []float64{1, 1}
	}
	labels, err := NewIsolationForest(IsolationOptions{}).FitPredict(context.Background(), X)
	require.NoError(t, err)
	for _, l := range labels {
		assert.Equal(t, Inlier, l)
	}
}

func TestIsolationForestSingleRow(t *testing.T) {
	labels, err := NewIsolationForest(IsolationOptions{}).FitPredict(context.Background(), [][]float64{{4, 2}})
	require.NoError(t, err)
	assert.Equal(t, []int{Inlier}, labels)
}

func TestIsolationForestErrors(t *testing.T) {
	_, err := NewIsolationForest(IsolationOptions{Contamination: 0.7}).FitPredict(context.Background(), [][]float64{{1}, {2}})
	assert.Error(t, err)

	_, err = NewIsolationForest(IsolationOptions{}).FitPredict(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = NewIsolationForest(IsolationOptions{}).Predict([][]float64{{1}})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestAveragePathLength(t *testing.T) {
	assert.Equal(t, 0.0, averagePathLength(0))
	assert.Equal(t, 0.0, averagePathLength(1))
	assert.Equal(t, 1.0, averagePathLength(2))
	assert.InDelta(t, 10.24477, averagePathLength(256), 1e-4)
}

func TestPercentile(t *testing.T) {
	v := []float64{4, 1, 3, 2}
	assert.Equal(t, 1.0, percentile(v, 0))
	assert.Equal(t, 2.5, percentile(v, 50))
	assert.Equal(t, 4.0, percentile(v, 100))
	assert.InDelta(t, 1.15, percentile(v, 5), 1e-9)
	assert.True(t, math.IsNaN(percentile(nil, 50)))
}
