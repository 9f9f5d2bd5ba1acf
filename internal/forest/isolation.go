// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package forest

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// Labels returned by IsolationForest.Predict.
const (
	Inlier  = 1
	Outlier = -1
)

const eulerGamma = 0.5772156649

// IsolationOptions configures an IsolationForest. Zero values select the
// defaults noted on each field.
type IsolationOptions struct {
	// Trees is the ensemble size (default 100).
	Trees int

	// MaxSamples is the subsample size per tree (default min(256, rows)).
	MaxSamples int

	// Contamination is the expected share of outliers, in (0, 0.5] (default 0.05).
	Contamination float64

	// Seed drives subsampling and splits (default 42).
	Seed uint64

	// Workers bounds concurrent tree fitting (default GOMAXPROCS).
	Workers int
}

func (o IsolationOptions) withDefaults() IsolationOptions {
	if o.Trees <= 0 {
		o.Trees = 100
	}
	if o.Contamination == 0 {
		o.Contamination = 0.05
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	return o
}

type isoNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	size      int
}

type isolationTree struct {
	nodes []isoNode
}

// IsolationForest scores how easily each point is isolated by random
// axis-aligned splits. Short average path lengths mean anomalies.
type IsolationForest struct {
	opts       IsolationOptions
	width      int
	maxSamples int
	trees      []*isolationTree
	offset     float64
}

// NewIsolationForest returns an unfitted detector.
func NewIsolationForest(opts IsolationOptions) *IsolationForest {
	return &IsolationForest{opts: opts.withDefaults()}
}

// Fit builds the isolation trees and sets the decision offset so that the
// Contamination share of the training rows falls below it.
func (f *IsolationForest) Fit(ctx context.Context, X [][]float64) error {
	width, err := validate(X)
	if err != nil {
		return err
	}
	if f.opts.Contamination <= 0 || f.opts.Contamination > 0.5 {
		return fmt.Errorf("forest: contamination %v outside (0, 0.5]", f.opts.Contamination)
	}

	maxSamples := f.opts.MaxSamples
	if maxSamples <= 0 {
		maxSamples = 256
	}
	if maxSamples > len(X) {
		maxSamples = len(X)
	}
	depthLimit := int(math.Ceil(math.Log2(math.Max(float64(maxSamples), 2))))

	trees := make([]*isolationTree, f.opts.Trees)
	err = fitParallel(ctx, f.opts.Trees, f.opts.Workers, func(i int) error {
		rng := treeRand(f.opts.Seed, i)
		sample := rng.Perm(len(X))[:maxSamples]
		t := &isolationTree{}
		t.grow(X, sample, rng, 0, depthLimit)
		trees[i] = t
		return nil
	})
	if err != nil {
		return err
	}

	f.width = width
	f.maxSamples = maxSamples
	f.trees = trees

	scores := f.scoreSamples(X)
	f.offset = percentile(scores, 100*f.opts.Contamination)
	return nil
}

func (t *isolationTree) grow(X [][]float64, idx []int, rng *rand.Rand, depth, limit int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, isoNode{left: leaf, right: leaf, size: len(idx)})
	if depth >= limit || len(idx) <= 1 {
		return id
	}

	// Only features that vary within the node can isolate anything.
	var candidates []int
	lo := make([]float64, len(X[idx[0]]))
	hi := make([]float64, len(X[idx[0]]))
	for f := range lo {
		lo[f], hi[f] = math.Inf(1), math.Inf(-1)
		for _, i := range idx {
			lo[f] = math.Min(lo[f], X[i][f])
			hi[f] = math.Max(hi[f], X[i][f])
		}
		if hi[f] > lo[f] {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return id
	}

	feature := candidates[rng.IntN(len(candidates))]
	threshold := lo[feature] + rng.Float64()*(hi[feature]-lo[feature])

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return id
	}

	l := t.grow(X, left, rng, depth+1, limit)
	r := t.grow(X, right, rng, depth+1, limit)
	t.nodes[id].feature = feature
	t.nodes[id].threshold = threshold
	t.nodes[id].left = l
	t.nodes[id].right = r
	return id
}

func (t *isolationTree) pathLength(x []float64) float64 {
	n, depth := 0, 0
	for t.nodes[n].left != leaf {
		if x[t.nodes[n].feature] <= t.nodes[n].threshold {
			n = t.nodes[n].left
		} else {
			n = t.nodes[n].right
		}
		depth++
	}
	return float64(depth) + averagePathLength(t.nodes[n].size)
}

// averagePathLength is c(n), the expected path length of an unsuccessful
// binary-search-tree lookup among n points.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

// Scores returns the anomaly score s(x) = 2^(-E[h(x)]/c(maxSamples)) for
// each row. Scores near 1 are anomalous, well below 0.5 normal.
func (f *IsolationForest) Scores(X [][]float64) ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, ErrNotFitted
	}
	for i, row := range X {
		if len(row) != f.width {
			return nil, fmt.Errorf("forest: row %d has %d features, want %d", i, len(row), f.width)
		}
	}
	neg := f.scoreSamples(X)
	for i := range neg {
		neg[i] = -neg[i]
	}
	return neg, nil
}

// scoreSamples returns -s(x) per row so that lower means more anomalous.
func (f *IsolationForest) scoreSamples(X [][]float64) []float64 {
	denom := averagePathLength(f.maxSamples)
	out := make([]float64, len(X))
	for i, row := range X {
		if denom == 0 {
			out[i] = -0.5
			continue
		}
		var total float64
		for _, t := range f.trees {
			total += t.pathLength(row)
		}
		avg := total / float64(len(f.trees))
		out[i] = -math.Pow(2, -avg/denom)
	}
	return out
}

// Predict labels each row Outlier (-1) or Inlier (1).
func (f *IsolationForest) Predict(X [][]float64) ([]int, error) {
	if len(f.trees) == 0 {
		return nil, ErrNotFitted
	}
	for i, row := range X {
		if len(row) != f.width {
			return nil, fmt.Errorf("forest: row %d has %d features, want %d", i, len(row), f.width)
		}
	}
	scores := f.scoreSamples(X)
	labels := make([]int, len(X))
	for i, s := range scores {
		if s < f.offset {
			labels[i] = Outlier
		} else {
			labels[i] = Inlier
		}
	}
	return labels, nil
}

// FitPredict fits on X and labels the same rows.
func (f *IsolationForest) FitPredict(ctx context.Context, X [][]float64) ([]int, error) {
	if err := f.Fit(ctx, X); err != nil {
		return nil, err
	}
	return f.Predict(X)
}

// percentile returns the p-th percentile of values using linear
// interpolation between closest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
