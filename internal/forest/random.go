// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package forest

import (
	"context"
	"fmt"
)

// RegressorOptions configures a RandomForest. Zero values select the
// defaults noted on each field.
type RegressorOptions struct {
	// Trees is the ensemble size (default 100).
	Trees int

	// MinSamplesSplit is the minimum node size eligible for a split (default 2).
	MinSamplesSplit int

	// MinSamplesLeaf is the minimum size of each child of a split (default 1).
	MinSamplesLeaf int

	// MaxDepth limits tree depth; 0 means unlimited.
	MaxDepth int

	// Seed drives bootstrap sampling (default 42).
	Seed uint64

	// Workers bounds concurrent tree fitting (default GOMAXPROCS).
	Workers int
}

func (o RegressorOptions) withDefaults() RegressorOptions {
	if o.Trees <= 0 {
		o.Trees = 100
	}
	if o.MinSamplesSplit < 2 {
		o.MinSamplesSplit = 2
	}
	if o.MinSamplesLeaf < 1 {
		o.MinSamplesLeaf = 1
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	return o
}

// RandomForest is a bagged ensemble of regression trees.
type RandomForest struct {
	opts  RegressorOptions
	width int
	trees []*regressionTree
}

// NewRandomForest returns an unfitted regressor.
func NewRandomForest(opts RegressorOptions) *RandomForest {
	return &RandomForest{opts: opts.withDefaults()}
}

// Options returns the effective options after defaults.
func (f *RandomForest) Options() RegressorOptions {
	return f.opts
}

// Fit trains the ensemble on X (rows of features) and targets y. Each tree
// sees a bootstrap sample of len(X) rows drawn with replacement.
func (f *RandomForest) Fit(ctx context.Context, X [][]float64, y []float64) error {
	width, err := validate(X)
	if err != nil {
		return err
	}
	if len(y) != len(X) {
		return fmt.Errorf("forest: %d rows but %d targets", len(X), len(y))
	}

	params := treeParams{
		minSamplesSplit: f.opts.MinSamplesSplit,
		minSamplesLeaf:  f.opts.MinSamplesLeaf,
		maxDepth:        f.opts.MaxDepth,
	}

	trees := make([]*regressionTree, f.opts.Trees)
	err = fitParallel(ctx, f.opts.Trees, f.opts.Workers, func(i int) error {
		rng := treeRand(f.opts.Seed, i)
		sample := make([]int, len(X))
		for j := range sample {
			sample[j] = rng.IntN(len(X))
		}
		trees[i] = fitRegressionTree(X, y, sample, params)
		return nil
	})
	if err != nil {
		return err
	}

	f.width = width
	f.trees = trees
	return nil
}

// Predict returns the mean tree prediction for each row of X.
func (f *RandomForest) Predict(X [][]float64) ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != f.width {
			return nil, fmt.Errorf("forest: row %d has %d features, want %d", i, len(row), f.width)
		}
		var sum float64
		for _, t := range f.trees {
			sum += t.predict(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}
