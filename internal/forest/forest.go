// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package forest implements the two tree ensembles used by the analyses:
// a bagged CART RandomForest regressor for demand forecasting and an
// IsolationForest for resource-usage anomaly detection.
//
// Trees are fitted concurrently. Each tree draws from its own generator
// seeded from (Seed, tree index), so a fitted ensemble depends only on the
// seed and the data, never on scheduling.
package forest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultSeed is the seed used when none is configured.
const DefaultSeed = 42

var (
	// ErrNoRows is returned when fitting on an empty matrix.
	ErrNoRows = errors.New("forest: no training rows")

	// ErrNotFitted is returned when predicting before Fit.
	ErrNotFitted = errors.New("forest: model not fitted")
)

// validate checks that X is a non-empty rectangular matrix of finite values
// and returns its width.
func validate(X [][]float64) (int, error) {
	if len(X) == 0 {
		return 0, ErrNoRows
	}
	width := len(X[0])
	if width == 0 {
		return 0, fmt.Errorf("forest: rows have no features")
	}
	for i, row := range X {
		if len(row) != width {
			return 0, fmt.Errorf("forest: row %d has %d features, want %d", i, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("forest: row %d feature %d is not finite", i, j)
			}
		}
	}
	return width, nil
}

// treeRand returns the generator for tree i of an ensemble seeded with seed.
func treeRand(seed uint64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(i)+1))
}

// fitParallel runs fit for every tree index using at most workers
// goroutines. It stops at the first error or when ctx is cancelled.
func fitParallel(ctx context.Context, n, workers int, fit func(i int) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fit(i)
		})
	}
	return g.Wait()
}
