// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package regress fits the single-feature least-squares baseline used to
// derive expected resource consumption from order volume.
package regress

import (
	"errors"
	"fmt"
)

// ErrNotFitted is returned when predicting before Fit.
var ErrNotFitted = errors.New("regress: model not fitted")

// Linear is an ordinary least squares fit y = Intercept + Slope*x.
type Linear struct {
	Intercept float64 `json:"intercept" yaml:"intercept"`
	Slope     float64 `json:"slope" yaml:"slope"`
	fitted    bool
}

// Fit estimates the intercept and slope. When x has zero variance the
// slope is zero and the model predicts mean(y).
func (l *Linear) Fit(x, y []float64) error {
	if len(x) == 0 {
		return errors.New("regress: no observations")
	}
	if len(x) != len(y) {
		return fmt.Errorf("regress: %d observations but %d targets", len(x), len(y))
	}

	n := float64(len(x))
	var sx, sy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
	}
	mx, my := sx/n, sy/n

	var sxx, sxy float64
	for i := range x {
		dx := x[i] - mx
		sxx += dx * dx
		sxy += dx * (y[i] - my)
	}

	l.Slope = 0
	if sxx > 0 {
		l.Slope = sxy / sxx
	}
	l.Intercept = my - l.Slope*mx
	l.fitted = true
	return nil
}

// Predict returns the fitted value for each x.
func (l *Linear) Predict(x []float64) ([]float64, error) {
	if !l.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = l.Intercept + l.Slope*v
	}
	return out, nil
}

// FitPredict fits on (x, y) and returns the in-sample fitted values.
func FitPredict(x, y []float64) ([]float64, error) {
	var l Linear
	if err := l.Fit(x, y); err != nil {
		return nil, err
	}
	return l.Predict(x)
}
