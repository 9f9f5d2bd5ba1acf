// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package forecast produces Random Forest demand forecasts: a calendar-feature
// forecast per laundry for peak and low-demand planning, and a lag/rolling
// feature forecast per customer for inventory planning.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pdiddy/laundry-analytics/internal/dataset"
	"github.com/pdiddy/laundry-analytics/internal/features"
	"github.com/pdiddy/laundry-analytics/internal/forest"
	"github.com/pdiddy/laundry-analytics/pkg/types"
)

// ErrNoData is returned when the subject has no orders.
var ErrNoData = errors.New("no data found")

const (
	// laundryBand is the fixed half-width of the laundry forecast band.
	laundryBand = 1.5

	customerLowerFactor = 0.7
	customerUpperFactor = 1.3

	// trainShare is the leading share of customer days used for training.
	trainShare = 0.8
)

// Default thresholds and horizons.
const (
	DefaultPeakThreshold      = 5
	DefaultAlertThreshold     = 8
	DefaultLowDemandThreshold = 3
	DefaultPeakDays           = 30
	DefaultLowDemandDays      = 7
	DefaultCustomerDays       = 90
)

// Options configures a forecast run.
type Options struct {
	// Days is the horizon length. Zero selects the default for the forecast kind.
	Days int

	// Forest configures the regressor. Zero values select the defaults for
	// the forecast kind.
	Forest forest.RegressorOptions

	// Now stamps GeneratedAt; nil uses time.Now.
	Now func() time.Time
}

// ForestOptions converts configured hyperparameters into regressor options.
func ForestOptions(c types.ForestConfig) forest.RegressorOptions {
	return forest.RegressorOptions{
		Trees:           c.Trees,
		MinSamplesSplit: c.MinSamplesSplit,
		MinSamplesLeaf:  c.MinSamplesLeaf,
		Seed:            c.Seed,
	}
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Laundry forecasts daily order counts for laundryID. It trains on the days
// that had orders, with day-of-year, day-of-week and ISO-week features, and
// forecasts opts.Days consecutive days after the last observed day.
func Laundry(ctx context.Context, orders []types.Order, laundryID string, opts Options) (*types.Forecast, error) {
	daily := dataset.DailyCounts(dataset.ByLaundry(orders, laundryID))
	if len(daily) == 0 {
		return nil, fmt.Errorf("laundry %s: %w", laundryID, ErrNoData)
	}
	if opts.Days <= 0 {
		opts.Days = DefaultPeakDays
	}
	if opts.Forest.Trees == 0 {
		opts.Forest.Trees = 100
	}

	X, y := features.Calendar(daily)
	rf := forest.NewRandomForest(opts.Forest)
	if err := rf.Fit(ctx, X, y); err != nil {
		return nil, fmt.Errorf("fitting laundry %s model: %w", laundryID, err)
	}

	last := daily[len(daily)-1].Date
	dates := futureDates(last, opts.Days)
	future := make([][]float64, len(dates))
	for i, d := range dates {
		future[i] = features.CalendarRow(d)
	}
	pred, err := rf.Predict(future)
	if err != nil {
		return nil, fmt.Errorf("predicting laundry %s: %w", laundryID, err)
	}

	f := &types.Forecast{
		Subject:     laundryID,
		History:     daily,
		GeneratedAt: opts.now(),
	}
	for i, d := range dates {
		f.Points = append(f.Points, types.ForecastPoint{
			Date:       d,
			Yhat:       pred[i],
			Lower:      pred[i] - laundryBand,
			Upper:      pred[i] + laundryBand,
			IsForecast: true,
		})
	}
	return f, nil
}

// Customer forecasts daily orders for tenantID over a gap-filled daily
// series. The model trains on the leading 80% of days; future rows reuse
// the last observed lags and rolling means. Forecast values are clamped at
// zero with a 0.7x/1.3x band.
func Customer(ctx context.Context, orders []types.Order, tenantID string, opts Options) (*types.Forecast, error) {
	frame := features.NewEnhanced(dataset.ByTenant(orders, tenantID))
	if frame.Len() == 0 {
		return nil, fmt.Errorf("customer %s: %w", tenantID, ErrNoData)
	}
	if opts.Days <= 0 {
		opts.Days = DefaultCustomerDays
	}
	if opts.Forest.Trees == 0 {
		opts.Forest = forest.RegressorOptions{
			Trees:           200,
			MinSamplesSplit: 5,
			MinSamplesLeaf:  2,
			Seed:            opts.Forest.Seed,
			Workers:         opts.Forest.Workers,
		}
	}

	X, y := frame.Matrix()
	train := int(float64(len(X)) * trainShare)
	if train < 1 {
		train = 1
	}

	rf := forest.NewRandomForest(opts.Forest)
	if err := rf.Fit(ctx, X[:train], y[:train]); err != nil {
		return nil, fmt.Errorf("fitting customer %s model: %w", tenantID, err)
	}

	dates := futureDates(frame.End(), opts.Days)
	future := make([][]float64, len(dates))
	for i, d := range dates {
		future[i] = frame.FutureRow(d)
	}
	pred, err := rf.Predict(future)
	if err != nil {
		return nil, fmt.Errorf("predicting customer %s: %w", tenantID, err)
	}

	f := &types.Forecast{
		Subject:     tenantID,
		GeneratedAt: opts.now(),
	}
	for _, r := range frame.Rows {
		f.History = append(f.History, types.DailyCount{Date: r.Date, Count: r.Orders})
	}
	for i, d := range dates {
		f.Points = append(f.Points, types.ForecastPoint{
			Date:       d,
			Yhat:       math.Max(0, pred[i]),
			Lower:      math.Max(0, pred[i]*customerLowerFactor),
			Upper:      math.Max(0, pred[i]*customerUpperFactor),
			IsForecast: true,
		})
	}
	return f, nil
}

func futureDates(last time.Time, days int) []time.Time {
	out := make([]time.Time, days)
	for i := range out {
		out[i] = types.Day(last).AddDate(0, 0, i+1)
	}
	return out
}

// PeakDays returns the forecast points with Yhat above threshold.
func PeakDays(f *types.Forecast, threshold float64) []types.ForecastPoint {
	var out []types.ForecastPoint
	for _, p := range f.Points {
		if p.Yhat > threshold {
			out = append(out, p)
		}
	}
	return out
}

// LowDemandDays returns the forecast points with Yhat below threshold.
func LowDemandDays(f *types.Forecast, threshold float64) []types.ForecastPoint {
	var out []types.ForecastPoint
	for _, p := range f.Points {
		if p.Yhat < threshold {
			out = append(out, p)
		}
	}
	return out
}

// Summarize aggregates the forecast horizon. The zero summary is returned
// for a forecast without points.
func Summarize(f *types.Forecast) types.ForecastSummary {
	var s types.ForecastSummary
	if len(f.Points) == 0 {
		return s
	}
	s.Start = f.Points[0].Date
	s.End = f.Points[len(f.Points)-1].Date
	s.Days = len(f.Points)
	s.MaxYhat = math.Inf(-1)

	var lower, upper float64
	for _, p := range f.Points {
		s.TotalYhat += p.Yhat
		lower += p.Lower
		upper += p.Upper
		s.MaxYhat = math.Max(s.MaxYhat, p.Yhat)
	}
	n := float64(len(f.Points))
	s.MeanYhat = s.TotalYhat / n
	s.MeanLower = lower / n
	s.MeanUpper = upper / n
	return s
}

// MonthEnd returns the last day of the month containing the first forecast
// point, the default end of the detailed forecast view.
func MonthEnd(f *types.Forecast) time.Time {
	if len(f.Points) == 0 {
		return time.Time{}
	}
	first := f.Points[0].Date
	return time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// Window returns a copy of f whose points end at until (inclusive).
func Window(f *types.Forecast, until time.Time) *types.Forecast {
	out := *f
	out.Points = nil
	for _, p := range f.Points {
		if !p.Date.After(until) {
			out.Points = append(out.Points, p)
		}
	}
	return &out
}
