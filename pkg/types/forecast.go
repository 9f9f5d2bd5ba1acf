// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ForecastPoint is one day of a demand series. Historical points carry
// Actual; forecast points carry Yhat with its Lower/Upper band.
type ForecastPoint struct {
	Date       time.Time `json:"date" yaml:"date"`
	Actual     *float64  `json:"actual,omitempty" yaml:"actual,omitempty"`
	Yhat       float64   `json:"yhat" yaml:"yhat"`
	Lower      float64   `json:"yhat_lower" yaml:"yhat_lower"`
	Upper      float64   `json:"yhat_upper" yaml:"yhat_upper"`
	IsForecast bool      `json:"is_forecast" yaml:"is_forecast"`
}

// Forecast is a demand forecast for a single customer or laundry.
type Forecast struct {
	// Subject is the TenantID or LaundryID the forecast was built for.
	Subject string `json:"subject" yaml:"subject"`

	// History holds the observed daily demand used for training.
	History []DailyCount `json:"history" yaml:"history"`

	// Points holds the forecast horizon, one point per consecutive day.
	Points []ForecastPoint `json:"points" yaml:"points"`

	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// LastObserved returns the last historical day, or the zero time when
// History is empty.
func (f *Forecast) LastObserved() time.Time {
	if len(f.History) == 0 {
		return time.Time{}
	}
	return f.History[len(f.History)-1].Date
}

// Series returns history followed by the forecast horizon as a single
// series, the shape the dashboard charts consume.
func (f *Forecast) Series() []ForecastPoint {
	out := make([]ForecastPoint, 0, len(f.History)+len(f.Points))
	for _, h := range f.History {
		v := h.Count
		out = append(out, ForecastPoint{Date: h.Date, Actual: &v})
	}
	return append(out, f.Points...)
}

// ForecastSummary aggregates the forecast horizon.
type ForecastSummary struct {
	Start     time.Time `json:"start" yaml:"start"`
	End       time.Time `json:"end" yaml:"end"`
	Days      int       `json:"days" yaml:"days"`
	MeanYhat  float64   `json:"mean_yhat" yaml:"mean_yhat"`
	TotalYhat float64   `json:"total_yhat" yaml:"total_yhat"`
	MaxYhat   float64   `json:"max_yhat" yaml:"max_yhat"`
	MeanLower float64   `json:"mean_lower" yaml:"mean_lower"`
	MeanUpper float64   `json:"mean_upper" yaml:"mean_upper"`
}
