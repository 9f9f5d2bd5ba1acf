// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/laundry-analytics/pkg/types"
)

var fixedNow = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weeklyLaundry returns 8 weeks of orders at L1: 10 per weekend day, 2 per weekday.
func weeklyLaundry() []types.Order {
	var orders []types.Order
	start := date(2025, 6, 2) // Monday
	for i := 0; i < 56; i++ {
		d := start.AddDate(0, 0, i)
		n := 2
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			n = 10
		}
		for j := 0; j < n; j++ {
			orders = append(orders, types.Order{StartDate: d, LaundryID: "L1", TenantID: "T1"})
		}
	}
	return orders
}

func TestLaundryForecast(t *testing.T) {
	orders := weeklyLaundry()
	f, err := Laundry(context.Background(), orders, "L1", Options{Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)

	assert.Equal(t, "L1", f.Subject)
	assert.Equal(t, fixedNow, f.GeneratedAt)
	require.Len(t, f.History, 56)
	require.Len(t, f.Points, DefaultPeakDays)

	last := f.LastObserved()
	for i, p := range f.Points {
		assert.Equal(t, last.AddDate(0, 0, i+1), p.Date)
		assert.InDelta(t, p.Yhat-1.5, p.Lower, 1e-9)
		assert.InDelta(t, p.Yhat+1.5, p.Upper, 1e-9)
		assert.True(t, p.IsForecast)
	}

	peaks := PeakDays(f, DefaultPeakThreshold)
	require.GreaterOrEqual(t, len(peaks), 4)
	for _, p := range peaks {
		wd := p.Date.Weekday()
		assert.True(t, wd == time.Saturday || wd == time.Sunday, "peak on %s", p.Date.Format(types.DateLayout))
	}

	low := LowDemandDays(f, DefaultLowDemandThreshold+1)
	assert.NotEmpty(t, low)
	for _, p := range low {
		assert.Less(t, p.Yhat, float64(DefaultLowDemandThreshold+1))
	}
}

func TestLaundryForecastDeterministic(t *testing.T) {
	orders := weeklyLaundry()
	a, err := Laundry(context.Background(), orders, "L1", Options{Days: 7})
	require.NoError(t, err)
	b, err := Laundry(context.Background(), orders, "L1", Options{Days: 7})
	require.NoError(t, err)
	assert.Equal(t, a.Points, b.Points)
}

func TestLaundryForecastNoData(t *testing.T) {
	_, err := Laundry(context.Background(), weeklyLaundry(), "L9", Options{})
	assert.ErrorIs(t, err, ErrNoData)
}

// mondayCustomer returns one order every Monday for 20 weeks, plus one holiday order.
func mondayCustomer() []types.Order {
	var orders []types.Order
	start := date(2025, 3, 3) // Monday
	for w := 0; w < 20; w++ {
		orders = append(orders, types.Order{
			StartDate: start.AddDate(0, 0, 7*w),
			TenantID:  "T7",
			LaundryID: "L1",
			Item:      "Shirt",
			Service:   "Wash",
		})
	}
	orders = append(orders, types.Order{StartDate: date(2025, 4, 18), TenantID: "T7", LaundryID: "L1", IsHoliday: true})
	return orders
}

func TestCustomerForecast(t *testing.T) {
	f, err := Customer(context.Background(), mondayCustomer(), "T7", Options{})
	require.NoError(t, err)

	// 2025-03-03 .. 2025-07-14 inclusive.
	require.Len(t, f.History, 134)
	require.Len(t, f.Points, DefaultCustomerDays)
	assert.Equal(t, date(2025, 7, 15), f.Points[0].Date)

	for _, p := range f.Points {
		assert.GreaterOrEqual(t, p.Yhat, 0.0)
		assert.GreaterOrEqual(t, p.Lower, 0.0)
		assert.LessOrEqual(t, p.Lower, p.Yhat)
		assert.LessOrEqual(t, p.Yhat, p.Upper)
		assert.InDelta(t, p.Yhat*0.7, p.Lower, 1e-9)
	}

	series := f.Series()
	require.Len(t, series, 134+DefaultCustomerDays)
	require.NotNil(t, series[0].Actual)
	assert.Equal(t, 1.0, *series[0].Actual)
	assert.Nil(t, series[134].Actual)
}

func TestCustomerForecastSingleDay(t *testing.T) {
	orders := []types.Order{{StartDate: date(2025, 1, 6), TenantID: "T1"}}
	f, err := Customer(context.Background(), orders, "T1", Options{Days: 5})
	require.NoError(t, err)
	require.Len(t, f.Points, 5)
	for _, p := range f.Points {
		assert.Equal(t, 1.0, p.Yhat)
	}
}

func TestCustomerForecastNoData(t *testing.T) {
	_, err := Customer(context.Background(), mondayCustomer(), "T404", Options{})
	assert.ErrorIs(t, err, ErrNoData)
}

func sampleForecast() *types.Forecast {
	return &types.Forecast{
		Subject: "T1",
		History: []types.DailyCount{{Date: date(2025, 9, 29), Count: 1}},
		Points: []types.ForecastPoint{
			{Date: date(2025, 9, 30), Yhat: 1, Lower: 0.7, Upper: 1.3, IsForecast: true},
			{Date: date(2025, 10, 1), Yhat: 3, Lower: 2.1, Upper: 3.9, IsForecast: true},
			{Date: date(2025, 10, 2), Yhat: 2, Lower: 1.4, Upper: 2.6, IsForecast: true},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleForecast())
	assert.Equal(t, date(2025, 9, 30), s.Start)
	assert.Equal(t, date(2025, 10, 2), s.End)
	assert.Equal(t, 3, s.Days)
	assert.InDelta(t, 2, s.MeanYhat, 1e-9)
	assert.InDelta(t, 6, s.TotalYhat, 1e-9)
	assert.InDelta(t, 3, s.MaxYhat, 1e-9)
	assert.InDelta(t, 1.4, s.MeanLower, 1e-9)
	assert.InDelta(t, 2.6, s.MeanUpper, 1e-9)

	assert.Equal(t, types.ForecastSummary{}, Summarize(&types.Forecast{}))
}

func TestWindowAndMonthEnd(t *testing.T) {
	f := sampleForecast()
	end := MonthEnd(f)
	assert.Equal(t, date(2025, 9, 30), end)

	w := Window(f, end)
	require.Len(t, w.Points, 1)
	assert.Len(t, f.Points, 3, "window must not modify the source forecast")
	assert.Equal(t, f.History, w.History)

	assert.True(t, MonthEnd(&types.Forecast{}).IsZero())
}
