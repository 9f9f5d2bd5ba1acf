// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package features turns daily order series into the feature matrices the
// forecasting models train on.
package features

import (
	"time"

	"github.com/pdiddy/laundry-analytics/internal/dataset"
	"github.com/pdiddy/laundry-analytics/pkg/types"
)

// CalendarColumns names the columns produced by CalendarRow.
var CalendarColumns = []string{"day_of_year", "day_of_week", "week_of_year"}

// CalendarRow returns [day of year, day of week (Monday=0), ISO week] for t.
func CalendarRow(t time.Time) []float64 {
	_, week := t.ISOWeek()
	return []float64{float64(t.YearDay()), float64(weekdayMondayFirst(t)), float64(week)}
}

// Calendar returns the calendar feature matrix and targets for days.
func Calendar(days []types.DailyCount) (X [][]float64, y []float64) {
	X = make([][]float64, len(days))
	y = make([]float64, len(days))
	for i, d := range days {
		X[i] = CalendarRow(d.Date)
		y[i] = d.Count
	}
	return X, y
}

// EnhancedColumns names the columns of an Enhanced feature row, in order.
var EnhancedColumns = []string{
	"day_of_week", "is_weekend", "month", "day_of_month", "time_idx",
	"orders_7d_avg", "orders_28d_avg",
	"lag_1", "lag_7", "lag_14", "lag_28",
	"is_holiday",
}

var lags = []int{1, 7, 14, 28}

// EnhancedRow is one day of the customer feature frame.
type EnhancedRow struct {
	Date      time.Time
	Orders    float64
	Rolling7  float64
	Rolling28 float64
	Lags      [4]float64
	IsHoliday bool
}

// Enhanced is the gap-filled daily feature frame for one customer.
type Enhanced struct {
	Rows     []EnhancedRow
	holidays map[time.Time]bool
}

// NewEnhanced builds the feature frame over every calendar day spanned by
// orders. It returns an empty frame when orders is empty.
func NewEnhanced(orders []types.Order) *Enhanced {
	daily := dataset.DailyCountsFilled(orders)
	e := &Enhanced{
		Rows:     make([]EnhancedRow, len(daily)),
		holidays: dataset.HolidayDates(orders),
	}

	for i, d := range daily {
		row := EnhancedRow{
			Date:      d.Date,
			Orders:    d.Count,
			Rolling7:  rollingMean(daily, i, 7),
			Rolling28: rollingMean(daily, i, 28),
			IsHoliday: e.holidays[d.Date],
		}
		for k, lag := range lags {
			if i-lag >= 0 {
				row.Lags[k] = daily[i-lag].Count
			}
		}
		e.Rows[i] = row
	}
	return e
}

// Len returns the number of days in the frame.
func (e *Enhanced) Len() int {
	return len(e.Rows)
}

// Start returns the first day of the frame.
func (e *Enhanced) Start() time.Time {
	if len(e.Rows) == 0 {
		return time.Time{}
	}
	return e.Rows[0].Date
}

// End returns the last day of the frame.
func (e *Enhanced) End() time.Time {
	if len(e.Rows) == 0 {
		return time.Time{}
	}
	return e.Rows[len(e.Rows)-1].Date
}

// Matrix returns the feature matrix and order targets.
func (e *Enhanced) Matrix() (X [][]float64, y []float64) {
	X = make([][]float64, len(e.Rows))
	y = make([]float64, len(e.Rows))
	start := e.Start()
	for i, r := range e.Rows {
		X[i] = e.vector(r.Date, start, r.Rolling7, r.Rolling28, r.Lags, r.IsHoliday)
		y[i] = r.Orders
	}
	return X, y
}

// FutureRow builds the feature vector for a future date. Rolling means come
// from the last observed day and each lag_k from the order count k days
// before the end of the frame (0 when the frame is shorter than k).
func (e *Enhanced) FutureRow(date time.Time) []float64 {
	n := len(e.Rows)
	if n == 0 {
		return e.vector(date, date, 0, 0, [4]float64{}, e.holidays[date])
	}
	last := e.Rows[n-1]

	var lagged [4]float64
	for k, lag := range lags {
		if n >= lag {
			lagged[k] = e.Rows[n-lag].Orders
		}
	}
	return e.vector(date, e.Start(), last.Rolling7, last.Rolling28, lagged, e.holidays[types.Day(date)])
}

func (e *Enhanced) vector(date, start time.Time, r7, r28 float64, lagged [4]float64, holiday bool) []float64 {
	return []float64{
		float64(weekdayMondayFirst(date)),
		boolFloat(isWeekend(date)),
		float64(date.Month()),
		float64(date.Day()),
		float64(daysBetween(start, date)),
		r7,
		r28,
		lagged[0], lagged[1], lagged[2], lagged[3],
		boolFloat(holiday),
	}
}

func rollingMean(daily []types.DailyCount, i, window int) float64 {
	from := i - window + 1
	if from < 0 {
		from = 0
	}
	var s float64
	for _, d := range daily[from : i+1] {
		s += d.Count
	}
	return s / float64(i+1-from)
}

func weekdayMondayFirst(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func isWeekend(t time.Time) bool {
	return weekdayMondayFirst(t) >= 5
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// daysBetween returns the whole days from a to b.
func daysBetween(a, b time.Time) int {
	return int(types.Day(b).Sub(types.Day(a)).Hours() / 24)
}
