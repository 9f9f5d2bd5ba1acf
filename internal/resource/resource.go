// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resource analyses water and electricity consumption: a per-order
// regression baseline with Isolation Forest anomaly detection for laundries,
// per-order averages for customers, and projections from demand forecasts.
package resource

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pdiddy/laundry-analytics/internal/dataset"
	"github.com/pdiddy/laundry-analytics/internal/forecast"
	"github.com/pdiddy/laundry-analytics/internal/forest"
	"github.com/pdiddy/laundry-analytics/internal/regress"
	"github.com/pdiddy/laundry-analytics/pkg/types"
)

// DefaultLowOrderLimit is the order count below which an anomalous day
// raises an alert.
const DefaultLowOrderLimit = 5

// Options configures the laundry analysis.
type Options struct {
	// Isolation configures the anomaly detector. Zero values select
	// contamination 0.05, 100 trees and seed 42.
	Isolation forest.IsolationOptions

	// LowOrderLimit is the alert order-count limit (default 5).
	LowOrderLimit int
}

// OptionsFrom converts the anomaly configuration into analysis options.
func OptionsFrom(c types.AnomalyConfig) Options {
	return Options{
		Isolation: forest.IsolationOptions{
			Trees:         c.Trees,
			Contamination: c.Contamination,
			Seed:          c.Seed,
		},
		LowOrderLimit: c.LowOrderLimit,
	}
}

// Laundry aggregates laundryID's orders per day, fits linear baselines of
// water and electricity on order count, and flags days whose residuals the
// Isolation Forest marks as outliers. Anomalous days with fewer than
// LowOrderLimit orders carry an alert.
func Laundry(ctx context.Context, orders []types.Order, laundryID string, opts Options) ([]types.DailyUsage, error) {
	rows := dailyUsage(dataset.ByLaundry(orders, laundryID))
	if len(rows) == 0 {
		return nil, fmt.Errorf("laundry %s: %w", laundryID, forecast.ErrNoData)
	}
	if opts.LowOrderLimit <= 0 {
		opts.LowOrderLimit = DefaultLowOrderLimit
	}

	counts := make([]float64, len(rows))
	water := make([]float64, len(rows))
	electricity := make([]float64, len(rows))
	for i, r := range rows {
		counts[i] = float64(r.OrderCount)
		water[i] = r.WaterConsumption
		electricity[i] = r.ElectricityConsumption
	}

	expWater, err := regress.FitPredict(counts, water)
	if err != nil {
		return nil, fmt.Errorf("fitting water baseline: %w", err)
	}
	expElec, err := regress.FitPredict(counts, electricity)
	if err != nil {
		return nil, fmt.Errorf("fitting electricity baseline: %w", err)
	}

	residuals := make([][]float64, len(rows))
	for i := range rows {
		rows[i].ExpectedWater = expWater[i]
		rows[i].ExpectedElectricity = expElec[i]
		rows[i].WaterError = water[i] - expWater[i]
		rows[i].ElectricError = electricity[i] - expElec[i]
		residuals[i] = []float64{rows[i].WaterError, rows[i].ElectricError}
	}

	labels, err := forest.NewIsolationForest(opts.Isolation).FitPredict(ctx, residuals)
	if err != nil {
		return nil, fmt.Errorf("detecting anomalies: %w", err)
	}

	for i := range rows {
		rows[i].Anomaly = labels[i]
		rows[i].AnomalyLabel = types.LabelNormal
		rows[i].Alert = types.AlertNone
		if labels[i] == forest.Outlier {
			rows[i].AnomalyLabel = types.LabelAnomaly
			if rows[i].OrderCount < opts.LowOrderLimit {
				rows[i].Alert = types.AlertHighUsageLowOrders
			}
		}
	}
	return rows, nil
}

// dailyUsage sums orders, water and electricity per day, sorted by date.
func dailyUsage(orders []types.Order) []types.DailyUsage {
	byDay := make(map[time.Time]*types.DailyUsage)
	for _, o := range orders {
		d := types.Day(o.StartDate)
		u, ok := byDay[d]
		if !ok {
			u = &types.DailyUsage{Date: d}
			byDay[d] = u
		}
		u.OrderCount++
		u.WaterConsumption += o.WaterLitres
		u.ElectricityConsumption += o.ElectricityKWh
	}

	rows := make([]types.DailyUsage, 0, len(byDay))
	for _, u := range byDay {
		u.WaterPerOrder = u.WaterConsumption / float64(u.OrderCount)
		u.ElectricityPerOrder = u.ElectricityConsumption / float64(u.OrderCount)
		rows = append(rows, *u)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

// Efficiency returns total water and electricity divided by total orders
// across rows. Rows without orders yield the zero value.
func Efficiency(rows []types.DailyUsage) types.Efficiency {
	var orders int
	var water, electricity float64
	for _, r := range rows {
		orders += r.OrderCount
		water += r.WaterConsumption
		electricity += r.ElectricityConsumption
	}
	if orders == 0 {
		return types.Efficiency{}
	}
	return types.Efficiency{
		WaterPerOrder:       water / float64(orders),
		ElectricityPerOrder: electricity / float64(orders),
	}
}

// Alerts returns the rows that raised a resource alert.
func Alerts(rows []types.DailyUsage) []types.DailyUsage {
	var out []types.DailyUsage
	for _, r := range rows {
		if r.IsAlert() {
			out = append(out, r)
		}
	}
	return out
}

// Customer summarises tenantID's resource use: totals, per-order averages
// and daily sums.
func Customer(orders []types.Order, tenantID string) (*types.CustomerUsage, error) {
	mine := dataset.ByTenant(orders, tenantID)
	if len(mine) == 0 {
		return nil, fmt.Errorf("customer %s: %w", tenantID, forecast.ErrNoData)
	}

	u := &types.CustomerUsage{TenantID: tenantID, Orders: len(mine)}
	byDay := make(map[time.Time]*types.DailyResource)
	for _, o := range mine {
		u.TotalWater += o.WaterLitres
		u.TotalElectricity += o.ElectricityKWh

		d := types.Day(o.StartDate)
		r, ok := byDay[d]
		if !ok {
			r = &types.DailyResource{Date: d}
			byDay[d] = r
		}
		r.WaterLitres += o.WaterLitres
		r.ElectricityKWh += o.ElectricityKWh
	}
	u.Efficiency = types.Efficiency{
		WaterPerOrder:       u.TotalWater / float64(u.Orders),
		ElectricityPerOrder: u.TotalElectricity / float64(u.Orders),
	}

	u.Daily = make([]types.DailyResource, 0, len(byDay))
	for _, r := range byDay {
		u.Daily = append(u.Daily, *r)
	}
	sort.Slice(u.Daily, func(i, j int) bool { return u.Daily[i].Date.Before(u.Daily[j].Date) })
	return u, nil
}

// Project converts the forecast points dated after now into resource
// requirements at the given per-order averages.
func Project(f *types.Forecast, eff types.Efficiency, now time.Time) []types.ResourceProjection {
	var out []types.ResourceProjection
	for _, p := range f.Points {
		if !p.Date.After(now) {
			continue
		}
		out = append(out, types.ResourceProjection{
			Date:              p.Date,
			Orders:            p.Yhat,
			WaterNeeded:       p.Yhat * eff.WaterPerOrder,
			ElectricityNeeded: p.Yhat * eff.ElectricityPerOrder,
		})
	}
	return out
}

// WaterSavings returns the water saved by moving from current to optimized usage.
func WaterSavings(current, optimized float64) float64 {
	return current - optimized
}

// EnergySavings returns the energy saved by moving from current to optimized usage.
func EnergySavings(current, optimized float64) float64 {
	return current - optimized
}
