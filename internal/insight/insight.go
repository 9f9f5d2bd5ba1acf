// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package insight derives customer behaviour profiles, the customer business
// report, and the static operating plans shown alongside laundry forecasts.
package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/laundry-analytics/internal/dataset"
	"github.com/pdiddy/laundry-analytics/internal/forecast"
	"github.com/pdiddy/laundry-analytics/pkg/types"
)

const (
	// DefaultRecentOrders is the number of orders RecentOrders returns by default.
	DefaultRecentOrders = 5

	topN = 3
)

// Customer profiles tenantID's orders as of now.
func Customer(orders []types.Order, tenantID string, now time.Time) (*types.CustomerInsights, error) {
	mine := dataset.ByTenant(orders, tenantID)
	if len(mine) == 0 {
		return nil, fmt.Errorf("customer %s: %w", tenantID, forecast.ErrNoData)
	}

	dates := make([]time.Time, len(mine))
	for i, o := range mine {
		dates[i] = o.StartDate
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	last := dates[len(dates)-1]
	in := &types.CustomerInsights{
		TenantID:           tenantID,
		Orders:             len(mine),
		LastOrder:          last,
		DaysSinceLastOrder: int(math.Floor(now.Sub(last).Hours() / 24)),
		MostFrequentDay:    mostFrequentDay(dates),
		TopItems:           top(mine, func(o types.Order) string { return o.Item }),
		TopServices:        top(mine, func(o types.Order) string { return o.Service }),
	}

	if len(dates) > 1 {
		var gaps float64
		for i := 1; i < len(dates); i++ {
			gaps += math.Floor(dates[i].Sub(dates[i-1]).Hours() / 24)
		}
		avg := gaps / float64(len(dates)-1)
		in.AvgDaysBetweenOrders = &avg
	}
	return in, nil
}

// mostFrequentDay returns the weekday name with the most orders. Ties go
// to the earlier day of a Monday-first week.
func mostFrequentDay(dates []time.Time) string {
	var counts [7]int
	for _, d := range dates {
		counts[(int(d.Weekday())+6)%7]++
	}
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return time.Weekday((best + 1) % 7).String()
}

// top returns the topN most frequent non-empty values of key, ties by name.
func top(orders []types.Order, key func(types.Order) string) []types.NameCount {
	counts := make(map[string]int)
	for _, o := range orders {
		if k := key(o); k != "" {
			counts[k]++
		}
	}
	out := make([]types.NameCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, types.NameCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// Lines formats the insights as human-readable lines.
func Lines(in *types.CustomerInsights) []string {
	avg := "n/a"
	if in.AvgDaysBetweenOrders != nil {
		avg = fmt.Sprintf("%.1f days", *in.AvgDaysBetweenOrders)
	}
	return []string{
		fmt.Sprintf("Days since last order: %d days", in.DaysSinceLastOrder),
		fmt.Sprintf("Average days between orders: %s", avg),
		fmt.Sprintf("Most frequent ordering day: %s", in.MostFrequentDay),
		fmt.Sprintf("Top items: %s", joinCounts(in.TopItems)),
		fmt.Sprintf("Top services: %s", joinCounts(in.TopServices)),
	}
}

func joinCounts(items []types.NameCount) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s (%d)", it.Name, it.Count)
	}
	return strings.Join(parts, ", ")
}

// RecentOrders returns up to n orders, newest first. n <= 0 selects
// DefaultRecentOrders.
func RecentOrders(orders []types.Order, n int) []types.Order {
	if n <= 0 {
		n = DefaultRecentOrders
	}
	out := make([]types.Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// PeakActionPlan returns the operating plan for forecast peak days.
func PeakActionPlan() []types.Recommendation {
	return []types.Recommendation{
		{Title: "Staffing", Actions: []string{
			"Schedule extra staff during peak hours",
			"Prepare backup staff for unexpected demand",
			"Ensure manager coverage during peak periods",
		}},
		{Title: "Operations", Actions: []string{
			"Delay non-essential maintenance",
			"Prepare additional laundry machines",
			"Increase inventory of detergents and supplies",
		}},
		{Title: "Customer Experience", Actions: []string{
			"Notify customers about potential delays",
			"Prepare express service options",
			"Implement priority for regular customers",
		}},
	}
}

// LowDemandPlan returns the resource optimisation plan for low-demand days.
func LowDemandPlan() []types.Recommendation {
	return []types.Recommendation{
		{Title: "Energy Saving Mode", Actions: []string{
			"Use eco-friendly wash cycles",
			"Reduce water temperature settings",
			"Schedule operations during off-peak electricity hours",
		}},
		{Title: "Maintenance Schedule", Actions: []string{
			"Perform routine maintenance on idle days",
			"Clean filters and check machine efficiency",
		}},
		{Title: "Staff Management", Actions: []string{
			"Reduce staff during low demand periods",
			"Schedule training or administrative tasks",
		}},
		{Title: "Resource Allocation", Actions: []string{
			"Redirect resources to busier locations",
			"Plan inventory management",
		}},
	}
}

// RenderPlan formats recommendations as a markdown list.
func RenderPlan(plan []types.Recommendation) string {
	var b strings.Builder
	for i, r := range plan {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, r.Title)
		for _, a := range r.Actions {
			fmt.Fprintf(&b, "   - %s\n", a)
		}
	}
	return b.String()
}
