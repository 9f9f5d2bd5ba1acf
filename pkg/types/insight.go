// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// NameCount is a category name with its occurrence count.
type NameCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// CustomerInsights profiles one customer's ordering behaviour.
type CustomerInsights struct {
	TenantID           string    `json:"tenant_id" yaml:"tenant_id"`
	Orders             int       `json:"orders" yaml:"orders"`
	LastOrder          time.Time `json:"last_order" yaml:"last_order"`
	DaysSinceLastOrder int       `json:"days_since_last_order" yaml:"days_since_last_order"`

	// AvgDaysBetweenOrders is nil when the customer has fewer than two orders.
	AvgDaysBetweenOrders *float64 `json:"avg_days_between_orders" yaml:"avg_days_between_orders"`

	MostFrequentDay string      `json:"most_frequent_day" yaml:"most_frequent_day"`
	TopItems        []NameCount `json:"top_items" yaml:"top_items"`
	TopServices     []NameCount `json:"top_services" yaml:"top_services"`
}
