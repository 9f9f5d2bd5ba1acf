// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the records shared by the ingest, analysis, storage
// and dashboard layers.
package types

import "time"

// DateLayout is the canonical day format used in CSV input, storage and output.
const DateLayout = "2006-01-02"

// Order is one laundry order from the service dataset.
type Order struct {
	// StartDate is the day the order was placed, truncated to midnight UTC.
	StartDate time.Time `json:"start_date" yaml:"start_date" db:"start_date"`

	// LaundryID identifies the laundry facility (e.g. "L3").
	LaundryID string `json:"laundry_id" yaml:"laundry_id" db:"laundry_id"`

	// TenantID identifies the customer (e.g. "T1").
	TenantID string `json:"tenant_id" yaml:"tenant_id" db:"tenant_id"`

	// Item is the garment or article category.
	Item string `json:"item" yaml:"item" db:"item"`

	// Service is the requested service (wash, dry-clean, iron, ...).
	Service string `json:"service" yaml:"service" db:"service"`

	// WaterLitres is the water consumed by the order.
	WaterLitres float64 `json:"water_litres" yaml:"water_litres" db:"water_litres"`

	// ElectricityKWh is the electricity consumed by the order.
	ElectricityKWh float64 `json:"electricity_kwh" yaml:"electricity_kwh" db:"electricity_kwh"`

	// IsHoliday marks orders placed on a public holiday.
	IsHoliday bool `json:"is_holiday" yaml:"is_holiday" db:"is_holiday"`

	// IsWeekend marks orders placed on a Saturday or Sunday.
	IsWeekend bool `json:"is_weekend" yaml:"is_weekend" db:"is_weekend"`
}

// DailyCount is the number of orders observed on one day.
type DailyCount struct {
	Date  time.Time `json:"date" yaml:"date"`
	Count float64   `json:"count" yaml:"count"`
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
