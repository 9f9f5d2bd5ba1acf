// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Anomaly labels produced by the isolation forest.
const (
	LabelNormal  = "Normal"
	LabelAnomaly = "Anomaly"
)

// Alert texts attached to daily usage rows.
const (
	AlertHighUsageLowOrders = "Alert: High usage on low order day"
	AlertNone               = "Normal"
)

// DailyUsage is one day of resource consumption at a laundry, with the
// regression baseline and anomaly verdict.
type DailyUsage struct {
	Date                   time.Time `json:"date" yaml:"date"`
	OrderCount             int       `json:"order_count" yaml:"order_count"`
	WaterConsumption       float64   `json:"water_consumption" yaml:"water_consumption"`
	ElectricityConsumption float64   `json:"electricity_consumption" yaml:"electricity_consumption"`
	ExpectedWater          float64   `json:"expected_water" yaml:"expected_water"`
	ExpectedElectricity    float64   `json:"expected_electricity" yaml:"expected_electricity"`
	WaterError             float64   `json:"water_error" yaml:"water_error"`
	ElectricError          float64   `json:"electric_error" yaml:"electric_error"`

	// Anomaly is -1 for anomalous days and 1 otherwise.
	Anomaly      int    `json:"anomaly" yaml:"anomaly"`
	AnomalyLabel string `json:"anomaly_label" yaml:"anomaly_label"`
	Alert        string `json:"alert" yaml:"alert"`

	WaterPerOrder       float64 `json:"water_per_order" yaml:"water_per_order"`
	ElectricityPerOrder float64 `json:"electricity_per_order" yaml:"electricity_per_order"`
}

// IsAlert reports whether the row raised a resource alert.
func (u DailyUsage) IsAlert() bool {
	return u.Alert == AlertHighUsageLowOrders
}

// Efficiency holds per-order resource averages over a period.
type Efficiency struct {
	WaterPerOrder       float64 `json:"water_per_order" yaml:"water_per_order"`
	ElectricityPerOrder float64 `json:"electricity_per_order" yaml:"electricity_per_order"`
}

// DailyResource is the summed resource use of one day.
type DailyResource struct {
	Date           time.Time `json:"date" yaml:"date"`
	WaterLitres    float64   `json:"water_litres" yaml:"water_litres"`
	ElectricityKWh float64   `json:"electricity_kwh" yaml:"electricity_kwh"`
}

// ResourceProjection is the projected resource requirement of one forecast day.
type ResourceProjection struct {
	Date              time.Time `json:"date" yaml:"date"`
	Orders            float64   `json:"orders" yaml:"orders"`
	WaterNeeded       float64   `json:"water_needed" yaml:"water_needed"`
	ElectricityNeeded float64   `json:"electricity_needed" yaml:"electricity_needed"`
}

// CustomerUsage summarises the resource use of one customer's orders.
type CustomerUsage struct {
	TenantID         string          `json:"tenant_id" yaml:"tenant_id"`
	Orders           int             `json:"orders" yaml:"orders"`
	TotalWater       float64         `json:"total_water" yaml:"total_water"`
	TotalElectricity float64         `json:"total_electricity" yaml:"total_electricity"`
	Efficiency       Efficiency      `json:"efficiency" yaml:"efficiency"`
	Daily            []DailyResource `json:"daily" yaml:"daily"`
}
