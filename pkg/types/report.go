// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ReportKind categorizes a generated report.
type ReportKind string

const (
	ReportCustomer ReportKind = "customer"
	ReportLaundry  ReportKind = "laundry"
)

// Report is a generated markdown report.
type Report struct {
	ID        string     `json:"id" yaml:"id" db:"id"`
	Kind      ReportKind `json:"kind" yaml:"kind" db:"kind"`
	Subject   string     `json:"subject" yaml:"subject" db:"subject"`
	Filename  string     `json:"filename" yaml:"filename" db:"filename"`
	Content   string     `json:"content" yaml:"content" db:"content"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at" db:"created_at"`
}

// AlertNotice records a peak-demand notification sent for a laundry.
type AlertNotice struct {
	ID         string      `json:"id" yaml:"id"`
	LaundryID  string      `json:"laundry_id" yaml:"laundry_id"`
	Threshold  float64     `json:"threshold" yaml:"threshold"`
	Dates      []time.Time `json:"dates" yaml:"dates"`
	Recipients []string    `json:"recipients" yaml:"recipients"`
	Message    string      `json:"message" yaml:"message"`
	Delivered  bool        `json:"delivered" yaml:"delivered"`
	CreatedAt  time.Time   `json:"created_at" yaml:"created_at"`
}

// Recommendation is a titled group of recommended actions.
type Recommendation struct {
	Title   string   `json:"title" yaml:"title"`
	Actions []string `json:"actions" yaml:"actions"`
}
