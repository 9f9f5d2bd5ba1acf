// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset parses the laundry order CSV and groups orders into the
// daily series the forecasting and resource analyses consume.
package dataset

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/laundry-analytics/pkg/types"
)

// Column names of the order CSV.
const (
	ColStartDate   = "StartDate"
	ColLaundryID   = "LaundryID"
	ColTenantID    = "TenantID"
	ColItem        = "Item"
	ColService     = "Service"
	ColWater       = "Water_Litres"
	ColElectricity = "Electricity_kWh"
	ColIsHoliday   = "IsHoliday"
	ColIsWeekend   = "IsWeekend"
)

var requiredColumns = []string{ColStartDate, ColLaundryID, ColTenantID}

var dateLayouts = []string{
	types.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
}

// ErrEmpty is returned when the CSV has no header row.
var ErrEmpty = errors.New("dataset is empty")

// LoadFile reads orders from the CSV file at path.
func LoadFile(path string) ([]types.Order, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	orders, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return orders, nil
}

// Load parses orders from CSV. Unknown columns are ignored; StartDate,
// LaundryID and TenantID are required.
func Load(r io.Reader) ([]types.Order, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var orders []types.Order
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		o, err := parseOrder(rec, field)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if _, ok := idx[ColIsWeekend]; !ok {
			o.IsWeekend = isWeekend(o.StartDate)
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func parseOrder(rec []string, field func([]string, string) string) (types.Order, error) {
	var o types.Order

	date, err := ParseDate(field(rec, ColStartDate))
	if err != nil {
		return o, err
	}
	o.StartDate = date
	o.LaundryID = field(rec, ColLaundryID)
	o.TenantID = field(rec, ColTenantID)
	o.Item = field(rec, ColItem)
	o.Service = field(rec, ColService)

	if o.WaterLitres, err = parseFloat(field(rec, ColWater)); err != nil {
		return o, fmt.Errorf("%s: %w", ColWater, err)
	}
	if o.ElectricityKWh, err = parseFloat(field(rec, ColElectricity)); err != nil {
		return o, fmt.Errorf("%s: %w", ColElectricity, err)
	}
	if o.IsHoliday, err = parseFlag(field(rec, ColIsHoliday)); err != nil {
		return o, fmt.Errorf("%s: %w", ColIsHoliday, err)
	}
	if o.IsWeekend, err = parseFlag(field(rec, ColIsWeekend)); err != nil {
		return o, fmt.Errorf("%s: %w", ColIsWeekend, err)
	}
	return o, nil
}

// ParseDate parses a StartDate value in any of the accepted layouts and
// truncates it to the day.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty %s", ColStartDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return types.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "0.0", "false", "no":
		return false, nil
	case "1", "1.0", "true", "yes":
		return true, nil
	}
	return false, fmt.Errorf("invalid flag %q", s)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ByTenant returns the orders placed by tenantID.
func ByTenant(orders []types.Order, tenantID string) []types.Order {
	var out []types.Order
	for _, o := range orders {
		if o.TenantID == tenantID {
			out = append(out, o)
		}
	}
	return out
}

// ByLaundry returns the orders handled by laundryID.
func ByLaundry(orders []types.Order, laundryID string) []types.Order {
	var out []types.Order
	for _, o := range orders {
		if o.LaundryID == laundryID {
			out = append(out, o)
		}
	}
	return out
}

// Span returns the first and last order day. ok is false for no orders.
func Span(orders []types.Order) (first, last time.Time, ok bool) {
	if len(orders) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = orders[0].StartDate, orders[0].StartDate
	for _, o := range orders[1:] {
		if o.StartDate.Before(first) {
			first = o.StartDate
		}
		if o.StartDate.After(last) {
			last = o.StartDate
		}
	}
	return types.Day(first), types.Day(last), true
}

// DailyCounts counts orders per day, ascending. Days without orders are
// absent.
func DailyCounts(orders []types.Order) []types.DailyCount {
	counts := make(map[time.Time]float64)
	for _, o := range orders {
		counts[types.Day(o.StartDate)]++
	}

	out := make([]types.DailyCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, types.DailyCount{Date: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// DailyCountsFilled counts orders per day for every calendar day between
// the first and last order, filling gaps with zero.
func DailyCountsFilled(orders []types.Order) []types.DailyCount {
	first, last, ok := Span(orders)
	if !ok {
		return nil
	}

	counts := make(map[time.Time]float64)
	for _, o := range orders {
		counts[types.Day(o.StartDate)]++
	}

	var out []types.DailyCount
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, types.DailyCount{Date: d, Count: counts[d]})
	}
	return out
}

// HolidayDates returns the set of days on which any order was flagged as a
// holiday.
func HolidayDates(orders []types.Order) map[time.Time]bool {
	out := make(map[time.Time]bool)
	for _, o := range orders {
		if o.IsHoliday {
			out[types.Day(o.StartDate)] = true
		}
	}
	return out
}

// Hash returns the hex SHA-256 of the file at path.
func Hash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
