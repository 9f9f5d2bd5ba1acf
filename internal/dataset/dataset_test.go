// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/laundry-analytics/pkg/types"
)

const sampleCSV = `StartDate,LaundryID,TenantID,Item,Service,Water_Litres,Electricity_kWh,IsHoliday,IsWeekend,Extra
2025-06-02,L1,T1,Shirt,Wash,40.5,1.2,0,0,x
2025-06-02,L1,T2,Towel,Dry,30,0.8,0,0,x
2025-06-04,L2,T1,Jeans,Wash,55,1.5,1,0,x
2025-06-07,L1,T1,Shirt,Iron,,0.3,0,1,x
`

func day(s string) time.Time {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestLoad(t *testing.T) {
	orders, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, orders, 4)

	assert.Equal(t, day("2025-06-02"), orders[0].StartDate)
	assert.Equal(t, "L1", orders[0].LaundryID)
	assert.Equal(t, "T1", orders[0].TenantID)
	assert.Equal(t, "Shirt", orders[0].Item)
	assert.Equal(t, "Wash", orders[0].Service)
	assert.InDelta(t, 40.5, orders[0].WaterLitres, 1e-9)
	assert.InDelta(t, 1.2, orders[0].ElectricityKWh, 1e-9)
	assert.True(t, orders[2].IsHoliday)
	assert.True(t, orders[3].IsWeekend)
	assert.Zero(t, orders[3].WaterLitres)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{"empty input", "", "dataset is empty"},
		{"missing tenant column", "StartDate,LaundryID\n2025-01-01,L1\n", `missing required column "TenantID"`},
		{"bad date", "StartDate,LaundryID,TenantID\nnot-a-date,L1,T1\n", "line 2"},
		{"bad water", "StartDate,LaundryID,TenantID,Water_Litres\n2025-01-01,L1,T1,lots\n", "Water_Litres"},
		{"bad flag", "StartDate,LaundryID,TenantID,IsHoliday\n2025-01-01,L1,T1,maybe\n", "IsHoliday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadDerivesWeekendWhenColumnAbsent(t *testing.T) {
	// 2025-06-07 is a Saturday.
	input := "StartDate,LaundryID,TenantID\n2025-06-06,L1,T1\n2025-06-07,L1,T1\n"
	orders, err := Load(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.False(t, orders[0].IsWeekend)
	assert.True(t, orders[1].IsWeekend)
}

func TestParseDateLayouts(t *testing.T) {
	for _, s := range []string{"2025-03-09", "2025-03-09 17:45:00", "03/09/2025"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, day("2025-03-09"), got, s)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	orders, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, orders, 4)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestFilters(t *testing.T) {
	orders, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Len(t, ByTenant(orders, "T1"), 3)
	assert.Len(t, ByTenant(orders, "T9"), 0)
	assert.Len(t, ByLaundry(orders, "L1"), 3)
	assert.Len(t, ByLaundry(orders, "L2"), 1)
}

func TestDailyCounts(t *testing.T) {
	orders, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	counts := DailyCounts(orders)
	require.Len(t, counts, 3)
	assert.Equal(t, day("2025-06-02"), counts[0].Date)
	assert.Equal(t, 2.0, counts[0].Count)
	assert.Equal(t, day("2025-06-07"), counts[2].Date)
}

func TestDailyCountsFilled(t *testing.T) {
	orders, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	counts := DailyCountsFilled(orders)
	require.Len(t, counts, 6)
	assert.Equal(t, []float64{2, 0, 1, 0, 0, 1}, []float64{
		counts[0].Count, counts[1].Count, counts[2].Count,
		counts[3].Count, counts[4].Count, counts[5].Count,
	})
	assert.Nil(t, DailyCountsFilled(nil))
}

func TestSpanAndHolidays(t *testing.T) {
	orders, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	first, last, ok := Span(orders)
	require.True(t, ok)
	assert.Equal(t, day("2025-06-02"), first)
	assert.Equal(t, day("2025-06-07"), last)

	_, _, ok = Span(nil)
	assert.False(t, ok)

	holidays := HolidayDates(orders)
	assert.Equal(t, map[time.Time]bool{day("2025-06-04"): true}, holidays)
}

func TestHash(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte(sampleCSV), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(sampleCSV+"2025-06-08,L1,T1,Shirt,Wash,1,1,0,1,x\n"), 0o644))

	ha, err := Hash(a)
	require.NoError(t, err)
	ha2, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)

	assert.Equal(t, ha, ha2)
	assert.NotEqual(t, ha, hb)
	assert.Len(t, ha, 64)
}
