// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/laundry-analytics/pkg/types"
)

const ordersCSV = `StartDate,LaundryID,TenantID,Item,Service,Water_Litres,Electricity_kWh,IsHoliday,IsWeekend
2025-06-03,L1,T2,Towel,Dry,30,0.8,0,0
2025-06-02,L1,T1,Shirt,Wash,40.5,1.2,0,0
2025-06-04,L2,T1,Jeans,Wash,55,1.5,1,0
2025-06-07,L1,T1,Shirt,Iron,12,0.3,0,1
`

// --- test helpers ---

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(types.StoreConfig{DataDir: filepath.Join(dir, "data")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func day(s string) time.Time {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// --- ingest ---

func TestIngest(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()
	path := writeCSV(t, dir, "orders.csv", ordersCSV)

	var out bytes.Buffer
	sum, err := s.Ingest(ctx, path, &out)
	require.NoError(t, err)
	assert.False(t, sum.Skipped)
	assert.Equal(t, 4, sum.Rows)
	assert.Len(t, sum.Hash, 64)
	assert.Contains(t, out.String(), "ingested")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	run, err := s.LastIngest(ctx)
	require.NoError(t, err)
	assert.Equal(t, sum.Source, run.Source)
	assert.Equal(t, sum.Hash, run.Hash)
	assert.Equal(t, 4, run.Rows)
	assert.False(t, run.IngestedAt.IsZero())
}

func TestIngestSkipsUnchanged(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()
	path := writeCSV(t, dir, "orders.csv", ordersCSV)

	_, err := s.Ingest(ctx, path, &bytes.Buffer{})
	require.NoError(t, err)

	var out bytes.Buffer
	sum, err := s.Ingest(ctx, path, &out)
	require.NoError(t, err)
	assert.True(t, sum.Skipped)
	assert.Contains(t, out.String(), "skipped")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n, "skip must not duplicate rows")
}

func TestIngestReplacesChangedSource(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()
	path := writeCSV(t, dir, "orders.csv", ordersCSV)
	other := writeCSV(t, dir, "other.csv", "StartDate,LaundryID,TenantID\n2025-07-01,L9,T9\n")

	_, err := s.Ingest(ctx, path, &bytes.Buffer{})
	require.NoError(t, err)
	_, err = s.Ingest(ctx, other, &bytes.Buffer{})
	require.NoError(t, err)

	writeCSV(t, dir, "orders.csv", "StartDate,LaundryID,TenantID\n2025-06-10,L1,T1\n")
	sum, err := s.Ingest(ctx, path, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, sum.Skipped)
	assert.Equal(t, 1, sum.Rows)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "changed source replaced, other source kept")
}

func TestIngestBadCSV(t *testing.T) {
	s, dir := testStore(t)
	path := writeCSV(t, dir, "bad.csv", "Foo,Bar\n1,2\n")
	_, err := s.Ingest(context.Background(), path, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = s.LastIngest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIngestMissingFile(t *testing.T) {
	s, dir := testStore(t)
	_, err := s.Ingest(context.Background(), filepath.Join(dir, "missing.csv"), &bytes.Buffer{})
	assert.Error(t, err)
}

// --- queries ---

func TestOrdersFilter(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()
	_, err := s.Ingest(ctx, writeCSV(t, dir, "orders.csv", ordersCSV), &bytes.Buffer{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"tenant", Filter{TenantID: "T1"}, 3},
		{"laundry", Filter{LaundryID: "L1"}, 3},
		{"both", Filter{TenantID: "T1", LaundryID: "L1"}, 2},
		{"unknown", Filter{TenantID: "T404"}, 0},
		{"limit", Filter{Limit: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Orders(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	all, err := s.Orders(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, day("2025-06-02"), all[0].StartDate)
	assert.Equal(t, "Shirt", all[0].Item)
	assert.InDelta(t, 40.5, all[0].WaterLitres, 1e-9)
	assert.True(t, all[2].IsHoliday)
	assert.True(t, all[3].IsWeekend)
}

func TestSampleAndStats(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Orders)
	assert.True(t, st.First.IsZero())

	_, err = s.Ingest(ctx, writeCSV(t, dir, "orders.csv", ordersCSV), &bytes.Buffer{})
	require.NoError(t, err)

	sample, err := s.Sample(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, sample, 4)

	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		Orders: 4, Tenants: 2, Laundries: 2,
		First: day("2025-06-02"), Last: day("2025-06-07"),
	}, st)
}

// --- reports and notices ---

func TestReports(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	r := &types.Report{Kind: types.ReportCustomer, Subject: "T1", Filename: "customer_T1_report.md", Content: "# one"}
	require.NoError(t, s.SaveReport(ctx, r))
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := s.Report(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ReportCustomer, got.Kind)
	assert.Equal(t, "# one", got.Content)

	later := &types.Report{Kind: types.ReportCustomer, Subject: "T1", Filename: "customer_T1_report.md",
		Content: "# two", CreatedAt: r.CreatedAt.Add(time.Minute)}
	require.NoError(t, s.SaveReport(ctx, later))
	require.NoError(t, s.SaveReport(ctx, &types.Report{Kind: types.ReportCustomer, Subject: "T2", Content: "x"}))

	list, err := s.Reports(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "# two", list[0].Content)

	all, err := s.Reports(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = s.Report(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotices(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	n := &types.AlertNotice{
		LaundryID:  "L1",
		Threshold:  8,
		Dates:      []time.Time{day("2025-06-14"), day("2025-06-15")},
		Recipients: []string{"ops@example.com", "lead@example.com"},
		Message:    "Peak demand alert for Laundry L1 on the following dates:",
	}
	require.NoError(t, s.SaveNotice(ctx, n))
	assert.NotEmpty(t, n.ID)

	n.Delivered = true
	require.NoError(t, s.SaveNotice(ctx, n))

	require.NoError(t, s.SaveNotice(ctx, &types.AlertNotice{LaundryID: "L2", Threshold: 5}))

	list, err := s.Notices(ctx, "L1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, n.ID, got.ID)
	assert.True(t, got.Delivered)
	assert.Equal(t, n.Dates, got.Dates)
	assert.Equal(t, n.Recipients, got.Recipients)
	assert.InDelta(t, 8, got.Threshold, 1e-9)

	all, err := s.Notices(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// --- export ---

func TestExport(t *testing.T) {
	s, dir := testStore(t)
	ctx := context.Background()
	_, err := s.Ingest(ctx, writeCSV(t, dir, "orders.csv", ordersCSV), &bytes.Buffer{})
	require.NoError(t, err)

	t.Run("yaml", func(t *testing.T) {
		path, err := s.Export(ctx, "yaml", "")
		require.NoError(t, err)
		assert.Equal(t, "orders.yaml", filepath.Base(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var orders []types.Order
		require.NoError(t, yaml.Unmarshal(data, &orders))
		assert.Len(t, orders, 4)
	})

	t.Run("json", func(t *testing.T) {
		out := filepath.Join(dir, "out")
		path, err := s.Export(ctx, "json", out)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(out, "orders.json"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var orders []types.Order
		require.NoError(t, json.Unmarshal(data, &orders))
		require.Len(t, orders, 4)
		assert.Equal(t, "T1", orders[0].TenantID)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := s.Export(ctx, "xml", "")
		assert.Error(t, err)
	})
}

// --- driver failures ---

func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlite3"), t.TempDir()), mock
}

func TestCountQueryError(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("SELECT count").WillReturnError(errors.New("disk I/O error"))

	_, err := s.Count(context.Background())
	assert.ErrorContains(t, err, "counting orders")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastIngestQueryError(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("SELECT id, source, hash").WillReturnError(errors.New("database is locked"))

	_, err := s.LastIngest(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticesDecodeError(t *testing.T) {
	s, mock := mockStore(t)
	rows := sqlmock.NewRows([]string{"id", "laundry_id", "threshold", "dates", "recipients", "message", "delivered", "created_at"}).
		AddRow("n1", "L1", 8.0, "not json", "[]", "m", false, time.Now())
	mock.ExpectQuery("SELECT id, laundry_id").WithArgs("L1").WillReturnRows(rows)

	_, err := s.Notices(context.Background(), "L1")
	assert.ErrorContains(t, err, "decoding notice n1 dates")
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	s := New(sqlx.NewDb(db, "sqlite3"), "")

	mock.ExpectPing().WillReturnError(errors.New("gone"))
	assert.Error(t, s.Ping(context.Background()))
}
