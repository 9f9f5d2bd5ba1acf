// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/laundry-analytics/pkg/types"
)

// SaveReport stores r, assigning an ID and CreatedAt when they are unset.
func (s *Store) SaveReport(ctx context.Context, r *types.Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO reports (id, kind, subject, filename, content, created_at)
		 VALUES (:id, :kind, :subject, :filename, :content, :created_at)
		 ON CONFLICT(id) DO UPDATE SET
			kind=excluded.kind, subject=excluded.subject, filename=excluded.filename,
			content=excluded.content, created_at=excluded.created_at`, r)
	if err != nil {
		return fmt.Errorf("saving report %s: %w", r.ID, err)
	}
	return nil
}

// Report returns the report with the given ID.
func (s *Store) Report(ctx context.Context, id string) (*types.Report, error) {
	var r types.Report
	err := s.db.GetContext(ctx, &r,
		`SELECT id, kind, subject, filename, content, created_at FROM reports WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying report %s: %w", id, err)
	}
	return &r, nil
}

// Reports lists the reports for subject, newest first. An empty subject
// lists every report.
func (s *Store) Reports(ctx context.Context, subject string) ([]types.Report, error) {
	query := `SELECT id, kind, subject, filename, content, created_at FROM reports`
	var args []any
	if subject != "" {
		query += ` WHERE subject = ?`
		args = append(args, subject)
	}
	query += ` ORDER BY created_at DESC`

	var out []types.Report
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return out, nil
}

// dbNotice is an alert notice row; list fields are stored as JSON arrays.
type dbNotice struct {
	ID         string    `db:"id"`
	LaundryID  string    `db:"laundry_id"`
	Threshold  float64   `db:"threshold"`
	Dates      string    `db:"dates"`
	Recipients string    `db:"recipients"`
	Message    string    `db:"message"`
	Delivered  bool      `db:"delivered"`
	CreatedAt  time.Time `db:"created_at"`
}

func fromNotice(n *types.AlertNotice) (dbNotice, error) {
	dates := make([]string, len(n.Dates))
	for i, d := range n.Dates {
		dates[i] = d.Format(types.DateLayout)
	}
	datesJSON, err := json.Marshal(dates)
	if err != nil {
		return dbNotice{}, err
	}
	recipients := n.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	recipientsJSON, err := json.Marshal(recipients)
	if err != nil {
		return dbNotice{}, err
	}
	return dbNotice{
		ID:         n.ID,
		LaundryID:  n.LaundryID,
		Threshold:  n.Threshold,
		Dates:      string(datesJSON),
		Recipients: string(recipientsJSON),
		Message:    n.Message,
		Delivered:  n.Delivered,
		CreatedAt:  n.CreatedAt,
	}, nil
}

func (r dbNotice) toNotice() (types.AlertNotice, error) {
	n := types.AlertNotice{
		ID:        r.ID,
		LaundryID: r.LaundryID,
		Threshold: r.Threshold,
		Message:   r.Message,
		Delivered: r.Delivered,
		CreatedAt: r.CreatedAt,
	}
	var dates []string
	if err := json.Unmarshal([]byte(r.Dates), &dates); err != nil {
		return n, fmt.Errorf("decoding notice %s dates: %w", r.ID, err)
	}
	for _, d := range dates {
		t, err := time.Parse(types.DateLayout, d)
		if err != nil {
			return n, fmt.Errorf("decoding notice %s dates: %w", r.ID, err)
		}
		n.Dates = append(n.Dates, t)
	}
	if err := json.Unmarshal([]byte(r.Recipients), &n.Recipients); err != nil {
		return n, fmt.Errorf("decoding notice %s recipients: %w", r.ID, err)
	}
	return n, nil
}

// SaveNotice records an alert notice, assigning an ID and CreatedAt when
// they are unset.
func (s *Store) SaveNotice(ctx context.Context, n *types.AlertNotice) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	row, err := fromNotice(n)
	if err != nil {
		return fmt.Errorf("encoding notice %s: %w", n.ID, err)
	}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO alert_notices (id, laundry_id, threshold, dates, recipients, message, delivered, created_at)
		 VALUES (:id, :laundry_id, :threshold, :dates, :recipients, :message, :delivered, :created_at)
		 ON CONFLICT(id) DO UPDATE SET delivered=excluded.delivered`, row)
	if err != nil {
		return fmt.Errorf("saving notice %s: %w", n.ID, err)
	}
	return nil
}

// Notices lists the alert notices for laundryID, newest first. An empty
// laundryID lists every notice.
func (s *Store) Notices(ctx context.Context, laundryID string) ([]types.AlertNotice, error) {
	query := `SELECT id, laundry_id, threshold, dates, recipients, message, delivered, created_at
		FROM alert_notices`
	var args []any
	if laundryID != "" {
		query += ` WHERE laundry_id = ?`
		args = append(args, laundryID)
	}
	query += ` ORDER BY created_at DESC`

	var rows []dbNotice
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing notices: %w", err)
	}
	out := make([]types.AlertNotice, 0, len(rows))
	for _, r := range rows {
		n, err := r.toNotice()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
