// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/laundry-analytics/pkg/types"
)

type memRecorder struct {
	saved []types.AlertNotice
	err   error
}

func (m *memRecorder) SaveNotice(_ context.Context, n *types.AlertNotice) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *n)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func peakNotice() *types.AlertNotice {
	peaks := []types.ForecastPoint{
		{Date: day(2025, 8, 2), Yhat: 9.4},
		{Date: day(2025, 8, 3), Yhat: 10.1},
	}
	return NewNotice("L1", 8, peaks, []string{"ops@example.com"}, "")
}

func TestParseRecipients(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a@x.com, b@x.com", []string{"a@x.com", "b@x.com"}},
		{" a@x.com ,, ,b@x.com,", []string{"a@x.com", "b@x.com"}},
		{"", nil},
		{" , ", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRecipients(tt.in), "ParseRecipients(%q)", tt.in)
	}
}

func TestNewNotice(t *testing.T) {
	n := peakNotice()
	assert.Equal(t, "Peak demand alert for Laundry L1 on the following dates:", n.Message)
	assert.Equal(t, []time.Time{day(2025, 8, 2), day(2025, 8, 3)}, n.Dates)
	assert.InDelta(t, 8, n.Threshold, 1e-9)

	custom := NewNotice("L2", 5, nil, nil, "Heads up")
	assert.Equal(t, "Heads up", custom.Message)
}

func TestSendWithoutWebhook(t *testing.T) {
	rec := &memRecorder{}
	n := peakNotice()

	err := New(types.NotifyConfig{}, rec, nil).Send(context.Background(), n)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Delivered)
	require.Len(t, rec.saved, 1)
	assert.Equal(t, n.ID, rec.saved[0].ID)
}

func TestSendDelivers(t *testing.T) {
	var got payload
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	rec := &memRecorder{}
	cfg := types.NotifyConfig{WebhookURL: ts.URL, Token: "tok123"}
	n := peakNotice()

	require.NoError(t, New(cfg, rec, zap.NewNop()).Send(context.Background(), n))
	assert.True(t, n.Delivered)
	assert.Equal(t, "Bearer tok123", auth)
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, []string{"2025-08-02", "2025-08-03"}, got.Dates)
	assert.Equal(t, "Peak demand alert for Laundry L1 on the following dates: 2025-08-02, 2025-08-03", got.Text)
	require.Len(t, rec.saved, 1)
	assert.True(t, rec.saved[0].Delivered)
}

func TestSendRetriesRateLimit(t *testing.T) {
	var calls int32
	ts := statusSequence(t, &calls, 429, 429, 200)

	rec := &memRecorder{}
	n := peakNotice()
	require.NoError(t, New(types.NotifyConfig{WebhookURL: ts.URL}, rec, nil).Send(context.Background(), n))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.True(t, n.Delivered)
}

func TestSendRejected(t *testing.T) {
	var calls int32
	ts := statusSequence(t, &calls, http.StatusInternalServerError)

	rec := &memRecorder{}
	n := peakNotice()
	err := New(types.NotifyConfig{WebhookURL: ts.URL}, rec, nil).Send(context.Background(), n)
	assert.ErrorIs(t, err, ErrDelivery)
	require.Len(t, rec.saved, 1, "failed notices are still recorded")
	assert.False(t, rec.saved[0].Delivered)
}

func TestSendRecorderError(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	err := New(types.NotifyConfig{}, rec, nil).Send(context.Background(), peakNotice())
	assert.ErrorContains(t, err, "recording notice")
}
