// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify delivers peak-demand alert notices to a webhook and
// records every notice, delivered or not.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/laundry-analytics/pkg/types"
)

// ErrDelivery is returned when the webhook rejects a notice.
var ErrDelivery = errors.New("notice delivery failed")

// Recorder persists alert notices.
type Recorder interface {
	SaveNotice(ctx context.Context, n *types.AlertNotice) error
}

// Notifier records alert notices and posts them to the configured webhook.
type Notifier struct {
	cfg    types.NotifyConfig
	client *http.Client
	rec    Recorder
	log    *zap.Logger
}

// New returns a Notifier. A nil logger disables logging.
func New(cfg types.NotifyConfig, rec Recorder, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		rec:    rec,
		log:    log,
	}
}

// DefaultMessage returns the default alert text for laundryID.
func DefaultMessage(laundryID string) string {
	return fmt.Sprintf("Peak demand alert for Laundry %s on the following dates:", laundryID)
}

// ParseRecipients splits a comma-separated list, trimming entries and
// dropping empty ones.
func ParseRecipients(list string) []string {
	var out []string
	for _, r := range strings.Split(list, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// NewNotice builds the notice for the given peak days. An empty message
// selects DefaultMessage.
func NewNotice(laundryID string, threshold float64, peaks []types.ForecastPoint, recipients []string, message string) *types.AlertNotice {
	if strings.TrimSpace(message) == "" {
		message = DefaultMessage(laundryID)
	}
	n := &types.AlertNotice{
		LaundryID:  laundryID,
		Threshold:  threshold,
		Recipients: recipients,
		Message:    message,
	}
	for _, p := range peaks {
		n.Dates = append(n.Dates, p.Date)
	}
	return n
}

// payload is the JSON body posted to the webhook.
type payload struct {
	ID         string   `json:"id"`
	LaundryID  string   `json:"laundry_id"`
	Threshold  float64  `json:"threshold"`
	Message    string   `json:"message"`
	Dates      []string `json:"dates"`
	Recipients []string `json:"recipients"`
	Text       string   `json:"text"`
}

func newPayload(n *types.AlertNotice) payload {
	p := payload{
		ID:         n.ID,
		LaundryID:  n.LaundryID,
		Threshold:  n.Threshold,
		Message:    n.Message,
		Recipients: n.Recipients,
	}
	for _, d := range n.Dates {
		p.Dates = append(p.Dates, d.Format(types.DateLayout))
	}
	p.Text = n.Message
	if len(p.Dates) > 0 {
		p.Text += " " + strings.Join(p.Dates, ", ")
	}
	return p
}

// Send delivers n to the webhook when one is configured and records it.
// The notice is recorded even when delivery fails; Delivered reports the
// outcome.
func (nt *Notifier) Send(ctx context.Context, n *types.AlertNotice) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	var sendErr error
	if nt.cfg.WebhookURL != "" {
		sendErr = nt.post(ctx, n)
		n.Delivered = sendErr == nil
	} else {
		nt.log.Info("webhook not configured, recording notice only", zap.String("laundry_id", n.LaundryID))
	}

	if err := nt.rec.SaveNotice(ctx, n); err != nil {
		return errors.Join(sendErr, fmt.Errorf("recording notice: %w", err))
	}

	if sendErr != nil {
		nt.log.Warn("alert delivery failed", zap.String("laundry_id", n.LaundryID), zap.Error(sendErr))
		return sendErr
	}
	nt.log.Info("alert notice recorded",
		zap.String("id", n.ID),
		zap.String("laundry_id", n.LaundryID),
		zap.Int("dates", len(n.Dates)),
		zap.Bool("delivered", n.Delivered))
	return nil
}

func (nt *Notifier) post(ctx context.Context, n *types.AlertNotice) error {
	body, err := json.Marshal(newPayload(n))
	if err != nil {
		return fmt.Errorf("encoding notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, nt.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if nt.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+nt.cfg.Token)
	}

	resp, err := doWithRetry(ctx, nt.client, req, nt.cfg.MaxRetries, nt.log)
	if err != nil {
		return fmt.Errorf("posting notice: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: webhook returned HTTP %d", ErrDelivery, resp.StatusCode)
	}
	return nil
}
