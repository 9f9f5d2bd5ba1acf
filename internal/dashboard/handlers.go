// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/laundry-analytics/internal/dataset"
	"github.com/pdiddy/laundry-analytics/internal/forecast"
	"github.com/pdiddy/laundry-analytics/internal/insight"
	"github.com/pdiddy/laundry-analytics/internal/notify"
	"github.com/pdiddy/laundry-analytics/internal/reports"
	"github.com/pdiddy/laundry-analytics/internal/resource"
	"github.com/pdiddy/laundry-analytics/internal/store"
	"github.com/pdiddy/laundry-analytics/pkg/types"
)

const overviewSample = 10

const (
	subjectCustomer = "Customer"
	subjectLaundry  = "Laundry"
)

// Overview is the body of GET /api/v1/overview.
type Overview struct {
	Status      string        `json:"status"`
	Records     int           `json:"records"`
	Source      string        `json:"source,omitempty"`
	LastUpdated *time.Time    `json:"last_updated,omitempty"`
	Sample      []types.Order `json:"sample"`
}

// CustomerInsightsResponse is the body of the customer insights endpoint.
type CustomerInsightsResponse struct {
	Insights     *types.CustomerInsights `json:"insights"`
	Lines        []string                `json:"lines"`
	RecentOrders []types.Order           `json:"recent_orders"`
}

// ForecastResponse carries a forecast as a chart series.
type ForecastResponse struct {
	Subject  string                `json:"subject"`
	Series   []types.ForecastPoint `json:"series"`
	Summary  types.ForecastSummary `json:"summary"`
	Detailed []types.ForecastPoint `json:"detailed,omitempty"`
}

// CustomerResourcesResponse is the body of the customer resources endpoint.
type CustomerResourcesResponse struct {
	Usage       *types.CustomerUsage       `json:"usage"`
	Projections []types.ResourceProjection `json:"projections"`
}

// ReportResponse is the body of the customer report endpoint.
type ReportResponse struct {
	TenantID string `json:"tenant_id"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// LaundryForecastResponse is the body of the laundry forecast endpoint.
type LaundryForecastResponse struct {
	LaundryID string                `json:"laundry_id"`
	Threshold float64               `json:"threshold"`
	Series    []types.ForecastPoint `json:"series"`
	PeakDays  []types.ForecastPoint `json:"peak_days"`
}

// AlertsResponse is the body of the laundry alerts endpoint.
type AlertsResponse struct {
	LaundryID string                 `json:"laundry_id"`
	Threshold float64                `json:"threshold"`
	Alerts    []types.ForecastPoint  `json:"alerts"`
	Plan      []types.Recommendation `json:"plan,omitempty"`
}

// LowDemandResponse is the body of the laundry low-demand endpoint.
type LowDemandResponse struct {
	LaundryID string                 `json:"laundry_id"`
	Threshold float64                `json:"threshold"`
	Days      []types.ForecastPoint  `json:"days"`
	Plan      []types.Recommendation `json:"plan,omitempty"`
}

// LaundryResourcesResponse is the body of the laundry resources endpoint.
type LaundryResourcesResponse struct {
	LaundryID  string             `json:"laundry_id"`
	Rows       []types.DailyUsage `json:"rows"`
	Alerts     []types.DailyUsage `json:"alerts"`
	Efficiency types.Efficiency   `json:"efficiency"`
}

type laundryForecastQuery struct {
	Threshold float64 `validate:"gte=1,lte=20"`
	Days      int     `validate:"gte=1,lte=365"`
}

type lowDemandQuery struct {
	Threshold float64 `validate:"gte=1,lte=10"`
	Days      int     `validate:"gte=1,lte=365"`
}

// NotifyRequest is the body of POST /api/v1/laundries/{id}/alerts/notify.
type NotifyRequest struct {
	// Recipients is a comma-separated list.
	Recipients string  `json:"recipients" validate:"required"`
	Message    string  `json:"message"`
	Threshold  float64 `json:"threshold" validate:"omitempty,gte=1,lte=20"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Warn("readiness check failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "unavailable", "database unreachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	var (
		count  int
		run    *store.IngestRun
		sample []types.Order
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		count, err = s.store.Count(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		run, err = s.store.LastIngest(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		sample, err = s.store.Sample(ctx, overviewSample)
		return err
	})
	if err := g.Wait(); err != nil {
		s.internalError(w, "loading overview", err)
		return
	}

	out := Overview{Status: "No data loaded", Records: count, Sample: sample}
	if out.Sample == nil {
		out.Sample = []types.Order{}
	}
	if count > 0 {
		out.Status = "Data loaded successfully"
	}
	if run != nil {
		out.Source = run.Source
		at := run.IngestedAt
		out.LastUpdated = &at
	}
	respondData(w, http.StatusOK, out)
}

func (s *Server) handleCustomerInsights(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	orders, ok := s.loadOrders(w, r)
	if !ok {
		return
	}
	in, err := insight.Customer(orders, id, s.now())
	if err != nil {
		s.analysisError(w, subjectCustomer, id, err)
		return
	}
	respondData(w, http.StatusOK, CustomerInsightsResponse{
		Insights:     in,
		Lines:        insight.Lines(in),
		RecentOrders: insight.RecentOrders(dataset.ByTenant(orders, id), insight.DefaultRecentOrders),
	})
}

func (s *Server) handleCustomerForecast(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	orders, ok := s.loadOrders(w, r)
	if !ok {
		return
	}
	f, err := forecast.Customer(r.Context(), orders, id, s.customerOptions())
	if err != nil {
		s.analysisError(w, subjectCustomer, id, err)
		return
	}
	respondData(w, http.StatusOK, ForecastResponse{
		Subject:  id,
		Series:   f.Series(),
		Summary:  forecast.Summarize(f),
		Detailed: forecast.Window(f, forecast.MonthEnd(f)).Points,
	})
}

func (s *Server) handleCustomerResources(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	orders, ok := s.loadOrders(w, r)
	if !ok {
		return
	}

	var (
		usage *types.CustomerUsage
		f     *types.Forecast
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		usage, err = resource.Customer(orders, id)
		return err
	})
	g.Go(func() error {
		var err error
		f, err = forecast.Customer(ctx, orders, id, s.customerOptions())
		return err
	})
	if err := g.Wait(); err != nil {
		s.analysisError(w, subjectCustomer, id, err)
		return
	}

	projections := resource.Project(f, usage.Efficiency, s.now())
	if projections == nil {
		projections = []types.ResourceProjection{}
	}
	respondData(w, http.StatusOK, CustomerResourcesResponse{Usage: usage, Projections: projections})
}

func (s *Server) handleCustomerReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	orders, ok := s.loadOrders(w, r)
	if !ok {
		return
	}
	f, err := forecast.Customer(r.Context(), orders, id, s.customerOptions())
	if err != nil {
		s.analysisError(w, subjectCustomer, id, err)
		return
	}
	content, err := insight.BusinessReport(f, id, orders)
	if err != nil {
		s.analysisError(w, subjectCustomer, id, err)
		return
	}
	filename := insight.ReportFilename(id)

	if r.URL.Query().Get("download") != "true" {
		respondData(w, http.StatusOK, ReportResponse{TenantID: id, Filename: filename, Content: content})
		return
	}

	if _, err := reports.Save(s.cfg.ReportsDir, filename, content); err != nil {
		s.internalError(w, "saving report file", err)
		return
	}
	rep := &types.Report{Kind: types.ReportCustomer, Subject: id, Filename: filename, Content: content}
	if err := s.store.SaveReport(r.Context(), rep); err != nil {
		s.internalError(w, "recording report", err)
		return
	}
	s.log.Info("report saved", zap.String("id", rep.ID), zap.String("tenant_id", id))

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (s *Server) handleLaundryForecast(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q, ok := s.parseLaundryQuery(w, r, forecast.DefaultPeakThreshold)
	if !ok {
		return
	}
	f, ok := s.laundryForecast(w, r, id, q.Days)
	if !ok {
		return
	}
	peaks := forecast.PeakDays(f, q.Threshold)
	if peaks == nil {
		peaks = []types.ForecastPoint{}
	}
	respondData(w, http.StatusOK, LaundryForecastResponse{
		LaundryID: id,
		Threshold: q.Threshold,
		Series:    f.Series(),
		PeakDays:  peaks,
	})
}

func (s *Server) handleLaundryAlerts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q, ok := s.parseLaundryQuery(w, r, forecast.DefaultAlertThreshold)
	if !ok {
		return
	}
	f, ok := s.laundryForecast(w, r, id, q.Days)
	if !ok {
		return
	}
	out := AlertsResponse{LaundryID: id, Threshold: q.Threshold, Alerts: forecast.PeakDays(f, q.Threshold)}
	if len(out.Alerts) > 0 {
		out.Plan = insight.PeakActionPlan()
	} else {
		out.Alerts = []types.ForecastPoint{}
	}
	respondData(w, http.StatusOK, out)
}

func (s *Server) handleLaundryNotify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.notifier == nil {
		respondError(w, http.StatusServiceUnavailable, "unavailable", "notifications are not configured")
		return
	}

	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondInvalid(w, err)
		return
	}
	recipients := notify.ParseRecipients(req.Recipients)
	if len(recipients) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "at least one recipient is required")
		return
	}
	if req.Threshold == 0 {
		req.Threshold = forecast.DefaultAlertThreshold
	}

	f, ok := s.laundryForecast(w, r, id, s.peakDays())
	if !ok {
		return
	}
	peaks := forecast.PeakDays(f, req.Threshold)
	if len(peaks) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "no_peak_days",
			fmt.Sprintf("No peak days above %g for Laundry ID: %s", req.Threshold, id))
		return
	}

	notice := notify.NewNotice(id, req.Threshold, peaks, recipients, req.Message)
	if err := s.notifier.Send(r.Context(), notice); err != nil {
		if errors.Is(err, notify.ErrDelivery) {
			respondError(w, http.StatusBadGateway, "delivery_failed", err.Error())
			return
		}
		s.internalError(w, "sending notice", err)
		return
	}
	respondData(w, http.StatusCreated, notice)
}

func (s *Server) handleLaundryResources(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	orders, ok := s.loadOrders(w, r)
	if !ok {
		return
	}
	rows, err := resource.Laundry(r.Context(), orders, id, resource.OptionsFrom(s.cfg.Anomaly))
	if err != nil {
		s.analysisError(w, subjectLaundry, id, err)
		return
	}
	alerts := resource.Alerts(rows)
	if alerts == nil {
		alerts = []types.DailyUsage{}
	}
	respondData(w, http.StatusOK, LaundryResourcesResponse{
		LaundryID:  id,
		Rows:       rows,
		Alerts:     alerts,
		Efficiency: resource.Efficiency(rows),
	})
}

func (s *Server) handleLaundryLowDemand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	days := s.cfg.Forecast.LowDemandDays
	if days <= 0 {
		days = forecast.DefaultLowDemandDays
	}

	var q lowDemandQuery
	var err error
	if q.Threshold, err = queryFloat(r, "threshold", forecast.DefaultLowDemandThreshold); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if q.Days, err = queryInt(r, "days", days); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := validate.Struct(q); err != nil {
		respondInvalid(w, err)
		return
	}

	f, ok := s.laundryForecast(w, r, id, q.Days)
	if !ok {
		return
	}
	out := LowDemandResponse{LaundryID: id, Threshold: q.Threshold, Days: forecast.LowDemandDays(f, q.Threshold)}
	if len(out.Days) > 0 {
		out.Plan = insight.LowDemandPlan()
	} else {
		out.Days = []types.ForecastPoint{}
	}
	respondData(w, http.StatusOK, out)
}

// parseLaundryQuery reads and validates ?threshold and ?days.
func (s *Server) parseLaundryQuery(w http.ResponseWriter, r *http.Request, defThreshold float64) (laundryForecastQuery, bool) {
	var q laundryForecastQuery
	var err error
	if q.Threshold, err = queryFloat(r, "threshold", defThreshold); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return q, false
	}
	if q.Days, err = queryInt(r, "days", s.peakDays()); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return q, false
	}
	if err := validate.Struct(q); err != nil {
		respondInvalid(w, err)
		return q, false
	}
	return q, true
}

func (s *Server) peakDays() int {
	if s.cfg.Forecast.PeakDays > 0 {
		return s.cfg.Forecast.PeakDays
	}
	return forecast.DefaultPeakDays
}

func (s *Server) customerOptions() forecast.Options {
	return forecast.Options{
		Days:   s.cfg.Forecast.CustomerDays,
		Forest: forecast.ForestOptions(s.cfg.Forecast.Customer),
		Now:    s.now,
	}
}

// laundryForecast loads the orders and forecasts days ahead for laundryID,
// writing the error reply itself on failure.
func (s *Server) laundryForecast(w http.ResponseWriter, r *http.Request, laundryID string, days int) (*types.Forecast, bool) {
	orders, ok := s.loadOrders(w, r)
	if !ok {
		return nil, false
	}
	f, err := forecast.Laundry(r.Context(), orders, laundryID, forecast.Options{
		Days:   days,
		Forest: forecast.ForestOptions(s.cfg.Forecast.Laundry),
		Now:    s.now,
	})
	if err != nil {
		s.analysisError(w, subjectLaundry, laundryID, err)
		return nil, false
	}
	return f, true
}

func (s *Server) loadOrders(w http.ResponseWriter, r *http.Request) ([]types.Order, bool) {
	orders, err := s.orders.load(r.Context())
	if err != nil {
		s.internalError(w, "loading orders", err)
		return nil, false
	}
	return orders, true
}

// analysisError maps an analysis failure to 404 for unknown subjects and
// 500 otherwise.
func (s *Server) analysisError(w http.ResponseWriter, subject, id string, err error) {
	if errors.Is(err, forecast.ErrNoData) {
		respondError(w, http.StatusNotFound, "not_found", fmt.Sprintf("No data found for %s ID: %s", subject, id))
		return
	}
	s.internalError(w, "analysing "+subject+" "+id, err)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op, zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal_error", "failed "+op)
}
