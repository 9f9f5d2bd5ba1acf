// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/laundry-analytics/internal/dashboard"
	"github.com/pdiddy/laundry-analytics/internal/forecast"
	"github.com/pdiddy/laundry-analytics/internal/insight"
	"github.com/pdiddy/laundry-analytics/internal/notify"
	"github.com/pdiddy/laundry-analytics/internal/resource"
	"github.com/pdiddy/laundry-analytics/internal/store"
	"github.com/pdiddy/laundry-analytics/pkg/types"
)

var laundryCmd = &cobra.Command{
	Use:   "laundry",
	Short: "Analyse a single laundry (forecast, alerts, resources, low-demand)",
}

// --- forecast subcommand ---

var laundryForecastCmd = &cobra.Command{
	Use:   "forecast <laundry-id>",
	Short: "Forecast a laundry's daily demand and list peak days",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		threshold, days, err := thresholdAndDays(cmd, 1, 20)
		if err != nil {
			return err
		}
		f, err := laundryForecast(cmd.Context(), id, days)
		if err != nil {
			return err
		}
		out := dashboard.LaundryForecastResponse{
			LaundryID: id,
			Threshold: threshold,
			Series:    f.Series(),
			PeakDays:  forecast.PeakDays(f, threshold),
		}
		return writeOutput(cmd, out, func(w io.Writer) error {
			fmt.Fprintf(w, "Laundry %s forecast (%d days)\n\n", id, len(f.Points))
			writeForecastTable(w, f.Points)
			fmt.Fprintf(w, "\n%d peak days above %g orders\n", len(out.PeakDays), threshold)
			return nil
		})
	},
}

// --- alerts subcommand ---

var laundryAlertsCmd = &cobra.Command{
	Use:   "alerts <laundry-id>",
	Short: "List forecast peak days with the peak action plan",
	Long: `Alerts lists the forecast days whose expected demand exceeds --threshold
(default 8) and prints the peak-day action plan. With --notify the alert is
recorded and posted to the configured webhook for the given --recipients.`,
	Args: cobra.ExactArgs(1),
	RunE: runLaundryAlerts,
}

func runLaundryAlerts(cmd *cobra.Command, args []string) error {
	id := args[0]
	threshold, days, err := thresholdAndDays(cmd, 1, 20)
	if err != nil {
		return err
	}
	f, err := laundryForecast(cmd.Context(), id, days)
	if err != nil {
		return err
	}

	out := dashboard.AlertsResponse{LaundryID: id, Threshold: threshold, Alerts: forecast.PeakDays(f, threshold)}
	if len(out.Alerts) > 0 {
		out.Plan = insight.PeakActionPlan()
	}
	err = writeOutput(cmd, out, func(w io.Writer) error {
		if len(out.Alerts) == 0 {
			fmt.Fprintf(w, "No peak days above %g orders for Laundry %s.\n", threshold, id)
			return nil
		}
		fmt.Fprintf(w, "Peak demand alerts for Laundry %s (threshold %g)\n\n", id, threshold)
		writeForecastTable(w, out.Alerts)
		writePlan(w, "Peak day action plan", out.Plan)
		return nil
	})
	if err != nil {
		return err
	}

	if send, _ := cmd.Flags().GetBool("notify"); !send {
		return nil
	}
	if len(out.Alerts) == 0 {
		return fmt.Errorf("no peak days to notify for laundry %s", id)
	}
	list, _ := cmd.Flags().GetString("recipients")
	recipients := notify.ParseRecipients(list)
	if len(recipients) == 0 {
		return fmt.Errorf("--recipients is required with --notify")
	}
	message, _ := cmd.Flags().GetString("message")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	notice := notify.NewNotice(id, threshold, out.Alerts, recipients, message)
	if err := notify.New(cfg.Notify, st, logger).Send(cmd.Context(), notice); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Alert notice %s recorded (delivered: %t)\n", notice.ID, notice.Delivered)
	return nil
}

// --- notices subcommand ---

var laundryNoticesCmd = &cobra.Command{
	Use:   "notices [laundry-id]",
	Short: "List recorded alert notices, optionally for one laundry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		laundryID := ""
		if len(args) == 1 {
			laundryID = args[0]
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		notices, err := st.Notices(cmd.Context(), laundryID)
		if err != nil {
			return err
		}
		return writeOutput(cmd, notices, func(w io.Writer) error {
			if len(notices) == 0 {
				fmt.Fprintln(w, "No alert notices recorded.")
				return nil
			}
			for _, n := range notices {
				dates := make([]string, len(n.Dates))
				for i, d := range n.Dates {
					dates[i] = d.Format(types.DateLayout)
				}
				fmt.Fprintf(w, "%s  %-8s  delivered=%-5t  %s  [%s]\n",
					n.CreatedAt.Format("2006-01-02 15:04"), n.LaundryID, n.Delivered,
					strings.Join(n.Recipients, ","), strings.Join(dates, ", "))
			}
			return nil
		})
	},
}

// --- resources subcommand ---

var laundryResourcesCmd = &cobra.Command{
	Use:   "resources <laundry-id>",
	Short: "Analyse daily water and electricity use and flag anomalies",
	Long: `Resources aggregates a laundry's daily water and electricity use, fits a
per-order linear baseline for each and runs an Isolation Forest over the
residuals. Anomalous days with few orders raise an alert.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		orders, err := laundryOrders(cmd.Context(), id)
		if err != nil {
			return err
		}
		rows, err := resource.Laundry(cmd.Context(), orders, id, resource.OptionsFrom(cfg.Anomaly))
		if err != nil {
			return err
		}
		out := dashboard.LaundryResourcesResponse{
			LaundryID:  id,
			Rows:       rows,
			Alerts:     resource.Alerts(rows),
			Efficiency: resource.Efficiency(rows),
		}
		return writeOutput(cmd, out, func(w io.Writer) error {
			fmt.Fprintf(w, "Laundry %s: %d days\n", id, len(rows))
			fmt.Fprintf(w, "  Water per order:       %.2f L\n", out.Efficiency.WaterPerOrder)
			fmt.Fprintf(w, "  Electricity per order: %.2f kWh\n\n", out.Efficiency.ElectricityPerOrder)

			fmt.Fprintf(w, "%-10s  %6s  %10s  %10s  %-8s  %s\n", "Date", "Orders", "Water", "kWh", "Label", "Alert")
			fmt.Fprintln(w, strings.Repeat("-", 80))
			for _, r := range rows {
				if r.AnomalyLabel != types.LabelAnomaly {
					continue
				}
				fmt.Fprintf(w, "%-10s  %6d  %10.1f  %10.2f  %-8s  %s\n",
					r.Date.Format(types.DateLayout), r.OrderCount, r.WaterConsumption,
					r.ElectricityConsumption, r.AnomalyLabel, r.Alert)
			}
			fmt.Fprintf(w, "\n%d alerts\n", len(out.Alerts))
			return nil
		})
	},
}

// --- low-demand subcommand ---

var laundryLowDemandCmd = &cobra.Command{
	Use:   "low-demand <laundry-id>",
	Short: "List forecast low-demand days with the optimization plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		threshold, days, err := thresholdAndDays(cmd, 1, 10)
		if err != nil {
			return err
		}
		f, err := laundryForecast(cmd.Context(), id, days)
		if err != nil {
			return err
		}
		out := dashboard.LowDemandResponse{LaundryID: id, Threshold: threshold, Days: forecast.LowDemandDays(f, threshold)}
		if len(out.Days) > 0 {
			out.Plan = insight.LowDemandPlan()
		}
		return writeOutput(cmd, out, func(w io.Writer) error {
			if len(out.Days) == 0 {
				fmt.Fprintf(w, "No low-demand days below %g orders for Laundry %s.\n", threshold, id)
				return nil
			}
			fmt.Fprintf(w, "Low-demand days for Laundry %s (threshold %g)\n\n", id, threshold)
			writeForecastTable(w, out.Days)
			writePlan(w, "Resource optimization plan", out.Plan)
			return nil
		})
	},
}

// --- shared helpers ---

// thresholdAndDays reads --threshold and --days, checking the threshold
// lies within [lo, hi].
func thresholdAndDays(cmd *cobra.Command, lo, hi float64) (float64, int, error) {
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	days, _ := cmd.Flags().GetInt("days")
	if threshold < lo || threshold > hi {
		return 0, 0, fmt.Errorf("--threshold must be between %g and %g", lo, hi)
	}
	if days < 1 || days > 365 {
		return 0, 0, fmt.Errorf("--days must be between 1 and 365")
	}
	return threshold, days, nil
}

func laundryOrders(ctx context.Context, laundryID string) ([]types.Order, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Orders(ctx, store.Filter{LaundryID: laundryID})
}

func laundryForecast(ctx context.Context, laundryID string, days int) (*types.Forecast, error) {
	orders, err := laundryOrders(ctx, laundryID)
	if err != nil {
		return nil, err
	}
	return forecast.Laundry(ctx, orders, laundryID, forecast.Options{
		Days:   days,
		Forest: forecast.ForestOptions(cfg.Forecast.Laundry),
	})
}

func init() {
	addOutputFlags(laundryCmd)

	laundryForecastCmd.Flags().Float64("threshold", forecast.DefaultPeakThreshold, "peak-day threshold in orders (1-20)")
	laundryForecastCmd.Flags().Int("days", forecast.DefaultPeakDays, "forecast horizon in days")

	laundryAlertsCmd.Flags().Float64("threshold", forecast.DefaultAlertThreshold, "alert threshold in orders (1-20)")
	laundryAlertsCmd.Flags().Int("days", forecast.DefaultPeakDays, "forecast horizon in days")
	laundryAlertsCmd.Flags().Bool("notify", false, "record the alert and post it to the configured webhook")
	laundryAlertsCmd.Flags().String("recipients", "", "comma-separated alert recipients")
	laundryAlertsCmd.Flags().String("message", "", "alert message (default: peak demand alert for the laundry)")

	laundryLowDemandCmd.Flags().Float64("threshold", forecast.DefaultLowDemandThreshold, "low-demand threshold in orders (1-10)")
	laundryLowDemandCmd.Flags().Int("days", forecast.DefaultLowDemandDays, "forecast horizon in days")

	laundryCmd.AddCommand(laundryForecastCmd)
	laundryCmd.AddCommand(laundryAlertsCmd)
	laundryCmd.AddCommand(laundryNoticesCmd)
	laundryCmd.AddCommand(laundryResourcesCmd)
	laundryCmd.AddCommand(laundryLowDemandCmd)
	rootCmd.AddCommand(laundryCmd)
}
