// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/laundry-analytics/internal/dashboard"
	"github.com/pdiddy/laundry-analytics/internal/dataset"
	"github.com/pdiddy/laundry-analytics/internal/forecast"
	"github.com/pdiddy/laundry-analytics/internal/insight"
	"github.com/pdiddy/laundry-analytics/internal/reports"
	"github.com/pdiddy/laundry-analytics/internal/resource"
	"github.com/pdiddy/laundry-analytics/internal/store"
	"github.com/pdiddy/laundry-analytics/pkg/types"
)

var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Analyse a single customer (insights, forecast, resources, report)",
}

// --- insights subcommand ---

var customerInsightsCmd = &cobra.Command{
	Use:   "insights <tenant-id>",
	Short: "Show ordering patterns and recent orders for a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		orders, err := customerOrders(cmd.Context(), id)
		if err != nil {
			return err
		}
		in, err := insight.Customer(orders, id, time.Now())
		if err != nil {
			return err
		}
		out := dashboard.CustomerInsightsResponse{
			Insights:     in,
			Lines:        insight.Lines(in),
			RecentOrders: insight.RecentOrders(orders, insight.DefaultRecentOrders),
		}
		return writeOutput(cmd, out, func(w io.Writer) error {
			fmt.Fprintf(w, "Customer %s: %d orders\n\n", id, in.Orders)
			for _, line := range out.Lines {
				fmt.Fprintf(w, "  %s\n", line)
			}
			fmt.Fprintln(w, "\nRecent orders:")
			writeOrdersTable(w, out.RecentOrders)
			return nil
		})
	},
}

// --- forecast subcommand ---

var customerForecastCmd = &cobra.Command{
	Use:   "forecast <tenant-id>",
	Short: "Forecast a customer's daily demand",
	Long: `Forecast trains a Random Forest on the customer's daily order counts with
calendar, lag and rolling-mean features and predicts the configured horizon
(default 90 days) with a ±30% band. The text output lists the forecast up to
the end of the first forecast month; --all lists the whole horizon.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		orders, err := customerOrders(cmd.Context(), id)
		if err != nil {
			return err
		}
		f, err := forecast.Customer(cmd.Context(), orders, id, customerForecastOptions())
		if err != nil {
			return err
		}
		out := dashboard.ForecastResponse{
			Subject:  id,
			Series:   f.Series(),
			Summary:  forecast.Summarize(f),
			Detailed: forecast.Window(f, forecast.MonthEnd(f)).Points,
		}
		all, _ := cmd.Flags().GetBool("all")
		return writeOutput(cmd, out, func(w io.Writer) error {
			s := out.Summary
			fmt.Fprintf(w, "Customer %s forecast, %s to %s (%d days)\n",
				id, s.Start.Format(types.DateLayout), s.End.Format(types.DateLayout), s.Days)
			fmt.Fprintf(w, "Mean daily demand %.2f (range %.2f to %.2f), total %.1f\n\n",
				s.MeanYhat, s.MeanLower, s.MeanUpper, s.TotalYhat)
			points := out.Detailed
			if all {
				points = f.Points
			}
			writeForecastTable(w, points)
			return nil
		})
	},
}

// --- resources subcommand ---

var customerResourcesCmd = &cobra.Command{
	Use:   "resources <tenant-id>",
	Short: "Show a customer's resource use and projected requirements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		orders, err := customerOrders(cmd.Context(), id)
		if err != nil {
			return err
		}
		usage, err := resource.Customer(orders, id)
		if err != nil {
			return err
		}
		f, err := forecast.Customer(cmd.Context(), orders, id, customerForecastOptions())
		if err != nil {
			return err
		}
		out := dashboard.CustomerResourcesResponse{
			Usage:       usage,
			Projections: resource.Project(f, usage.Efficiency, time.Now()),
		}
		return writeOutput(cmd, out, func(w io.Writer) error {
			fmt.Fprintf(w, "Customer %s: %d orders\n", id, usage.Orders)
			fmt.Fprintf(w, "  Water:       %.1f L total, %.2f L per order\n", usage.TotalWater, usage.Efficiency.WaterPerOrder)
			fmt.Fprintf(w, "  Electricity: %.1f kWh total, %.2f kWh per order\n", usage.TotalElectricity, usage.Efficiency.ElectricityPerOrder)
			if len(out.Projections) == 0 {
				fmt.Fprintln(w, "\nNo forecast days ahead of today.")
				return nil
			}
			fmt.Fprintf(w, "\n%-10s  %8s  %10s  %10s\n", "Date", "Orders", "Water (L)", "kWh")
			fmt.Fprintln(w, strings.Repeat("-", 44))
			for _, p := range out.Projections {
				fmt.Fprintf(w, "%-10s  %8.2f  %10.1f  %10.2f\n",
					p.Date.Format(types.DateLayout), p.Orders, p.WaterNeeded, p.ElectricityNeeded)
			}
			return nil
		})
	},
}

// --- report subcommand ---

var customerReportCmd = &cobra.Command{
	Use:   "report <tenant-id>",
	Short: "Generate the markdown business report for a customer",
	Long: `Report renders the customer demand report: forecast period, expected
demand, weekly patterns, inventory recommendations, risk assessment and
business actions. --save writes it to the reports directory as
customer_<id>_report.md and records it in the store. --cached prints the
saved report instead of regenerating it, when one exists.`,
	Args: cobra.ExactArgs(1),
	RunE: runCustomerReport,
}

func runCustomerReport(cmd *cobra.Command, args []string) error {
	id := args[0]
	dir, _ := cmd.Flags().GetString("reports-dir")
	if dir == "" {
		dir = cfg.ReportsDir
	}
	filename := insight.ReportFilename(id)
	w := cmd.OutOrStdout()

	if cached, _ := cmd.Flags().GetBool("cached"); cached {
		content, ok, err := reports.Load(dir, filename)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprint(w, content)
			return nil
		}
		logger.Debug("no saved report, generating", zap.String("tenant_id", id))
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	orders, err := st.Orders(cmd.Context(), store.Filter{TenantID: id})
	if err != nil {
		return err
	}
	f, err := forecast.Customer(cmd.Context(), orders, id, customerForecastOptions())
	if err != nil {
		return err
	}
	content, err := insight.BusinessReport(f, id, orders)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		path, err := reports.Save(dir, filename, content)
		if err != nil {
			return err
		}
		rep := &types.Report{Kind: types.ReportCustomer, Subject: id, Filename: filename, Content: content}
		if err := st.SaveReport(cmd.Context(), rep); err != nil {
			return err
		}
		fmt.Fprintf(w, "Report saved to %s\n", path)
		return nil
	}

	fmt.Fprint(w, content)
	return nil
}

// --- shared helpers ---

// customerOrders loads tenantID's orders, failing with forecast.ErrNoData
// when there are none.
func customerOrders(ctx context.Context, tenantID string) ([]types.Order, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	orders, err := st.Orders(ctx, store.Filter{TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	if len(dataset.ByTenant(orders, tenantID)) == 0 {
		return nil, fmt.Errorf("customer %s: %w", tenantID, forecast.ErrNoData)
	}
	return orders, nil
}

func customerForecastOptions() forecast.Options {
	return forecast.Options{
		Days:   cfg.Forecast.CustomerDays,
		Forest: forecast.ForestOptions(cfg.Forecast.Customer),
	}
}

func init() {
	addOutputFlags(customerCmd)
	customerForecastCmd.Flags().Bool("all", false, "list the whole forecast horizon")
	customerReportCmd.Flags().Bool("save", false, "save the report to the reports directory")
	customerReportCmd.Flags().Bool("cached", false, "print the saved report when one exists")
	customerReportCmd.Flags().String("reports-dir", "", "reports directory (default: reports_dir from config)")

	customerCmd.AddCommand(customerInsightsCmd)
	customerCmd.AddCommand(customerForecastCmd)
	customerCmd.AddCommand(customerResourcesCmd)
	customerCmd.AddCommand(customerReportCmd)
	rootCmd.AddCommand(customerCmd)
}
