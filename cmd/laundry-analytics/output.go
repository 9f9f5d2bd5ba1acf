// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/laundry-analytics/pkg/types"
)

// addOutputFlags registers --json and --yaml on cmd and its subcommands.
func addOutputFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("json", false, "output results as JSON")
	cmd.PersistentFlags().Bool("yaml", false, "output results as YAML")
}

// writeOutput encodes v as JSON or YAML when requested, and otherwise
// calls text.
func writeOutput(cmd *cobra.Command, v any, text func(w io.Writer) error) error {
	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return text(w)
}

func writeForecastTable(w io.Writer, points []types.ForecastPoint) {
	fmt.Fprintf(w, "%-10s  %8s  %8s  %8s\n", "Date", "Forecast", "Lower", "Upper")
	fmt.Fprintln(w, strings.Repeat("-", 42))
	for _, p := range points {
		fmt.Fprintf(w, "%-10s  %8.2f  %8.2f  %8.2f\n",
			p.Date.Format(types.DateLayout), p.Yhat, p.Lower, p.Upper)
	}
}

func writeOrdersTable(w io.Writer, orders []types.Order) {
	fmt.Fprintf(w, "%-10s  %-8s  %-8s  %-15s  %-12s  %8s  %8s\n",
		"Date", "Laundry", "Tenant", "Item", "Service", "Water", "kWh")
	fmt.Fprintln(w, strings.Repeat("-", 81))
	for _, o := range orders {
		fmt.Fprintf(w, "%-10s  %-8s  %-8s  %-15s  %-12s  %8.1f  %8.2f\n",
			o.StartDate.Format(types.DateLayout), o.LaundryID, o.TenantID,
			truncate(o.Item, 15), truncate(o.Service, 12), o.WaterLitres, o.ElectricityKWh)
	}
}

func writePlan(w io.Writer, title string, plan []types.Recommendation) {
	fmt.Fprintf(w, "\n%s\n\n", title)
	for i, rec := range plan {
		fmt.Fprintf(w, "%d. %s\n", i+1, rec.Title)
		for _, a := range rec.Actions {
			fmt.Fprintf(w, "   - %s\n", a)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
