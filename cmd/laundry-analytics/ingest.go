// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/laundry-analytics/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <csv>...",
	Short: "Load order CSV files into the order store",
	Long: `Ingest reads laundry order CSV files (StartDate, LaundryID, TenantID and
optional Item, Service, Water_Litres, Electricity_kWh, IsHoliday, IsWeekend
columns) into the SQLite order store. A file whose content has not changed
since its last ingest is skipped; a changed file replaces its earlier rows.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, path := range args {
		if _, err := st.Ingest(cmd.Context(), path, cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	return nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stored orders to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		dir, _ := cmd.Flags().GetString("dir")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		path, err := st.Export(cmd.Context(), format, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the order store",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return writeOutput(cmd, stats, func(w io.Writer) error {
			fmt.Fprintf(w, "Orders:    %d\n", stats.Orders)
			fmt.Fprintf(w, "Customers: %d\n", stats.Tenants)
			fmt.Fprintf(w, "Laundries: %d\n", stats.Laundries)
			if stats.Orders > 0 {
				fmt.Fprintf(w, "Period:    %s to %s\n",
					stats.First.Format(types.DateLayout), stats.Last.Format(types.DateLayout))
			}
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("dir", "", "output directory (default: <data-dir>/export)")
	addOutputFlags(statsCmd)

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
}
