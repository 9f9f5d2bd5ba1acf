// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List and show saved reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list [subject]",
	Short: "List saved reports, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := ""
		if len(args) == 1 {
			subject = args[0]
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		list, err := st.Reports(cmd.Context(), subject)
		if err != nil {
			return err
		}
		return writeOutput(cmd, list, func(w io.Writer) error {
			if len(list) == 0 {
				fmt.Fprintln(w, "No reports saved.")
				return nil
			}
			fmt.Fprintf(w, "%-36s  %-8s  %-10s  %-16s  %s\n", "ID", "Kind", "Subject", "Created", "File")
			for _, r := range list {
				fmt.Fprintf(w, "%-36s  %-8s  %-10s  %-16s  %s\n",
					r.ID, r.Kind, r.Subject, r.CreatedAt.Format("2006-01-02 15:04"), r.Filename)
			}
			return nil
		})
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Print a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		r, err := st.Report(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd, r, func(w io.Writer) error {
			_, err := fmt.Fprint(w, r.Content)
			return err
		})
	},
}

func init() {
	addOutputFlags(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	rootCmd.AddCommand(reportsCmd)
}
