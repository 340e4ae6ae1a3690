package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vivify-tools/vivsync/internal/vivsync/doctor"
)

var (
	okMark   = color.New(color.FgHiGreen).SprintFunc()
	failMark = color.New(color.FgHiRed, color.Bold).SprintFunc()
)

func init() {
	rootCmd.AddCommand(newDoctorCmd())
}

func newDoctorCmd() *cobra.Command {
	var asJSON bool

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the viv binary and the preview server are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			report := doctor.Run(cmd.Context(), cfg)

			if asJSON {
				data, err := report.JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				printReport(cmd, report)
			}

			if !report.Healthy() {
				return fmt.Errorf("doctor: checks failed")
			}
			return nil
		},
	}

	doctorCmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return doctorCmd
}

func printReport(cmd *cobra.Command, report *doctor.Report) {
	out := cmd.OutOrStdout()

	if report.BinaryFound {
		fmt.Fprintf(out, "%s viewer binary: %s\n", okMark("ok"), report.BinaryPath)
	} else {
		fmt.Fprintf(out, "%s viewer binary %q: %s\n", failMark("fail"), report.Binary, report.BinaryError)
	}

	if report.ServerUp {
		fmt.Fprintf(out, "%s server: %s (status %d)\n", okMark("ok"), report.ServerURL, report.ServerStatus)
	} else if report.ServerError != "" {
		fmt.Fprintf(out, "%s server %s: %s\n", failMark("fail"), report.ServerURL, report.ServerError)
	} else {
		fmt.Fprintf(out, "%s server %s: status %d\n", failMark("fail"), report.ServerURL, report.ServerStatus)
	}
}
