package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"nandsim"
	"nandsim/debug"
	"nandsim/transient"
	"nandsim/utils"

	"github.com/spf13/cobra"
)

func (a *app) newRunCmd() *cobra.Command {
	var jsonPath, csvPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate once and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			series, err := nandsim.Simulate(a.params)
			if err != nil {
				return err
			}
			record := debug.NewRecord(series)
			a.log.Info("simulated", "id", record.ID, "samples", series.Len())
			printSummary(cmd.OutOrStdout(), record)
			if jsonPath != "" {
				if err := a.writeTo(cmd, jsonPath, record.Render); err != nil {
					return err
				}
			}
			if csvPath != "" {
				if err := a.writeTo(cmd, csvPath, record.RenderCSV); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the record as JSON (\"-\" for stdout)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the series as CSV (\"-\" for stdout)")
	return cmd
}

// printSummary 输出特征量表
func printSummary(w io.Writer, record *debug.Record) {
	sum := record.Summary
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", record.ID)
	fmt.Fprintf(tw, "parameters\t%s\n", describe(record.Params))
	series := record.Series()
	fmt.Fprintf(tw, "samples\t%d (grid %s)\n", series.Len(), utils.FormatValue(series.Step(), "s"))
	fmt.Fprintf(tw, "peak output\t%s at %s\n", utils.FormatValue(sum.PeakOutput, "V"), utils.FormatValue(sum.PeakTime, "s"))
	fmt.Fprintf(tw, "bump\t%s\n", utils.FormatValue(sum.Bump, "V"))
	fmt.Fprintf(tw, "min output\t%s\n", utils.FormatValue(sum.MinOutput, "V"))
	fmt.Fprintf(tw, "final (out, lower, upper)\t%s, %s, %s\n",
		utils.FormatValue(sum.FinalOutput, "V"), utils.FormatValue(sum.FinalLower, "V"), utils.FormatValue(sum.FinalUpper, "V"))
	fmt.Fprintf(tw, "quiescent\t%s\n", quiescent(record, sum))
	tw.Flush()
}

func quiescent(record *debug.Record, sum transient.Summary) string {
	if sum.QuiescentIndex < 0 {
		return "not reached"
	}
	return fmt.Sprintf("from sample %d (%s)", sum.QuiescentIndex, utils.FormatValue(record.Time[sum.QuiescentIndex], "s"))
}
