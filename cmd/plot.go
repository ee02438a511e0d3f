package main

import (
	"io"
	"path/filepath"
	"strings"

	"nandsim"
	"nandsim/debug"

	"github.com/spf13/cobra"
)

func (a *app) newPlotCmd() *cobra.Command {
	var out, format string
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the voltage trajectories as PNG or SVG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := debug.ParseFormat(format)
			if format == "" {
				f, err = parseFormatFromPath(out)
			}
			if err != nil {
				return err
			}
			series, err := nandsim.Simulate(a.params)
			if err != nil {
				return err
			}
			record := debug.NewRecord(series)
			return a.writeTo(cmd, out, func(w io.Writer) error {
				return a.plot().Render(record, f, w)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "nandsim.png", "output file")
	cmd.Flags().StringVar(&format, "format", "", "image format png or svg (default from file extension)")
	return cmd
}

func (a *app) newChartCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render an interactive HTML chart page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			series, err := nandsim.Simulate(a.params)
			if err != nil {
				return err
			}
			return a.writeTo(cmd, out, debug.NewCharts(debug.NewRecord(series)).Render)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "nandsim.html", "output file")
	return cmd
}

// parseFormatFromPath 由文件扩展名得到图像格式
func parseFormatFromPath(path string) (debug.Format, error) {
	return debug.ParseFormat(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")))
}
