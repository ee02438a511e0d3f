package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"nandsim"
	"nandsim/transient"
	"nandsim/utils"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) newSweepCmd() *cobra.Command {
	var field, values, out string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Simulate a range of values of one parameter",
		Example: `  nandsim sweep --field c --values 20p,50p,100p,200p -o sweep_c.png
  nandsim sweep --variant steady --field stimulus --values 1,2.5,5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := nandsim.ParseField(field)
			if err != nil {
				return err
			}
			list := utils.ParamList(strings.Split(values, ","))
			vals := make([]float64, len(list))
			for i := range list {
				if vals[i], err = utils.ParseValue(list[i]); err != nil {
					return errors.Wrap(err, "--values")
				}
			}
			series, err := nandsim.Sweep(cmd.Context(), a.params, f, vals)
			if err != nil {
				return err
			}

			names := make([]string, len(series))
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, field+"\tpeak\tpeak time\tbump\tfinal output\tquiescent")
			for i, s := range series {
				names[i] = strings.TrimSpace(list[i])
				sum := transient.Summarize(s)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", names[i],
					utils.FormatValue(sum.PeakOutput, "V"), utils.FormatValue(sum.PeakTime, "s"),
					utils.FormatValue(sum.Bump, "V"), utils.FormatValue(sum.FinalOutput, "V"), sum.QuiescentIndex)
			}
			tw.Flush()

			if out == "" {
				return nil
			}
			pl := a.plot()
			p, err := pl.BuildOverlay("output voltage, sweep "+field, names, series)
			if err != nil {
				return err
			}
			format, err := parseFormatFromPath(out)
			if err != nil {
				return err
			}
			return a.writeTo(cmd, out, func(w io.Writer) error { return pl.Write(p, format, w) })
		},
	}
	cmd.Flags().StringVar(&field, "field", "c", "parameter to sweep: s, c or stimulus")
	cmd.Flags().StringVar(&values, "values", "20p,50p,100p,200p", "comma separated values with engineering suffixes")
	cmd.Flags().StringVarP(&out, "out", "o", "", "overlay plot of the output voltages (png or svg)")
	return cmd
}
