package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var days int
	c := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Print the recent daily closes of a symbol, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if days > 0 {
				a.History.WindowDays = days
			}

			d, err := a.History.Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, d.Chart.Title)
			if d.QuoteError != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", d.QuoteError)
			}
			if d.Empty {
				fmt.Fprintln(out, "No prices in the selected window.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "DATE\tCLOSE\t")
			for _, p := range d.Series.Points {
				fmt.Fprintf(tw, "%s\t%s\t\n", p.Date, p.Close.StringFixed(2))
			}
			return tw.Flush()
		},
	}
	c.Flags().IntVar(&days, "days", 0, "window in days (default from config)")
	return c
}
