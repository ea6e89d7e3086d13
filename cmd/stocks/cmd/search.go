package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stocksearch/internal/market"
	"stocksearch/internal/search"
)

func newSearchCmd(opts *options) *cobra.Command {
	var page, pageSize int
	c := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search tickers and print one enriched page",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			ctrl := a.NewController()
			defer ctrl.Close()

			ctx := cmd.Context()
			if cmd.Flags().Changed("page-size") {
				if err := ctrl.ChangePageSize(ctx, pageSize); err != nil {
					return err
				}
			}
			err = ctrl.SubmitPage(ctx, strings.Join(args, " "), page)
			if errors.Is(err, search.ErrNoResults) {
				fmt.Fprintln(cmd.OutOrStdout(), ctrl.View().Error)
				return nil
			}
			if err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), ctrl.View())
		},
	}
	c.Flags().IntVar(&page, "page", 1, "page to show")
	c.Flags().IntVar(&pageSize, "page-size", search.DefaultPageSize, "rows per page (5, 10 or 15)")
	return c
}

func printView(out io.Writer, v search.View) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tEXCHANGE\tCURRENCY\tPRICE\tCHANGE\tCHANGE %\tMARKET CAP\tLAST TRADE")
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Symbol, r.Name, r.ExchangeShortName, r.Currency,
			r.Price, r.Change, r.ChangesPercentage, marketCap(r.MarketCap), lastTrade(r.LastTrade))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nShowing %d-%d of %d", v.StartIndex, v.EndIndex, v.Total)
	if v.HasNext {
		fmt.Fprintf(out, " (next: --page %d)", v.Page+1)
	}
	fmt.Fprintln(out)
	if v.Error != "" {
		fmt.Fprintf(out, "warning: %s", v.Error)
		if len(v.FailedSymbols) > 0 {
			fmt.Fprintf(out, " (%s)", strings.Join(v.FailedSymbols, ", "))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func marketCap(v market.Value) string {
	if !v.Valid {
		return market.Unavailable
	}
	return humanize.Comma(v.Decimal.IntPart())
}

func lastTrade(s *string) string {
	if s == nil {
		return market.Unavailable
	}
	return *s
}
