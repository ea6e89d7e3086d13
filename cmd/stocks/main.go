// Command stocks searches tickers and prints recent price history from the terminal.
//
//	stocks search AAPL --page 2 --page-size 5
//	stocks history AAPL --days 14
package main

import (
	"os"

	"stocksearch/cmd/stocks/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
