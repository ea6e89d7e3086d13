package fmp

import (
	"context"
	"net/url"
	"strconv"

	"stocksearch/internal/market"
)

// Search runs a symbol search. The query is passed through unmodified.
func (c *Client) Search(ctx context.Context, query string, offset int) ([]market.SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("offset", strconv.Itoa(offset))

	var results []market.SearchResult
	if err := c.get(ctx, "search", params, &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = []market.SearchResult{}
	}
	return results, nil
}

// Quote returns the live quote for symbol. The endpoint answers with an array
// of zero or one element; ok is false when it is empty.
func (c *Client) Quote(ctx context.Context, symbol string) (quote market.Quote, ok bool, err error) {
	var quotes []market.Quote
	if err := c.get(ctx, "quote/"+url.PathEscape(symbol), nil, &quotes); err != nil {
		return market.Quote{}, false, err
	}
	if len(quotes) == 0 {
		return market.Quote{}, false, nil
	}
	return quotes[0], true, nil
}

// HistoricalPriceFull returns the full daily history for symbol, newest first
// as upstream orders it. Unknown symbols decode to an empty series.
func (c *Client) HistoricalPriceFull(ctx context.Context, symbol string) (market.HistoricalSeries, error) {
	var series market.HistoricalSeries
	if err := c.get(ctx, "historical-price-full/"+url.PathEscape(symbol), nil, &series); err != nil {
		return market.HistoricalSeries{}, err
	}
	if series.Symbol == "" {
		series.Symbol = symbol
	}
	return series, nil
}
