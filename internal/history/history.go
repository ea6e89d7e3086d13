// Package history loads a symbol's recent daily prices for charting.
package history

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"stocksearch/internal/fmp"
	"stocksearch/internal/market"
)

const DefaultWindowDays = 30

type SeriesSource interface {
	HistoricalPriceFull(ctx context.Context, symbol string) (market.HistoricalSeries, error)
}

type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (quote market.Quote, ok bool, err error)
}

// Loader fetches full histories and trims them to the trailing window.
type Loader struct {
	Series SeriesSource
	// Quotes is only needed by Detail.
	Quotes     QuoteSource
	WindowDays int
	Logger     zerolog.Logger
	Now        func() time.Time

	group singleflight.Group
}

// Load returns the points of the last WindowDays days, oldest first with no
// repeated dates. A window with no points is an empty series, not an error.
func (l *Loader) Load(ctx context.Context, symbol string) (market.HistoricalSeries, error) {
	v, err, shared := l.group.Do(symbol, func() (any, error) {
		return l.load(ctx, symbol)
	})
	if err != nil {
		return market.HistoricalSeries{}, err
	}
	series := v.(market.HistoricalSeries)
	series.Points = slices.Clone(series.Points)
	if shared {
		l.Logger.Debug().Str("symbol", symbol).Msg("history load coalesced")
	}
	return series, nil
}

func (l *Loader) load(ctx context.Context, symbol string) (market.HistoricalSeries, error) {
	started := time.Now()
	full, err := l.Series.HistoricalPriceFull(ctx, symbol)
	if err != nil {
		return market.HistoricalSeries{}, fmt.Errorf("history %s: %w", symbol, err)
	}
	cutoff := Cutoff(l.now(), l.windowDays())
	out := market.HistoricalSeries{Symbol: full.Symbol, Points: Window(full.Points, cutoff)}
	l.Logger.Debug().
		Str("symbol", symbol).
		Int("upstream", len(full.Points)).
		Int("kept", len(out.Points)).
		Time("cutoff", cutoff).
		Dur("took", time.Since(started)).
		Msg("history windowed")
	return out, nil
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loader) windowDays() int {
	if l.WindowDays > 0 {
		return l.WindowDays
	}
	return DefaultWindowDays
}

// Cutoff is the instant days before now. A daily point is in the window when
// its UTC midnight is not before it.
func Cutoff(now time.Time, days int) time.Time {
	return now.UTC().AddDate(0, 0, -days)
}

// Window keeps points whose day starts at or after cutoff, sorted ascending.
// Points with unparseable dates are dropped, and so are repeats of a date.
func Window(points []market.HistoricalPoint, cutoff time.Time) []market.HistoricalPoint {
	type dated struct {
		day time.Time
		p   market.HistoricalPoint
	}
	kept := make([]dated, 0, len(points))
	for _, p := range points {
		day, err := p.Day()
		if err != nil || day.Before(cutoff) {
			continue
		}
		kept = append(kept, dated{day, p})
	}
	slices.SortStableFunc(kept, func(a, b dated) int { return a.day.Compare(b.day) })

	out := make([]market.HistoricalPoint, 0, len(kept))
	for i, k := range kept {
		if i > 0 && k.day.Equal(kept[i-1].day) {
			continue
		}
		out = append(out, k.p)
	}
	return out
}

// ChartSeries is one named line.
type ChartSeries struct {
	Name string            `json:"name"`
	Data []decimal.Decimal `json:"data"`
}

// Chart is a line chart of closing prices keyed by date.
type Chart struct {
	Title      string        `json:"title"`
	Categories []string      `json:"categories"`
	Series     []ChartSeries `json:"series"`
}

// Detail is the history view of one symbol.
type Detail struct {
	Symbol string                  `json:"symbol"`
	Name   string                  `json:"name"`
	Quote  *market.Quote           `json:"quote,omitempty"`
	Series market.HistoricalSeries `json:"series"`
	Chart  Chart                   `json:"chart"`
	Empty  bool                    `json:"empty"`
	// QuoteError is set when the quote could not be loaded. The chart is
	// still built, titled with the symbol.
	QuoteError string `json:"quoteError,omitempty"`
}

// Detail loads the quote and the windowed series in parallel. Only a series
// failure fails the view.
func (l *Loader) Detail(ctx context.Context, symbol string) (Detail, error) {
	var (
		quote    market.Quote
		found    bool
		quoteErr error
		series   market.HistoricalSeries
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		quote, found, quoteErr = l.Quotes.Quote(gctx, symbol)
		return nil
	})
	g.Go(func() error {
		s, err := l.Load(gctx, symbol)
		series = s
		return err
	})
	if err := g.Wait(); err != nil {
		return Detail{}, err
	}

	d := Detail{Symbol: symbol, Name: symbol, Series: series, Empty: series.Empty()}
	if quoteErr != nil {
		l.Logger.Warn().Err(quoteErr).Str("symbol", symbol).Msg("history quote failed")
		d.QuoteError = fmp.Message(quoteErr)
	} else if found {
		d.Quote = &quote
		d.Name = cmp.Or(quote.Name, symbol)
	}
	d.Chart = NewChart(d.Name, series)
	return d, nil
}

// NewChart builds the closing price chart titled "<name> Stock Price".
func NewChart(name string, series market.HistoricalSeries) Chart {
	c := Chart{
		Title:      name + " Stock Price",
		Categories: make([]string, len(series.Points)),
		Series:     []ChartSeries{{Name: "Price", Data: make([]decimal.Decimal, len(series.Points))}},
	}
	for i, p := range series.Points {
		c.Categories[i] = p.Date
		c.Series[0].Data[i] = p.Close
	}
	return c
}
