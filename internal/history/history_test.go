package history

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksearch/internal/fmp"
	"stocksearch/internal/market"
)

var now = time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)

type fakeSeries struct {
	series market.HistoricalSeries
	err    error
	gate   chan struct{}
	calls  atomic.Int32
}

func (f *fakeSeries) HistoricalPriceFull(ctx context.Context, symbol string) (market.HistoricalSeries, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return market.HistoricalSeries{}, ctx.Err()
		}
	}
	if f.err != nil {
		return market.HistoricalSeries{}, f.err
	}
	return f.series, nil
}

type fakeQuote struct {
	quote market.Quote
	ok    bool
	err   error
}

func (f fakeQuote) Quote(context.Context, string) (market.Quote, bool, error) {
	return f.quote, f.ok, f.err
}

// newestFirst returns days daily points ending at now, newest first as
// upstream orders them.
func newestFirst(days int) []market.HistoricalPoint {
	out := make([]market.HistoricalPoint, days)
	for i := range out {
		day := now.AddDate(0, 0, -i)
		out[i] = market.HistoricalPoint{
			Date:  day.Format(market.DateLayout),
			Close: decimal.NewFromInt(int64(200 - i)),
		}
	}
	return out
}

func newLoader(src SeriesSource) *Loader {
	return &Loader{Series: src, Now: func() time.Time { return now }}
}

func TestLoad_WindowsToTrailingThirtyDays(t *testing.T) {
	// Arrange
	src := &fakeSeries{series: market.HistoricalSeries{Symbol: "AAPL", Points: newestFirst(60)}}

	// Act
	series, err := newLoader(src).Load(t.Context(), "AAPL")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "AAPL", series.Symbol)
	require.Len(t, series.Points, 30)
	require.Equal(t, "2024-06-01", series.Points[0].Date)
	require.Equal(t, "2024-06-30", series.Points[29].Date)

	cutoff := Cutoff(now, 30)
	for i, p := range series.Points {
		day, err := p.Day()
		require.NoError(t, err)
		require.False(t, day.Before(cutoff))
		if i > 0 {
			prev, _ := series.Points[i-1].Day()
			require.True(t, day.After(prev), "dates strictly increase")
		}
	}
}

func TestLoad_CustomWindow(t *testing.T) {
	src := &fakeSeries{series: market.HistoricalSeries{Symbol: "MSFT", Points: newestFirst(60)}}
	l := newLoader(src)
	l.WindowDays = 7

	series, err := l.Load(t.Context(), "MSFT")

	require.NoError(t, err)
	require.Len(t, series.Points, 7)
	require.Equal(t, "2024-06-24", series.Points[0].Date)
}

func TestLoad_EmptyWindowIsNotAnError(t *testing.T) {
	old := []market.HistoricalPoint{{Date: "2023-01-03", Close: decimal.NewFromInt(1)}}
	src := &fakeSeries{series: market.HistoricalSeries{Symbol: "OLD", Points: old}}

	series, err := newLoader(src).Load(t.Context(), "OLD")

	require.NoError(t, err)
	require.True(t, series.Empty())
	require.NotNil(t, series.Points)
}

func TestLoad_PropagatesUpstreamErrors(t *testing.T) {
	cases := map[string]error{
		"rate limited": fmp.ErrRateLimited,
		"missing key":  fmp.ErrMissingAPIKey,
		"http":         &fmp.HTTPError{Status: 500},
		"network":      &fmp.NetworkError{Op: "GET", Err: errors.New("connection refused")},
	}
	for name, upstream := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newLoader(&fakeSeries{err: upstream}).Load(t.Context(), "AAPL")
			require.ErrorIs(t, err, upstream)
		})
	}
}

func TestLoad_CoalescesConcurrentCalls(t *testing.T) {
	// Arrange
	src := &fakeSeries{
		series: market.HistoricalSeries{Symbol: "AAPL", Points: newestFirst(5)},
		gate:   make(chan struct{}),
	}
	l := newLoader(src)

	// Act
	var wg sync.WaitGroup
	results := make([]market.HistoricalSeries, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := l.Load(context.Background(), "AAPL")
			assert.NoError(t, err)
			results[i] = s
		}()
	}
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	// Assert
	require.Equal(t, int32(1), src.calls.Load())
	for _, s := range results {
		require.Len(t, s.Points, 5)
	}
}

func TestWindow_SortsAndDedupes(t *testing.T) {
	points := []market.HistoricalPoint{
		{Date: "2024-06-28", Close: decimal.NewFromInt(3)},
		{Date: "2024-06-26", Close: decimal.NewFromInt(1)},
		{Date: "2024-06-27", Close: decimal.NewFromInt(2)},
		{Date: "2024-06-27", Close: decimal.NewFromInt(9)},
		{Date: "garbage"},
	}

	out := Window(points, Cutoff(now, 30))

	require.Len(t, out, 3)
	require.Equal(t, "2024-06-26", out[0].Date)
	require.Equal(t, "2024-06-27", out[1].Date)
	require.Equal(t, "2", out[1].Close.String())
	require.Equal(t, "2024-06-28", out[2].Date)
}

func TestCutoff(t *testing.T) {
	require.Equal(t, time.Date(2024, 5, 31, 15, 0, 0, 0, time.UTC), Cutoff(now, 30))
}

func TestWindow_DropsDayStartingBeforeCutoff(t *testing.T) {
	at := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)
	points := []market.HistoricalPoint{
		{Date: "2026-09-16", Close: decimal.NewFromInt(1)},
		{Date: "2026-09-17", Close: decimal.NewFromInt(2)},
	}

	out := Window(points, Cutoff(at, 30))

	require.Len(t, out, 1)
	require.Equal(t, "2026-09-17", out[0].Date)
}

func TestDetail_BuildsChart(t *testing.T) {
	// Arrange
	l := newLoader(&fakeSeries{series: market.HistoricalSeries{Symbol: "AAPL", Points: newestFirst(3)}})
	l.Quotes = fakeQuote{ok: true, quote: market.Quote{Symbol: "AAPL", Name: "Apple Inc.", Price: market.Some(decimal.NewFromInt(200))}}

	// Act
	d, err := l.Detail(t.Context(), "AAPL")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "Apple Inc.", d.Name)
	require.NotNil(t, d.Quote)
	require.False(t, d.Empty)
	require.Equal(t, "Apple Inc. Stock Price", d.Chart.Title)
	require.Equal(t, []string{"2024-06-28", "2024-06-29", "2024-06-30"}, d.Chart.Categories)
	require.Len(t, d.Chart.Series, 1)
	require.Equal(t, "Price", d.Chart.Series[0].Name)
	require.Equal(t, "198", d.Chart.Series[0].Data[0].String())
	require.Equal(t, "200", d.Chart.Series[0].Data[2].String())
}

func TestDetail_NoQuoteUsesSymbol(t *testing.T) {
	l := newLoader(&fakeSeries{series: market.HistoricalSeries{Symbol: "DEAD"}})
	l.Quotes = fakeQuote{}

	d, err := l.Detail(t.Context(), "DEAD")

	require.NoError(t, err)
	require.Nil(t, d.Quote)
	require.True(t, d.Empty)
	require.Equal(t, "DEAD Stock Price", d.Chart.Title)
	require.Empty(t, d.Chart.Categories)
}

func TestDetail_QuoteFailureStillCharts(t *testing.T) {
	// Arrange
	src := &fakeSeries{series: market.HistoricalSeries{Symbol: "AAPL", Points: newestFirst(3)}}
	l := newLoader(src)
	l.Quotes = fakeQuote{err: fmp.ErrRateLimited}

	// Act
	d, err := l.Detail(t.Context(), "AAPL")

	// Assert
	require.NoError(t, err)
	require.Nil(t, d.Quote)
	require.Equal(t, "AAPL", d.Name)
	require.Equal(t, "AAPL Stock Price", d.Chart.Title)
	require.Len(t, d.Chart.Categories, 3)
	require.False(t, d.Empty)
	require.Equal(t, "Too many requests. Please try again later.", d.QuoteError)
	require.EqualValues(t, 1, src.calls.Load())
}

func TestDetail_SeriesFailureFails(t *testing.T) {
	l := newLoader(&fakeSeries{err: fmp.ErrRateLimited})
	l.Quotes = fakeQuote{ok: true, quote: market.Quote{Symbol: "AAPL", Name: "Apple Inc."}}

	_, err := l.Detail(t.Context(), "AAPL")

	require.ErrorIs(t, err, fmp.ErrRateLimited)
}
