// Package enrich merges live quote fields onto bare search results.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"stocksearch/internal/market"
)

// QuoteSource looks up one quote. ok is false when upstream has no quote for
// the symbol.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (quote market.Quote, ok bool, err error)
}

// Failure records a lookup that failed at the transport level.
type Failure struct {
	Symbol string
	Err    error
}

func (f Failure) Error() string { return fmt.Sprintf("%s: %v", f.Symbol, f.Err) }

func (f Failure) Unwrap() error { return f.Err }

// Batch is the outcome of one Enrich call. Records has one entry per input
// record in input order, including failed ones with unavailable fields.
type Batch struct {
	Records []market.EnrichedRecord
	Failed  []Failure
}

// Err joins the per-record failures, nil when every lookup succeeded.
func (b Batch) Err() error {
	if len(b.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(b.Failed))
	for i, f := range b.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// FailedSymbols lists the symbols whose lookup failed.
func (b Batch) FailedSymbols() []string {
	out := make([]string, len(b.Failed))
	for i, f := range b.Failed {
		out[i] = f.Symbol
	}
	return out
}

// Enricher fetches quotes for a page of search results concurrently.
type Enricher struct {
	Source QuoteSource
	// MaxConcurrency caps in-flight lookups. Zero means one per record.
	MaxConcurrency int
	// Timeout bounds the whole batch on top of any caller deadline.
	Timeout time.Duration
	Logger  zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Enrich issues one quote lookup per record and waits for all of them. A
// failed lookup only blanks its own record. The returned error is non-nil only
// when ctx ends before the batch settles.
func (e *Enricher) Enrich(ctx context.Context, records []market.SearchResult) (Batch, error) {
	if len(records) == 0 {
		return Batch{Records: []market.EnrichedRecord{}}, nil
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	out := make([]market.EnrichedRecord, len(records))
	errs := make([]error, len(records))

	started := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	if e.MaxConcurrency > 0 {
		g.SetLimit(e.MaxConcurrency)
	}
	for i, rec := range records {
		g.Go(func() error {
			out[i], errs[i] = e.lookup(gctx, rec, now)
			// per-record failures never cancel siblings
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Batch{}, fmt.Errorf("enrich %d records: %w", len(records), err)
	}

	batch := Batch{Records: out}
	for i, err := range errs {
		if err != nil {
			batch.Failed = append(batch.Failed, Failure{Symbol: records[i].Symbol, Err: err})
		}
	}
	ev := e.Logger.Debug()
	if len(batch.Failed) > 0 {
		ev = e.Logger.Warn().Strs("failed", batch.FailedSymbols())
	}
	ev.Int("records", len(records)).Dur("took", time.Since(started)).Msg("enrich batch settled")
	return batch, nil
}

func (e *Enricher) lookup(ctx context.Context, rec market.SearchResult, now func() time.Time) (market.EnrichedRecord, error) {
	quote, ok, err := e.Source.Quote(ctx, rec.Symbol)
	if err != nil {
		return market.Unenriched(rec), err
	}
	if !ok {
		e.Logger.Debug().Str("symbol", rec.Symbol).Msg("no quote available")
		return market.Unenriched(rec), nil
	}
	return Merge(rec, quote, now()), nil
}

// Merge copies the quote fields onto rec, keeping fields upstream left null
// unavailable. The last trade label is relative to now.
func Merge(rec market.SearchResult, q market.Quote, now time.Time) market.EnrichedRecord {
	out := market.EnrichedRecord{
		SearchResult:      rec,
		Price:             q.Price,
		Change:            q.Change,
		ChangesPercentage: q.ChangesPercentage,
		MarketCap:         q.MarketCap,
	}
	if at, ok := q.TradedAt(); ok {
		label := RelativeTime(at, now)
		out.LastTrade = &label
		out.LastTradeAt = &at
	}
	return out
}

// RelativeTime renders t against now as "3 hours ago" or "2 minutes from now".
func RelativeTime(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
