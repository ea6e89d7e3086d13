// Package search holds the paginated search workflow: one upstream search per
// query, then page slicing and quote enrichment over the held result set.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"stocksearch/internal/enrich"
	"stocksearch/internal/fmp"
	"stocksearch/internal/market"
)

var (
	ErrNoResults       = errors.New("search: no results found")
	ErrPageOutOfRange  = errors.New("search: page out of range")
	ErrInvalidPageSize = errors.New("search: invalid page size")
	// ErrSuperseded is returned when a newer operation replaced this one
	// before its results arrived. Its results were discarded.
	ErrSuperseded = errors.New("search: superseded by a newer request")
)

const noResultsMessage = "No results found."

// Source runs the upstream symbol search.
type Source interface {
	Search(ctx context.Context, query string, offset int) ([]market.SearchResult, error)
}

// Enricher fills quote fields for one page of results.
type Enricher interface {
	Enrich(ctx context.Context, records []market.SearchResult) (enrich.Batch, error)
}

// View is a snapshot of the controller state for rendering.
type View struct {
	Query         string                  `json:"query"`
	Page          int                     `json:"page"`
	PageSize      int                     `json:"pageSize"`
	Total         int                     `json:"totalResults"`
	StartIndex    int                     `json:"startIndex"`
	EndIndex      int                     `json:"endIndex"`
	HasPrev       bool                    `json:"hasPrev"`
	HasNext       bool                    `json:"hasNext"`
	Rows          []market.EnrichedRecord `json:"rows"`
	FailedSymbols []string                `json:"failedSymbols,omitempty"`
	NoResults     bool                    `json:"noResults"`
	Error         string                  `json:"error,omitempty"`
	Generation    uint64                  `json:"generation"`
}

// Controller owns the query, the full result set and the page state. It is
// safe for concurrent use; upstream calls run without holding the lock.
type Controller struct {
	source   Source
	enricher Enricher
	log      zerolog.Logger

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	query     string
	results   []market.SearchResult
	page      int
	pageSize  int
	rows      []market.EnrichedRecord
	failed    []string
	noResults bool
	errMsg    string
}

// NewController returns a controller with the given page size, falling back
// to DefaultPageSize when it is not one of PageSizes.
func NewController(source Source, enricher Enricher, pageSize int, log zerolog.Logger) *Controller {
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	return &Controller{
		source:   source,
		enricher: enricher,
		log:      log,
		page:     1,
		pageSize: pageSize,
	}
}

// Submit searches for query and shows the first page. Blank queries are
// ignored. On failure the previous result set is kept.
func (c *Controller) Submit(ctx context.Context, query string) error {
	return c.SubmitPage(ctx, query, 1)
}

// SubmitPage is Submit landing on page instead of the first page, so only
// that page is enriched. A page outside the new result set leaves it on the
// first page, unenriched, and returns ErrPageOutOfRange.
func (c *Controller) SubmitPage(ctx context.Context, query string, page int) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	c.mu.Lock()
	gen, ctx, done := c.begin(ctx)
	c.mu.Unlock()
	defer done()

	results, err := c.source.Search(ctx, query, 0)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		c.errMsg = fmp.Message(err)
		c.mu.Unlock()
		c.log.Warn().Err(err).Str("query", query).Uint64("gen", gen).Msg("search failed")
		return fmt.Errorf("search %q: %w", query, err)
	}
	c.query = query
	c.page = 1
	if len(results) == 0 {
		c.results = nil
		c.rows = nil
		c.failed = nil
		c.noResults = true
		c.errMsg = noResultsMessage
		c.mu.Unlock()
		c.log.Info().Str("query", query).Msg("search returned no results")
		return ErrNoResults
	}
	c.results = results
	c.noResults = false
	if p := (Pager{Page: page, Size: c.pageSize, Total: len(results)}); !p.Valid() {
		c.showPage()
		c.mu.Unlock()
		return fmt.Errorf("%w: page %d of %d results at size %d", ErrPageOutOfRange, page, len(results), c.pageSize)
	}
	c.page = page
	slice := c.showPage()
	c.mu.Unlock()

	c.log.Info().Str("query", query).Int("total", len(results)).Uint64("gen", gen).Msg("search stored")
	return c.enrich(ctx, gen, slice)
}

// ChangePage moves to page and enriches its rows from the held result set.
// Out of range pages leave the state unchanged.
func (c *Controller) ChangePage(ctx context.Context, page int) error {
	c.mu.Lock()
	p := Pager{Page: page, Size: c.pageSize, Total: len(c.results)}
	if !p.Valid() {
		c.mu.Unlock()
		return fmt.Errorf("%w: page %d of %d results at size %d", ErrPageOutOfRange, page, len(c.results), c.pageSize)
	}
	gen, ctx, done := c.begin(ctx)
	c.page = page
	slice := c.showPage()
	c.mu.Unlock()
	defer done()

	return c.enrich(ctx, gen, slice)
}

// ChangePageSize switches to size and goes back to the first page.
func (c *Controller) ChangePageSize(ctx context.Context, size int) error {
	if !ValidPageSize(size) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}

	c.mu.Lock()
	c.pageSize = size
	c.page = 1
	if len(c.results) == 0 {
		c.mu.Unlock()
		return nil
	}
	gen, ctx, done := c.begin(ctx)
	slice := c.showPage()
	c.mu.Unlock()
	defer done()

	return c.enrich(ctx, gen, slice)
}

// View returns a copy of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pager()
	rows := slices.Clone(c.rows)
	if rows == nil {
		rows = []market.EnrichedRecord{}
	}
	return View{
		Query:         c.query,
		Page:          c.page,
		PageSize:      c.pageSize,
		Total:         len(c.results),
		StartIndex:    p.StartIndex(),
		EndIndex:      p.EndIndex(),
		HasPrev:       p.HasPrev(),
		HasNext:       p.HasNext(),
		Rows:          rows,
		FailedSymbols: slices.Clone(c.failed),
		NoResults:     c.noResults,
		Error:         c.errMsg,
		Generation:    c.gen,
	}
}

// Results returns the held result set.
func (c *Controller) Results() []market.SearchResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.results)
}

// Close cancels any in-flight work.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
}

// begin supersedes the in-flight operation. Callers hold mu.
func (c *Controller) begin(parent context.Context) (uint64, context.Context, context.CancelFunc) {
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	return c.gen, ctx, cancel
}

func (c *Controller) pager() Pager {
	return Pager{Page: c.page, Size: c.pageSize, Total: len(c.results)}
}

// showPage puts unenriched placeholders for the current page in place and
// returns the records to enrich. Callers hold mu.
func (c *Controller) showPage() []market.SearchResult {
	lo, hi := c.pager().Bounds()
	slice := slices.Clone(c.results[lo:hi])
	c.rows = make([]market.EnrichedRecord, len(slice))
	for i, r := range slice {
		c.rows[i] = market.Unenriched(r)
	}
	c.failed = nil
	c.errMsg = ""
	return slice
}

// enrich fills the rows for slice unless gen was superseded meanwhile.
func (c *Controller) enrich(ctx context.Context, gen uint64, slice []market.SearchResult) error {
	batch, err := c.enricher.Enrich(ctx, slice)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debug().Uint64("gen", gen).Uint64("current", c.gen).Msg("discarding stale enrichment")
		return ErrSuperseded
	}
	if err != nil {
		c.errMsg = fmp.Message(err)
		return fmt.Errorf("enrich page %d: %w", c.page, err)
	}
	c.rows = batch.Records
	c.failed = batch.FailedSymbols()
	if len(batch.Failed) > 0 {
		c.errMsg = fmp.Message(batch.Failed[len(batch.Failed)-1].Err)
	}
	return nil
}
