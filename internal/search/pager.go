package search

// PageSizes are the only page sizes a caller may pick.
var PageSizes = []int{5, 10, 15}

// DefaultPageSize is used until the caller picks another.
const DefaultPageSize = 10

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// Pager is the pagination arithmetic over a result set of Total records.
// Page is 1-based.
type Pager struct {
	Page  int
	Size  int
	Total int
}

// Offset is the zero-based index of the first record on the page.
func (p Pager) Offset() int { return (p.Page - 1) * p.Size }

// Valid reports whether the page has at least one record.
func (p Pager) Valid() bool {
	return p.Page >= 1 && p.Size > 0 && p.Offset() < p.Total
}

// StartIndex is the 1-based position of the first visible record, 0 when empty.
func (p Pager) StartIndex() int {
	if !p.Valid() {
		return 0
	}
	return p.Offset() + 1
}

// EndIndex is the 1-based position of the last visible record, 0 when empty.
func (p Pager) EndIndex() int {
	if !p.Valid() {
		return 0
	}
	return min(p.Page*p.Size, p.Total)
}

func (p Pager) HasPrev() bool { return p.Page > 1 }

func (p Pager) HasNext() bool { return p.Valid() && p.EndIndex() < p.Total }

// Bounds returns the half-open slice bounds [lo, hi) of the page.
func (p Pager) Bounds() (lo, hi int) {
	if !p.Valid() {
		return 0, 0
	}
	return p.Offset(), p.EndIndex()
}
