package market

import (
    "bytes"
    "encoding/json"
    "time"

    "github.com/shopspring/decimal"
)

// Unavailable is rendered in place of any quote field we could not fill.
const Unavailable = "N/A"

// SearchResult is one row returned by the symbol search endpoint.
type SearchResult struct {
    Symbol            string `json:"symbol"`
    Name              string `json:"name"`
    Currency          string `json:"currency"`
    StockExchange     string `json:"stockExchange"`
    ExchangeShortName string `json:"exchangeShortName"`
}

// Quote is a point-in-time snapshot for a symbol as the quote endpoint returns it.
// The fields shown in search rows are Values so that a null upstream field
// stays unavailable instead of decoding to zero.
type Quote struct {
    Symbol               string          `json:"symbol"`
    Name                 string          `json:"name"`
    Price                Value           `json:"price"`
    ChangesPercentage    Value           `json:"changesPercentage"`
    Change               Value           `json:"change"`
    DayLow               decimal.Decimal `json:"dayLow"`
    DayHigh              decimal.Decimal `json:"dayHigh"`
    YearHigh             decimal.Decimal `json:"yearHigh"`
    YearLow              decimal.Decimal `json:"yearLow"`
    MarketCap            Value           `json:"marketCap"`
    PriceAvg50           decimal.Decimal `json:"priceAvg50"`
    PriceAvg200          decimal.Decimal `json:"priceAvg200"`
    Exchange             string          `json:"exchange"`
    Volume               int64           `json:"volume"`
    AvgVolume            int64           `json:"avgVolume"`
    Open                 decimal.Decimal `json:"open"`
    PreviousClose        decimal.Decimal `json:"previousClose"`
    EPS                  decimal.Decimal `json:"eps"`
    PE                   decimal.Decimal `json:"pe"`
    EarningsAnnouncement string          `json:"earningsAnnouncement"`
    SharesOutstanding    int64           `json:"sharesOutstanding"`
    Timestamp            int64           `json:"timestamp"`
}

// TradedAt converts the Unix-seconds timestamp. Zero timestamps report false.
func (q Quote) TradedAt() (time.Time, bool) {
    if q.Timestamp <= 0 {
        return time.Time{}, false
    }
    return time.Unix(q.Timestamp, 0).UTC(), true
}

// Value is an optional decimal. Invalid values marshal as Unavailable so the
// field is always present in output.
type Value struct {
    decimal.NullDecimal
}

func Some(d decimal.Decimal) Value { return Value{decimal.NullDecimal{Decimal: d, Valid: true}} }

func None() Value { return Value{} }

func (v Value) String() string {
    if !v.Valid {
        return Unavailable
    }
    return v.Decimal.String()
}

func (v Value) MarshalJSON() ([]byte, error) {
    if !v.Valid {
        return json.Marshal(Unavailable)
    }
    return []byte(v.Decimal.String()), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`"`+Unavailable+`"`)) {
        *v = None()
        return nil
    }
    var d decimal.Decimal
    if err := d.UnmarshalJSON(b); err != nil {
        return err
    }
    *v = Some(d)
    return nil
}

// EnrichedRecord is a search row merged with its live quote fields.
type EnrichedRecord struct {
    SearchResult
    Price             Value      `json:"price"`
    Change            Value      `json:"change"`
    ChangesPercentage Value      `json:"changesPercentage"`
    MarketCap         Value      `json:"marketCap"`
    LastTrade         *string    `json:"lastTrade"`
    LastTradeAt       *time.Time `json:"lastTradeAt"`
}

// Unenriched returns r with every quote field marked unavailable.
func Unenriched(r SearchResult) EnrichedRecord {
    return EnrichedRecord{
        SearchResult:      r,
        Price:             None(),
        Change:            None(),
        ChangesPercentage: None(),
        MarketCap:         None(),
    }
}

// Available reports whether any quote field was filled in.
func (e EnrichedRecord) Available() bool {
    return e.Price.Valid || e.Change.Valid || e.ChangesPercentage.Valid || e.MarketCap.Valid
}
