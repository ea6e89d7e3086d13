package market

import (
    "fmt"
    "time"

    "github.com/shopspring/decimal"
)

// DateLayout is the day format used by the historical endpoint.
const DateLayout = "2006-01-02"

// HistoricalPoint is one daily bar.
type HistoricalPoint struct {
    Date             string          `json:"date"`
    Open             decimal.Decimal `json:"open"`
    High             decimal.Decimal `json:"high"`
    Low              decimal.Decimal `json:"low"`
    Close            decimal.Decimal `json:"close"`
    AdjClose         decimal.Decimal `json:"adjClose"`
    Volume           int64           `json:"volume"`
    UnadjustedVolume int64           `json:"unadjustedVolume"`
    Change           decimal.Decimal `json:"change"`
    ChangePercent    decimal.Decimal `json:"changePercent"`
    VWAP             decimal.Decimal `json:"vwap"`
    Label            string          `json:"label"`
    ChangeOverTime   decimal.Decimal `json:"changeOverTime"`
}

// Day parses Date as a UTC calendar day.
func (p HistoricalPoint) Day() (time.Time, error) {
    t, err := time.ParseInLocation(DateLayout, p.Date, time.UTC)
    if err != nil {
        return time.Time{}, fmt.Errorf("parse date %q: %w", p.Date, err)
    }
    return t, nil
}

// HistoricalSeries holds daily points for one symbol, oldest first once windowed.
type HistoricalSeries struct {
    Symbol string            `json:"symbol"`
    Points []HistoricalPoint `json:"historical"`
}

func (s HistoricalSeries) Empty() bool { return len(s.Points) == 0 }
