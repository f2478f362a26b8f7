package contracts

import "time"

// MaxMarketNameLength is the longest market name accepted
const MaxMarketNameLength = 15

// Bar is one daily OHLC record
type Bar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// Market is one named price history, dates strictly increasing
// ⭐ SSOT: S0 → S1 시장 데이터 전달
type Market struct {
	Name   string `json:"name"`
	Source string `json:"source"` // file path or table reference, for error context
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars
func (m *Market) Len() int {
	return len(m.Bars)
}

// FirstDate returns the date of the first bar (zero when empty)
func (m *Market) FirstDate() time.Time {
	if len(m.Bars) == 0 {
		return time.Time{}
	}
	return m.Bars[0].Date
}

// LastDate returns the date of the last bar (zero when empty)
func (m *Market) LastDate() time.Time {
	if len(m.Bars) == 0 {
		return time.Time{}
	}
	return m.Bars[len(m.Bars)-1].Date
}

// Closes returns the close prices in bar order
func (m *Market) Closes() []float64 {
	out := make([]float64, len(m.Bars))
	for i, b := range m.Bars {
		out[i] = b.Close
	}
	return out
}
