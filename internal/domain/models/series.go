package models

import "time"

// Standard price column names produced by every series source.
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

// Candle is one OHLCV bar as returned by a quote provider or candle store.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is a time-ordered price table for a single symbol.
// Rows are ascending by Index and every column has len(Index) values.
type Series struct {
	Symbol  string
	Index   []time.Time
	columns map[string][]float64
	order   []string
}

// NewSeries creates an empty series for symbol over the given index.
func NewSeries(symbol string, index []time.Time) *Series {
	return &Series{
		Symbol:  symbol,
		Index:   index,
		columns: make(map[string][]float64),
	}
}

// NewSeriesFromCandles builds a series with the standard OHLCV columns.
// Candles must already be sorted ascending by Bucket.
func NewSeriesFromCandles(symbol string, candles []Candle) *Series {
	n := len(candles)
	index := make([]time.Time, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	cls := make([]float64, n)
	vol := make([]float64, n)
	for i, c := range candles {
		index[i] = c.Bucket
		open[i] = c.Open
		high[i] = c.High
		low[i] = c.Low
		cls[i] = c.Close
		vol[i] = c.Volume
	}

	s := NewSeries(symbol, index)
	s.SetColumn(ColOpen, open)
	s.SetColumn(ColHigh, high)
	s.SetColumn(ColLow, low)
	s.SetColumn(ColClose, cls)
	s.SetColumn(ColVolume, vol)
	return s
}

// SetColumn adds or replaces a named column.
func (s *Series) SetColumn(name string, values []float64) {
	if _, ok := s.columns[name]; !ok {
		s.order = append(s.order, name)
	}
	s.columns[name] = values
}

// DropColumn removes a column if present.
func (s *Series) DropColumn(name string) {
	if _, ok := s.columns[name]; !ok {
		return
	}
	delete(s.columns, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Column returns the values of a column and whether it exists.
func (s *Series) Column(name string) ([]float64, bool) {
	v, ok := s.columns[name]
	return v, ok
}

// Columns returns column names in insertion order.
func (s *Series) Columns() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of rows.
func (s *Series) Len() int { return len(s.Index) }
