package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"FinStudies/internal/domain/models"
)

type fakeMetrics struct {
	mu      sync.Mutex
	studies map[string]int
	errors  map[string]int
	rows    []int
	isin    map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{studies: map[string]int{}, errors: map[string]int{}, isin: map[string]int{}}
}

func (m *fakeMetrics) RecordStudy(study, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.studies[study+"/"+result]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordSeriesRows(_ string, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rows)
}

func (m *fakeMetrics) RecordIsinLookup(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isin[result]++
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

func series(n int) *models.Series {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		p := 50 + float64(i) + 3*math.Sin(float64(i)/3)
		candles[i] = models.Candle{Bucket: start.AddDate(0, 0, i), Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 10}
	}
	return models.NewSeriesFromCandles("AAPL", candles)
}

type staticSource struct {
	s   *models.Series
	err error
}

func (s staticSource) Fetch(context.Context, string, string) (*models.Series, error) {
	return s.s, s.err
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
	msgs []interface{}
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, key string, v interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.msgs = append(p.msgs, v)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeRefData struct {
	calls   int
	records []models.IsinRecord
	err     error
}

func (f *fakeRefData) IsinLookup(context.Context, string, string) ([]models.IsinRecord, error) {
	f.calls++
	return f.records, f.err
}

var errUpstream = errors.New("upstream down")
