package repository

import (
	"context"
	"errors"

	"FinStudies/internal/domain/models"
)

// ErrDataUnavailable is returned (wrapped) by a SeriesSource that cannot
// produce a series: unknown symbol, empty range or provider outage.
var ErrDataUnavailable = errors.New("series data unavailable")

// SeriesSource fetches a time-ordered price table for a symbol.
// Every call returns a fresh Series; implementations do not cache.
type SeriesSource interface {
	Fetch(ctx context.Context, symbol, rng string) (*models.Series, error)
}

// SeriesSourceFunc adapts a function to SeriesSource.
type SeriesSourceFunc func(ctx context.Context, symbol, rng string) (*models.Series, error)

func (f SeriesSourceFunc) Fetch(ctx context.Context, symbol, rng string) (*models.Series, error) {
	return f(ctx, symbol, rng)
}

// RefDataProvider maps an ISIN to symbol records.
type RefDataProvider interface {
	IsinLookup(ctx context.Context, isin, filter string) ([]models.IsinRecord, error)
}

// Publisher publishes study results.
type Publisher interface {
	Publish(ctx context.Context, key string, v interface{}) error
	Close() error
}

// Metrics records service-level measurements.
type Metrics interface {
	RecordStudy(study, result string)
	RecordError(kind string)
	RecordSeriesRows(source string, rows int)
	RecordIsinLookup(result string)
	RecordLatency(op string, seconds float64)
}
