package studies

import (
	"context"

	"FinStudies/internal/domain/models"
	domrepo "FinStudies/internal/domain/repository"
)

// Option configures a Request for the typed study functions.
type Option func(*Request)

// WithRange sets the provider range, e.g. "1y".
func WithRange(rng string) Option {
	return func(r *Request) { r.Range = rng }
}

// WithColumn sets the input column of single-input studies.
func WithColumn(col string) Option {
	return func(r *Request) { r.Col = col }
}

// WithHighLow sets the input columns of directional studies.
func WithHighLow(high, low string) Option {
	return func(r *Request) {
		r.HighCol = high
		r.LowCol = low
	}
}

// WithPeriods sets the period argument of periodic studies.
func WithPeriods(p PeriodArg) Option {
	return func(r *Request) { r.Periods = p }
}

// WithParam sets a scalar parameter such as "vfactor" or "acceleration".
func WithParam(name string, v float64) Option {
	return func(r *Request) {
		if r.Params == nil {
			r.Params = make(Params)
		}
		r.Params[name] = v
	}
}

// Study runs the registered study called name.
func Study(ctx context.Context, src domrepo.SeriesSource, name, symbol string, opts ...Option) (*models.Table, error) {
	def, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return run(ctx, src, def, symbol, opts)
}

func run(ctx context.Context, src domrepo.SeriesSource, def *Definition, symbol string, opts []Option) (*models.Table, error) {
	req := Request{Symbol: symbol}
	for _, opt := range opts {
		opt(&req)
	}
	return Run(ctx, src, def, req)
}

func Bollinger(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, bollingerDef, symbol, opts)
}

func DEMA(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, demaDef, symbol, opts)
}

func EMA(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, emaDef, symbol, opts)
}

func HTTrendline(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, htTrendlineDef, symbol, opts)
}

func KAMA(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, kamaDef, symbol, opts)
}

func MA(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, maDef, symbol, opts)
}

func MAMA(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, mamaDef, symbol, opts)
}

func MAVP(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, mavpDef, symbol, opts)
}

func MidPoint(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, midpointDef, symbol, opts)
}

func MidPrice(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, midpriceDef, symbol, opts)
}

func SAR(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, sarDef, symbol, opts)
}

func SAREXT(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, sarextDef, symbol, opts)
}

func SMA(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, smaDef, symbol, opts)
}

func T3(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, t3Def, symbol, opts)
}

func TEMA(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, temaDef, symbol, opts)
}

func TRIMA(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, trimaDef, symbol, opts)
}

func WMA(ctx context.Context, src domrepo.SeriesSource, symbol string, opts ...Option) (*models.Table, error) {
	return run(ctx, src, wmaDef, symbol, opts)
}
