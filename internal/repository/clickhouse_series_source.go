package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FinStudies/internal/domain/models"
	domrepo "FinStudies/internal/domain/repository"
	pkgch "FinStudies/pkg/clickhouse"
	applogger "FinStudies/pkg/logger"
)

// DefaultCandlesTable holds daily OHLCV bars keyed by (symbol, bucket).
const DefaultCandlesTable = "candles_1d"

// CandlesSchema returns the DDL for a candles table compatible with CHSeriesSource.
func CandlesSchema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            bucket DateTime,
            symbol LowCardinality(String),
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            vol    Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, bucket)
    `, table)}
}

// CHSeriesSource implements SeriesSource over a ClickHouse candles table.
type CHSeriesSource struct {
	db    *sql.DB
	table string
	now   func() time.Time
	l     *applogger.Logger
}

var _ domrepo.SeriesSource = (*CHSeriesSource)(nil)

func NewCHSeriesSource(ch *pkgch.Client, table string) *CHSeriesSource {
	if table == "" {
		table = DefaultCandlesTable
	}
	return &CHSeriesSource{db: ch.DB(), table: table, now: time.Now}
}

// SetLogger injects a structured logger.
func (s *CHSeriesSource) SetLogger(l *applogger.Logger) { s.l = l }

// Fetch loads ascending candles for symbol within rng. An unknown range, a
// query failure or an empty result is reported as ErrDataUnavailable.
func (s *CHSeriesSource) Fetch(ctx context.Context, symbol, rng string) (*models.Series, error) {
	start := time.Now()
	from, ok := domrepo.RangeStart(domrepo.Range(rng), s.now().UTC())
	if !ok {
		return nil, fmt.Errorf("clickhouse %s: unknown range %q: %w", symbol, rng, domrepo.ErrDataUnavailable)
	}

	const qtpl = `
        SELECT bucket, open, high, low, close, vol
        FROM %s
        WHERE symbol = ?%s
        ORDER BY bucket ASC
    `
	args := []interface{}{symbol}
	bound := ""
	if !from.IsZero() {
		bound = " AND bucket >= ?"
		args = append(args, from)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table, bound), args...)
	if err != nil {
		s.logError("clickhouse series query error", symbol, rng, err)
		return nil, fmt.Errorf("clickhouse %s: %w: %w", symbol, domrepo.ErrDataUnavailable, err)
	}
	defer rows.Close()

	candles := make([]models.Candle, 0, 256)
	for rows.Next() {
		c := models.Candle{Symbol: symbol}
		if err := rows.Scan(&c.Bucket, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			s.logError("clickhouse series scan error", symbol, rng, err)
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse series rows error", symbol, rng, err)
		return nil, fmt.Errorf("clickhouse %s: %w: %w", symbol, domrepo.ErrDataUnavailable, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("clickhouse %s/%s: %w: no rows", symbol, rng, domrepo.ErrDataUnavailable)
	}

	if s.l != nil {
		s.l.Debug("clickhouse series ok",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.String("range", rng),
			applogger.Int("rows", len(candles)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return models.NewSeriesFromCandles(symbol, candles), nil
}

func (s *CHSeriesSource) logError(msg, symbol, rng string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", s.table),
		applogger.String("symbol", symbol),
		applogger.String("range", rng),
		applogger.Error(err),
	)
}
