package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"FinStudies/internal/domain/models"
	"FinStudies/internal/domain/repository"
	"FinStudies/pkg/config"
	applogger "FinStudies/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefData struct {
	records []models.IsinRecord
	gotIsin string
	gotFilt string
}

func (f *fakeRefData) IsinLookup(_ context.Context, isin, filter string) ([]models.IsinRecord, error) {
	f.gotIsin, f.gotFilt = isin, filter
	return f.records, nil
}

func testSeries(n int) *models.Series {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		p := 20 + float64(i) + math.Cos(float64(i))
		candles[i] = models.Candle{Bucket: start.AddDate(0, 0, i), Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 5}
	}
	return models.NewSeriesFromCandles("MSFT", candles)
}

type harness struct {
	rc       *RootConfig
	ref      *fakeRefData
	fetches  []string
	served   *config.Config
	cleanups int
}

func newHarness(s *models.Series) *harness {
	h := &harness{ref: &fakeRefData{}}
	h.rc = &RootConfig{
		LoadConfig: func(string) (*config.Config, error) { return config.Default(), nil },
		Source: func(*config.Config, *applogger.Logger) (repository.SeriesSource, func(), error) {
			src := repository.SeriesSourceFunc(func(_ context.Context, symbol, rng string) (*models.Series, error) {
				h.fetches = append(h.fetches, symbol+"/"+rng)
				return s, nil
			})
			return src, func() { h.cleanups++ }, nil
		},
		RefData: func(*config.Config) repository.RefDataProvider { return h.ref },
		Serve: func(cfg *config.Config) error {
			h.served = cfg
			return nil
		},
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New(h.rc)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStudyPretty(t *testing.T) {
	h := newHarness(testSeries(12))
	out, err := h.run(t, "study", "sma", "-s", "MSFT", "-r", "1m", "-p", "3,5", "--tail", "4")
	require.NoError(t, err)

	assert.Equal(t, []string{"MSFT/1m"}, h.fetches)
	assert.Equal(t, 1, h.cleanups)
	header := strings.ToLower(out)
	assert.Contains(t, header, "sma-3")
	assert.Contains(t, header, "sma-5")
	assert.Contains(t, out, "2024-03-12 00:00")
	assert.NotContains(t, out, "2024-03-08 00:00")
}

func TestStudyJSONKeepsNulls(t *testing.T) {
	h := newHarness(testSeries(8))
	out, err := h.run(t, "study", "ema", "--symbol", "MSFT", "--periods", "4", "-o", "json")
	require.NoError(t, err)

	var split models.SplitTable
	require.NoError(t, json.Unmarshal([]byte(out), &split))
	assert.Equal(t, []string{"close", "ema-4"}, split.Columns)
	assert.Nil(t, split.Data[2][1])
	assert.NotNil(t, split.Data[3][1])
}

func TestStudyCSV(t *testing.T) {
	h := newHarness(testSeries(6))
	out, err := h.run(t, "study", "wma", "-s", "MSFT", "-p", "2", "-o", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "date,close,wma-2", strings.ToLower(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "2024-03-01 00:00,"))
	assert.True(t, strings.HasSuffix(lines[1], ","))
}

func TestStudyParams(t *testing.T) {
	h := newHarness(testSeries(40))
	_, err := h.run(t, "study", "t3", "-s", "MSFT", "-p", "3", "--param", "vfactor=0.4", "-o", "json")
	require.NoError(t, err)

	_, err = h.run(t, "study", "t3", "-s", "MSFT", "--param", "vfactor=lots")
	assert.ErrorContains(t, err, "vfactor")
}

func TestStudyErrors(t *testing.T) {
	h := newHarness(testSeries(10))

	_, err := h.run(t, "study", "sma")
	assert.ErrorContains(t, err, "symbol")

	_, err = h.run(t, "study", "nope", "-s", "MSFT")
	assert.ErrorContains(t, err, "unknown_study")

	_, err = h.run(t, "study", "sma", "-s", "MSFT", "--col", "adjclose")
	assert.ErrorContains(t, err, "missing_column")

	_, err = h.run(t, "study", "sma", "-s", "MSFT", "-o", "xml")
	assert.ErrorContains(t, err, "xml")
}

func TestStudySourceFactoryError(t *testing.T) {
	h := newHarness(nil)
	h.rc.Source = func(*config.Config, *applogger.Logger) (repository.SeriesSource, func(), error) {
		return nil, nil, errors.New("clickhouse client: dial refused")
	}
	_, err := h.run(t, "study", "sma", "-s", "MSFT")
	assert.ErrorContains(t, err, "dial refused")
}

func TestCatalogListsStudies(t *testing.T) {
	h := newHarness(nil)
	out, err := h.run(t, "catalog")
	require.NoError(t, err)
	for _, name := range []string{"bollinger", "midprice", "sarext", "wma"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "vfactor=0.7")
}

func TestIsin(t *testing.T) {
	h := newHarness(nil)
	h.ref.records = []models.IsinRecord{{"symbol": "AAPL", "region": "US"}}

	out, err := h.run(t, "isin", "US0378331005", "--filter", "symbol,region")
	require.NoError(t, err)
	assert.Equal(t, "US0378331005", h.ref.gotIsin)
	assert.Equal(t, "symbol,region", h.ref.gotFilt)
	assert.Contains(t, out, "AAPL")

	out, err = h.run(t, "isin", "US0378331005", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"symbol":"AAPL","region":"US"}]`, out)
}

func TestServeIsDefault(t *testing.T) {
	h := newHarness(nil)
	_, err := h.run(t)
	require.NoError(t, err)
	require.NotNil(t, h.served)

	h.served = nil
	_, err = h.run(t, "serve")
	require.NoError(t, err)
	assert.NotNil(t, h.served)
}
