package studies

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"FinStudies/internal/domain/models"
	domrepo "FinStudies/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeries(n int) *models.Series {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		base := 100 + float64(i) + 5*math.Sin(float64(i)/4)
		candles[i] = models.Candle{
			Bucket: start.AddDate(0, 0, i),
			Symbol: "AAPL",
			Open:   base - 0.5,
			High:   base + 1,
			Low:    base - 1,
			Close:  base,
			Volume: 1000 + float64(i),
		}
	}
	return models.NewSeriesFromCandles("AAPL", candles)
}

type countingSource struct {
	series *models.Series
	err    error
	calls  int
	ranges []string
}

func (s *countingSource) Fetch(_ context.Context, symbol, rng string) (*models.Series, error) {
	s.calls++
	s.ranges = append(s.ranges, rng)
	if s.err != nil {
		return nil, s.err
	}
	return s.series, nil
}

// echoDef is a periodic study whose output at i is period + input[i].
func echoDef(calls *[]int) *Definition {
	return &Definition{
		Name:           "echo",
		Inputs:         RealInput,
		Periodic:       true,
		DefaultPeriods: []int{30},
		Compute: func(in [][]float64, period int, _ Params) []float64 {
			if calls != nil {
				*calls = append(*calls, period)
			}
			out := make([]float64, len(in[0]))
			for i, v := range in[0] {
				out[i] = float64(period) + v
			}
			return out
		},
	}
}

func TestRunPeriodicColumnsInOrder(t *testing.T) {
	src := &countingSource{series: testSeries(40)}
	var calls []int

	table, err := Run(context.Background(), src, echoDef(&calls), Request{Symbol: "AAPL", Periods: Many(10, 30, 5)})
	require.NoError(t, err)

	assert.Equal(t, []string{"close", "echo-10", "echo-30", "echo-5"}, table.Columns())
	assert.Equal(t, []int{10, 30, 5}, calls)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, []string{"6m"}, src.ranges)
	assert.Equal(t, 40, table.Len())
}

func TestRunSingleEqualsOneElementList(t *testing.T) {
	src := &countingSource{series: testSeries(20)}

	a, err := Run(context.Background(), src, echoDef(nil), Request{Symbol: "AAPL", Periods: Single(7)})
	require.NoError(t, err)
	b, err := Run(context.Background(), src, echoDef(nil), Request{Symbol: "AAPL", Periods: Many(7)})
	require.NoError(t, err)

	assert.Equal(t, a.Columns(), b.Columns())
	av, _ := a.Column("echo-7")
	bv, _ := b.Column("echo-7")
	assert.Equal(t, av, bv)
}

func TestRunUnsetPeriodsUsesDefault(t *testing.T) {
	src := &countingSource{series: testSeries(10)}
	table, err := Run(context.Background(), src, echoDef(nil), Request{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"close", "echo-30"}, table.Columns())
}

func TestRunEmptyPeriodListCarriesInputOnly(t *testing.T) {
	src := &countingSource{series: testSeries(10)}
	var calls []int

	table, err := Run(context.Background(), src, echoDef(&calls), Request{Symbol: "AAPL", Periods: Many()})
	require.NoError(t, err)

	assert.Equal(t, []string{"close"}, table.Columns())
	assert.Empty(t, calls)
}

func TestRunDuplicatePeriodsLastWriteWins(t *testing.T) {
	src := &countingSource{series: testSeries(10)}
	var calls []int

	table, err := Run(context.Background(), src, echoDef(&calls), Request{Symbol: "AAPL", Periods: Many(5, 5)})
	require.NoError(t, err)

	assert.Equal(t, []string{"close", "echo-5"}, table.Columns())
	assert.Equal(t, []int{5, 5}, calls)
}

func TestRunMissingColumnBeforePrimitive(t *testing.T) {
	src := &countingSource{series: testSeries(10)}
	var calls []int

	_, err := Run(context.Background(), src, echoDef(&calls), Request{Symbol: "AAPL", Col: "adjclose"})
	require.Error(t, err)

	var mc *MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, "adjclose", mc.Column)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Empty(t, calls)
	assert.Equal(t, "missing_column", Kind(err))
}

func TestRunMissingLowColumn(t *testing.T) {
	series := testSeries(10)
	series.DropColumn(models.ColLow)
	src := &countingSource{series: series}

	_, err := Run(context.Background(), src, midpriceDef, Request{Symbol: "AAPL"})
	var mc *MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, "low", mc.Column)
}

func TestRunDataUnavailablePropagates(t *testing.T) {
	want := fmt.Errorf("iex: ZZZZ: %w", domrepo.ErrDataUnavailable)
	src := &countingSource{err: want}

	table, err := Run(context.Background(), src, echoDef(nil), Request{Symbol: "ZZZZ"})
	assert.Nil(t, table)
	assert.Same(t, want, err)
	assert.ErrorIs(t, err, domrepo.ErrDataUnavailable)
	assert.Equal(t, "data_unavailable", Kind(err))
}

func TestRunPrimitivePanicBecomesPrimitiveError(t *testing.T) {
	def := &Definition{
		Name:           "boom",
		Inputs:         RealInput,
		Periodic:       true,
		DefaultPeriods: []int{3},
		Compute: func([][]float64, int, Params) []float64 {
			panic("index out of range")
		},
	}
	src := &countingSource{series: testSeries(10)}

	table, err := Run(context.Background(), src, def, Request{Symbol: "AAPL"})
	assert.Nil(t, table)
	var pe *PrimitiveError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "boom", pe.Study)
	assert.ErrorIs(t, err, ErrPrimitiveFailure)
	assert.Equal(t, "primitive_failure", Kind(err))
}

func TestRunFailingPeriodAbortsWholeCall(t *testing.T) {
	var calls []int
	def := echoDef(&calls)
	compute := def.Compute
	def.Compute = func(in [][]float64, period int, p Params) []float64 {
		out := compute(in, period, p)
		if period == 1000 {
			panic("period exceeds series length")
		}
		return out
	}
	src := &countingSource{series: testSeries(20)}

	table, err := Run(context.Background(), src, def, Request{Symbol: "AAPL", Periods: Many(5, 1000, 10)})
	assert.Nil(t, table)
	assert.ErrorIs(t, err, ErrPrimitiveFailure)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, []int{5, 1000}, calls)
}

func TestRunPrimitiveLengthMismatch(t *testing.T) {
	def := &Definition{
		Name:   "short",
		Inputs: RealInput,
		ComputeFixed: func(in [][]float64, _ Params) [][]float64 {
			return [][]float64{in[0][1:]}
		},
		Outputs: fixedNames("short"),
	}
	src := &countingSource{series: testSeries(10)}

	_, err := Run(context.Background(), src, def, Request{Symbol: "AAPL"})
	assert.ErrorIs(t, err, ErrPrimitiveFailure)
}

func TestRunFixedOutputCountMismatch(t *testing.T) {
	def := &Definition{
		Name:   "pair",
		Inputs: RealInput,
		ComputeFixed: func(in [][]float64, _ Params) [][]float64 {
			return [][]float64{in[0]}
		},
		Outputs: fixedNames("a", "b"),
	}
	src := &countingSource{series: testSeries(10)}

	_, err := Run(context.Background(), src, def, Request{Symbol: "AAPL"})
	assert.ErrorIs(t, err, ErrPrimitiveFailure)
}

func TestRunPrimitiveCannotMutateSeries(t *testing.T) {
	series := testSeries(10)
	orig, _ := series.Column(models.ColClose)
	before := clone(orig)
	def := &Definition{
		Name:   "mutate",
		Inputs: RealInput,
		ComputeFixed: func(in [][]float64, _ Params) [][]float64 {
			for i := range in[0] {
				in[0][i] = -1
			}
			return [][]float64{in[0]}
		},
		Outputs: fixedNames("m"),
	}

	table, err := Run(context.Background(), &countingSource{series: series}, def, Request{Symbol: "AAPL"})
	require.NoError(t, err)

	after, _ := series.Column(models.ColClose)
	assert.Equal(t, before, after)
	carried, _ := table.Column(models.ColClose)
	assert.Equal(t, before, carried)
}

func TestRunIdempotent(t *testing.T) {
	src := &countingSource{series: testSeries(60)}
	req := Request{Symbol: "AAPL", Periods: Many(10, 20)}

	a, err := Run(context.Background(), src, emaDef, req)
	require.NoError(t, err)
	b, err := Run(context.Background(), src, emaDef, req)
	require.NoError(t, err)

	assert.Equal(t, a.Split(), b.Split())
}

func TestRunEveryColumnMatchesIndexLength(t *testing.T) {
	src := &countingSource{series: testSeries(120)}
	for _, name := range Names() {
		def, err := Lookup(name)
		require.NoError(t, err)

		table, err := Run(context.Background(), src, def, Request{Symbol: "AAPL", Periods: Many(5, 10)})
		require.NoError(t, err, name)
		for _, col := range table.Columns() {
			v, _ := table.Column(col)
			assert.Len(t, v, len(table.Index), "%s/%s", name, col)
		}
	}
}

func TestRunContextIsPassedToSource(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	var seen context.Context
	src := domrepo.SeriesSourceFunc(func(ctx context.Context, _, _ string) (*models.Series, error) {
		seen = ctx
		return testSeries(5), nil
	})

	_, err := Run(ctx, src, echoDef(nil), Request{Symbol: "AAPL", Periods: Single(2)})
	require.NoError(t, err)
	assert.Equal(t, "v", seen.Value(key{}))
}

func TestKindOfOtherErrors(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "internal", Kind(errors.New("x")))
	_, err := Lookup("nope")
	assert.Equal(t, "unknown_study", Kind(err))
}
