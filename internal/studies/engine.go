package studies

import (
	"context"
	"fmt"
	"math"

	"FinStudies/internal/domain/models"
	domrepo "FinStudies/internal/domain/repository"
)

// Run computes one study end to end: fetch the series once, select inputs,
// normalize periods, invoke the primitive and assemble the result table.
// Any failure aborts the call and no partial table is returned.
func Run(ctx context.Context, src domrepo.SeriesSource, def *Definition, req Request) (*models.Table, error) {
	req = req.withDefaults()

	series, err := src.Fetch(ctx, req.Symbol, req.Range)
	if err != nil {
		return nil, err
	}

	names := def.Columns(req)
	inputs := make([][]float64, len(names))
	for i, name := range names {
		col, ok := series.Column(name)
		if !ok {
			return nil, &MissingColumnError{Study: def.Name, Column: name}
		}
		inputs[i] = col
	}

	params := def.Defaults.merge(req.Params)
	n := series.Len()

	table := models.NewTable(series.Index)
	for i, name := range names {
		table.Set(name, clone(inputs[i]))
	}

	if def.Periodic {
		for _, period := range req.Periods.Normalize(def.DefaultPeriods) {
			out, err := invoke(def.Name, n, func() [][]float64 {
				return [][]float64{def.Compute(cloneAll(inputs), period, params)}
			})
			if err != nil {
				return nil, err
			}
			maskWarmup(out[0], lookback(def, period, params))
			table.Set(ColumnName(def.Name, period), out[0])
		}
		return table, nil
	}

	outNames := def.Outputs(req)
	out, err := invoke(def.Name, n, func() [][]float64 {
		return def.ComputeFixed(cloneAll(inputs), params)
	})
	if err != nil {
		return nil, err
	}
	if len(out) != len(outNames) {
		return nil, &PrimitiveError{Study: def.Name, Err: fmt.Errorf("got %d outputs, want %d", len(out), len(outNames))}
	}
	warm := lookback(def, 0, params)
	for i, name := range outNames {
		maskWarmup(out[i], warm)
		table.Set(name, out[i])
	}
	return table, nil
}

// invoke calls fn, turning panics and length mismatches into *PrimitiveError.
func invoke(study string, n int, fn func() [][]float64) (out [][]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &PrimitiveError{Study: study, Err: fmt.Errorf("%v", r)}
		}
	}()
	out = fn()
	for _, o := range out {
		if len(o) != n {
			return nil, &PrimitiveError{Study: study, Err: fmt.Errorf("output length %d, series length %d", len(o), n)}
		}
	}
	return out, nil
}

func lookback(def *Definition, period int, p Params) int {
	if def.Lookback == nil {
		return 0
	}
	return def.Lookback(period, p)
}

// maskWarmup sets the first n values to NaN.
func maskWarmup(v []float64, n int) {
	if n > len(v) {
		n = len(v)
	}
	for i := 0; i < n; i++ {
		v[i] = math.NaN()
	}
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func cloneAll(in [][]float64) [][]float64 {
	out := make([][]float64, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}
