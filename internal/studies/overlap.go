package studies

import (
	"fmt"
	"sort"

	"FinStudies/internal/domain/models"

	"github.com/markcheno/go-talib"
)

var registry = make(map[string]*Definition)

func register(d *Definition) *Definition {
	if _, dup := registry[d.Name]; dup {
		panic("studies: duplicate definition " + d.Name)
	}
	registry[d.Name] = d
	return d
}

// Lookup returns the registered definition for name.
func Lookup(name string) (*Definition, error) {
	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStudy, name)
	}
	return d, nil
}

// Names returns registered study names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Catalog describes every registered study, sorted by name.
func Catalog() []models.StudyInfo {
	names := Names()
	out := make([]models.StudyInfo, 0, len(names))
	for _, name := range names {
		out = append(out, registry[name].Info())
	}
	return out
}

// periodic declares a single-input study computed once per period.
func periodic(name, desc string, fn func(in []float64, period int) []float64, warm func(period int) int) *Definition {
	return register(&Definition{
		Name:           name,
		Description:    desc,
		Inputs:         RealInput,
		Periodic:       true,
		DefaultPeriods: []int{30},
		Compute: func(in [][]float64, period int, _ Params) []float64 {
			return fn(in[0], period)
		},
		Lookback: func(period int, _ Params) int { return warm(period) },
	})
}

func minusOne(period int) int { return period - 1 }

// maLookback mirrors TA-Lib's lookback for each moving-average type.
// A period of 1 copies the input for every type.
func maLookback(maType, period int) int {
	if period <= 1 {
		return 0
	}
	switch talib.MaType(maType) {
	case talib.DEMA:
		return 2 * (period - 1)
	case talib.TEMA:
		return 3 * (period - 1)
	case talib.KAMA:
		return period
	case talib.MAMA:
		return 32
	case talib.T3MA:
		return 6 * (period - 1)
	default:
		return period - 1
	}
}

// mavpLookback covers a constant period series: output starts at maxperiod-1
// or at the first valid value of the clamped period's average, whichever is later.
func mavpLookback(period int, p Params) int {
	lo, hi := p.Int("minperiod"), p.Int("maxperiod")
	clamped := min(max(period, lo), hi)
	return max(hi-1, maLookback(p.Int("matype"), clamped))
}

func suffixed(prefix string) func(Request) []string {
	return func(req Request) []string {
		return []string{prefix + "-" + req.withDefaults().Col}
	}
}

func fixedNames(names ...string) func(Request) []string {
	return func(Request) []string { return names }
}

var (
	bollingerDef = register(&Definition{
		Name:        "bollinger",
		Description: "bollinger bands",
		Inputs:      RealInput,
		Defaults:    Params{"period": 2, "nbdevup": 2, "nbdevdn": 2, "matype": 0},
		ComputeFixed: func(in [][]float64, p Params) [][]float64 {
			upper, middle, lower := talib.BBands(in[0], p.Int("period"), p.Float("nbdevup"), p.Float("nbdevdn"), talib.MaType(p.Int("matype")))
			return [][]float64{upper, middle, lower}
		},
		Outputs: fixedNames("upper", "middle", "lower"),
		// the bands also need a full stddev window
		Lookback: func(_ int, p Params) int {
			return max(maLookback(p.Int("matype"), p.Int("period")), p.Int("period")-1)
		},
	})

	demaDef = periodic("dema", "double exponential moving average", talib.Dema,
		func(p int) int { return 2 * (p - 1) })

	emaDef = periodic("ema", "exponential moving average", talib.Ema, minusOne)

	htTrendlineDef = register(&Definition{
		Name:        "ht_trendline",
		Description: "hilbert transform instantaneous trendline",
		Inputs:      RealInput,
		ComputeFixed: func(in [][]float64, _ Params) [][]float64 {
			return [][]float64{talib.HtTrendline(in[0])}
		},
		Outputs:  suffixed("ht"),
		Lookback: func(int, Params) int { return 63 },
	})

	kamaDef = register(&Definition{
		Name:        "kama",
		Description: "kaufman adaptive moving average",
		Inputs:      RealInput,
		Defaults:    Params{"period": 30},
		ComputeFixed: func(in [][]float64, p Params) [][]float64 {
			return [][]float64{talib.Kama(in[0], p.Int("period"))}
		},
		Outputs:  suffixed("kama"),
		Lookback: func(_ int, p Params) int { return p.Int("period") },
	})

	maDef = register(&Definition{
		Name:           "ma",
		Description:    "moving average of the given matype",
		Inputs:         RealInput,
		Periodic:       true,
		DefaultPeriods: []int{30},
		Defaults:       Params{"matype": 0},
		Compute: func(in [][]float64, period int, p Params) []float64 {
			return talib.Ma(in[0], period, talib.MaType(p.Int("matype")))
		},
		Lookback: func(period int, p Params) int { return maLookback(p.Int("matype"), period) },
	})

	mamaDef = register(&Definition{
		Name:        "mama",
		Description: "mesa adaptive moving average",
		Inputs:      RealInput,
		Defaults:    Params{"fastlimit": 0.5, "slowlimit": 0.05},
		ComputeFixed: func(in [][]float64, p Params) [][]float64 {
			mama, fama := talib.Mama(in[0], p.Float("fastlimit"), p.Float("slowlimit"))
			return [][]float64{mama, fama}
		},
		Outputs: func(req Request) []string {
			col := req.withDefaults().Col
			return []string{"mama-" + col, "fama-" + col}
		},
		Lookback: func(int, Params) int { return 32 },
	})

	mavpDef = register(&Definition{
		Name:           "mavp",
		Description:    "moving average with variable period",
		Inputs:         RealInput,
		Periodic:       true,
		DefaultPeriods: []int{30},
		Defaults:       Params{"minperiod": 2, "maxperiod": 30, "matype": 0},
		Compute: func(in [][]float64, period int, p Params) []float64 {
			periods := make([]float64, len(in[0]))
			for i := range periods {
				periods[i] = float64(period)
			}
			return talib.MaVp(in[0], periods, p.Int("minperiod"), p.Int("maxperiod"), talib.MaType(p.Int("matype")))
		},
		Lookback: mavpLookback,
	})

	midpointDef = register(&Definition{
		Name:        "midpoint",
		Description: "midpoint over period",
		Inputs:      RealInput,
		Defaults:    Params{"period": 14},
		ComputeFixed: func(in [][]float64, p Params) [][]float64 {
			return [][]float64{talib.MidPoint(in[0], p.Int("period"))}
		},
		Outputs:  suffixed("midpoint"),
		Lookback: func(_ int, p Params) int { return p.Int("period") - 1 },
	})

	midpriceDef = register(&Definition{
		Name:        "midprice",
		Description: "midpoint price over period",
		Inputs:      HighLowInput,
		Defaults:    Params{"period": 14},
		ComputeFixed: func(in [][]float64, p Params) [][]float64 {
			return [][]float64{talib.MidPrice(in[0], in[1], p.Int("period"))}
		},
		Outputs:  fixedNames("midprice"),
		Lookback: func(_ int, p Params) int { return p.Int("period") - 1 },
	})

	sarDef = register(&Definition{
		Name:        "sar",
		Description: "parabolic stop and reverse",
		Inputs:      HighLowInput,
		Defaults:    Params{"acceleration": 0.02, "maximum": 0.2},
		ComputeFixed: func(in [][]float64, p Params) [][]float64 {
			return [][]float64{talib.Sar(in[0], in[1], p.Float("acceleration"), p.Float("maximum"))}
		},
		Outputs:  fixedNames("sar"),
		Lookback: func(int, Params) int { return 1 },
	})

	sarextDef = register(&Definition{
		Name:        "sarext",
		Description: "parabolic stop and reverse, extended",
		Inputs:      HighLowInput,
		Defaults: Params{
			"startvalue":            0,
			"offsetonreverse":       0,
			"accelerationinitlong":  0.02,
			"accelerationlong":      0.02,
			"accelerationmaxlong":   0.2,
			"accelerationinitshort": 0.02,
			"accelerationshort":     0.02,
			"accelerationmaxshort":  0.2,
		},
		ComputeFixed: func(in [][]float64, p Params) [][]float64 {
			return [][]float64{talib.SarExt(in[0], in[1],
				p.Float("startvalue"),
				p.Float("offsetonreverse"),
				p.Float("accelerationinitlong"),
				p.Float("accelerationlong"),
				p.Float("accelerationmaxlong"),
				p.Float("accelerationinitshort"),
				p.Float("accelerationshort"),
				p.Float("accelerationmaxshort"),
			)}
		},
		Outputs:  fixedNames("sar"),
		Lookback: func(int, Params) int { return 1 },
	})

	smaDef = periodic("sma", "simple moving average", talib.Sma, minusOne)

	t3Def = register(&Definition{
		Name:           "t3",
		Description:    "triple exponential moving average (T3)",
		Inputs:         RealInput,
		Periodic:       true,
		DefaultPeriods: []int{30},
		Defaults:       Params{"vfactor": 0.7},
		Compute: func(in [][]float64, period int, p Params) []float64 {
			return talib.T3(in[0], period, p.Float("vfactor"))
		},
		Lookback: func(period int, _ Params) int { return 6 * (period - 1) },
	})

	temaDef = periodic("tema", "triple exponential moving average", talib.Tema,
		func(p int) int { return 3 * (p - 1) })

	trimaDef = periodic("trima", "triangular moving average", talib.Trima, minusOne)

	wmaDef = periodic("wma", "weighted moving average", talib.Wma, minusOne)
)
