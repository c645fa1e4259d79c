package studies

import (
	"strconv"

	"FinStudies/internal/domain/models"
	domrepo "FinStudies/internal/domain/repository"
)

// Inputs selects which series columns a study consumes.
type Inputs int

const (
	// RealInput consumes Request.Col.
	RealInput Inputs = iota
	// HighLowInput consumes Request.HighCol and Request.LowCol, in that order.
	HighLowInput
)

// Definition declares one study: its inputs, primitive binding and output naming.
//
// Periodic studies set Compute and produce one column per period named
// "{Name}-{period}". Fixed studies set ComputeFixed and Outputs and run once.
// Lookback returns the length of the warm-up prefix for the given period
// (zero for fixed studies) and merged params.
type Definition struct {
	Name           string
	Description    string
	Inputs         Inputs
	Periodic       bool
	DefaultPeriods []int
	Defaults       Params

	Compute      func(in [][]float64, period int, p Params) []float64
	ComputeFixed func(in [][]float64, p Params) [][]float64
	Outputs      func(req Request) []string
	Lookback     func(period int, p Params) int
}

// Request carries the per-invocation arguments of a study.
type Request struct {
	Symbol  string
	Range   string
	Col     string
	HighCol string
	LowCol  string
	Periods PeriodArg
	Params  Params
}

func (r Request) withDefaults() Request {
	if r.Range == "" {
		r.Range = string(domrepo.DefaultRange())
	}
	if r.Col == "" {
		r.Col = models.ColClose
	}
	if r.HighCol == "" {
		r.HighCol = models.ColHigh
	}
	if r.LowCol == "" {
		r.LowCol = models.ColLow
	}
	return r
}

// Columns returns the series columns the study reads for req, in primitive order.
func (d *Definition) Columns(req Request) []string {
	req = req.withDefaults()
	if d.Inputs == HighLowInput {
		return []string{req.HighCol, req.LowCol}
	}
	return []string{req.Col}
}

// ColumnName is the output naming rule of periodic studies.
func ColumnName(study string, period int) string {
	return study + "-" + strconv.Itoa(period)
}

// Info describes d for catalogs.
func (d *Definition) Info() models.StudyInfo {
	inputs := []string{"col"}
	if d.Inputs == HighLowInput {
		inputs = []string{"highcol", "lowcol"}
	}
	return models.StudyInfo{
		Name:           d.Name,
		Description:    d.Description,
		Inputs:         inputs,
		Periodic:       d.Periodic,
		DefaultPeriods: d.DefaultPeriods,
		Params:         d.Defaults.merge(nil),
	}
}
