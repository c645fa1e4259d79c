package models

import (
	"math"
	"time"
)

// Table is an ordered set of equal-length float columns sharing a time index.
// It is the result shape of every study.
type Table struct {
	Index   []time.Time
	columns map[string][]float64
	order   []string
}

// NewTable creates an empty table over index.
func NewTable(index []time.Time) *Table {
	return &Table{
		Index:   index,
		columns: make(map[string][]float64),
	}
}

// Set appends a column, or overwrites the values of an existing one in place
// (the column keeps its original position).
func (t *Table) Set(name string, values []float64) {
	if _, ok := t.columns[name]; !ok {
		t.order = append(t.order, name)
	}
	t.columns[name] = values
}

// Column returns the values of a column and whether it exists.
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.columns[name]
	return v, ok
}

// Columns returns column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Index) }

// SplitTable is the column-oriented JSON projection of a Table.
// NaN cells are encoded as null.
type SplitTable struct {
	Index   []time.Time  `json:"index"`
	Columns []string     `json:"columns"`
	Data    [][]*float64 `json:"data"`
}

// Split returns the column-oriented projection of t.
func (t *Table) Split() SplitTable {
	data := make([][]*float64, t.Len())
	for i := range data {
		row := make([]*float64, len(t.order))
		for j, name := range t.order {
			row[j] = cell(t.columns[name], i)
		}
		data[i] = row
	}
	return SplitTable{Index: t.Index, Columns: t.Columns(), Data: data}
}

// Records returns one map per row keyed by column name, plus "date".
// NaN cells map to nil.
func (t *Table) Records() []map[string]interface{} {
	out := make([]map[string]interface{}, t.Len())
	for i := range out {
		rec := make(map[string]interface{}, len(t.order)+1)
		rec["date"] = t.Index[i]
		for _, name := range t.order {
			if v := cell(t.columns[name], i); v != nil {
				rec[name] = *v
			} else {
				rec[name] = nil
			}
		}
		out[i] = rec
	}
	return out
}

func cell(col []float64, i int) *float64 {
	if i >= len(col) || math.IsNaN(col[i]) || math.IsInf(col[i], 0) {
		return nil
	}
	v := col[i]
	return &v
}
