package models

import "sort"

// IsinRecord is one identifier-mapping record returned by the reference-data
// endpoint. Fields depend on the provider and on the requested filter.
type IsinRecord map[string]interface{}

// Symbol returns the record's symbol field, if any.
func (r IsinRecord) Symbol() string {
	if v, ok := r["symbol"].(string); ok {
		return v
	}
	return ""
}

// IsinTable is the tabular projection of a set of ISIN records.
type IsinTable struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// NewIsinTable projects records into rows over the sorted union of their keys.
// Missing fields are nil.
func NewIsinTable(records []IsinRecord) IsinTable {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		row := make([]interface{}, len(cols))
		for i, c := range cols {
			row[i] = r[c]
		}
		rows = append(rows, row)
	}
	return IsinTable{Columns: cols, Rows: rows}
}
