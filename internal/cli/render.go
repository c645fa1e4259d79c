package cli

import (
	"io"
	"strconv"

	"FinStudies/internal/domain/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// renderSplit prints a result table with one row per bar. Null cells print empty.
func renderSplit(w io.Writer, s models.SplitTable, csv bool) {
	t := newTable(w)

	header := table.Row{"date"}
	configs := make([]table.ColumnConfig, 0, len(s.Columns))
	for i, c := range s.Columns {
		header = append(header, c)
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for i, ts := range s.Index {
		row := table.Row{ts.Format("2006-01-02 15:04")}
		for _, v := range s.Data[i] {
			if v == nil {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(*v, 'f', 4, 64))
		}
		t.AppendRow(row)
	}

	if csv {
		t.RenderCSV()
		return
	}
	t.Render()
}
