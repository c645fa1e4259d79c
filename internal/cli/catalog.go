package cli

import (
	"fmt"
	"sort"
	"strings"

	"FinStudies/internal/studies"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the available studies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"study", "inputs", "periods", "params", "description"})
			for _, info := range studies.Catalog() {
				periods := "fixed"
				if info.Periodic {
					periods = fmt.Sprint(info.DefaultPeriods)
				}
				t.AppendRow(table.Row{info.Name, strings.Join(info.Inputs, ","), periods, formatParams(info.Params), info.Description})
			}
			t.Render()
			return nil
		},
	}
}

func formatParams(p map[string]float64) string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}
