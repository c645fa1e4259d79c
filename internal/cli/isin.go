package cli

import (
	"encoding/json"
	"fmt"

	"FinStudies/internal/domain/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newIsinCmd(rc *RootConfig) *cobra.Command {
	var filter, output string
	cmd := &cobra.Command{
		Use:   "isin ISIN",
		Short: "Look up the symbols listed under an ISIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.LoadConfig(rc.ConfigPath)
			if err != nil {
				return err
			}
			records, err := rc.RefData(cfg).IsinLookup(cmd.Context(), args[0], filter)
			if err != nil {
				return fmt.Errorf("isin %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if output == "json" {
				return json.NewEncoder(out).Encode(records)
			}
			it := models.NewIsinTable(records)
			t := newTable(out)
			header := make(table.Row, len(it.Columns))
			for i, c := range it.Columns {
				header[i] = c
			}
			t.AppendHeader(header)
			for _, r := range it.Rows {
				row := make(table.Row, len(r))
				for i, v := range r {
					if v != nil {
						row[i] = v
					} else {
						row[i] = ""
					}
				}
				t.AppendRow(row)
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "comma-separated fields to return")
	cmd.Flags().StringVarP(&output, "output", "o", "pretty", "output format: pretty or json")
	return cmd
}
