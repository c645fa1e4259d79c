package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"FinStudies/internal/studies"
	"FinStudies/internal/usecase"
	"FinStudies/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type studyFlags struct {
	symbol  string
	rng     string
	col     string
	highCol string
	lowCol  string
	periods string
	params  map[string]string
	output  string
	tail    int
}

func newStudyCmd(rc *RootConfig) *cobra.Command {
	f := &studyFlags{}
	cmd := &cobra.Command{
		Use:   "study NAME",
		Short: "Compute one study and print the result table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request()
			if err != nil {
				return err
			}

			cfg, err := rc.LoadConfig(rc.ConfigPath)
			if err != nil {
				return err
			}
			log, err := cliLogger(cfg)
			if err != nil {
				return err
			}
			src, cleanup, err := rc.Source(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			uc := usecase.NewStudiesUseCase(src, cfg.Source.Type, metrics.New(prometheus.NewRegistry()), log)
			table, err := uc.Run(cmd.Context(), args[0], req)
			if err != nil {
				return fmt.Errorf("%s (%s): %w", args[0], studies.Kind(err), err)
			}

			split := table.Split()
			if f.tail > 0 && f.tail < len(split.Index) {
				cut := len(split.Index) - f.tail
				split.Index, split.Data = split.Index[cut:], split.Data[cut:]
			}
			out := cmd.OutOrStdout()
			switch f.output {
			case "json":
				return json.NewEncoder(out).Encode(split)
			case "csv":
				renderSplit(out, split, true)
			default:
				renderSplit(out, split, false)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.symbol, "symbol", "s", "", "ticker symbol")
	fl.StringVarP(&f.rng, "range", "r", "6m", "history range (max, 5y, 2y, 1y, ytd, 6m, 3m, 1m, 1mm, 5d, 5dm)")
	fl.StringVar(&f.col, "col", "close", "input column")
	fl.StringVar(&f.highCol, "highcol", "high", "high column for high/low studies")
	fl.StringVar(&f.lowCol, "lowcol", "low", "low column for high/low studies")
	fl.StringVarP(&f.periods, "periods", "p", "", "period or comma-separated periods")
	fl.StringToStringVar(&f.params, "param", nil, "scalar parameters, e.g. --param vfactor=0.5")
	fl.StringVarP(&f.output, "output", "o", "pretty", "output format: pretty, csv or json")
	fl.IntVar(&f.tail, "tail", 0, "print only the last N rows")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func (f *studyFlags) request() (studies.Request, error) {
	req := studies.Request{
		Symbol:  f.symbol,
		Range:   f.rng,
		Col:     f.col,
		HighCol: f.highCol,
		LowCol:  f.lowCol,
	}
	periods, err := studies.ParsePeriods(f.periods)
	if err != nil {
		return req, err
	}
	req.Periods = periods

	for name, raw := range f.params {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("param %s: %q is not a number", name, raw)
		}
		if req.Params == nil {
			req.Params = make(studies.Params)
		}
		req.Params[name] = v
	}
	switch f.output {
	case "pretty", "csv", "json":
	default:
		return req, fmt.Errorf("unknown output format %q", f.output)
	}
	return req, nil
}
