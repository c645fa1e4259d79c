package cli

import (
	"log"

	"github.com/spf13/cobra"
)

func newServeCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when enabled, the Kafka study worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.LoadConfig(rc.ConfigPath)
			if err != nil {
				return err
			}
			log.Printf("env=%s source=%s kafka=%t", cfg.Environment, cfg.Source.Type, cfg.Kafka.Enabled)
			return rc.Serve(cfg)
		},
	}
}
