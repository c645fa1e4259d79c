package cli

import (
	"errors"
	"io/fs"

	"FinStudies/internal/di"
	"FinStudies/internal/domain/repository"
	"FinStudies/pkg/config"
	applogger "FinStudies/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// RootConfig carries global flags and the factories commands build on.
// Tests replace the factories; NewRootConfig wires the real ones.
type RootConfig struct {
	ConfigPath string
	EnvFile    string

	LoadConfig func(path string) (*config.Config, error)
	Source     func(cfg *config.Config, log *applogger.Logger) (repository.SeriesSource, func(), error)
	RefData    func(cfg *config.Config) repository.RefDataProvider
	Serve      func(cfg *config.Config) error
}

// NewRootConfig returns a RootConfig backed by the DI providers.
func NewRootConfig() *RootConfig {
	return &RootConfig{
		LoadConfig: config.LoadWithEnv,
		Source:     buildSource,
		RefData: func(cfg *config.Config) repository.RefDataProvider {
			return di.ProvideIEXClient(cfg)
		},
		Serve: func(cfg *config.Config) error {
			app, err := di.InitializeApp(cfg)
			if err != nil {
				return err
			}
			return app.Run()
		},
	}
}

func buildSource(cfg *config.Config, log *applogger.Logger) (repository.SeriesSource, func(), error) {
	client := di.ProvideIEXClient(cfg)
	ch, err := di.ProvideClickHouseClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {}
	if ch != nil {
		cleanup = func() { _ = ch.Close() }
	}
	return di.ProvideSeriesSource(cfg, client, ch, log), cleanup, nil
}

// New builds the finstudies command tree.
func New(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "finstudies",
		Short:         "Technical studies and reference data over market price series",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if rc.EnvFile == "" {
				return nil
			}
			if err := godotenv.Load(rc.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&rc.ConfigPath, "config", "c", "config/config.yaml", "config file path")
	cmd.PersistentFlags().StringVar(&rc.EnvFile, "env-file", ".env", "dotenv file loaded before config (missing file is ignored)")

	serve := newServeCmd(rc)
	cmd.RunE = serve.RunE
	cmd.AddCommand(
		serve,
		newStudyCmd(rc),
		newCatalogCmd(),
		newIsinCmd(rc),
	)
	return cmd
}

// cliLogger logs to stderr so stdout stays machine readable.
func cliLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: "console", Output: "stderr"})
}
