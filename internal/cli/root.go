// Package cli defines the benchscore command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/benchscore/internal/adapters/eventlog"
	"github.com/okian/benchscore/internal/adapters/report"
	service "github.com/okian/benchscore/internal/app"
	"github.com/okian/benchscore/internal/config"
	"github.com/okian/benchscore/internal/domain/scoring"
	"github.com/okian/benchscore/pkg/logger"
	"github.com/spf13/cobra"
)

const missingInput = "pass the k6 event log to score as the first argument"

// flags holds values shared by every command.
type flags struct {
	configFile string
	resultsDir string
	logLevel   string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "benchscore <event-log>",
		Short: "Score a k6 load-test event log",
		Long: `Reads the NDJSON event log written by k6, counts successes, failures and
timeouts for each benchmarked API, prints a summary and stores the
submission payload in the results directory.`,
		Args: func(_ *cobra.Command, args []string) error {
			switch {
			case len(args) == 0 || args[0] == "":
				return fmt.Errorf("%w: %s", ErrUsage, missingInput)
			case len(args) > 1:
				return fmt.Errorf("%w: expected one event log, got %d arguments", ErrUsage, len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.setup(cmd)
			if err != nil {
				return err
			}
			_, err = newService(cfg, cmd.OutOrStdout()).Run(cmd.Context(), args[0])
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	pf.StringVar(&f.resultsDir, "results-dir", "", "directory for submission payloads (default "+report.DefaultDir+")")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newWatchCommand(f))
	return root
}

// setup loads configuration, applies flag overrides and initializes logging.
func (f *flags) setup(cmd *cobra.Command) (*config.Config, error) {
	ctx := cmd.Context()

	var (
		cfg *config.Config
		err error
	)
	if f.configFile != "" {
		cfg, err = config.LoadFile(ctx, f.configFile)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("results-dir") {
		cfg.ResultsDir = f.resultsDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := initLogger(ctx, cmd.ErrOrStderr(), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogger(ctx context.Context, w io.Writer, cfg *config.Config) error {
	if err := logger.Init(logger.WithOutput(w), logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}
	return nil
}

func newService(cfg *config.Config, out io.Writer) *service.Service {
	log := logger.Get()
	return service.New(
		service.WithLogger(log),
		service.WithReader(eventlog.NewReader(eventlog.WithMaxLineBytes(cfg.MaxLineBytes))),
		service.WithWriter(report.NewWriter(
			report.WithDir(cfg.ResultsDir),
			report.WithValidation(cfg.ValidateSubmission),
			report.WithLogger(log),
		)),
		service.WithScorer(scoring.New(
			scoring.WithFailWeight(cfg.FailWeight),
			scoring.WithWriteWeight(cfg.WriteWeight),
		)),
		service.WithCommit(cfg.Commit),
		service.WithRunDuration(cfg.RunDuration()),
		service.WithMetricsFile(cfg.MetricsFile),
		service.WithOutput(out),
	)
}
