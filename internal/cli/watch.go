package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/benchscore/internal/adapters/http/api"
	"github.com/okian/benchscore/internal/adapters/watch"
	service "github.com/okian/benchscore/internal/app"
	"github.com/okian/benchscore/internal/config"
	"github.com/okian/benchscore/pkg/logger"
	"github.com/spf13/cobra"
)

const stopTimeout = 30 * time.Second

func newWatchCommand(f *flags) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Score every event log written to a directory",
		Long: `Watches a directory and scores each event log once it has stopped
changing. A rewritten log is scored again. The directory defaults to
watch_dir from the configuration.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.setup(cmd)
			if err != nil {
				return err
			}
			dir := cfg.WatchDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("%w: pass a directory to watch or set watch_dir", ErrUsage)
			}
			if err := checkWatchDir(dir, cfg.ResultsDir); err != nil {
				return err
			}
			return runWatch(cmd, cfg, dir, pattern)
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "*", "only score files whose name matches this glob")
	return cmd
}

// checkWatchDir refuses to watch the results directory, where submissions
// share the input's base name.
func checkWatchDir(dir, resultsDir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrUsage, dir)
	}
	a, errA := filepath.Abs(dir)
	b, errB := filepath.Abs(resultsDir)
	if errA == nil && errB == nil && a == b {
		return fmt.Errorf("%w: watch dir must differ from results_dir", config.ErrInvalidConfig)
	}
	return nil
}

func runWatch(cmd *cobra.Command, cfg *config.Config, dir, pattern string) error {
	ctx := cmd.Context()
	log := logger.Get()

	w := service.NewWatcher(newService(cfg, cmd.OutOrStdout()),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithWatcherLogger(log),
	)
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
		defer cancel()
		if err := w.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "watch service did not stop cleanly", logger.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	if cfg.MetricsAddr != "" {
		go func() {
			serveErr <- api.NewServer(w).ListenAndServe(ctx, cfg.MetricsAddr)
		}()
	}

	fw := watch.New(dir,
		watch.WithSettle(cfg.WatchSettle()),
		watch.WithPattern(pattern),
		watch.WithInitialScan(true),
		watch.WithLogger(log),
	)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- fw.Run(ctx, func(ctx context.Context, path string, info os.FileInfo) {
			if err := w.Submit(ctx, path, info); errors.Is(err, service.ErrStopped) {
				log.Warn(ctx, "file skipped", logger.String("path", path), logger.Error(err))
			}
		})
	}()

	select {
	case err := <-watchErr:
		return err
	case err := <-serveErr:
		cancel()
		<-watchErr
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}
