package testevents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/okian/benchscore/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o644
)

// Run generates the event log described by config into config.OutputFile.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.OutputFile == "" {
		config.OutputFile = "k6_result_" + time.Now().Format("20060102_150405") + ".json"
	}

	log := logger.Get().Named("test-events")
	log.Info(ctx, "generating k6 event log",
		logger.String("output", config.OutputFile),
		logger.String("baseURL", config.BaseURL),
		logger.Int("scenarios", len(config.Mix)),
		logger.Int("unknown", config.Unknown),
		logger.Int64("seed", config.Seed),
	)
	if config.Verbose {
		for _, id := range sortedIDs(config.Mix) {
			m := config.Mix[id]
			log.Debug(ctx, "scenario mix",
				logger.String("scenario", id),
				logger.Int("success", m.Success),
				logger.Int("fail", m.Fail),
				logger.Int("timeout", m.Timeout),
			)
		}
	}

	if dir := filepath.Dir(config.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(config.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	stats, err := Generate(ctx, f, config)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output file: %w", cerr)
	}
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "event log written",
		logger.String("output", config.OutputFile),
		logger.Int("lines", stats.Lines),
		logger.Int("checks", stats.Checks),
		logger.Int("requests", stats.Requests),
		logger.Int("timeouts", stats.Timeouts),
		logger.String("duration", stats.Duration.String()),
	)
	return stats, nil
}

// DisplayExpected prints the counts a correct scorer must report.
func DisplayExpected(stats *Stats) {
	var b []byte
	b = append(b, "Expected results per API:\n"...)
	for _, id := range sortedIDs(stats.Expected) {
		m := stats.Expected[id]
		b = fmt.Appendf(b, "  %-18s success: %d, fail: %d, timeout: %d\n", id, m.Success, m.Fail, m.Timeout)
	}
	b = fmt.Appendf(b, "  timeouts in log: %d\n", stats.Timeouts)
	_, _ = os.Stdout.Write(b)
}

func sortedIDs(m map[string]Mix) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
