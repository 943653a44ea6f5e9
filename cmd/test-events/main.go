package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/benchscore/internal/testevents"
	"github.com/okian/benchscore/pkg/logger"
)

// Default configuration constants.
const (
	defaultSuccess  = 100
	defaultFail     = 2
	defaultTimeout  = 1
	defaultDeadline = 5 * time.Minute
)

func main() {
	var (
		outputFile = flag.String("output", "", "Output file (default: k6_result_TIMESTAMP.json)")
		baseURL    = flag.String("url", "http://webapp:8080", "Host prefix of request URLs")
		success    = flag.Int("success", defaultSuccess, "Successful requests per scenario")
		fail       = flag.Int("fail", defaultFail, "Failed, non-timeout requests per scenario")
		timeouts   = flag.Int("timeout", defaultTimeout, "Timed out requests per scenario")
		unknown    = flag.Int("unknown", 0, "Timed out requests to URLs outside the catalog")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "Shuffle seed, 0 keeps generation order")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultDeadline)
	defer cancel()

	stats, err := testevents.Run(ctx, &testevents.Config{
		BaseURL:    *baseURL,
		Mix:        testevents.UniformMix(testevents.Mix{Success: *success, Fail: *fail, Timeout: *timeouts}),
		Unknown:    *unknown,
		Seed:       *seed,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	})
	if err != nil {
		_, _ = os.Stderr.WriteString("generation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel is called above
	}
	testevents.DisplayExpected(stats)
}
