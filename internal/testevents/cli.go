package testevents

import (
	"os"
)

// ShowHelp prints usage information for the test events tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`benchscore test event generator
===============================

Writes a k6-shaped NDJSON event log for local scoring runs.

Usage:
  go run ./cmd/test-events [options]

Options:
  -output string
        Output file (default: k6_result_TIMESTAMP.json)
  -url string
        Host prefix of request URLs (default "http://webapp:8080")
  -success int
        Successful requests per scenario (default 100)
  -fail int
        Failed, non-timeout requests per scenario (default 2)
  -timeout int
        Timed out requests per scenario (default 1)
  -unknown int
        Timed out requests to URLs outside the catalog (default 0)
  -seed int
        Shuffle seed, 0 keeps generation order (default: current time)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/test-events -output /tmp/logs/result.json
  go run ./cmd/test-events -success 500 -fail 0 -timeout 20 -seed 42
`)
}
