package testevents

import (
	"time"

	"github.com/okian/benchscore/internal/domain/catalog"
)

// Mix is how many samples of each kind one scenario produces.
type Mix struct {
	Success int
	// Fail counts failed checks that did not time out.
	Fail int
	// Timeout counts requests that timed out. Each also yields a failed check.
	Timeout int
}

// Config holds configuration for the generator.
type Config struct {
	BaseURL    string         // Host prefix of every request URL
	Mix        map[string]Mix // Per scenario id; missing scenarios produce nothing
	Unknown    int            // Timeouts whose URL matches no scenario
	Seed       int64          // Shuffle seed; zero keeps generation order
	Start      time.Time      // Timestamp of the first sample
	OutputFile string         // Destination of the generated log
	Verbose    bool           // Log every scenario mix
}

// UniformMix gives every catalog scenario the same mix.
func UniformMix(m Mix) map[string]Mix {
	out := make(map[string]Mix)
	for _, s := range catalog.Default().Scenarios() {
		out[s.ID] = m
	}
	return out
}

// Stats holds generator statistics.
type Stats struct {
	Lines    int
	Checks   int
	Requests int
	Timeouts int
	// Expected is what a correct scorer must report per scenario.
	Expected  map[string]Mix
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
