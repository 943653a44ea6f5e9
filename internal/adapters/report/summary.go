// Package report renders a scored run for people and for the results store.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/benchscore/internal/domain/scoring"
)

// DefaultRunDuration is the fixed length of a k6 benchmark run.
const DefaultRunDuration = 60 * time.Second

const rule = "================================================================"

// Totals are the run-wide figures of the summary.
type Totals struct {
	Score    int
	Requests int
	Success  int
	Fail     int
	Timeout  int
	RPS      float64
}

// ComputeTotals derives the totals block. timeouts counts every timeout
// sample of the log, including those no scenario claimed.
func ComputeTotals(res scoring.FinalResult, timeouts int, runDuration time.Duration) Totals {
	if runDuration <= 0 {
		runDuration = DefaultRunDuration
	}
	requests := res.TotalSuccess + res.TotalFail + timeouts
	return Totals{
		Score:    res.Score,
		Requests: requests,
		Success:  res.TotalSuccess,
		Fail:     res.TotalFail,
		Timeout:  timeouts,
		RPS:      round2(float64(requests) / runDuration.Seconds()),
	}
}

// WriteSummary prints the per-scenario results followed by the totals.
func WriteSummary(w io.Writer, res scoring.FinalResult, timeouts int, runDuration time.Duration) error {
	t := ComputeTotals(res, timeouts, runDuration)

	var b strings.Builder
	b.WriteString("Results per API:\n")
	for _, r := range res.Records {
		fmt.Fprintf(&b, "\n    - %s %s\n", r.Method, r.Path)
		fmt.Fprintf(&b, "      ✓ requests: %d, success: %d, fail: %d, timeout: %d\n",
			r.Success+r.Fail+r.Timeout, r.Success, r.Fail, r.Timeout)
	}

	b.WriteString("\n    " + rule + "\n")
	b.WriteString("        Congratulations! All Scoring Process Successfully Done!!\n\n")
	fmt.Fprintf(&b, "        Score: %19d\n\n", t.Score)
	fmt.Fprintf(&b, "        Total requests: %10d\n", t.Requests)
	fmt.Fprintf(&b, "          Success: %15d\n", t.Success)
	fmt.Fprintf(&b, "          Fail: %18d\n", t.Fail)
	fmt.Fprintf(&b, "          Timeout: %15d\n", t.Timeout)
	fmt.Fprintf(&b, "        RPS: %21s\n", FormatRate(t.RPS))
	b.WriteString("    " + rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatRate prints a rate with the shortest representation, so 2 stays
// "2" and 1.5 stays "1.5".
func FormatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
