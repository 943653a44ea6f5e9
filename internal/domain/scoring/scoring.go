// Package scoring turns per-scenario outcome counts into the run score.
package scoring

import (
	"github.com/okian/benchscore/internal/domain/model"
	"github.com/okian/benchscore/internal/domain/types"
)

// Default scoring weights.
const (
	DefaultFailWeight  = 20
	DefaultWriteWeight = 10
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithFailWeight sets the penalty applied per failed request.
func WithFailWeight(w int) Option {
	return func(s *Scorer) {
		if w > 0 {
			s.failWeight = w
		}
	}
}

// WithWriteWeight sets the reward multiplier for successful writes.
func WithWriteWeight(w int) Option {
	return func(s *Scorer) {
		if w > 0 {
			s.writeWeight = w
		}
	}
}

// FinalResult is the scored outcome of a run.
type FinalResult struct {
	Score        int
	TotalSuccess int
	TotalFail    int
	Records      []types.SubmissionRecord
}

// Scorer computes the weighted score.
//
//	read  (GET):  success             - fail*failWeight
//	write (POST): success*writeWeight - fail*failWeight
//
// Other methods contribute nothing. Timeouts are reported but never enter the
// arithmetic. The total is clamped at zero.
type Scorer struct {
	failWeight  int
	writeWeight int
}

// New creates a Scorer with the default weights.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		failWeight:  DefaultFailWeight,
		writeWeight: DefaultWriteWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Contribution returns the score contribution of a single scenario.
func (s *Scorer) Contribution(o model.OutcomeCount) int {
	switch {
	case o.Scenario.IsRead():
		return o.Success - o.Fail*s.failWeight
	case o.Scenario.IsWrite():
		return o.Success*s.writeWeight - o.Fail*s.failWeight
	default:
		return 0
	}
}

// Score reduces outcomes, preserving their order in the records.
func (s *Scorer) Score(outcomes []model.OutcomeCount) FinalResult {
	res := FinalResult{Records: make([]types.SubmissionRecord, 0, len(outcomes))}
	for _, o := range outcomes {
		res.Score += s.Contribution(o)
		res.TotalSuccess += o.Success
		res.TotalFail += o.Fail
		res.Records = append(res.Records, types.SubmissionRecord{
			Method:  o.Scenario.Method,
			Path:    o.Scenario.Path,
			Success: o.Success,
			Fail:    o.Fail,
			Timeout: o.Timeout,
		})
	}
	if res.Score < 0 {
		res.Score = 0
	}
	return res
}
