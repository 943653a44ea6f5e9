// Package aggregate reduces a k6 event stream to per-scenario outcome counts.
//
// Two independent filters run over the same stream. Check samples carry the
// scenario in their "api" tag and record pass or fail. Timeout samples carry
// only the request URL, so their scenario comes from the classifier. k6 also
// reports a timed-out request as a failed check, so each scenario's timeout
// count is subtracted from its failed checks.
//
// The reduction is order independent and needs one counter set per scenario,
// so events can be observed as they are read.
package aggregate

import (
	"context"

	"github.com/okian/benchscore/internal/domain/catalog"
	"github.com/okian/benchscore/internal/domain/classify"
	"github.com/okian/benchscore/internal/domain/model"
	"github.com/okian/benchscore/pkg/logger"
	"github.com/okian/benchscore/pkg/metrics"
)

// URLClassifier resolves a request URL to a scenario id.
type URLClassifier interface {
	Classify(url string) string
}

// Inconsistency describes a scenario whose URL-attributed timeouts exceed
// its tag-attributed failed checks. The corrected fail count is negative.
type Inconsistency struct {
	Scenario string
	RawFail  int
	Timeout  int
}

// Result is the output of one aggregation pass.
type Result struct {
	// Outcomes holds one entry per catalog scenario, in catalog order.
	Outcomes []model.OutcomeCount

	// Events counts every observed record.
	Events int
	// Checks counts check samples.
	Checks int
	// TotalTimeouts counts every timeout sample, classified or not.
	TotalTimeouts int
	// Unclassified counts timeout samples whose URL matched no scenario.
	Unclassified int
	// Inconsistencies lists scenarios whose corrected fail count went negative.
	Inconsistencies []Inconsistency
}

type counters struct {
	success int
	rawFail int
	timeout int
}

// Aggregator accumulates counts for one event stream. It is not safe for
// concurrent use; each run owns its own Aggregator.
type Aggregator struct {
	catalog    catalog.Catalog
	classifier URLClassifier
	logger     logger.Logger

	index  map[string]int
	counts []counters

	events       int
	checks       int
	timeouts     int
	unclassified int
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithCatalog replaces the default scenario catalog.
func WithCatalog(c catalog.Catalog) Option {
	return func(a *Aggregator) {
		if c.Len() > 0 {
			a.catalog = c
		}
	}
}

// WithClassifier replaces the default URL classifier.
func WithClassifier(c URLClassifier) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.classifier = c
		}
	}
}

// WithLogger sets the logger used to report inconsistencies.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Aggregator over the default catalog and classifier.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		catalog:    catalog.Default(),
		classifier: classify.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	scenarios := a.catalog.Scenarios()
	a.index = make(map[string]int, len(scenarios))
	for i, s := range scenarios {
		a.index[s.ID] = i
	}
	a.counts = make([]counters, len(scenarios))
	return a
}

// Observe folds one event into the counts.
func (a *Aggregator) Observe(e *model.Event) {
	a.events++
	metrics.RecordEventRead()

	switch {
	case e.IsCheck():
		a.checks++
		metrics.RecordCheckEvent()
		i, ok := a.index[e.Tag(model.TagAPI)]
		if !ok {
			return
		}
		switch {
		case e.Passed():
			a.counts[i].success++
		case e.Failed():
			a.counts[i].rawFail++
		}

	case e.IsTimeout():
		a.timeouts++
		metrics.RecordTimeoutEvent()
		i, ok := a.index[a.classifier.Classify(e.Tag(model.TagURL))]
		if !ok {
			a.unclassified++
			metrics.RecordUnclassifiedTimeout()
			return
		}
		a.counts[i].timeout++
	}
}

// Result returns the counts observed so far.
//
// A negative fail count is kept as is and reported in Inconsistencies: it
// means the tag-based and URL-based attributions disagree, and there is no
// sound way to pick the right one here.
func (a *Aggregator) Result(ctx context.Context) Result {
	res := Result{
		Outcomes:      make([]model.OutcomeCount, 0, len(a.counts)),
		Events:        a.events,
		Checks:        a.checks,
		TotalTimeouts: a.timeouts,
		Unclassified:  a.unclassified,
	}

	for i, s := range a.catalog.Scenarios() {
		c := a.counts[i]
		fail := c.rawFail - c.timeout
		if fail < 0 {
			res.Inconsistencies = append(res.Inconsistencies, Inconsistency{
				Scenario: s.ID,
				RawFail:  c.rawFail,
				Timeout:  c.timeout,
			})
			metrics.RecordFailInconsistency(s.ID)
			if a.logger != nil {
				a.logger.Warn(ctx, "timeouts exceed failed checks",
					logger.String("scenario", s.ID),
					logger.Int("rawFail", c.rawFail),
					logger.Int("timeout", c.timeout),
				)
			}
		}
		res.Outcomes = append(res.Outcomes, model.OutcomeCount{
			Scenario: s,
			Success:  c.success,
			Fail:     fail,
			Timeout:  c.timeout,
		})
	}
	return res
}

// Aggregate runs a fresh Aggregator over events.
func Aggregate(ctx context.Context, events []model.Event, opts ...Option) Result {
	a := New(opts...)
	for i := range events {
		a.Observe(&events[i])
	}
	return a.Result(ctx)
}
