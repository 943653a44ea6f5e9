// Package service wires the scoring pipeline: read the k6 log, aggregate,
// score, print the summary and store the submission.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/okian/benchscore/internal/adapters/eventlog"
	"github.com/okian/benchscore/internal/adapters/report"
	"github.com/okian/benchscore/internal/domain/aggregate"
	"github.com/okian/benchscore/internal/domain/model"
	"github.com/okian/benchscore/internal/domain/scoring"
	"github.com/okian/benchscore/pkg/logger"
	"github.com/okian/benchscore/pkg/metrics"
)

// Outcome is everything one run produced.
type Outcome struct {
	RunID     string
	Input     string
	Output    string
	Aggregate aggregate.Result
	Final     scoring.FinalResult
	Totals    report.Totals
	Finished  time.Time
}

// Service scores event logs. It holds no per-run state and can be shared by
// concurrent callers.
type Service struct {
	reader      *eventlog.Reader
	writer      *report.Writer
	scorer      *scoring.Scorer
	aggOpts     []aggregate.Option
	commit      string
	runDuration time.Duration
	metricsFile string
	out         io.Writer
	logger      logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithReader sets the event log reader.
func WithReader(r *eventlog.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.reader = r
		}
	}
}

// WithWriter sets the submission writer.
func WithWriter(w *report.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.writer = w
		}
	}
}

// WithScorer sets the scorer.
func WithScorer(sc *scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithAggregatorOptions is applied to the aggregator of every run.
func WithAggregatorOptions(opts ...aggregate.Option) Option {
	return func(s *Service) {
		s.aggOpts = append(s.aggOpts, opts...)
	}
}

// WithCommit sets the commit recorded in submissions.
func WithCommit(commit string) Option {
	return func(s *Service) {
		s.commit = commit
	}
}

// WithRunDuration sets the benchmark length used for RPS.
func WithRunDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.runDuration = d
		}
	}
}

// WithMetricsFile enables a Prometheus textfile written after each run.
func WithMetricsFile(path string) Option {
	return func(s *Service) {
		s.metricsFile = path
	}
}

// WithOutput sets where summaries are printed.
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		reader:      eventlog.NewReader(),
		writer:      report.NewWriter(),
		scorer:      scoring.New(),
		runDuration: report.DefaultRunDuration,
		out:         os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Run scores the event log at inputPath. Any failure aborts the run and no
// submission is written.
func (s *Service) Run(ctx context.Context, inputPath string) (*Outcome, error) {
	if inputPath == "" {
		return nil, ErrInput
	}

	start := time.Now()
	runID := uuid.NewString()
	log := s.logger.With(logger.String("run_id", runID), logger.String("input", inputPath))
	log.Info(ctx, "scoring started")

	out, err := s.run(ctx, log, runID, inputPath)
	metrics.RecordRun(err == nil)
	metrics.RecordRunDuration(time.Since(start).Seconds())
	if err != nil {
		log.Error(ctx, "scoring failed", logger.Error(err))
		s.exportMetrics(ctx, log)
		return nil, err
	}

	out.Finished = time.Now()
	metrics.UpdateScore(out.Final.Score, out.Finished.Unix())
	s.exportMetrics(ctx, log)
	log.Info(ctx, "scoring finished",
		logger.Int("score", out.Final.Score),
		logger.Int("requests", out.Totals.Requests),
		logger.Int("unclassifiedTimeouts", out.Aggregate.Unclassified),
		logger.String("output", out.Output),
	)
	return out, nil
}

func (s *Service) run(ctx context.Context, log logger.Logger, runID, inputPath string) (*Outcome, error) {
	agg := aggregate.New(append(append([]aggregate.Option{}, s.aggOpts...), aggregate.WithLogger(log))...)
	err := s.reader.ReadFile(ctx, inputPath, func(e *model.Event) error {
		agg.Observe(e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := agg.Result(ctx)
	for _, o := range res.Outcomes {
		metrics.UpdateScenarioOutcome(o.Scenario.ID, o.Scenario.Method, metrics.OutcomeSuccess, o.Success)
		metrics.UpdateScenarioOutcome(o.Scenario.ID, o.Scenario.Method, metrics.OutcomeFail, o.Fail)
		metrics.UpdateScenarioOutcome(o.Scenario.ID, o.Scenario.Method, metrics.OutcomeTimeout, o.Timeout)
	}
	log.Debug(ctx, "events aggregated",
		logger.Int("events", res.Events),
		logger.Int("checks", res.Checks),
		logger.Int("timeouts", res.TotalTimeouts),
	)

	final := s.scorer.Score(res.Outcomes)
	totals := report.ComputeTotals(final, res.TotalTimeouts, s.runDuration)
	if err := report.WriteSummary(s.out, final, res.TotalTimeouts, s.runDuration); err != nil {
		return nil, fmt.Errorf("print summary: %w", err)
	}

	path, err := s.writer.Write(ctx, inputPath, report.NewSubmission(s.commit, final))
	if err != nil {
		return nil, err
	}

	return &Outcome{
		RunID:     runID,
		Input:     inputPath,
		Output:    path,
		Aggregate: res,
		Final:     final,
		Totals:    totals,
	}, nil
}

func (s *Service) exportMetrics(ctx context.Context, log logger.Logger) {
	if s.metricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(s.metricsFile, metrics.GetRegistry()); err != nil {
		log.Warn(ctx, "metrics export failed", logger.Error(err))
	}
}
