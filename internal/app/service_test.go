package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/benchscore/internal/adapters/eventlog"
	"github.com/okian/benchscore/internal/adapters/report"
	service "github.com/okian/benchscore/internal/app"
	"github.com/okian/benchscore/internal/domain/aggregate"
	"github.com/okian/benchscore/internal/domain/catalog"
	"github.com/okian/benchscore/internal/domain/model"
	"github.com/okian/benchscore/internal/domain/types"
	"github.com/okian/benchscore/internal/testevents"
	"github.com/okian/benchscore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithOutput(io.Discard))
}

func generate(t *testing.T, cfg *testevents.Config) string {
	t.Helper()
	cfg.OutputFile = filepath.Join(t.TempDir(), "result.json")
	if _, err := testevents.Run(context.Background(), cfg); err != nil {
		t.Fatalf("generate: %v", err)
	}
	return cfg.OutputFile
}

func newService(dir string, out io.Writer, opts ...service.Option) *service.Service {
	return service.New(append([]service.Option{
		service.WithWriter(report.NewWriter(report.WithDir(dir))),
		service.WithOutput(out),
	}, opts...)...)
}

func TestService_Run(t *testing.T) {
	Convey("Given a generated event log for every scenario", t, func() {
		input := generate(t, &testevents.Config{
			Mix:     testevents.UniformMix(testevents.Mix{Success: 20, Fail: 2, Timeout: 3}),
			Unknown: 4,
			Seed:    7,
		})
		dir := filepath.Join(t.TempDir(), "score")
		var out bytes.Buffer
		svc := newService(dir, &out, service.WithCommit("abc123"))

		Convey("When it is scored", func() {
			res, err := svc.Run(context.Background(), input)
			So(err, ShouldBeNil)

			Convey("Then every scenario should carry the generated counts", func() {
				So(len(res.Final.Records), ShouldEqual, catalog.Default().Len())
				for _, r := range res.Final.Records {
					So(r.Success, ShouldEqual, 20)
					So(r.Fail, ShouldEqual, 2)
					So(r.Timeout, ShouldEqual, 3)
				}
				So(res.Aggregate.Unclassified, ShouldEqual, 4)
				So(res.Aggregate.Inconsistencies, ShouldBeEmpty)
			})

			Convey("Then the score and totals should follow the weights", func() {
				// two writes at 200-40, four reads at 20-40
				So(res.Final.Score, ShouldEqual, 2*160-4*20)
				So(res.Totals.Requests, ShouldEqual, 120+12+22)
				So(res.Totals.Timeout, ShouldEqual, 22)
				So(res.Totals.RPS, ShouldEqual, 2.57)
			})

			Convey("Then the summary should be printed", func() {
				So(out.String(), ShouldContainSubstring, "Results per API:")
				So(out.String(), ShouldContainSubstring, fmt.Sprintf("Score: %19d", 240))
			})

			Convey("Then the submission should be stored under the input name", func() {
				So(res.Output, ShouldEqual, filepath.Join(dir, "result.json"))
				raw, err := os.ReadFile(res.Output)
				So(err, ShouldBeNil)

				var sub types.Submission
				So(json.Unmarshal(raw, &sub), ShouldBeNil)
				So(sub.Commit, ShouldEqual, "abc123")
				So(sub.Pass, ShouldBeTrue)
				So(sub.Score, ShouldEqual, 240)
				So(sub.Success, ShouldEqual, 120)
				So(sub.Fail, ShouldEqual, 12)
				So(sub.ResultPerAPI[0].Method, ShouldEqual, http.MethodPost)
				So(sub.ResultPerAPI[0].Path, ShouldEqual, "/api/v1/session")
			})

			Convey("Then the outcome should be identified", func() {
				So(res.RunID, ShouldNotBeEmpty)
				So(res.Input, ShouldEqual, input)
				So(res.Finished.IsZero(), ShouldBeFalse)
			})
		})
	})

	Convey("Given a catalog where login is a read", t, func() {
		input := generate(t, &testevents.Config{
			Mix: map[string]testevents.Mix{
				catalog.Login:    {Success: 100, Fail: 3, Timeout: 2},
				catalog.GetUsers: {Success: 50},
			},
			Seed: 11,
		})
		cat := catalog.New(
			model.Scenario{ID: catalog.Login, Method: http.MethodGet, Path: "/api/v1/session"},
			model.Scenario{ID: catalog.GetUsers, Method: http.MethodGet, Path: "/api/v1/users"},
		)
		var out bytes.Buffer
		svc := newService(t.TempDir(), &out, service.WithAggregatorOptions(aggregate.WithCatalog(cat)))

		Convey("When it is scored", func() {
			res, err := svc.Run(context.Background(), input)

			Convey("Then the score should be (100 - 3*20) + 50", func() {
				So(err, ShouldBeNil)
				So(res.Final.Score, ShouldEqual, 90)
				So(res.Totals.Requests, ShouldEqual, 155)
				So(res.Totals.RPS, ShouldEqual, 2.58)
				So(res.Final.Records, ShouldResemble, []types.SubmissionRecord{
					{Method: http.MethodGet, Path: "/api/v1/session", Success: 100, Fail: 3, Timeout: 2},
					{Method: http.MethodGet, Path: "/api/v1/users", Success: 50, Fail: 0, Timeout: 0},
				})
			})
		})
	})

	Convey("Given a malformed event log", t, func() {
		input := filepath.Join(t.TempDir(), "broken.json")
		So(os.WriteFile(input, []byte(`{"metric":"checks","type":"Point","data":{"value":1,"tags":{"api":"login"}}}`+"\n{oops\n"), 0o600), ShouldBeNil)
		dir := filepath.Join(t.TempDir(), "score")
		var out bytes.Buffer

		Convey("When it is scored", func() {
			res, err := newService(dir, &out).Run(context.Background(), input)

			Convey("Then the run should abort before any output", func() {
				So(res, ShouldBeNil)
				So(errors.Is(err, eventlog.ErrParse), ShouldBeTrue)
				So(out.String(), ShouldBeEmpty)
				_, statErr := os.Stat(dir)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})

	Convey("Given no input path", t, func() {
		_, err := newService(t.TempDir(), io.Discard).Run(context.Background(), "")

		Convey("Then the run should be refused", func() {
			So(errors.Is(err, service.ErrInput), ShouldBeTrue)
		})
	})

	Convey("Given a metrics file", t, func() {
		input := generate(t, &testevents.Config{
			Mix: map[string]testevents.Mix{catalog.GetUsers: {Success: 5}},
		})
		metricsFile := filepath.Join(t.TempDir(), "benchscore.prom")
		svc := newService(t.TempDir(), io.Discard, service.WithMetricsFile(metricsFile))

		Convey("When a run finishes", func() {
			_, err := svc.Run(context.Background(), input)

			Convey("Then the textfile should hold the run metrics", func() {
				So(err, ShouldBeNil)
				raw, err := os.ReadFile(metricsFile)
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, "benchscore_pipeline_runs_total")
				So(string(raw), ShouldContainSubstring, "benchscore_pipeline_last_score")
			})
		})
	})
}
