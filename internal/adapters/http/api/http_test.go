package api_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/benchscore/internal/adapters/http/api"
	"github.com/okian/benchscore/internal/adapters/report"
	"github.com/okian/benchscore/pkg/logger"
	"github.com/okian/benchscore/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type staticStats map[string]any

func (s staticStats) GetStats() map[string]any { return s }

func TestServer(t *testing.T) {
	Convey("Given an ops server", t, func() {
		h := api.NewServer(staticStats{"workers": 2, "queueLength": 0}).Handler()

		Convey("When /healthz is requested", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then it should report ok", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When /healthz is posted to", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

			Convey("Then it should be refused", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When /stats is requested", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then it should return the provider's figures", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var body map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["workers"], ShouldEqual, 2.0)
			})
		})

		Convey("When the submission schema is requested", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema/submission.json", nil))

			Convey("Then it should serve the embedded document", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldEqual, "application/schema+json")
				So(rec.Body.Bytes(), ShouldResemble, report.SubmissionSchema)
			})
		})

		Convey("When /metrics is requested", func() {
			metrics.RecordRun(true)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then it should expose the pipeline metrics", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "benchscore_pipeline_runs_total")
			})

			Convey("Then it should expose runtime metrics too", func() {
				So(rec.Body.String(), ShouldContainSubstring, "go_goroutines")
			})

			Convey("Then the request itself should be counted", func() {
				n, err := testutil.GatherAndCount(metrics.GetRegistry(), "benchscore_http_requests_total")
				So(err, ShouldBeNil)
				So(n, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestServer_Serve(t *testing.T) {
	Convey("Given a server on a free port", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		So(err, ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- api.NewServer(staticStats{}).Serve(ctx, ln) }()

		Convey("When it is queried and then cancelled", func() {
			var resp *http.Response
			for i := 0; i < 50; i++ {
				resp, err = http.Get("http://" + ln.Addr().String() + "/healthz")
				if err == nil {
					break
				}
				time.Sleep(20 * time.Millisecond)
			}
			So(err, ShouldBeNil)
			_ = resp.Body.Close()
			cancel()

			Convey("Then it should answer and shut down cleanly", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(<-done, ShouldBeNil)
			})
		})
	})
}
