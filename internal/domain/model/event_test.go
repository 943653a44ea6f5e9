package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/okian/benchscore/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func decode(line string) model.Event {
	var e model.Event
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		panic(err)
	}
	return e
}

func TestEvent(t *testing.T) {
	convey.Convey("Given k6 output lines", t, func() {
		convey.Convey("When decoding a passing check point", func() {
			e := decode(`{"metric":"checks","type":"Point","data":{"time":"2024-01-01T00:00:00Z","value":1,"tags":{"api":"login","check":"Login: is status 200 or 201"}}}`)

			convey.Convey("Then it should be a passing check", func() {
				convey.So(e.IsCheck(), convey.ShouldBeTrue)
				convey.So(e.Passed(), convey.ShouldBeTrue)
				convey.So(e.Failed(), convey.ShouldBeFalse)
				convey.So(e.IsTimeout(), convey.ShouldBeFalse)
				convey.So(e.Tag(model.TagAPI), convey.ShouldEqual, "login")
				convey.So(e.Data.Time, convey.ShouldEqual, "2024-01-01T00:00:00Z")
			})
		})

		convey.Convey("When decoding a timed-out request", func() {
			e := decode(`{"metric":"http_reqs","type":"Point","data":{"time":"t","value":1,"tags":{"url":"http://x/api/v1/session","error":"request timeout","error_code":"1050"}}}`)

			convey.Convey("Then it should be a timeout and not a check", func() {
				convey.So(e.IsTimeout(), convey.ShouldBeTrue)
				convey.So(e.IsCheck(), convey.ShouldBeFalse)
				convey.So(e.Tag(model.TagURL), convey.ShouldEqual, "http://x/api/v1/session")
			})
		})

		convey.Convey("When decoding a metric declaration", func() {
			e := decode(`{"type":"Metric","data":{"name":"http_reqs","type":"counter","contains":"default","thresholds":[],"submetrics":null},"metric":"http_reqs"}`)

			convey.Convey("Then it should be neither check nor timeout", func() {
				convey.So(e.IsCheck(), convey.ShouldBeFalse)
				convey.So(e.IsTimeout(), convey.ShouldBeFalse)
				convey.So(e.Tag(model.TagAPI), convey.ShouldEqual, "")
			})
		})

		convey.Convey("When a request failed for a reason other than a timeout", func() {
			e := decode(`{"metric":"http_reqs","type":"Point","data":{"value":1,"tags":{"url":"http://x/api/v1/users","error":"connection refused"}}}`)

			convey.Convey("Then it should not be a timeout", func() {
				convey.So(e.IsTimeout(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a check point carries no tags", func() {
			e := decode(`{"metric":"checks","type":"Point","data":{"value":0}}`)

			convey.Convey("Then tag lookups should be empty", func() {
				convey.So(e.IsCheck(), convey.ShouldBeTrue)
				convey.So(e.Failed(), convey.ShouldBeTrue)
				convey.So(e.Tag(model.TagAPI), convey.ShouldEqual, "")
			})
		})
	})
}

func TestOutcomeCount(t *testing.T) {
	convey.Convey("Given an outcome count", t, func() {
		o := model.OutcomeCount{Success: 100, Fail: 3, Timeout: 2}

		convey.Convey("Then requests should sum all three outcomes", func() {
			convey.So(o.Requests(), convey.ShouldEqual, 105)
		})
	})

	convey.Convey("Given scenarios", t, func() {
		convey.So(model.Scenario{Method: "GET"}.IsRead(), convey.ShouldBeTrue)
		convey.So(model.Scenario{Method: "POST"}.IsWrite(), convey.ShouldBeTrue)
		convey.So(model.Scenario{Method: "PUT"}.IsRead(), convey.ShouldBeFalse)
		convey.So(model.Scenario{Method: "PUT"}.IsWrite(), convey.ShouldBeFalse)
	})
}

func TestNewJob(t *testing.T) {
	convey.Convey("Given a file state", t, func() {
		mod := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		job := model.NewJob("/logs/a.json", 120, mod)

		convey.Convey("Then the same state should give the same id", func() {
			convey.So(model.NewJob("/logs/a.json", 120, mod).ID, convey.ShouldEqual, job.ID)
			convey.So(job.ID, convey.ShouldHaveLength, 32)
		})

		convey.Convey("Then any change should give a new id", func() {
			convey.So(model.NewJob("/logs/b.json", 120, mod).ID, convey.ShouldNotEqual, job.ID)
			convey.So(model.NewJob("/logs/a.json", 121, mod).ID, convey.ShouldNotEqual, job.ID)
			convey.So(model.NewJob("/logs/a.json", 120, mod.Add(time.Second)).ID, convey.ShouldNotEqual, job.ID)
		})
	})
}
