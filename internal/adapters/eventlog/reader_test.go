package eventlog_test

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/benchscore/internal/adapters/eventlog"
	"github.com/okian/benchscore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	checkLine   = `{"metric":"checks","type":"Point","data":{"time":"2024-05-01T10:00:00.1+09:00","value":1,"tags":{"api":"login"}}}`
	timeoutLine = `{"metric":"http_reqs","type":"Point","data":{"time":"2024-05-01T10:00:00.2+09:00","value":1,"tags":{"url":"http://t/api/v1/session","error":"request timeout"}}}`
	metricLine  = `{"type":"Metric","data":{"name":"checks","type":"rate","contains":"default","thresholds":[],"submetrics":null},"metric":"checks"}`
)

func collect(r *eventlog.Reader, input string) ([]model.Event, error) {
	var events []model.Event
	err := r.Read(context.Background(), strings.NewReader(input), func(e *model.Event) error {
		events = append(events, *e)
		return nil
	})
	return events, err
}

func TestReader_Read(t *testing.T) {
	Convey("Given a k6 event log reader", t, func() {
		r := eventlog.NewReader()

		Convey("When the log ends with a newline", func() {
			events, err := collect(r, metricLine+"\n"+checkLine+"\n"+timeoutLine+"\n")

			Convey("Then every record should be decoded in order", func() {
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 3)
				So(events[0].Type, ShouldEqual, model.TypeMetric)
				So(events[1].IsCheck(), ShouldBeTrue)
				So(events[2].IsTimeout(), ShouldBeTrue)
			})
		})

		Convey("When the last line has no newline", func() {
			events, err := collect(r, checkLine+"\n"+timeoutLine)

			Convey("Then the last record should still be decoded", func() {
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 2)
			})
		})

		Convey("When the log uses CRLF line endings", func() {
			events, err := collect(r, checkLine+"\r\n"+timeoutLine+"\r\n")

			Convey("Then it should decode both lines", func() {
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 2)
			})
		})

		Convey("When the log is empty", func() {
			events, err := collect(r, "")

			Convey("Then there should be no events and no error", func() {
				So(err, ShouldBeNil)
				So(events, ShouldBeEmpty)
			})
		})

		Convey("When a line is not valid JSON", func() {
			_, err := collect(r, checkLine+"\n"+`{"metric":"checks",`+"\n"+timeoutLine+"\n")

			Convey("Then the whole read should fail with the line number", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, eventlog.ErrParse), ShouldBeTrue)
				var perr *eventlog.ParseError
				So(errors.As(err, &perr), ShouldBeTrue)
				So(perr.Line, ShouldEqual, 2)
				So(err.Error(), ShouldContainSubstring, "line 2")
			})
		})

		Convey("When a blank line sits between records", func() {
			_, err := collect(r, checkLine+"\n\n"+timeoutLine+"\n")

			Convey("Then it should be rejected as malformed", func() {
				var perr *eventlog.ParseError
				So(errors.As(err, &perr), ShouldBeTrue)
				So(perr.Line, ShouldEqual, 2)
			})
		})

		Convey("When a line is valid JSON but not an object", func() {
			for _, line := range []string{"null", "[]", "7", `"checks"`} {
				_, err := collect(r, checkLine+"\n"+line+"\n")

				Convey("Then "+line+" should be rejected with its line number", func() {
					var perr *eventlog.ParseError
					So(errors.As(err, &perr), ShouldBeTrue)
					So(errors.Is(err, eventlog.ErrParse), ShouldBeTrue)
					So(perr.Line, ShouldEqual, 2)
				})
			}
		})

		Convey("When a tag value is not a string", func() {
			_, err := collect(r, `{"metric":"checks","type":"Point","data":{"value":1,"tags":{"api":7}}}`)

			Convey("Then it should be rejected as malformed", func() {
				So(errors.Is(err, eventlog.ErrParse), ShouldBeTrue)
			})
		})

		Convey("When the handler fails", func() {
			stop := errors.New("stop")
			calls := 0
			err := r.Read(context.Background(), strings.NewReader(checkLine+"\n"+checkLine+"\n"), func(*model.Event) error {
				calls++
				return stop
			})

			Convey("Then the read should stop with the handler error", func() {
				So(err, ShouldEqual, stop)
				So(calls, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a reader with a small line limit", t, func() {
		r := eventlog.NewReader(eventlog.WithMaxLineBytes(32))

		Convey("When a line exceeds the limit", func() {
			_, err := collect(r, checkLine+"\n")

			Convey("Then it should fail as a parse error", func() {
				var perr *eventlog.ParseError
				So(errors.As(err, &perr), ShouldBeTrue)
				So(errors.Is(err, bufio.ErrTooLong), ShouldBeTrue)
				So(perr.Line, ShouldEqual, 1)
			})
		})
	})
}

func TestReader_ReadFile(t *testing.T) {
	Convey("Given a log file on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "result.json")
		So(os.WriteFile(path, []byte(checkLine+"\n"+timeoutLine+"\n"), 0o600), ShouldBeNil)
		r := eventlog.NewReader()

		Convey("When reading it fully", func() {
			events, err := r.ReadAll(context.Background(), path)

			Convey("Then both events should be returned", func() {
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 2)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := r.ReadAll(context.Background(), filepath.Join(dir, "missing.json"))

			Convey("Then it should fail with a read error", func() {
				So(errors.Is(err, eventlog.ErrRead), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})
	})
}
