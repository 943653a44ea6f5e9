package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/benchscore/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithOutput(io.Discard))
}

const sampleLog = `{"metric":"checks","type":"Point","data":{"time":"2024-05-01T10:00:00+09:00","value":1,"tags":{"api":"login"}}}
{"metric":"checks","type":"Point","data":{"time":"2024-05-01T10:00:01+09:00","value":1,"tags":{"api":"getUsers"}}}
`

func TestRun(t *testing.T) {
	convey.Convey("Given the benchscore binary", t, func() {
		t.Setenv("COMMIT", "")
		var stdout, stderr bytes.Buffer

		convey.Convey("When it is started without an event log", func() {
			code := run(context.Background(), nil, &stdout, &stderr)

			convey.Convey("Then it should exit non-zero with a diagnostic on stderr", func() {
				convey.So(code, convey.ShouldEqual, 1)
				convey.So(stderr.String(), convey.ShouldStartWith, "benchscore: ")
				convey.So(stderr.String(), convey.ShouldContainSubstring, "event log")
				convey.So(stdout.String(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When it scores a log", func() {
			dir := t.TempDir()
			input := filepath.Join(dir, "result.json")
			convey.So(os.WriteFile(input, []byte(sampleLog), 0o600), convey.ShouldBeNil)
			results := filepath.Join(dir, "score")

			code := run(context.Background(), []string{"--results-dir", results, input}, &stdout, &stderr)

			convey.Convey("Then it should exit zero and store the payload", func() {
				convey.So(code, convey.ShouldEqual, 0)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "Score:")
				raw, err := os.ReadFile(filepath.Join(results, "result.json"))
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldStartWith, `{"pass":true,"score":11,`)
			})
		})
	})
}
