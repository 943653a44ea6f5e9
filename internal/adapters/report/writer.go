package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/okian/benchscore/internal/domain/scoring"
	"github.com/okian/benchscore/internal/domain/types"
	"github.com/okian/benchscore/pkg/logger"
)

// DefaultDir is where submissions land when no directory is configured.
const DefaultDir = "/scoring/score"

const dirPerm = 0o750

// NewSubmission builds the payload for a scored run. An empty commit is
// left out of the encoded payload.
func NewSubmission(commit string, res scoring.FinalResult) types.Submission {
	records := res.Records
	if records == nil {
		records = []types.SubmissionRecord{}
	}
	return types.Submission{
		Commit:       commit,
		Pass:         true,
		Score:        res.Score,
		Success:      res.TotalSuccess,
		Fail:         res.TotalFail,
		ResultPerAPI: records,
	}
}

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithDir sets the results directory.
func WithDir(dir string) Option {
	return func(w *Writer) {
		if dir != "" {
			w.dir = dir
		}
	}
}

// WithValidation toggles schema validation before writing.
func WithValidation(enabled bool) Option {
	return func(w *Writer) {
		w.validate = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// Writer stores submissions under a results directory, one file per input
// log, named after the log's base name.
type Writer struct {
	dir      string
	validate bool
	logger   logger.Logger
}

// NewWriter creates a Writer with configuration options.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		dir:      DefaultDir,
		validate: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the results directory.
func (w *Writer) Dir() string { return w.dir }

// Target returns the file a submission for inputPath is written to.
func (w *Writer) Target(inputPath string) (string, error) {
	base := filepath.Base(inputPath)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: no file name in %q", ErrWrite, inputPath)
	}
	return filepath.Join(w.dir, base), nil
}

// Write encodes sub and replaces the target file atomically. It returns the
// path that was written.
func (w *Writer) Write(ctx context.Context, inputPath string, sub types.Submission) (string, error) {
	target, err := w.Target(inputPath)
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(sub)
	if err != nil {
		return "", fmt.Errorf("%w: encode: %w", ErrWrite, err)
	}
	if w.validate {
		if err := Validate(raw); err != nil {
			return "", err
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := writeAtomic(target, raw); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if w.logger != nil {
		w.logger.Debug(ctx, "submission written",
			logger.String("path", target),
			logger.Int("bytes", len(raw)),
		)
	}
	return target, nil
}

func writeAtomic(target string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
