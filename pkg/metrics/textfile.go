package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const textfilePermission = 0o644

// WriteTextfile renders every family gathered from g in the Prometheus text
// exposition format and atomically replaces path with it. The output is
// suitable for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGather, err)
	}

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString())
	if err := writeFamilies(tmp, families); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}

func writeFamilies(path string, families []*dto.MetricFamily) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, textfilePermission)
	if err != nil {
		return err
	}

	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return f.Close()
}
