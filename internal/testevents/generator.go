package testevents

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/okian/benchscore/internal/domain/catalog"
	"github.com/okian/benchscore/internal/domain/model"
)

const (
	defaultBaseURL   = "http://webapp:8080"
	sampleInterval   = 3 * time.Millisecond
	statusOK         = "200"
	statusError      = "500"
	failedCheckError = "unexpected status"
)

// record is one k6 JSON output line.
type record struct {
	Metric string `json:"metric"`
	Type   string `json:"type"`
	Data   any    `json:"data"`
}

type point struct {
	Time  string            `json:"time"`
	Value float64           `json:"value"`
	Tags  map[string]string `json:"tags"`
}

type declaration struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Contains   string   `json:"contains"`
	Thresholds []string `json:"thresholds"`
}

// Generate writes a k6-shaped event log for cfg to w.
func Generate(ctx context.Context, w io.Writer, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), Expected: make(map[string]Mix)}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	start := cfg.Start
	if start.IsZero() {
		start = time.Now()
	}

	var samples [][]record
	for _, s := range catalog.Default().Scenarios() {
		m, ok := cfg.Mix[s.ID]
		if !ok {
			continue
		}
		stats.Expected[s.ID] = m
		for i := 0; i < m.Success; i++ {
			samples = append(samples, request(s, base, i, statusOK, "", 1))
		}
		for i := 0; i < m.Fail; i++ {
			samples = append(samples, request(s, base, i, statusError, failedCheckError, 0))
		}
		for i := 0; i < m.Timeout; i++ {
			samples = append(samples, request(s, base, i, "0", model.ErrorRequestTimeout, 0))
		}
	}
	for i := 0; i < cfg.Unknown; i++ {
		samples = append(samples, []record{httpReq(base+"/api/v1/health", "GET", "0", model.ErrorRequestTimeout)})
	}

	if cfg.Seed != 0 {
		rnd := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // shuffling test data only
		rnd.Shuffle(len(samples), func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for _, d := range []record{
		{Metric: model.MetricHTTPReqs, Type: model.TypeMetric, Data: declaration{Name: model.MetricHTTPReqs, Type: "counter", Contains: "default", Thresholds: []string{}}},
		{Metric: model.MetricChecks, Type: model.TypeMetric, Data: declaration{Name: model.MetricChecks, Type: "rate", Contains: "default", Thresholds: []string{}}},
	} {
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("write declaration: %w", err)
		}
		stats.Lines++
	}

	at := start
	for i, group := range samples {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for _, r := range group {
			p := r.Data.(point)
			p.Time = at.Format(time.RFC3339Nano)
			r.Data = p
			if err := enc.Encode(r); err != nil {
				return nil, fmt.Errorf("write sample: %w", err)
			}
			stats.Lines++
			switch r.Metric {
			case model.MetricChecks:
				stats.Checks++
			case model.MetricHTTPReqs:
				stats.Requests++
				if p.Tags[model.TagError] == model.ErrorRequestTimeout {
					stats.Timeouts++
				}
			}
		}
		at = at.Add(sampleInterval)
	}

	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	return stats, nil
}

// request emits the http_reqs sample and the check of one call.
func request(s model.Scenario, base string, i int, status, errMsg string, passed float64) []record {
	req := httpReq(URLFor(base, s.ID, i), s.Method, status, errMsg)
	check := record{
		Metric: model.MetricChecks,
		Type:   model.TypePoint,
		Data: point{
			Value: passed,
			Tags: map[string]string{
				model.TagAPI: s.ID,
				"check":      "status is 2xx",
				"scenario":   "default",
			},
		},
	}
	return []record{req, check}
}

func httpReq(url, method, status, errMsg string) record {
	tags := map[string]string{
		model.TagURL:        url,
		"method":            method,
		"status":            status,
		"scenario":          "default",
		"request_id":        uuid.NewString(),
		"expected_response": "true",
	}
	if errMsg != "" {
		tags[model.TagError] = errMsg
		tags["expected_response"] = "false"
	}
	return record{
		Metric: model.MetricHTTPReqs,
		Type:   model.TypePoint,
		Data:   point{Value: 1, Tags: tags},
	}
}

// URLFor returns a concrete request URL that classifies as scenario id.
func URLFor(base, id string, i int) string {
	switch id {
	case catalog.Login:
		return base + "/api/v1/session"
	case catalog.GetUsers:
		return base + "/api/v1/users"
	case catalog.GetUserIcon:
		return fmt.Sprintf("%s/api/v1/users/user-icon/%d", base, i+1)
	case catalog.SearchUsers:
		return fmt.Sprintf("%s/api/v1/users/search?q=user%d&target=name", base, i)
	case catalog.GetMatchGroups:
		return fmt.Sprintf("%s/api/v1/match-groups/members/%d?status=open", base, i+1)
	case catalog.CreateMatchGroup:
		return base + "/api/v1/match-groups"
	default:
		return base + "/api/v1/" + id
	}
}
