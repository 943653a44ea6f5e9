// Package model contains domain models passed between layers.
package model

// k6 metric names and record types the pipeline reacts to.
const (
	MetricChecks   = "checks"
	MetricHTTPReqs = "http_reqs"

	TypePoint  = "Point"
	TypeMetric = "Metric"

	TagAPI   = "api"
	TagURL   = "url"
	TagError = "error"

	// ErrorRequestTimeout is the k6 error tag value for a request that
	// exceeded its timeout budget.
	ErrorRequestTimeout = "request timeout"
)

// Event is one line of the k6 JSON output.
// Only the fields the scorer consumes are decoded.
type Event struct {
	Metric string    `json:"metric"`
	Type   string    `json:"type"`
	Data   EventData `json:"data"`
}

// EventData is the payload of a k6 Point record.
type EventData struct {
	Time  string            `json:"time"`
	Value float64           `json:"value"`
	Tags  map[string]string `json:"tags"`
}

// Tag returns the tag value for key, or "" when the tag is absent.
func (e *Event) Tag(key string) string {
	return e.Data.Tags[key]
}

// IsCheck reports whether e is a check sample (value 1 pass, 0 fail).
func (e *Event) IsCheck() bool {
	return e.Metric == MetricChecks && e.Type == TypePoint
}

// IsTimeout reports whether e is a completed request that k6 tagged with a
// timeout error.
func (e *Event) IsTimeout() bool {
	if e.Metric != MetricHTTPReqs || e.Type == TypeMetric {
		return false
	}
	reason, ok := e.Data.Tags[TagError]
	return ok && reason == ErrorRequestTimeout
}

// Passed reports whether a check sample recorded a pass.
func (e *Event) Passed() bool { return e.Data.Value == 1 }

// Failed reports whether a check sample recorded a failure.
func (e *Event) Failed() bool { return e.Data.Value == 0 }

// OutcomeCount is the per-scenario tally produced by the aggregator.
// Fail excludes requests that timed out; those are counted in Timeout.
type OutcomeCount struct {
	Scenario Scenario
	Success  int
	Fail     int
	Timeout  int
}

// Requests returns the number of requests attributed to the scenario.
func (o OutcomeCount) Requests() int {
	return o.Success + o.Fail + o.Timeout
}
