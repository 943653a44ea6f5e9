package model

import "net/http"

// Scenario describes one benchmarked API operation.
type Scenario struct {
	ID     string // value of the k6 "api" tag
	Method string // HTTP method
	Path   string // canonical path template, e.g. /api/v1/users/{id}
}

// IsRead reports whether the scenario is weighted as a read.
func (s Scenario) IsRead() bool { return s.Method == http.MethodGet }

// IsWrite reports whether the scenario is weighted as a write.
func (s Scenario) IsWrite() bool { return s.Method == http.MethodPost }
