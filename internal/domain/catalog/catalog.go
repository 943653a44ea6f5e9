// Package catalog holds the fixed set of benchmarked API scenarios.
package catalog

import (
	"net/http"

	"github.com/okian/benchscore/internal/domain/model"
)

// Scenario identifiers, matching the k6 "api" tag values.
const (
	Login            = "login"
	GetUsers         = "getUsers"
	GetUserIcon      = "getUserIcon"
	SearchUsers      = "searchUsers"
	GetMatchGroups   = "getMatchGroups"
	CreateMatchGroup = "createMatchGroup"
)

// scenarios is ordered as the report lists them.
var scenarios = [...]model.Scenario{
	{ID: Login, Method: http.MethodPost, Path: "/api/v1/session"},
	{ID: GetUsers, Method: http.MethodGet, Path: "/api/v1/users"},
	{ID: GetUserIcon, Method: http.MethodGet, Path: "/api/v1/users/user-icon/{userIconId}"},
	{ID: SearchUsers, Method: http.MethodGet, Path: "/api/v1/users/search"},
	{ID: GetMatchGroups, Method: http.MethodGet, Path: "/api/v1/match-groups/members/{userId}"},
	{ID: CreateMatchGroup, Method: http.MethodPost, Path: "/api/v1/match-groups"},
}

// Catalog is an ordered, read-only list of scenarios.
type Catalog struct {
	items []model.Scenario
}

// Default returns the catalog of the reference deployment.
func Default() Catalog {
	return New(scenarios[:]...)
}

// New builds a catalog from the given scenarios, in order.
func New(items ...model.Scenario) Catalog {
	c := Catalog{items: make([]model.Scenario, len(items))}
	copy(c.items, items)
	return c
}

// Scenarios returns a copy of the scenarios in catalog order.
func (c Catalog) Scenarios() []model.Scenario {
	out := make([]model.Scenario, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of scenarios.
func (c Catalog) Len() int { return len(c.items) }

// Lookup returns the scenario with the given id.
func (c Catalog) Lookup(id string) (model.Scenario, bool) {
	for _, s := range c.items {
		if s.ID == id {
			return s, true
		}
	}
	return model.Scenario{}, false
}

// Index returns the position of id in the catalog, or -1.
func (c Catalog) Index(id string) int {
	for i, s := range c.items {
		if s.ID == id {
			return i
		}
	}
	return -1
}
