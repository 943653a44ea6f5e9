// Package classify maps request URLs from the k6 log to scenario ids.
//
// k6 tags timeout samples with the request URL rather than the scenario, so
// the scenario has to be recovered from the URL text. Several scenario paths
// share prefixes (/users, /users/search, /match-groups, /match-groups/members),
// which makes rule order part of the contract: the first matching rule wins.
package classify

import (
	"strings"

	"github.com/okian/benchscore/internal/domain/catalog"
)

// Unknown is returned when no rule matches.
const Unknown = ""

// Rule pairs a URL predicate with the scenario it selects.
type Rule struct {
	Match    func(url string) bool
	Scenario string
}

// Contains matches URLs containing substr anywhere, query string included.
func Contains(substr, scenario string) Rule {
	return Rule{
		Match:    func(url string) bool { return strings.Contains(url, substr) },
		Scenario: scenario,
	}
}

// HasSuffix matches URLs ending in suffix.
func HasSuffix(suffix, scenario string) Rule {
	return Rule{
		Match:    func(url string) bool { return strings.HasSuffix(url, suffix) },
		Scenario: scenario,
	}
}

// Classifier evaluates its rules top to bottom.
type Classifier struct {
	rules []Rule
}

// New builds a classifier from an ordered rule list.
func New(rules ...Rule) *Classifier {
	c := &Classifier{rules: make([]Rule, len(rules))}
	copy(c.rules, rules)
	return c
}

// Default returns the rule chain for the reference catalog.
func Default() *Classifier {
	return New(
		Contains("session", catalog.Login),
		HasSuffix("users", catalog.GetUsers),
		Contains("user-icon", catalog.GetUserIcon),
		Contains("search", catalog.SearchUsers),
		HasSuffix("match-groups", catalog.CreateMatchGroup),
		Contains("match-groups", catalog.GetMatchGroups),
	)
}

// Classify returns the scenario id for url, or Unknown.
func (c *Classifier) Classify(url string) string {
	for _, r := range c.rules {
		if r.Match(url) {
			return r.Scenario
		}
	}
	return Unknown
}

var defaultClassifier = Default()

// Classify classifies url with the default rule chain.
func Classify(url string) string {
	return defaultClassifier.Classify(url)
}
