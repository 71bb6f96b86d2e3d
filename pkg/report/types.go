// Package report records the locator lookups of a run and writes them as
// JSON and as Allure results.
//
// Layout:
//   - report.json: the index, rewritten atomically after every lookup
//   - screenshots/: page captures attached to lookups that did not succeed
//   - allure-results/: one result file per lookup, written by GenerateAllure
package report

import "time"

// Version is the report schema version.
const Version = "1.0.0"

// Status is the outcome of a lookup.
type Status string

// Status values.
const (
	StatusPassed Status = "passed" // the locator matched as given
	StatusHealed Status = "healed" // a backup locator matched
	StatusFailed Status = "failed" // nothing matched
	StatusBroken Status = "broken" // the lookup errored
)

// IsSuccess returns true if the lookup produced a result.
func (s Status) IsSuccess() bool {
	return s == StatusPassed || s == StatusHealed
}

// Index is report.json.
type Index struct {
	Version   string      `json:"version"`
	StartTime time.Time   `json:"startTime"`
	EndTime   *time.Time  `json:"endTime,omitempty"`
	URL       string      `json:"url,omitempty"`
	Session   SessionInfo `json:"session"`
	Runner    RunnerInfo  `json:"runner"`
	Summary   Summary     `json:"summary"`
	Lookups   []Lookup    `json:"lookups"`
}

// SessionInfo describes the browser session.
type SessionInfo struct {
	Backend  string `json:"backend"`
	Browser  string `json:"browser"`
	Headless bool   `json:"headless"`
}

// RunnerInfo contains selfheal information.
type RunnerInfo struct {
	Version          string `json:"version"`
	RecoverAllErrors bool   `json:"recoverAllErrors"`
}

// Summary contains aggregated counts.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Healed int `json:"healed"`
	Failed int `json:"failed"`
	Broken int `json:"broken"`
}

// Lookup is one FindElement or FindElements call.
type Lookup struct {
	Index     int       `json:"index"`
	ID        string    `json:"id"`
	Locator   Selector  `json:"locator"`
	Plural    bool      `json:"plural,omitempty"`
	Status    Status    `json:"status"`
	StartTime time.Time `json:"startTime"`
	Duration  int64     `json:"duration"` // milliseconds
	Matches   int       `json:"matches"`
	HealedBy  *Selector `json:"healedBy,omitempty"`
	Attempts  []Attempt `json:"attempts,omitempty"`
	Error     *Error    `json:"error,omitempty"`

	// Screenshot is relative to the report directory
	Screenshot string `json:"screenshot,omitempty"`
}

// Selector is a locator as strategy and value.
type Selector struct {
	Type  string `json:"type"` // id, css selector, xpath, ...
	Value string `json:"value"`
}

// String renders the selector as "type=value".
func (s Selector) String() string {
	return s.Type + "=" + s.Value
}

// Attempt is one backup locator tried during healing.
type Attempt struct {
	Selector Selector `json:"selector"`
	Matches  int      `json:"matches"`
	Error    string   `json:"error,omitempty"`
}

// Error contains error details.
type Error struct {
	Type    string `json:"type"` // element_not_found, healing_exhausted, timeout, ...
	Message string `json:"message"`
}
