package healing

import (
	"time"

	"github.com/devicelab-dev/selfheal/pkg/core"
)

// Attempt is one candidate lookup made while healing.
type Attempt struct {
	Locator core.Locator
	Matches int
	Err     error
}

// Event describes a completed FindElement or FindElements call.
type Event struct {
	Locator core.Locator
	Plural  bool

	// PrimaryErr is the failure of the locator as given, nil if it matched.
	PrimaryErr error
	Attempts   []Attempt

	// HealedBy is the candidate that produced the result, nil when the
	// primary locator matched or nothing did.
	HealedBy *core.Locator

	Matches  int
	Err      error // error returned to the caller
	Start    time.Time
	Duration time.Duration
}

// Healed reports whether a candidate produced the result.
func (e Event) Healed() bool {
	return e.HealedBy != nil
}

// Observer receives an Event after every lookup.
type Observer func(Event)

func (e *Event) try(c core.Locator, matches int, err error) {
	e.Attempts = append(e.Attempts, Attempt{Locator: c, Matches: matches, Err: err})
	if err == nil && matches > 0 {
		healed := c
		e.HealedBy = &healed
	}
}
