package healing

import (
	"errors"
	"fmt"

	"github.com/devicelab-dev/selfheal/pkg/core"
)

// ExhaustedError is returned when the primary lookup and every derived
// candidate failed. It matches core.ErrHealingExhausted and
// core.ErrElementNotFound with errors.Is.
type ExhaustedError struct {
	Locator core.Locator   // The locator the caller asked for
	Tried   []core.Locator // Candidates attempted, in order
	Cause   error          // Failure of the primary lookup
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("could not find element after self-healing attempts: %s (%d candidates tried)", e.Locator, len(e.Tried))
}

// Unwrap returns the primary lookup failure.
func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}

// Is reports a match for the healing-exhausted and element-not-found sentinels.
func (e *ExhaustedError) Is(target error) bool {
	return errors.Is(core.ErrHealingExhausted, target) || errors.Is(core.ErrElementNotFound, target)
}
