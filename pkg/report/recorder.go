package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/selfheal/pkg/core"
	"github.com/devicelab-dev/selfheal/pkg/healing"
	"github.com/devicelab-dev/selfheal/pkg/logger"
)

// Recorder collects lookups into an Index and keeps report.json current.
// Observe is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	outputDir string
	path      string
	index     *Index
}

// NewRecorder creates outputDir and starts a run.
func NewRecorder(outputDir string, index *Index) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}

	index.Version = Version
	if index.StartTime.IsZero() {
		index.StartTime = time.Now()
	}

	r := &Recorder{
		outputDir: outputDir,
		path:      filepath.Join(outputDir, "report.json"),
		index:     index,
	}
	return r, r.flush()
}

// Dir returns the output directory.
func (r *Recorder) Dir() string {
	return r.outputDir
}

// Observe appends a lookup. Use it as a healing.Observer.
func (r *Recorder) Observe(ev healing.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index.Lookups = append(r.index.Lookups, lookupFromEvent(len(r.index.Lookups), ev))
	r.flushLocked()
}

// End marks the run as complete and writes the final report.
func (r *Recorder) End() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.index.EndTime = &now
	return r.flushLocked()
}

// Last returns the most recent lookup.
func (r *Recorder) Last() (Lookup, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.index.Lookups) == 0 {
		return Lookup{}, false
	}
	return r.index.Lookups[len(r.index.Lookups)-1], true
}

// AttachScreenshot stores png under screenshots/ and links it to the lookup.
func (r *Recorder) AttachScreenshot(lookupID string, png []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var l *Lookup
	for i := range r.index.Lookups {
		if r.index.Lookups[i].ID == lookupID {
			l = &r.index.Lookups[i]
			break
		}
	}
	if l == nil {
		return fmt.Errorf("no lookup with id %s", lookupID)
	}

	rel := filepath.Join("screenshots", lookupID+".png")
	if err := os.MkdirAll(filepath.Join(r.outputDir, "screenshots"), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(r.outputDir, rel), png, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	l.Screenshot = filepath.ToSlash(rel)
	return r.flushLocked()
}

// Index returns a snapshot of the current index.
func (r *Recorder) Index() Index {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := *r.index
	snapshot.Lookups = append([]Lookup(nil), r.index.Lookups...)
	return snapshot
}

func (r *Recorder) flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

// flushLocked flushes while holding the lock.
func (r *Recorder) flushLocked() error {
	r.index.Summary = computeSummary(r.index.Lookups)

	if err := atomicWriteJSON(r.path, r.index); err != nil {
		logger.Warn("failed to write %s: %v", r.path, err)
		return err
	}
	return nil
}

func lookupFromEvent(i int, ev healing.Event) Lookup {
	l := Lookup{
		Index:     i,
		ID:        uuid.NewString(),
		Locator:   selectorOf(ev.Locator),
		Plural:    ev.Plural,
		Status:    statusOf(ev),
		StartTime: ev.Start,
		Duration:  ev.Duration.Milliseconds(),
		Matches:   ev.Matches,
	}
	if ev.HealedBy != nil {
		s := selectorOf(*ev.HealedBy)
		l.HealedBy = &s
	}
	for _, a := range ev.Attempts {
		attempt := Attempt{Selector: selectorOf(a.Locator), Matches: a.Matches}
		if a.Err != nil {
			attempt.Error = a.Err.Error()
		}
		l.Attempts = append(l.Attempts, attempt)
	}

	switch {
	case ev.Err != nil:
		l.Error = &Error{Type: errorType(ev.Err), Message: ev.Err.Error()}
	case l.Status == StatusFailed && ev.PrimaryErr != nil:
		l.Error = &Error{Type: errorType(ev.PrimaryErr), Message: ev.PrimaryErr.Error()}
	}
	return l
}

func selectorOf(loc core.Locator) Selector {
	return Selector{Type: string(loc.By), Value: loc.Value}
}

// statusOf classifies an event. An empty plural result is a failure, not an error.
func statusOf(ev healing.Event) Status {
	switch {
	case ev.Err == nil && ev.Matches > 0 && ev.Healed():
		return StatusHealed
	case ev.Err == nil && ev.Matches > 0:
		return StatusPassed
	case ev.Err == nil, errors.Is(ev.Err, core.ErrElementNotFound):
		return StatusFailed
	}
	return StatusBroken
}

// errorType returns the ExecutionError code, or "unknown".
func errorType(err error) string {
	if errors.Is(err, core.ErrHealingExhausted) {
		return core.ErrHealingExhausted.Code
	}
	var execErr *core.ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Code
	}
	return "unknown"
}

// computeSummary calculates summary from lookup statuses.
func computeSummary(lookups []Lookup) Summary {
	var s Summary
	for _, l := range lookups {
		s.Total++
		switch l.Status {
		case StatusPassed:
			s.Passed++
		case StatusHealed:
			s.Healed++
		case StatusFailed:
			s.Failed++
		case StatusBroken:
			s.Broken++
		}
	}
	return s
}
