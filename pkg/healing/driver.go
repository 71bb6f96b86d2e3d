// Package healing wraps a browser session with self-healing element lookup:
// when a locator fails, backup locators derived from it are tried in order.
package healing

import (
	"errors"
	"fmt"
	"time"

	"github.com/devicelab-dev/selfheal/pkg/core"
	"github.com/devicelab-dev/selfheal/pkg/logger"
	"go.uber.org/zap"
)

// Driver decorates a core.Session. FindElement and FindElements heal;
// every other Session method is the embedded session's own.
type Driver struct {
	core.Session
	opts Options
}

var _ core.Session = (*Driver)(nil)

// New wraps session with self-healing lookups.
func New(session core.Session, opts ...Option) *Driver {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Driver{Session: session, opts: o}
}

// Unwrap returns the wrapped session for backend-specific calls.
func (d *Driver) Unwrap() core.Session {
	return d.Session
}

// Options returns the driver's effective options.
func (d *Driver) Options() Options {
	return d.opts
}

func (d *Driver) log() *zap.Logger {
	if d.opts.Logger != nil {
		return d.opts.Logger
	}
	return logger.Named("healing")
}

// Find resolves loc to one element, healing on element-not-found.
func (d *Driver) Find(loc core.Locator) (core.Element, error) {
	return d.FindElement(loc.By, loc.Value)
}

// FindAll resolves loc to all matching elements.
func (d *Driver) FindAll(loc core.Locator) ([]core.Element, error) {
	return d.FindElements(loc.By, loc.Value)
}

// FindElement tries the locator as given and, when nothing matches, each
// candidate from Candidates until one resolves. Errors other than
// element-not-found from the primary lookup are returned unchanged.
func (d *Driver) FindElement(by core.By, value string) (core.Element, error) {
	ev := Event{Locator: core.NewLocator(by, value), Start: time.Now()}
	el, err := d.findElement(&ev)
	if err == nil {
		ev.Matches = 1
	}
	d.notify(&ev, err)
	return el, err
}

func (d *Driver) findElement(ev *Event) (core.Element, error) {
	loc := ev.Locator
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	el, err := d.Session.FindElement(loc.By, loc.Value)
	if err == nil {
		return el, nil
	}
	ev.PrimaryErr = err
	if !errors.Is(err, core.ErrElementNotFound) {
		return nil, err
	}

	log := d.log().With(zap.Stringer("locator", loc))
	log.Warn("locator failed, attempting self-healing", zap.Error(err))

	candidates := Candidates(loc)
	for i, c := range candidates {
		log.Info("trying backup strategy",
			zap.Int("attempt", i+1),
			zap.String("strategy", string(c.By)),
			zap.String("value", c.Value))

		el, cerr := d.Session.FindElement(c.By, c.Value)
		if cerr == nil {
			ev.try(c, 1, nil)
			log.Info("self-healing successful", zap.Stringer("candidate", c))
			return el, nil
		}
		ev.try(c, 0, cerr)
		if err := d.checkCandidateErr(log, loc, c, cerr); err != nil {
			return nil, err
		}
	}

	log.Error("self-healing failed", zap.Int("candidates", len(candidates)))
	return nil, &ExhaustedError{Locator: loc, Tried: candidates, Cause: err}
}

// FindElements returns all matches for the locator. With plural healing on,
// an empty primary result is retried with each candidate and the first
// non-empty result is returned. If nothing matches the result is empty and
// the error nil.
func (d *Driver) FindElements(by core.By, value string) ([]core.Element, error) {
	ev := Event{Locator: core.NewLocator(by, value), Plural: true, Start: time.Now()}
	els, err := d.findElements(&ev)
	ev.Matches = len(els)
	d.notify(&ev, err)
	return els, err
}

func (d *Driver) findElements(ev *Event) ([]core.Element, error) {
	loc := ev.Locator
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	els, err := d.Session.FindElements(loc.By, loc.Value)
	if !d.opts.HealPlural {
		return els, err
	}
	if err != nil && !errors.Is(err, core.ErrElementNotFound) {
		ev.PrimaryErr = err
		return nil, err
	}
	if len(els) > 0 {
		return els, nil
	}
	if err == nil {
		err = core.ErrElementNotFound
	}
	ev.PrimaryErr = err

	log := d.log().With(zap.Stringer("locator", loc))
	log.Warn("locator matched no elements, attempting self-healing")

	for i, c := range Candidates(loc) {
		log.Info("trying backup strategy",
			zap.Int("attempt", i+1),
			zap.String("strategy", string(c.By)),
			zap.String("value", c.Value))

		found, cerr := d.Session.FindElements(c.By, c.Value)
		ev.try(c, len(found), cerr)
		if cerr != nil {
			if err := d.checkCandidateErr(log, loc, c, cerr); err != nil {
				return nil, err
			}
			continue
		}
		if len(found) > 0 {
			log.Info("self-healing successful", zap.Stringer("candidate", c), zap.Int("count", len(found)))
			return found, nil
		}
		log.Debug("backup strategy matched nothing", zap.Stringer("candidate", c))
	}

	log.Warn("self-healing found no elements")
	return []core.Element{}, nil
}

func (d *Driver) notify(ev *Event, err error) {
	if d.opts.Observer == nil {
		return
	}
	ev.Err = err
	ev.Duration = time.Since(ev.Start)
	d.opts.Observer(*ev)
}

// checkCandidateErr decides whether a failed candidate lets the loop continue.
// It returns nil to continue, or the error that ends healing.
func (d *Driver) checkCandidateErr(log *zap.Logger, loc, c core.Locator, err error) error {
	if errors.Is(err, core.ErrElementNotFound) {
		log.Debug("backup strategy failed", zap.Stringer("candidate", c), zap.Error(err))
		return nil
	}
	if d.opts.RecoverAllErrors {
		log.Warn("backup strategy errored, continuing", zap.Stringer("candidate", c), zap.Error(err))
		return nil
	}
	log.Error("backup strategy errored, healing aborted", zap.Stringer("candidate", c), zap.Error(err))
	return fmt.Errorf("healing %s: candidate %s: %w", loc, c, err)
}
