// Package mock provides an in-memory browser session for testing without a browser.
package mock

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/selfheal/pkg/core"
)

// Driver is a mock implementation of core.Session for testing.
type Driver struct {
	// Configuration
	Config Config

	// Internal state
	elements map[core.Locator][]*Element
	failures map[core.Locator]error
	calls    []Call
	quit     bool
}

// Config configures mock driver behavior.
type Config struct {
	// Page state reported by CurrentURL and Title
	URL   string
	Title string
	// LookupDelay adds artificial delay per lookup
	LookupDelay time.Duration
	// Screenshot is returned by Screenshot; a bare PNG signature when empty
	Screenshot []byte
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Call records one lookup made against the driver.
type Call struct {
	Locator core.Locator
	Plural  bool
}

// New creates a new mock driver.
func New(cfg Config) *Driver {
	if cfg.URL == "" {
		cfg.URL = "about:blank"
	}
	return &Driver{
		Config:   cfg,
		elements: make(map[core.Locator][]*Element),
		failures: make(map[core.Locator]error),
	}
}

// Add registers elements returned for loc, in document order.
func (d *Driver) Add(loc core.Locator, els ...*Element) *Driver {
	d.elements[loc] = append(d.elements[loc], els...)
	return d
}

// FailWith makes every lookup of loc return err.
func (d *Driver) FailWith(loc core.Locator, err error) *Driver {
	d.failures[loc] = err
	return d
}

// Calls returns the lookups made so far, oldest first.
func (d *Driver) Calls() []Call {
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// Quitted reports whether Quit was called.
func (d *Driver) Quitted() bool {
	return d.quit
}

func (d *Driver) lookup(by core.By, value string, plural bool) ([]*Element, error) {
	loc := core.NewLocator(by, value)
	d.calls = append(d.calls, Call{Locator: loc, Plural: plural})

	if d.Config.LookupDelay > 0 {
		time.Sleep(d.Config.LookupDelay)
	}
	if d.quit {
		return nil, core.ErrSessionNotCreated.WithMessage("session has been quit")
	}
	if err, ok := d.failures[loc]; ok {
		return nil, err
	}
	return d.elements[loc], nil
}

// FindElement returns the first element registered for the locator.
func (d *Driver) FindElement(by core.By, value string) (core.Element, error) {
	els, err := d.lookup(by, value, false)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, core.ErrElementNotFound.WithMessage(fmt.Sprintf("no such element: %s=%s", by, value))
	}
	return els[0], nil
}

// FindElements returns every element registered for the locator.
func (d *Driver) FindElements(by core.By, value string) ([]core.Element, error) {
	els, err := d.lookup(by, value, true)
	if err != nil {
		return nil, err
	}
	out := make([]core.Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out, nil
}

// Navigate records the URL as the current page.
func (d *Driver) Navigate(url string) error {
	if d.quit {
		return core.ErrSessionNotCreated.WithMessage("session has been quit")
	}
	d.Config.URL = url
	return nil
}

// CurrentURL returns the last navigated URL.
func (d *Driver) CurrentURL() (string, error) {
	return d.Config.URL, nil
}

// Title returns the configured page title.
func (d *Driver) Title() (string, error) {
	return d.Config.Title, nil
}

// Screenshot returns the configured image.
func (d *Driver) Screenshot() ([]byte, error) {
	if d.quit {
		return nil, core.ErrSessionNotCreated.WithMessage("session has been quit")
	}
	if len(d.Config.Screenshot) == 0 {
		return append([]byte(nil), pngSignature...), nil
	}
	return append([]byte(nil), d.Config.Screenshot...), nil
}

// Quit marks the session closed.
func (d *Driver) Quit() error {
	d.quit = true
	return nil
}
