// Package pw implements core.Session with playwright-go.
package pw

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/devicelab-dev/selfheal/pkg/core"
)

// Options configures the launched browser.
type Options struct {
	// Browser is chromium, firefox or webkit; empty means chromium.
	// The aliases chrome and edge map to chromium.
	Browser  string
	Headless bool
	// Install downloads the driver and browsers before launch.
	Install bool
}

// Session drives one Playwright page.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

var _ core.Session = (*Session)(nil)

// New starts Playwright, launches the browser and opens a page.
func New(opts Options) (*Session, error) {
	name, err := browserName(opts.Browser)
	if err != nil {
		return nil, err
	}

	if opts.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{name}}); err != nil {
			return nil, core.ErrSessionNotCreated.WithCause(fmt.Errorf("install playwright: %w", err))
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, core.ErrSessionNotCreated.WithCause(fmt.Errorf("start playwright: %w", err))
	}

	var bt playwright.BrowserType
	switch name {
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		bt = pw.Chromium
	}

	browser, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, core.ErrSessionNotCreated.WithCause(fmt.Errorf("launch %s: %w", name, err))
	}

	page, err := browser.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, core.ErrSessionNotCreated.WithCause(fmt.Errorf("open page: %w", err))
	}

	return &Session{pw: pw, browser: browser, page: page}, nil
}

func browserName(b string) (string, error) {
	switch b {
	case "", "chromium", "chrome", "edge":
		return "chromium", nil
	case "firefox", "webkit":
		return b, nil
	}
	return "", fmt.Errorf("unsupported browser: %s", b)
}

// Page returns the Playwright page for direct calls.
func (s *Session) Page() playwright.Page {
	return s.page
}

// selector renders a locator in Playwright's engine-prefixed syntax.
func selector(loc core.Locator) string {
	q := loc.Query()
	if q.By == core.ByXPath {
		return "xpath=" + q.Value
	}
	return "css=" + q.Value
}

// FindElement returns the first element matching the locator.
func (s *Session) FindElement(by core.By, value string) (core.Element, error) {
	els, err := s.FindElements(by, value)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, core.ErrElementNotFound.WithMessage(fmt.Sprintf("no such element: %s=%s", by, value))
	}
	return els[0], nil
}

// FindElements returns every element matching the locator.
func (s *Session) FindElements(by core.By, value string) ([]core.Element, error) {
	handles, err := s.page.QuerySelectorAll(selector(core.NewLocator(by, value)))
	if err != nil {
		return nil, core.ErrInvalidSelector.WithCause(err)
	}
	els := make([]core.Element, 0, len(handles))
	for _, h := range handles {
		els = append(els, &Element{id: uuid.NewString(), handle: h})
	}
	return els, nil
}

// Navigate loads url.
func (s *Session) Navigate(url string) error {
	_, err := s.page.Goto(url)
	return err
}

// CurrentURL returns the page URL.
func (s *Session) CurrentURL() (string, error) {
	return s.page.URL(), nil
}

// Title returns the document title.
func (s *Session) Title() (string, error) {
	return s.page.Title()
}

// Screenshot captures the full page as PNG.
func (s *Session) Screenshot() ([]byte, error) {
	return s.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

// Quit closes the browser and stops Playwright.
func (s *Session) Quit() error {
	if err := s.browser.Close(); err != nil {
		s.pw.Stop()
		return err
	}
	return s.pw.Stop()
}
