// Package cdp implements core.Session over the Chrome DevTools Protocol
// using chromedp. No WebDriver server is needed; Chrome is launched directly.
package cdp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/devicelab-dev/selfheal/pkg/core"
)

// DefaultTimeout bounds each browser operation.
const DefaultTimeout = 30 * time.Second

// Options configures the launched browser.
type Options struct {
	Headless bool
	ExecPath string        // Chrome binary; empty means chromedp's lookup
	Timeout  time.Duration // Per operation; zero means DefaultTimeout
	Flags    map[string]interface{}
}

// Session drives one Chrome tab.
type Session struct {
	ctx     context.Context
	timeout time.Duration
	cancels []context.CancelFunc
}

var _ core.Session = (*Session)(nil)

// New launches Chrome and opens a tab. The browser lives until Quit or
// until ctx is cancelled.
func New(ctx context.Context, opts Options) (*Session, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	for key, value := range opts.Flags {
		allocOpts = append(allocOpts, chromedp.Flag(key, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:     tabCtx,
		timeout: opts.Timeout,
		cancels: []context.CancelFunc{tabCancel, allocCancel},
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}

	// First Run starts the browser.
	if err := s.run(); err != nil {
		s.Quit()
		return nil, core.ErrSessionNotCreated.WithCause(err)
	}
	return s, nil
}

// Context returns the tab context for direct chromedp calls.
func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	err := chromedp.Run(ctx, actions...)
	if errors.Is(err, context.DeadlineExceeded) {
		return core.ErrTimeout.WithCause(err)
	}
	return err
}

// query maps a locator to the selector text and whether it is an xpath.
func query(loc core.Locator) (string, bool) {
	q := loc.Query()
	return q.Value, q.By == core.ByXPath
}

func (s *Session) nodes(by core.By, value string) ([]*cdp.Node, error) {
	sel, xpath := query(core.NewLocator(by, value))
	opt := chromedp.ByQueryAll
	if xpath {
		opt = chromedp.BySearch
	}

	var nodes []*cdp.Node
	if err := s.run(chromedp.Nodes(sel, &nodes, opt, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	return nodes, nil
}

// FindElement returns the first node matching the locator.
func (s *Session) FindElement(by core.By, value string) (core.Element, error) {
	nodes, err := s.nodes(by, value)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, core.ErrElementNotFound.WithMessage(fmt.Sprintf("no such element: %s=%s", by, value))
	}
	return &Element{s: s, node: nodes[0]}, nil
}

// FindElements returns every node matching the locator.
func (s *Session) FindElements(by core.By, value string) ([]core.Element, error) {
	nodes, err := s.nodes(by, value)
	if err != nil {
		return nil, err
	}
	els := make([]core.Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &Element{s: s, node: n})
	}
	return els, nil
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(url string) error {
	return s.run(chromedp.Navigate(url))
}

// CurrentURL returns the tab location.
func (s *Session) CurrentURL() (string, error) {
	var url string
	err := s.run(chromedp.Location(&url))
	return url, err
}

// Title returns the document title.
func (s *Session) Title() (string, error) {
	var title string
	err := s.run(chromedp.Title(&title))
	return title, err
}

// Screenshot captures the full page as PNG.
func (s *Session) Screenshot() ([]byte, error) {
	var buf []byte
	err := s.run(chromedp.FullScreenshot(&buf, 90))
	return buf, err
}

// Quit closes the tab and the browser.
func (s *Session) Quit() error {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	return nil
}
