package webdriver

import (
	"time"

	"github.com/devicelab-dev/selfheal/pkg/core"
)

// Driver implements core.Session on top of a connected Client.
type Driver struct {
	client *Client
}

var _ core.Session = (*Driver)(nil)

// New wraps an already connected client.
func New(client *Client) *Driver {
	return &Driver{client: client}
}

// Open starts a browser session on the remote end at serverURL.
func Open(serverURL, browser string, headless bool, implicitWait time.Duration) (*Driver, error) {
	caps, err := Capabilities(browser, headless)
	if err != nil {
		return nil, err
	}

	client := NewClient(serverURL)
	if err := client.Connect(caps); err != nil {
		return nil, err
	}

	if implicitWait > 0 {
		if err := client.SetImplicitWait(implicitWait); err != nil {
			client.Disconnect()
			return nil, err
		}
	}
	if !headless {
		// Not every remote end supports maximize; ignore the error
		_ = client.MaximizeWindow()
	}

	return New(client), nil
}

// Client returns the underlying protocol client.
func (d *Driver) Client() *Client {
	return d.client
}

// FindElement finds the first element matching the locator.
func (d *Driver) FindElement(by core.By, value string) (core.Element, error) {
	loc := core.NewLocator(by, value).W3C()
	id, err := d.client.FindElement(string(loc.By), loc.Value)
	if err != nil {
		return nil, err
	}
	return &Element{client: d.client, id: id}, nil
}

// FindElements finds every element matching the locator.
func (d *Driver) FindElements(by core.By, value string) ([]core.Element, error) {
	loc := core.NewLocator(by, value).W3C()
	ids, err := d.client.FindElements(string(loc.By), loc.Value)
	if err != nil {
		return nil, err
	}
	els := make([]core.Element, 0, len(ids))
	for _, id := range ids {
		els = append(els, &Element{client: d.client, id: id})
	}
	return els, nil
}

// Navigate loads url.
func (d *Driver) Navigate(url string) error {
	return d.client.Navigate(url)
}

// CurrentURL returns the page URL.
func (d *Driver) CurrentURL() (string, error) {
	return d.client.GetURL()
}

// Title returns the page title.
func (d *Driver) Title() (string, error) {
	return d.client.GetTitle()
}

// Screenshot captures the viewport as PNG.
func (d *Driver) Screenshot() ([]byte, error) {
	return d.client.Screenshot()
}

// Quit deletes the session.
func (d *Driver) Quit() error {
	return d.client.Disconnect()
}
