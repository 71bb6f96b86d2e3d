package pw

import (
	"github.com/playwright-community/playwright-go"
)

// Element wraps a Playwright element handle. Handles have no stable
// identity of their own, so each is assigned a random UUID.
type Element struct {
	id     string
	handle playwright.ElementHandle
}

func (e *Element) ID() string { return e.id }

// Handle returns the underlying element handle.
func (e *Element) Handle() playwright.ElementHandle { return e.handle }

func (e *Element) Text() (string, error) { return e.handle.InnerText() }

func (e *Element) Attribute(name string) (string, error) { return e.handle.GetAttribute(name) }

func (e *Element) IsDisplayed() (bool, error) { return e.handle.IsVisible() }

func (e *Element) Click() error { return e.handle.Click() }

func (e *Element) SendKeys(text string) error { return e.handle.Type(text) }

func (e *Element) Clear() error { return e.handle.Fill("") }
