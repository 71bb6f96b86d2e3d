package webdriver

// Element is a web element addressed by its WebDriver element ID.
type Element struct {
	client *Client
	id     string
}

// ID returns the WebDriver element reference.
func (e *Element) ID() string { return e.id }

// Text returns the rendered text.
func (e *Element) Text() (string, error) { return e.client.GetElementText(e.id) }

// Attribute returns the named attribute.
func (e *Element) Attribute(name string) (string, error) {
	return e.client.GetElementAttribute(e.id, name)
}

// IsDisplayed reports visibility.
func (e *Element) IsDisplayed() (bool, error) { return e.client.IsElementDisplayed(e.id) }

// Click clicks the element.
func (e *Element) Click() error { return e.client.ClickElement(e.id) }

// SendKeys types text into the element.
func (e *Element) SendKeys(text string) error { return e.client.SendKeysToElement(e.id, text) }

// Clear empties an input.
func (e *Element) Clear() error { return e.client.ClearElement(e.id) }
