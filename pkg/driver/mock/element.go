package mock

// Element is a mock core.Element. Interactions are recorded on the struct.
type Element struct {
	ElementID string
	Label     string
	Attrs     map[string]string
	Hidden    bool

	Clicks int
	Keys   string
}

// NewElement creates a visible element whose "id" attribute is id.
func NewElement(id, text string) *Element {
	return &Element{
		ElementID: id,
		Label:     text,
		Attrs:     map[string]string{"id": id},
	}
}

// ID returns the element identifier.
func (e *Element) ID() string { return e.ElementID }

// Text returns the visible text.
func (e *Element) Text() (string, error) { return e.Label, nil }

// Attribute returns the named attribute, empty if unset.
func (e *Element) Attribute(name string) (string, error) { return e.Attrs[name], nil }

// IsDisplayed reports whether the element is visible.
func (e *Element) IsDisplayed() (bool, error) { return !e.Hidden, nil }

// Click counts the click.
func (e *Element) Click() error {
	e.Clicks++
	return nil
}

// SendKeys appends text to the typed value.
func (e *Element) SendKeys(text string) error {
	e.Keys += text
	return nil
}

// Clear resets the typed value.
func (e *Element) Clear() error {
	e.Keys = ""
	return nil
}
