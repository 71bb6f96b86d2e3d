package core

// Element is a handle to a UI element owned by a backend session.
type Element interface {
	// ID returns the backend's identifier for the element
	ID() string

	Text() (string, error)
	Attribute(name string) (string, error)
	IsDisplayed() (bool, error)

	Click() error
	SendKeys(text string) error
	Clear() error
}

// Finder looks elements up by strategy and value.
// FindElement fails with ErrElementNotFound when nothing matches;
// FindElements returns an empty slice instead.
type Finder interface {
	FindElement(by By, value string) (Element, error)
	FindElements(by By, value string) ([]Element, error)
}

// Session is a browser session: a Finder plus page-level operations.
// Implementations: webdriver, cdp, pw, mock.
type Session interface {
	Finder

	// Navigate loads the given URL
	Navigate(url string) error

	CurrentURL() (string, error)
	Title() (string, error)

	// Screenshot captures the page as PNG
	Screenshot() ([]byte, error)

	// Quit ends the session and releases the browser
	Quit() error
}
