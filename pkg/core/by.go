// Package core provides the locator and element model shared by selfheal backends.
package core

import (
	"fmt"
	"strings"
)

// By is an element lookup strategy. Values match the Selenium wire names.
type By string

// Supported strategies
const (
	ByID              By = "id"
	ByName            By = "name"
	ByClassName       By = "class name"
	ByCSSSelector     By = "css selector"
	ByXPath           By = "xpath"
	ByLinkText        By = "link text"
	ByPartialLinkText By = "partial link text"
	ByTagName         By = "tag name"
)

var knownStrategies = []By{
	ByID, ByName, ByClassName, ByCSSSelector,
	ByXPath, ByLinkText, ByPartialLinkText, ByTagName,
}

// Valid reports whether b is one of the supported strategies.
func (b By) Valid() bool {
	for _, k := range knownStrategies {
		if b == k {
			return true
		}
	}
	return false
}

// Locator identifies how to search for an element.
type Locator struct {
	By    By
	Value string
}

// NewLocator returns a Locator for the given strategy and value.
func NewLocator(by By, value string) Locator {
	return Locator{By: by, Value: value}
}

// String renders the locator as "strategy=value".
func (l Locator) String() string {
	return string(l.By) + "=" + l.Value
}

// Validate checks that the strategy is known and the value non-empty.
func (l Locator) Validate() error {
	if !l.By.Valid() {
		return ErrInvalidLocator.WithMessage(fmt.Sprintf("unknown strategy %q", string(l.By)))
	}
	if l.Value == "" {
		return ErrInvalidLocator.WithMessage(fmt.Sprintf("empty value for strategy %q", string(l.By)))
	}
	return nil
}

// ParseLocator parses "strategy=value". The value may itself contain '='.
func ParseLocator(s string) (Locator, error) {
	by, value, ok := strings.Cut(s, "=")
	if !ok {
		return Locator{}, ErrInvalidLocator.WithMessage(fmt.Sprintf("locator %q is not in strategy=value form", s))
	}
	loc := Locator{By: By(strings.TrimSpace(by)), Value: value}
	if err := loc.Validate(); err != nil {
		return Locator{}, err
	}
	return loc, nil
}

// W3C rewrites strategies that the W3C WebDriver protocol dropped
// (id, name, class name) into the css selector forms Selenium sends.
func (l Locator) W3C() Locator {
	switch l.By {
	case ByID:
		return Locator{By: ByCSSSelector, Value: `[id="` + l.Value + `"]`}
	case ByName:
		return Locator{By: ByCSSSelector, Value: `[name="` + l.Value + `"]`}
	case ByClassName:
		return Locator{By: ByCSSSelector, Value: "." + l.Value}
	}
	return l
}

// Query reduces any strategy to either a css selector or an xpath expression.
func (l Locator) Query() Locator {
	switch l.By {
	case ByID, ByName, ByClassName:
		return l.W3C()
	case ByTagName:
		return Locator{By: ByCSSSelector, Value: l.Value}
	case ByLinkText:
		return Locator{By: ByXPath, Value: "//a[normalize-space(.)=" + XPathLiteral(l.Value) + "]"}
	case ByPartialLinkText:
		return Locator{By: ByXPath, Value: "//a[contains(., " + XPathLiteral(l.Value) + ")]"}
	}
	return l
}

// XPathLiteral quotes s as an XPath string literal.
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
