package healing

import (
	"strings"

	"github.com/devicelab-dev/selfheal/pkg/core"
)

// textUnsafe marks values that look like selectors rather than visible text.
const textUnsafe = "[]#."

// Candidates derives backup locators for loc, in the order they should be tried.
// The result depends only on loc; an empty value yields no candidates.
//
//   - css selector containing '#': (id, token after the last '#')
//   - css selector containing '.': (class name, token after the last '.')
//   - id: (css selector, "#v") then (xpath, "//*[@id='v']")
//   - any value with a space and none of "[]#.": (xpath, contains(text(), v))
func Candidates(loc core.Locator) []core.Locator {
	value := loc.Value
	if value == "" {
		return nil
	}

	var out []core.Locator

	switch loc.By {
	case core.ByCSSSelector:
		if strings.Contains(value, "#") {
			if id := lastToken(value, "#", "."); id != "" {
				out = append(out, core.NewLocator(core.ByID, id))
			}
		}
		if strings.Contains(value, ".") {
			// class tokens are only cut at whitespace, never at '#'
			if class := lastToken(value, ".", ""); class != "" {
				out = append(out, core.NewLocator(core.ByClassName, class))
			}
		}
	case core.ByID:
		out = append(out,
			core.NewLocator(core.ByCSSSelector, "#"+value),
			core.NewLocator(core.ByXPath, "//*[@id='"+value+"']"),
		)
	}

	if strings.Contains(value, " ") && !strings.ContainsAny(value, textUnsafe) {
		out = append(out, core.NewLocator(core.ByXPath, "//*[contains(text(), '"+value+"')]"))
	}

	return out
}

// lastToken returns the text after the last sep, cut at the first space and
// then, when other is set, at the first occurrence of other.
func lastToken(value, sep, other string) string {
	token := value[strings.LastIndex(value, sep)+len(sep):]
	token, _, _ = strings.Cut(token, " ")
	if other != "" {
		token, _, _ = strings.Cut(token, other)
	}
	return token
}
