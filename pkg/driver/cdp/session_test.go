package cdp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devicelab-dev/selfheal/pkg/core"
)

func TestQuery(t *testing.T) {
	tests := []struct {
		loc   core.Locator
		sel   string
		xpath bool
	}{
		{core.NewLocator(core.ByCSSSelector, "div.item > a"), "div.item > a", false},
		{core.NewLocator(core.ByID, "login"), `[id="login"]`, false},
		{core.NewLocator(core.ByName, "user"), `[name="user"]`, false},
		{core.NewLocator(core.ByClassName, "btn"), ".btn", false},
		{core.NewLocator(core.ByTagName, "button"), "button", false},
		{core.NewLocator(core.ByXPath, "//*[@id='x']"), "//*[@id='x']", true},
		{core.NewLocator(core.ByLinkText, "Sign in"), "//a[normalize-space(.)='Sign in']", true},
		{core.NewLocator(core.ByPartialLinkText, "Sign"), "//a[contains(., 'Sign')]", true},
	}

	for _, tt := range tests {
		t.Run(tt.loc.String(), func(t *testing.T) {
			sel, xpath := query(tt.loc)
			assert.Equal(t, tt.sel, sel)
			assert.Equal(t, tt.xpath, xpath)
		})
	}
}
