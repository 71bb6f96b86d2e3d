package generator

import (
	"fmt"
	"io"
	"text/template"

	"github.com/devicelab-dev/selfheal/pkg/core"
)

var testFile = template.Must(template.New("test").Funcs(template.FuncMap{
	"locator": func(by core.By, value string) string {
		return fmt.Sprintf("core.NewLocator(%q, %q)", string(by), value)
	},
}).Parse(`// Code generated by selfheal generate. DO NOT EDIT.

package {{.Options.Package}}

import (
	"os"
	"testing"

	"github.com/devicelab-dev/selfheal/pkg/core"
	"github.com/devicelab-dev/selfheal/pkg/driver/webdriver"
	"github.com/devicelab-dev/selfheal/pkg/healing"
)

var _ core.Session = (*webdriver.Driver)(nil)

func openSession(t *testing.T) *healing.Driver {
	t.Helper()

	url := os.Getenv("SELFHEAL_WEBDRIVER_URL")
	if url == "" {
		t.Skip("SELFHEAL_WEBDRIVER_URL not set")
	}
	wd, err := webdriver.Open(url, "chrome", true, 0)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { wd.Quit() })

	d := healing.New(wd)
	if err := d.Navigate({{printf "%q" .Options.URL}}); err != nil {
		t.Fatalf("navigate: %v", err)
	}
{{- with .Options.Login}}
	login(t, d)
{{- end}}
	return d
}
{{with .Options.Login}}
func login(t *testing.T, d *healing.Driver) {
	t.Helper()

	steps := []struct {
		loc  core.Locator
		text string
	}{
		{ {{locator .UserField.By .UserField.Value}}, {{printf "%q" .Username}} },
		{ {{locator .PasswordField.By .PasswordField.Value}}, {{printf "%q" .Password}} },
	}
	for _, s := range steps {
		el, err := d.Find(s.loc)
		if err != nil {
			t.Fatalf("find %s: %v", s.loc, err)
		}
		if err := el.SendKeys(s.text); err != nil {
			t.Fatalf("type into %s: %v", s.loc, err)
		}
	}
	submit, err := d.Find({{locator .Submit.By .Submit.Value}})
	if err != nil {
		t.Fatalf("find submit: %v", err)
	}
	if err := submit.Click(); err != nil {
		t.Fatalf("click submit: %v", err)
	}
}
{{end}}
{{- range .Items}}
// Verify that {{printf "%q" .Name}} is displayed.
func TestItemVisibility_{{.Func}}(t *testing.T) {
	d := openSession(t)

	item, err := d.FindElement(core.ByXPath, {{printf "%q" .XPath}})
	if err != nil {
		t.Fatalf("find item: %v", err)
	}
	displayed, err := item.IsDisplayed()
	if err != nil {
		t.Fatalf("is displayed: %v", err)
	}
	if !displayed {
		t.Errorf("item %q is not displayed", {{printf "%q" .Name}})
	}
}
{{end}}
{{- if gt .Buttons 0}}
// Verify that at least one button exists.
func TestButtonsExist(t *testing.T) {
	d := openSession(t)

	buttons, err := d.FindElements({{printf "%q" .Options.Buttons.By}}, {{printf "%q" .Options.Buttons.Value}})
	if err != nil {
		t.Fatalf("find buttons: %v", err)
	}
	if len(buttons) == 0 {
		t.Error("expected at least one button")
	}
}
{{end -}}
`))

// Render writes the Go test file for page.
func Render(w io.Writer, page *Page) error {
	return testFile.Execute(w, page)
}
