// Package generator crawls a page through a session and writes a Go test
// file with one visibility check per discovered item.
package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/devicelab-dev/selfheal/pkg/core"
	"github.com/devicelab-dev/selfheal/pkg/logger"
	"go.uber.org/zap"
)

// Login describes an optional login form submitted before crawling.
type Login struct {
	Username string
	Password string

	UserField     core.Locator
	PasswordField core.Locator
	Submit        core.Locator
}

// Options configures a crawl.
type Options struct {
	URL   string
	Login *Login // nil skips login

	// Items are the elements that get a visibility test, named by their text.
	Items core.Locator
	// Buttons must match at least one element for the "exist" test.
	Buttons core.Locator

	// Settle is how long to wait after login before scanning.
	Settle time.Duration

	// Package is the package clause of the generated file.
	Package string
}

// DefaultOptions crawls the Sauce Labs demo store inventory.
func DefaultOptions() Options {
	return Options{
		URL: "https://www.saucedemo.com/",
		Login: &Login{
			Username:      "standard_user",
			Password:      "secret_sauce",
			UserField:     core.NewLocator(core.ByID, "user-name"),
			PasswordField: core.NewLocator(core.ByID, "password"),
			Submit:        core.NewLocator(core.ByID, "login-button"),
		},
		Items:   core.NewLocator(core.ByClassName, "inventory_item_name"),
		Buttons: core.NewLocator(core.ByXPath, "//button[contains(text(), 'Add to cart')]"),
		Settle:  2 * time.Second,
		Package: "generated_test",
	}
}

// Item is one discovered element.
type Item struct {
	Name  string // visible text
	Func  string // test function suffix
	XPath string // xpath re-locating the item by its text
}

// Page is the result of a crawl.
type Page struct {
	Options Options
	Items   []Item
	Buttons int
}

// Crawl logs in if configured and collects items and buttons from the page.
func Crawl(s core.Session, opts Options) (*Page, error) {
	log := logger.Named("generator")

	log.Info("navigating", zap.String("url", opts.URL))
	if err := s.Navigate(opts.URL); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", opts.URL, err)
	}

	if opts.Login != nil {
		if err := login(s, opts.Login); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
		log.Info("login submitted")
		if opts.Settle > 0 {
			time.Sleep(opts.Settle)
		}
	}

	buttons, err := s.FindElements(opts.Buttons.By, opts.Buttons.Value)
	if err != nil {
		return nil, fmt.Errorf("scan buttons: %w", err)
	}
	links, err := s.FindElements(opts.Items.By, opts.Items.Value)
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	log.Info("page scanned", zap.Int("buttons", len(buttons)), zap.Int("items", len(links)))

	page := &Page{Options: opts, Buttons: len(buttons)}
	for i, el := range links {
		text, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("read item %d: %w", i, err)
		}
		page.Items = append(page.Items, Item{
			Name:  text,
			Func:  SanitizeName(text, i),
			XPath: "//div[text()=" + core.XPathLiteral(text) + "]",
		})
	}
	return page, nil
}

func login(s core.Session, l *Login) error {
	fields := []struct {
		loc  core.Locator
		text string
	}{
		{l.UserField, l.Username},
		{l.PasswordField, l.Password},
	}
	for _, f := range fields {
		el, err := s.FindElement(f.loc.By, f.loc.Value)
		if err != nil {
			return err
		}
		if err := el.SendKeys(f.text); err != nil {
			return fmt.Errorf("type into %s: %w", f.loc, err)
		}
	}

	submit, err := s.FindElement(l.Submit.By, l.Submit.Value)
	if err != nil {
		return err
	}
	return submit.Click()
}

// SanitizeName keeps letters, digits and '_' from name, lower-cases them,
// and appends "_<index>" so names stay unique.
func SanitizeName(name string, index int) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return fmt.Sprintf("%s_%d", b.String(), index)
}

// WriteFile renders page and replaces path with the result. The file is
// written through a temp file and rename, so a failed render leaves any
// previous file untouched.
func WriteFile(path string, page *Page) error {
	var buf bytes.Buffer
	if err := Render(&buf, page); err != nil {
		return fmt.Errorf("render test file: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".generated-*.go.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
