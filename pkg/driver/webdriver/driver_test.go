package webdriver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devicelab-dev/selfheal/pkg/core"
	"github.com/devicelab-dev/selfheal/pkg/healing"
)

// fakeRemote is a minimal W3C remote end serving a static page.
type fakeRemote struct {
	mu       sync.Mutex
	elements map[string][]string // "using|value" -> element IDs
	texts    map[string]string   // element ID -> text
	lookups  []string
	url      string
	implicit float64
	deleted  bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		elements: make(map[string][]string),
		texts:    make(map[string]string),
		url:      "about:blank",
	}
}

func (f *fakeRemote) add(using, value, id, text string) {
	key := using + "|" + value
	f.elements[key] = append(f.elements[key], id)
	f.texts[id] = text
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/session" && r.Method == "POST":
		writeJSON(w, map[string]interface{}{
			"value": map[string]interface{}{
				"sessionId":    "s1",
				"capabilities": map[string]interface{}{"browserName": "chrome"},
			},
		})
	case path == "/session/s1" && r.Method == "DELETE":
		f.deleted = true
		writeJSON(w, map[string]interface{}{"value": nil})
	case path == "/session/s1/timeouts":
		f.implicit, _ = readBodyNoT(r)["implicit"].(float64)
		writeJSON(w, map[string]interface{}{"value": nil})
	case path == "/session/s1/window/maximize":
		writeJSON(w, map[string]interface{}{"value": nil})
	case path == "/session/s1/url" && r.Method == "POST":
		f.url, _ = readBodyNoT(r)["url"].(string)
		writeJSON(w, map[string]interface{}{"value": nil})
	case path == "/session/s1/url":
		writeJSON(w, map[string]interface{}{"value": f.url})
	case path == "/session/s1/title":
		writeJSON(w, map[string]interface{}{"value": "Swag Labs"})
	case path == "/session/s1/element" || path == "/session/s1/elements":
		body := readBodyNoT(r)
		key := fmt.Sprintf("%v|%v", body["using"], body["value"])
		f.lookups = append(f.lookups, key)
		ids := f.elements[key]
		if path == "/session/s1/elements" {
			refs := []interface{}{}
			for _, id := range ids {
				refs = append(refs, map[string]interface{}{w3cElementKey: id})
			}
			writeJSON(w, map[string]interface{}{"value": refs})
			return
		}
		if len(ids) == 0 {
			writeError(w, http.StatusNotFound, "no such element", "Unable to locate element: "+key)
			return
		}
		writeJSON(w, map[string]interface{}{"value": map[string]interface{}{w3cElementKey: ids[0]}})
	case strings.HasPrefix(path, "/session/s1/element/") && strings.HasSuffix(path, "/text"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/session/s1/element/"), "/text")
		writeJSON(w, map[string]interface{}{"value": f.texts[id]})
	default:
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]interface{}{"value": map[string]interface{}{"error": "unknown command", "message": path}})
	}
}

func readBodyNoT(r *http.Request) map[string]interface{} {
	var body map[string]interface{}
	_ = jsonDecode(r, &body)
	return body
}

func openFake(t *testing.T, f *fakeRemote) *Driver {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	d, err := Open(server.URL, "chrome", true, 5*time.Second)
	require.NoError(t, err)
	return d
}

func TestOpen(t *testing.T) {
	f := newFakeRemote()
	d := openFake(t, f)

	assert.Equal(t, "s1", d.Client().SessionID())
	assert.Equal(t, float64(5000), f.implicit)

	require.NoError(t, d.Quit())
	assert.True(t, f.deleted)
}

func TestOpen_UnsupportedBrowser(t *testing.T) {
	_, err := Open("http://127.0.0.1:1", "safari", true, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported browser")
}

func TestDriver_FindElementRewritesLegacyStrategies(t *testing.T) {
	f := newFakeRemote()
	f.add("css selector", `[id="user-name"]`, "e1", "")
	f.add("css selector", `[name="password"]`, "e2", "")
	f.add("css selector", ".inventory_item", "e3", "Backpack")
	f.add("xpath", "//button", "e4", "Login")
	d := openFake(t, f)

	tests := []struct {
		by    core.By
		value string
		want  string
	}{
		{core.ByID, "user-name", "e1"},
		{core.ByName, "password", "e2"},
		{core.ByClassName, "inventory_item", "e3"},
		{core.ByXPath, "//button", "e4"},
	}
	for _, tt := range tests {
		el, err := d.FindElement(tt.by, tt.value)
		require.NoError(t, err, "%s=%s", tt.by, tt.value)
		assert.Equal(t, tt.want, el.ID())
	}
}

func TestDriver_FindElementNotFound(t *testing.T) {
	d := openFake(t, newFakeRemote())

	_, err := d.FindElement(core.ByCSSSelector, "#missing")
	assert.ErrorIs(t, err, core.ErrElementNotFound)

	els, err := d.FindElements(core.ByCSSSelector, "#missing")
	require.NoError(t, err)
	assert.NotNil(t, els)
	assert.Empty(t, els)
}

func TestDriver_PageOperations(t *testing.T) {
	d := openFake(t, newFakeRemote())

	require.NoError(t, d.Navigate("https://www.saucedemo.com"))
	url, err := d.CurrentURL()
	require.NoError(t, err)
	assert.Equal(t, "https://www.saucedemo.com", url)

	title, err := d.Title()
	require.NoError(t, err)
	assert.Equal(t, "Swag Labs", title)
}

func TestDriver_HealsAgainstRemote(t *testing.T) {
	f := newFakeRemote()
	// The page renamed the button's class but kept its id
	f.add("css selector", `[id="login-button"]`, "btn", "Login")
	d := openFake(t, f)

	hd := healing.New(d, healing.WithLogger(zap.NewNop()))
	el, err := hd.FindElement(core.ByCSSSelector, "input#login-button.submit-btn")
	require.NoError(t, err)
	assert.Equal(t, "btn", el.ID())

	text, err := el.Text()
	require.NoError(t, err)
	assert.Equal(t, "Login", text)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []string{
		"css selector|input#login-button.submit-btn",
		`css selector|[id="login-button"]`,
	}, f.lookups)
}

func TestDriver_HealingExhaustedAgainstRemote(t *testing.T) {
	d := openFake(t, newFakeRemote())

	hd := healing.New(d, healing.WithLogger(zap.NewNop()))
	_, err := hd.FindElement(core.ByID, "gone")
	assert.ErrorIs(t, err, core.ErrHealingExhausted)
	assert.ErrorIs(t, err, core.ErrElementNotFound)
}
