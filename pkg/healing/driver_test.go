package healing

import (
	"errors"
	"testing"

	"github.com/devicelab-dev/selfheal/pkg/config"
	"github.com/devicelab-dev/selfheal/pkg/core"
	"github.com/devicelab-dev/selfheal/pkg/driver/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newDriver wraps a mock session with an observed logger.
func newDriver(t *testing.T, session core.Session, opts ...Option) (*Driver, *observer.ObservedLogs) {
	t.Helper()
	obsCore, logs := observer.New(zapcore.DebugLevel)
	opts = append([]Option{WithLogger(zap.New(obsCore))}, opts...)
	return New(session, opts...), logs
}

func lookups(m *mock.Driver) []core.Locator {
	var out []core.Locator
	for _, c := range m.Calls() {
		out = append(out, c.Locator)
	}
	return out
}

func TestFindElement_PrimarySuccess(t *testing.T) {
	btn := mock.NewElement("login-button", "Login")
	m := mock.New(mock.Config{}).Add(loc(core.ByCSSSelector, "#login-button"), btn)
	d, logs := newDriver(t, m)

	el, err := d.FindElement(core.ByCSSSelector, "#login-button")
	require.NoError(t, err)
	assert.Same(t, btn, el)

	assert.Len(t, m.Calls(), 1, "no candidate should be attempted")
	assert.Zero(t, logs.Len(), "no healing log lines on the success path")
}

func TestFindElement_HealsBrokenCSSToID(t *testing.T) {
	btn := mock.NewElement("login-button", "Login")
	m := mock.New(mock.Config{}).Add(loc(core.ByID, "login-button"), btn)
	d, logs := newDriver(t, m)

	el, err := d.Find(loc(core.ByCSSSelector, "div.wrong_container > #login-button"))
	require.NoError(t, err)

	id, err := el.Attribute("id")
	require.NoError(t, err)
	assert.Equal(t, "login-button", id)

	// primary, then first candidate; the class candidate is never tried
	assert.Equal(t, []core.Locator{
		loc(core.ByCSSSelector, "div.wrong_container > #login-button"),
		loc(core.ByID, "login-button"),
	}, lookups(m))

	assert.Equal(t, 1, logs.FilterMessage("locator failed, attempting self-healing").Len())
	assert.Equal(t, 1, logs.FilterMessage("trying backup strategy").Len())
	assert.Equal(t, 1, logs.FilterMessage("self-healing successful").Len())
	assert.Zero(t, logs.FilterMessage("self-healing failed").Len())
}

func TestFindElement_StopsAtNthCandidate(t *testing.T) {
	el := mock.NewElement("checkout", "Checkout")
	m := mock.New(mock.Config{}).Add(loc(core.ByXPath, "//*[@id='checkout']"), el)
	d, _ := newDriver(t, m)

	got, err := d.FindElement(core.ByID, "checkout")
	require.NoError(t, err)
	assert.Same(t, el, got)

	assert.Equal(t, []core.Locator{
		loc(core.ByID, "checkout"),
		loc(core.ByCSSSelector, "#checkout"),
		loc(core.ByXPath, "//*[@id='checkout']"),
	}, lookups(m))
}

func TestFindElement_Exhausted(t *testing.T) {
	m := mock.New(mock.Config{})
	d, logs := newDriver(t, m)

	_, err := d.FindElement(core.ByID, "ghost")
	require.Error(t, err)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, loc(core.ByID, "ghost"), exhausted.Locator)
	assert.Equal(t, []core.Locator{
		loc(core.ByCSSSelector, "#ghost"),
		loc(core.ByXPath, "//*[@id='ghost']"),
	}, exhausted.Tried)

	assert.ErrorIs(t, err, core.ErrHealingExhausted)
	assert.ErrorIs(t, err, core.ErrElementNotFound)
	assert.Contains(t, err.Error(), "id=ghost")

	assert.Len(t, m.Calls(), 3)
	assert.Equal(t, 2, logs.FilterMessage("trying backup strategy").Len())
	assert.Equal(t, 2, logs.FilterMessage("backup strategy failed").Len())

	failed := logs.FilterMessage("self-healing failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
}

func TestFindElement_NoCandidates(t *testing.T) {
	m := mock.New(mock.Config{})
	d, logs := newDriver(t, m)

	_, err := d.FindElement(core.ByClassName, "btn_primary")
	assert.ErrorIs(t, err, core.ErrHealingExhausted)
	assert.Len(t, m.Calls(), 1)
	assert.Equal(t, 1, logs.FilterMessage("self-healing failed").Len())
}

func TestFindElement_PrimaryNonNotFoundErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	m := mock.New(mock.Config{}).FailWith(loc(core.ByID, "login-button"), boom)
	d, logs := newDriver(t, m)

	_, err := d.FindElement(core.ByID, "login-button")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, core.ErrHealingExhausted)
	assert.Len(t, m.Calls(), 1)
	assert.Zero(t, logs.Len())
}

func TestFindElement_CandidateErrorAbortsByDefault(t *testing.T) {
	badXPath := core.ErrInvalidSelector.WithMessage("invalid xpath")
	target := mock.NewElement("x", "")
	m := mock.New(mock.Config{}).
		FailWith(loc(core.ByCSSSelector, "#a b"), badXPath).
		Add(loc(core.ByXPath, "//*[@id='a b']"), target)
	d, logs := newDriver(t, m)

	_, err := d.FindElement(core.ByID, "a b")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidSelector)
	assert.NotErrorIs(t, err, core.ErrHealingExhausted)
	assert.Len(t, m.Calls(), 2, "healing stops at the unexpected error")
	assert.Equal(t, 1, logs.FilterMessage("backup strategy errored, healing aborted").Len())
}

func TestFindElement_RecoverAllErrorsContinues(t *testing.T) {
	badXPath := core.ErrInvalidSelector.WithMessage("invalid xpath")
	target := mock.NewElement("x", "")
	m := mock.New(mock.Config{}).
		FailWith(loc(core.ByCSSSelector, "#a b"), badXPath).
		Add(loc(core.ByXPath, "//*[@id='a b']"), target)
	d, logs := newDriver(t, m, WithRecoverAllErrors(true))

	el, err := d.FindElement(core.ByID, "a b")
	require.NoError(t, err)
	assert.Same(t, target, el)
	assert.Equal(t, 1, logs.FilterMessage("backup strategy errored, continuing").Len())
}

func TestFindElement_InvalidLocator(t *testing.T) {
	m := mock.New(mock.Config{})
	d, _ := newDriver(t, m)

	_, err := d.FindElement(core.ByID, "")
	assert.ErrorIs(t, err, core.ErrInvalidLocator)
	assert.Empty(t, m.Calls())
}

func TestFindElement_Idempotent(t *testing.T) {
	btn := mock.NewElement("login-button", "Login")
	m := mock.New(mock.Config{}).Add(loc(core.ByID, "login-button"), btn)
	d, _ := newDriver(t, m)

	broken := loc(core.ByCSSSelector, "div.wrong_container > #login-button")
	first, err1 := d.Find(broken)
	second, err2 := d.Find(broken)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Same(t, first, second)

	_, err1 = d.Find(loc(core.ByID, "ghost"))
	_, err2 = d.Find(loc(core.ByID, "ghost"))
	assert.ErrorIs(t, err1, core.ErrHealingExhausted)
	assert.ErrorIs(t, err2, core.ErrHealingExhausted)
}

func TestFindElements_PrimaryResult(t *testing.T) {
	items := loc(core.ByClassName, "inventory_item_name")
	m := mock.New(mock.Config{}).Add(items, mock.NewElement("a", "Backpack"), mock.NewElement("b", "Onesie"))
	d, logs := newDriver(t, m)

	els, err := d.FindAll(items)
	require.NoError(t, err)
	assert.Len(t, els, 2)
	assert.Len(t, m.Calls(), 1)
	assert.Zero(t, logs.Len())
}

func TestFindElements_HealsEmptyResult(t *testing.T) {
	buttons := []*mock.Element{mock.NewElement("b1", "Add to cart"), mock.NewElement("b2", "Add to cart")}
	m := mock.New(mock.Config{}).Add(loc(core.ByXPath, "//*[contains(text(), 'Add to cart')]"), buttons...)
	d, logs := newDriver(t, m)

	els, err := d.FindElements(core.ByLinkText, "Add to cart")
	require.NoError(t, err)
	require.Len(t, els, 2)
	assert.Same(t, buttons[0], els[0])
	assert.Equal(t, 1, logs.FilterMessage("self-healing successful").Len())
	for _, c := range m.Calls() {
		assert.True(t, c.Plural)
	}
}

func TestFindElements_HealsNotFoundError(t *testing.T) {
	cart := mock.NewElement("cart", "")
	m := mock.New(mock.Config{}).
		FailWith(loc(core.ByID, "cart"), core.ErrElementNotFound.WithMessage("no such element: id=cart")).
		Add(loc(core.ByCSSSelector, "#cart"), cart)
	d, logs := newDriver(t, m)

	els, err := d.FindElements(core.ByID, "cart")
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Same(t, cart, els[0])
	assert.Equal(t, []mock.Call{
		{Locator: loc(core.ByID, "cart"), Plural: true},
		{Locator: loc(core.ByCSSSelector, "#cart"), Plural: true},
	}, m.Calls())
	assert.Equal(t, 1, logs.FilterMessage("self-healing successful").Len())
}

func TestFindElements_ExhaustedIsEmptyNotError(t *testing.T) {
	m := mock.New(mock.Config{})
	d, logs := newDriver(t, m)

	els, err := d.FindElements(core.ByID, "ghost")
	require.NoError(t, err)
	assert.NotNil(t, els)
	assert.Empty(t, els)
	assert.Len(t, m.Calls(), 3)
	assert.Equal(t, 1, logs.FilterMessage("self-healing found no elements").Len())
}

func TestFindElements_PluralHealingDisabled(t *testing.T) {
	m := mock.New(mock.Config{}).Add(loc(core.ByCSSSelector, "#ghost"), mock.NewElement("ghost", ""))
	d, logs := newDriver(t, m, WithPluralHealing(false))

	els, err := d.FindElements(core.ByID, "ghost")
	require.NoError(t, err)
	assert.Empty(t, els)
	assert.Len(t, m.Calls(), 1)
	assert.Zero(t, logs.Len())
}

func TestFindElements_CandidateErrorAborts(t *testing.T) {
	boom := errors.New("socket closed")
	m := mock.New(mock.Config{}).FailWith(loc(core.ByCSSSelector, "#ghost"), boom)
	d, _ := newDriver(t, m)

	_, err := d.FindElements(core.ByID, "ghost")
	assert.ErrorIs(t, err, boom)
}

func TestDriver_DelegatesSessionOperations(t *testing.T) {
	m := mock.New(mock.Config{Title: "Swag Labs"})
	d, _ := newDriver(t, m)

	require.NoError(t, d.Navigate("https://www.saucedemo.com/inventory.html"))
	url, err := d.CurrentURL()
	require.NoError(t, err)
	assert.Contains(t, url, "inventory.html")

	title, err := d.Title()
	require.NoError(t, err)
	assert.Equal(t, "Swag Labs", title)

	require.NoError(t, d.Quit())
	assert.True(t, m.Quitted())
	assert.Same(t, m, d.Unwrap())
}

func TestFromConfig(t *testing.T) {
	d := New(mock.New(mock.Config{}), FromConfig(config.HealingConfig{RecoverAllErrors: true, HealPlural: false})...)

	assert.True(t, d.Options().RecoverAllErrors)
	assert.False(t, d.Options().HealPlural)
	assert.True(t, New(mock.New(mock.Config{})).Options().HealPlural)
}
