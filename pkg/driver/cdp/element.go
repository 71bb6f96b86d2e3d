package cdp

import (
	"context"
	"strconv"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
)

// Element is a DOM node in the session's tab.
type Element struct {
	s    *Session
	node *cdp.Node
}

func (e *Element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

// ID returns the backend node id, stable for the node's lifetime.
func (e *Element) ID() string {
	return strconv.FormatInt(int64(e.node.BackendNodeID), 10)
}

// Node returns the underlying DOM node.
func (e *Element) Node() *cdp.Node {
	return e.node
}

func (e *Element) Text() (string, error) {
	var text string
	err := e.s.run(chromedp.Text(e.ids(), &text, chromedp.ByNodeID))
	return text, err
}

func (e *Element) Attribute(name string) (string, error) {
	var (
		value string
		ok    bool
	)
	err := e.s.run(chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID))
	return value, err
}

// IsDisplayed reports whether the node has a layout box.
func (e *Element) IsDisplayed() (bool, error) {
	visible := false
	err := e.s.run(chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := dom.GetBoxModel().WithNodeID(e.node.NodeID).Do(ctx)
		visible = err == nil
		return nil
	}))
	return visible, err
}

func (e *Element) Click() error {
	return e.s.run(chromedp.Click(e.ids(), chromedp.ByNodeID))
}

func (e *Element) SendKeys(text string) error {
	return e.s.run(chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID))
}

func (e *Element) Clear() error {
	return e.s.run(chromedp.Clear(e.ids(), chromedp.ByNodeID))
}
