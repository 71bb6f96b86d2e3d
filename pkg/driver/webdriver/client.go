// Package webdriver implements core.Session over the W3C WebDriver protocol
// (chromedriver, geckodriver, msedgedriver, Selenium Grid).
package webdriver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devicelab-dev/selfheal/pkg/core"
)

// W3C WebDriver element identifier key (standard constant)
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// Client handles HTTP communication with a WebDriver remote end.
type Client struct {
	serverURL string
	sessionID string
	client    *http.Client
	browser   string
}

// NewClient creates a new WebDriver client.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		client: &http.Client{
			Timeout: 2 * time.Minute, // Browser start-up can be slow
		},
	}
}

// Connect creates a new session with the given capabilities.
func (c *Client) Connect(capabilities map[string]interface{}) error {
	body := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": capabilities,
		},
	}

	resp, err := c.post("/session", body)
	if err != nil {
		return core.ErrSessionNotCreated.WithCause(err)
	}

	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return core.ErrSessionNotCreated.WithMessage("invalid session response")
	}

	c.sessionID, _ = value["sessionId"].(string)
	if c.sessionID == "" {
		return core.ErrSessionNotCreated.WithMessage("no session ID in response")
	}

	if caps, ok := value["capabilities"].(map[string]interface{}); ok {
		if name, ok := caps["browserName"].(string); ok {
			c.browser = strings.ToLower(name)
		}
	}

	return nil
}

// Disconnect closes the session.
func (c *Client) Disconnect() error {
	if c.sessionID == "" {
		return nil
	}
	_, err := c.delete(c.sessionPath())
	c.sessionID = ""
	return err
}

// SessionID returns the current session ID, empty when disconnected.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Browser returns the browser name reported by the remote end.
func (c *Client) Browser() string {
	return c.browser
}

// Element Operations

// FindElement finds a single element and returns its ID.
func (c *Client) FindElement(strategy, value string) (string, error) {
	body := map[string]interface{}{
		"using": strategy,
		"value": value,
	}

	resp, err := c.post(c.sessionPath()+"/element", body)
	if err != nil {
		return "", err
	}

	elemValue, ok := resp["value"].(map[string]interface{})
	if !ok {
		return "", core.ErrElementNotFound
	}

	id := extractElementID(elemValue)
	if id == "" {
		return "", core.ErrElementNotFound
	}
	return id, nil
}

// FindElements finds multiple elements and returns their IDs.
func (c *Client) FindElements(strategy, value string) ([]string, error) {
	body := map[string]interface{}{
		"using": strategy,
		"value": value,
	}

	resp, err := c.post(c.sessionPath()+"/elements", body)
	if err != nil {
		return nil, err
	}

	values, ok := resp["value"].([]interface{})
	if !ok {
		return nil, nil
	}

	var ids []string
	for _, v := range values {
		if elem, ok := v.(map[string]interface{}); ok {
			if id := extractElementID(elem); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// ClickElement clicks an element.
func (c *Client) ClickElement(elementID string) error {
	_, err := c.post(c.elementPath(elementID)+"/click", map[string]interface{}{})
	return err
}

// ClearElement clears an element's text.
func (c *Client) ClearElement(elementID string) error {
	_, err := c.post(c.elementPath(elementID)+"/clear", map[string]interface{}{})
	return err
}

// SendKeysToElement types text into an element.
func (c *Client) SendKeysToElement(elementID, text string) error {
	_, err := c.post(c.elementPath(elementID)+"/value", map[string]interface{}{
		"text": text,
	})
	return err
}

// GetElementText returns an element's text.
func (c *Client) GetElementText(elementID string) (string, error) {
	resp, err := c.get(c.elementPath(elementID) + "/text")
	if err != nil {
		return "", err
	}
	text, _ := resp["value"].(string)
	return text, nil
}

// GetElementAttribute returns an element's attribute value.
func (c *Client) GetElementAttribute(elementID, name string) (string, error) {
	resp, err := c.get(c.elementPath(elementID) + "/attribute/" + name)
	if err != nil {
		return "", err
	}
	value, _ := resp["value"].(string)
	return value, nil
}

// IsElementDisplayed checks if element is visible.
func (c *Client) IsElementDisplayed(elementID string) (bool, error) {
	resp, err := c.get(c.elementPath(elementID) + "/displayed")
	if err != nil {
		return false, err
	}
	displayed, _ := resp["value"].(bool)
	return displayed, nil
}

// Navigation

// Navigate loads a URL.
func (c *Client) Navigate(url string) error {
	_, err := c.post(c.sessionPath()+"/url", map[string]interface{}{
		"url": url,
	})
	return err
}

// GetURL returns the current page URL.
func (c *Client) GetURL() (string, error) {
	resp, err := c.get(c.sessionPath() + "/url")
	if err != nil {
		return "", err
	}
	url, _ := resp["value"].(string)
	return url, nil
}

// GetTitle returns the current page title.
func (c *Client) GetTitle() (string, error) {
	resp, err := c.get(c.sessionPath() + "/title")
	if err != nil {
		return "", err
	}
	title, _ := resp["value"].(string)
	return title, nil
}

// Screen Operations

// Screenshot returns a screenshot as PNG bytes.
func (c *Client) Screenshot() ([]byte, error) {
	resp, err := c.get(c.sessionPath() + "/screenshot")
	if err != nil {
		return nil, err
	}
	encoded, ok := resp["value"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid screenshot response")
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// MaximizeWindow maximizes the browser window.
func (c *Client) MaximizeWindow() error {
	_, err := c.post(c.sessionPath()+"/window/maximize", map[string]interface{}{})
	return err
}

// Timeouts

// SetImplicitWait sets the implicit wait timeout used by element lookups.
func (c *Client) SetImplicitWait(timeout time.Duration) error {
	_, err := c.post(c.sessionPath()+"/timeouts", map[string]interface{}{
		"implicit": timeout.Milliseconds(),
	})
	return err
}

// HTTP Helpers

func (c *Client) sessionPath() string {
	return "/session/" + c.sessionID
}

func (c *Client) elementPath(elementID string) string {
	return c.sessionPath() + "/element/" + elementID
}

func (c *Client) get(path string) (map[string]interface{}, error) {
	return c.request("GET", path, nil)
}

func (c *Client) post(path string, body interface{}) (map[string]interface{}, error) {
	return c.request("POST", path, body)
}

func (c *Client) delete(path string) (map[string]interface{}, error) {
	return c.request("DELETE", path, nil)
}

func (c *Client) request(method, path string, body interface{}) (map[string]interface{}, error) {
	url := c.serverURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.ErrServerUnreachable.WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}

	// Check for WebDriver error
	if errValue, ok := result["value"].(map[string]interface{}); ok {
		if errType, ok := errValue["error"].(string); ok {
			errMsg, _ := errValue["message"].(string)
			return result, mapError(errType, errMsg)
		}
	}

	return result, nil
}

// mapError converts a W3C error code into the matching core error.
func mapError(errType, errMsg string) error {
	msg := errType
	if errMsg != "" {
		msg = errType + ": " + errMsg
	}

	var base *core.ExecutionError
	switch errType {
	case "no such element":
		base = core.ErrElementNotFound
	case "stale element reference":
		base = core.ErrStaleElement
	case "invalid selector":
		base = core.ErrInvalidSelector
	case "timeout", "script timeout":
		base = core.ErrTimeout
	case "session not created", "invalid session id":
		base = core.ErrSessionNotCreated
	default:
		base = core.NewExecutionError(core.ErrCategoryNone, strings.ReplaceAll(errType, " ", "_"), errType)
	}
	return base.WithMessage(msg).WithDetails(map[string]interface{}{"webdriverError": errType})
}

func extractElementID(value map[string]interface{}) string {
	// W3C format
	if id, ok := value[w3cElementKey].(string); ok {
		return id
	}
	// Legacy format
	if id, ok := value["ELEMENT"].(string); ok {
		return id
	}
	return ""
}
