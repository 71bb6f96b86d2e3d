package webdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilities(t *testing.T) {
	caps, err := Capabilities("chrome", true)
	require.NoError(t, err)
	assert.Equal(t, "chrome", caps["browserName"])
	opts := caps["goog:chromeOptions"].(map[string]interface{})
	assert.Contains(t, opts["args"], "--headless=new")

	caps, err = Capabilities("chrome", false)
	require.NoError(t, err)
	opts = caps["goog:chromeOptions"].(map[string]interface{})
	assert.NotContains(t, opts["args"], "--headless=new")

	caps, err = Capabilities("edge", true)
	require.NoError(t, err)
	assert.Equal(t, "MicrosoftEdge", caps["browserName"])
	assert.Contains(t, caps, "ms:edgeOptions")

	caps, err = Capabilities("firefox", true)
	require.NoError(t, err)
	opts = caps["moz:firefoxOptions"].(map[string]interface{})
	assert.Equal(t, []string{"-headless"}, opts["args"])
}

func TestCapabilities_Unsupported(t *testing.T) {
	_, err := Capabilities("safari", false)
	assert.Error(t, err)
}
