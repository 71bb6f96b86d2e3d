package webdriver

import (
	"fmt"
)

// Capabilities returns W3C capabilities for chrome, firefox or edge.
func Capabilities(browser string, headless bool) (map[string]interface{}, error) {
	switch browser {
	case "chrome", "":
		return map[string]interface{}{
			"browserName":        "chrome",
			"goog:chromeOptions": map[string]interface{}{"args": chromiumArgs(headless)},
		}, nil
	case "edge":
		return map[string]interface{}{
			"browserName":    "MicrosoftEdge",
			"ms:edgeOptions": map[string]interface{}{"args": chromiumArgs(headless)},
		}, nil
	case "firefox":
		args := []string{}
		if headless {
			args = append(args, "-headless")
		}
		return map[string]interface{}{
			"browserName":        "firefox",
			"moz:firefoxOptions": map[string]interface{}{"args": args},
		}, nil
	}
	return nil, fmt.Errorf("unsupported browser: %s", browser)
}

func chromiumArgs(headless bool) []string {
	args := []string{
		"--disable-dev-shm-usage",
		"--disable-blink-features=AutomationControlled",
	}
	if headless {
		args = append(args, "--headless=new", "--disable-gpu", "--window-size=1920,1080")
	}
	return args
}
