// Package config handles configuration for selfheal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Backends
const (
	BackendWebDriver  = "webdriver"
	BackendChromedp   = "chromedp"
	BackendPlaywright = "playwright"
)

// Config represents the workspace configuration (selfheal.yaml).
type Config struct {
	// Browser session
	Backend      string        `yaml:"backend"`      // webdriver, chromedp, playwright
	Browser      string        `yaml:"browser"`      // chrome, firefox, edge; webkit with playwright
	Headless     bool          `yaml:"headless"`     // Run without a visible window
	WebDriverURL string        `yaml:"webdriverURL"` // Remote end for the webdriver backend
	ImplicitWait time.Duration `yaml:"implicitWait"` // Per-lookup wait owned by the backend
	Install      bool          `yaml:"install"`      // Download Playwright driver and browser before launch

	Healing HealingConfig `yaml:"healing"`
	Log     LogConfig     `yaml:"log"`
}

// HealingConfig controls the self-healing driver.
type HealingConfig struct {
	// RecoverAllErrors keeps trying candidates when a lookup fails with
	// something other than "element not found".
	RecoverAllErrors bool `yaml:"recoverAllErrors"`
	// HealPlural applies healing to FindElements when the primary lookup is empty.
	HealPlural bool `yaml:"healPlural"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // console, json
	File       string `yaml:"file"`   // Optional JSON log file, rotated by size
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Backend:      BackendWebDriver,
		Browser:      "chrome",
		Headless:     true,
		WebDriverURL: "http://127.0.0.1:4444",
		Healing: HealingConfig{
			HealPlural: true,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load loads configuration from a file. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir looks for selfheal.yaml or selfheal.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try selfheal.yaml first
	configPath := filepath.Join(dir, "selfheal.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try selfheal.yml
	configPath = filepath.Join(dir, "selfheal.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return defaults
	return Default(), nil
}

// Validate checks backend and browser names.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendWebDriver, BackendChromedp, BackendPlaywright:
	default:
		return fmt.Errorf("unsupported backend %q (webdriver, chromedp, playwright)", c.Backend)
	}

	switch c.Browser {
	case "chrome", "firefox", "edge":
	case "webkit":
		if c.Backend != BackendPlaywright {
			return fmt.Errorf("browser webkit requires the playwright backend")
		}
	default:
		return fmt.Errorf("unsupported browser %q (chrome, firefox, edge, webkit)", c.Browser)
	}

	if c.Backend == BackendChromedp && c.Browser != "chrome" && c.Browser != "edge" {
		return fmt.Errorf("backend chromedp requires a Chromium browser, got %q", c.Browser)
	}
	if c.Backend == BackendWebDriver && c.WebDriverURL == "" {
		return fmt.Errorf("webdriverURL is required for the webdriver backend")
	}
	if c.ImplicitWait < 0 {
		return fmt.Errorf("implicitWait must not be negative")
	}
	return nil
}
