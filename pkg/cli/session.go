package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/selfheal/pkg/config"
	"github.com/devicelab-dev/selfheal/pkg/core"
	"github.com/devicelab-dev/selfheal/pkg/driver/cdp"
	"github.com/devicelab-dev/selfheal/pkg/driver/pw"
	"github.com/devicelab-dev/selfheal/pkg/driver/webdriver"
	"github.com/devicelab-dev/selfheal/pkg/healing"
	"github.com/devicelab-dev/selfheal/pkg/logger"
)

// loadConfig reads the config file and applies global flags on top.
// Flags only override values they were explicitly given (or got via env).
func loadConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, core.ErrInvalidConfig.WithCause(err)
	}

	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("browser") {
		cfg.Browser = c.String("browser")
	}
	if c.IsSet("webdriver-url") {
		cfg.WebDriverURL = c.String("webdriver-url")
	}
	if c.IsSet("headless") {
		cfg.Headless = c.Bool("headless")
	}
	if c.IsSet("install") {
		cfg.Install = c.Bool("install")
	}
	if c.IsSet("recover-all-errors") {
		cfg.Healing.RecoverAllErrors = c.Bool("recover-all-errors")
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, core.ErrInvalidConfig.WithCause(err)
	}
	return cfg, nil
}

// setup loads config and initializes the global logger.
func setup(c *cli.Context) (*config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, core.ErrInvalidConfig.WithCause(err)
	}
	return cfg, nil
}

// sessionOpener opens a backend session. Tests replace it.
var sessionOpener = openBackend

func openBackend(ctx context.Context, cfg *config.Config) (core.Session, error) {
	switch cfg.Backend {
	case config.BackendWebDriver:
		logger.Info("Connecting to WebDriver server: %s", cfg.WebDriverURL)
		d, err := webdriver.Open(cfg.WebDriverURL, cfg.Browser, cfg.Headless, cfg.ImplicitWait)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.BackendChromedp:
		logger.Info("Launching Chrome over DevTools")
		s, err := cdp.New(ctx, cdp.Options{Headless: cfg.Headless, Timeout: cfg.ImplicitWait})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendPlaywright:
		logger.Info("Launching %s with Playwright", cfg.Browser)
		s, err := pw.New(playwrightOptions(cfg))
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, core.ErrUnsupportedBackend.WithMessage(fmt.Sprintf("unsupported backend: %s", cfg.Backend))
}

func playwrightOptions(cfg *config.Config) pw.Options {
	return pw.Options{Browser: cfg.Browser, Headless: cfg.Headless, Install: cfg.Install}
}

// openHealing opens the configured backend wrapped in the healing driver.
// The returned cleanup quits the session.
func openHealing(c *cli.Context, cfg *config.Config, extra ...healing.Option) (*healing.Driver, func(), error) {
	session, err := sessionOpener(c.Context, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := append(healing.FromConfig(cfg.Healing), extra...)
	d := healing.New(session, opts...)
	cleanup := func() {
		if err := d.Quit(); err != nil {
			logger.Warn("Failed to quit session: %v", err)
		}
	}
	return d, cleanup, nil
}
