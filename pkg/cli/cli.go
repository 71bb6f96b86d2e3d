// Package cli provides the command-line interface for selfheal.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/selfheal/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// globalFlags returns the flags available to all commands. Flags carry
// parse state, so every app gets its own set.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default: selfheal.yaml in the working directory)",
			EnvVars: []string{"SELFHEAL_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Browser backend (webdriver, chromedp, playwright)",
			EnvVars: []string{"SELFHEAL_BACKEND"},
		},
		&cli.StringFlag{
			Name:    "browser",
			Usage:   "Browser to launch (chrome, firefox, edge; webkit with playwright)",
			EnvVars: []string{"SELFHEAL_BROWSER"},
		},
		&cli.StringFlag{
			Name:    "webdriver-url",
			Usage:   "WebDriver server URL (for webdriver backend)",
			EnvVars: []string{"SELFHEAL_WEBDRIVER_URL"},
		},
		&cli.BoolFlag{
			Name:    "headless",
			Usage:   "Run the browser without a window",
			EnvVars: []string{"SELFHEAL_HEADLESS"},
		},
		&cli.BoolFlag{
			Name:    "install",
			Usage:   "Download the Playwright driver and browser before launch (for playwright backend)",
			EnvVars: []string{"SELFHEAL_INSTALL"},
		},
		&cli.BoolFlag{
			Name:    "recover-all-errors",
			Usage:   "Keep trying backup locators on any lookup error, not only element-not-found",
			EnvVars: []string{"SELFHEAL_RECOVER_ALL_ERRORS"},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "Enable debug logging",
			EnvVars: []string{"SELFHEAL_VERBOSE"},
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "Also write JSON logs to this file (rotated)",
			EnvVars: []string{"SELFHEAL_LOG_FILE"},
		},
	}
}

// NewApp builds the selfheal application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "selfheal",
		Usage:   "Self-healing element lookup for browser automation",
		Version: Version,
		Description: `selfheal resolves element locators through a self-healing driver:
when a locator stops matching, backup locators derived from it are tried.

Examples:
  selfheal candidates "css selector=input#login-button.btn"
  selfheal find --url https://www.saucedemo.com "id=user-name" "css selector=#password"
  selfheal -b chromedp generate --url https://www.saucedemo.com --out generated_test.go`,
		Flags: globalFlags(),
		Commands: []*cli.Command{
			candidatesCommand(),
			findCommand(),
			generateCommand(),
		},
		After: func(c *cli.Context) error {
			logger.Close()
			return nil
		},
		// Exit codes are applied by Execute
		ExitErrHandler: func(c *cli.Context, err error) {},
	}
}

// Execute runs the CLI.
func Execute() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	if err := NewApp().Run(os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
