package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/selfheal/pkg/config"
	"github.com/devicelab-dev/selfheal/pkg/core"
	"github.com/devicelab-dev/selfheal/pkg/generator"
	"github.com/devicelab-dev/selfheal/pkg/healing"
	"github.com/devicelab-dev/selfheal/pkg/logger"
	"github.com/devicelab-dev/selfheal/pkg/report"
)

// exitNotFound is the exit code when a locator could not be healed.
const exitNotFound = 2

func candidatesCommand() *cli.Command {
	return &cli.Command{
		Name:      "candidates",
		Usage:     "Print the backup locators derived from a locator",
		ArgsUsage: "<strategy=value>",
		Description: `Print, in order, the backup locators the healing driver would try
when the given locator fails. No browser is started.

Examples:
  selfheal candidates "css selector=input#login-button.btn"
  selfheal candidates "id=user-name"
  selfheal candidates "link text=Sign in now"`,
		Action: runCandidates,
	}
}

func findCommand() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Open a page and resolve locators through the healing driver",
		ArgsUsage: "<strategy=value>...",
		Description: `Open a browser session, navigate to --url and resolve every locator.
Each result is printed as "locator -> element id". Exits with code 2 when
any locator could not be found even after healing.

Examples:
  selfheal find --url https://www.saucedemo.com "id=user-name"
  selfheal --recover-all-errors find --url https://example.com "css selector=#main .title"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "url",
				Usage:    "Page to open before resolving",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Resolve every match (FindElements) instead of the first",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write report.json and allure-results/ to this directory",
			},
		},
		Action: runFind,
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Crawl a page and write a Go test file for it",
		Description: `Log in (optional), collect items and buttons from the page and write a
Go test file with one visibility test per item.

Examples:
  selfheal generate
  selfheal generate --url https://www.saucedemo.com --out e2e/inventory_test.go
  selfheal generate --no-login --items "css selector=.product h2" --url https://shop.example`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Page to crawl",
				Value: generator.DefaultOptions().URL,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output file (default: <home>/generated/generated_test.go)",
			},
			&cli.StringFlag{
				Name:  "package",
				Usage: "Package clause of the generated file",
				Value: generator.DefaultOptions().Package,
			},
			&cli.StringFlag{
				Name:    "username",
				Usage:   "Login username",
				Value:   generator.DefaultOptions().Login.Username,
				EnvVars: []string{"SELFHEAL_USERNAME"},
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "Login password",
				Value:   generator.DefaultOptions().Login.Password,
				EnvVars: []string{"SELFHEAL_PASSWORD"},
			},
			&cli.BoolFlag{
				Name:  "no-login",
				Usage: "Skip the login step",
			},
			&cli.StringFlag{
				Name:  "items",
				Usage: "Locator of the items to test (strategy=value)",
			},
			&cli.StringFlag{
				Name:  "buttons",
				Usage: "Locator of the buttons that must exist (strategy=value)",
			},
			&cli.DurationFlag{
				Name:  "settle",
				Usage: "Wait after login before scanning",
				Value: generator.DefaultOptions().Settle,
			},
		},
		Action: runGenerate,
	}
}

func runCandidates(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one locator is required")
	}
	loc, err := core.ParseLocator(c.Args().First())
	if err != nil {
		return err
	}

	out := c.App.Writer
	candidates := healing.Candidates(loc)
	if len(candidates) == 0 {
		fmt.Fprintln(out, "no candidates")
		return nil
	}
	for i, cand := range candidates {
		fmt.Fprintf(out, "%d. %s\n", i+1, cand)
	}
	return nil
}

func runFind(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("at least one locator is required")
	}

	locators := make([]core.Locator, 0, c.NArg())
	for _, arg := range c.Args().Slice() {
		loc, err := core.ParseLocator(arg)
		if err != nil {
			return err
		}
		locators = append(locators, loc)
	}

	cfg, err := setup(c)
	if err != nil {
		return err
	}

	var (
		rec   *report.Recorder
		extra []healing.Option
	)
	if dir := c.String("report"); dir != "" {
		rec, err = report.NewRecorder(dir, &report.Index{
			URL: c.String("url"),
			Session: report.SessionInfo{
				Backend:  cfg.Backend,
				Browser:  cfg.Browser,
				Headless: cfg.Headless,
			},
			Runner: report.RunnerInfo{
				Version:          Version,
				RecoverAllErrors: cfg.Healing.RecoverAllErrors,
			},
		})
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		extra = append(extra, healing.WithObserver(rec.Observe))
		defer finishReport(rec)
	}

	d, cleanup, err := openHealing(c, cfg, extra...)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := d.Navigate(c.String("url")); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	out := c.App.Writer
	var missing []string
	for _, loc := range locators {
		if c.Bool("all") {
			els, err := d.FindAll(loc)
			captureFailure(rec, d.Unwrap())
			if err != nil {
				return err
			}
			if len(els) == 0 {
				missing = append(missing, loc.String())
			}
			fmt.Fprintf(out, "%s -> %s\n", loc, elementIDs(els))
			continue
		}

		el, err := d.Find(loc)
		captureFailure(rec, d.Unwrap())
		if errors.Is(err, core.ErrHealingExhausted) {
			fmt.Fprintf(out, "%s -> not found\n", loc)
			missing = append(missing, loc.String())
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s -> %s\n", loc, el.ID())
	}

	if len(missing) > 0 {
		return cli.Exit(fmt.Sprintf("%d locator(s) not found: %s", len(missing), strings.Join(missing, ", ")), exitNotFound)
	}
	return nil
}

// captureFailure attaches a screenshot to the last recorded lookup when it
// did not produce a result.
func captureFailure(rec *report.Recorder, s core.Session) {
	if rec == nil {
		return
	}
	last, ok := rec.Last()
	if !ok || last.Status.IsSuccess() {
		return
	}
	png, err := s.Screenshot()
	if err != nil {
		logger.Warn("Failed to capture screenshot for %s: %v", last.Locator, err)
		return
	}
	if err := rec.AttachScreenshot(last.ID, png); err != nil {
		logger.Warn("Failed to attach screenshot for %s: %v", last.Locator, err)
	}
}

// finishReport closes the run and exports Allure results.
func finishReport(rec *report.Recorder) {
	if err := rec.End(); err != nil {
		logger.Warn("Failed to write report: %v", err)
		return
	}
	if err := report.GenerateAllure(rec.Dir()); err != nil {
		logger.Warn("Failed to generate Allure results: %v", err)
		return
	}
	logger.Info("Report written to %s", rec.Dir())
}

func elementIDs(els []core.Element) string {
	if len(els) == 0 {
		return "none"
	}
	ids := make([]string, len(els))
	for i, el := range els {
		ids[i] = el.ID()
	}
	return strings.Join(ids, ", ")
}

// generatorOptions builds crawl options from the command's flags.
func generatorOptions(c *cli.Context) (generator.Options, error) {
	opts := generator.DefaultOptions()
	opts.URL = c.String("url")
	opts.Package = c.String("package")
	opts.Settle = c.Duration("settle")

	if c.Bool("no-login") {
		opts.Login = nil
	} else {
		opts.Login.Username = c.String("username")
		opts.Login.Password = c.String("password")
	}

	if s := c.String("items"); s != "" {
		loc, err := core.ParseLocator(s)
		if err != nil {
			return opts, fmt.Errorf("--items: %w", err)
		}
		opts.Items = loc
	}
	if s := c.String("buttons"); s != "" {
		loc, err := core.ParseLocator(s)
		if err != nil {
			return opts, fmt.Errorf("--buttons: %w", err)
		}
		opts.Buttons = loc
	}
	return opts, nil
}

func runGenerate(c *cli.Context) error {
	opts, err := generatorOptions(c)
	if err != nil {
		return err
	}

	outPath := c.String("out")
	if outPath == "" {
		outPath = filepath.Join(config.GetGeneratedDir(), "generated_test.go")
	}

	cfg, err := setup(c)
	if err != nil {
		return err
	}

	d, cleanup, err := openHealing(c, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	page, err := generator.Crawl(d, opts)
	if err != nil {
		return err
	}
	if err := generator.WriteFile(outPath, page); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	logger.Info("Generated %d item tests in %s", len(page.Items), outPath)
	fmt.Fprintf(c.App.Writer, "Found %d buttons and %d items\nTest file generated at: %s\n", page.Buttons, len(page.Items), outPath)
	return nil
}
