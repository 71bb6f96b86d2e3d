package report

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Allure result schema types.

// AllureResult represents a single test result in Allure format.
type AllureResult struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	FullName      string              `json:"fullName"`
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Labels        []AllureLabel       `json:"labels"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Steps         []AllureStep        `json:"steps"`
	Attachments   []AllureAttachment  `json:"attachments,omitempty"`
}

// AllureStep represents a step within a test result.
type AllureStep struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Stage  string `json:"stage"`
}

// AllureAttachment represents a file attachment.
type AllureAttachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// AllureLabel represents a label on a test result.
type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureStatusDetails holds failure message and trace.
type AllureStatusDetails struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

// AllureCategory defines a failure category with regex matching.
type AllureCategory struct {
	Name            string   `json:"name"`
	MatchedStatuses []string `json:"matchedStatuses"`
	MessageRegex    string   `json:"messageRegex"`
}

// AllureExecutor holds executor info.
type AllureExecutor struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	ReportName string `json:"reportName"`
}

// GenerateAllure generates Allure-compatible report files in <reportDir>/allure-results/.
func GenerateAllure(reportDir string) error {
	index, err := ReadReport(reportDir)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	allureDir := filepath.Join(reportDir, "allure-results")
	if err := os.MkdirAll(allureDir, 0o755); err != nil {
		return fmt.Errorf("create allure-results dir: %w", err)
	}

	// Write one result file per lookup
	for i := range index.Lookups {
		result := buildAllureResult(&index.Lookups[i], index)

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal allure result for %s: %w", result.UUID, err)
		}

		resultPath := filepath.Join(allureDir, result.UUID+"-result.json")
		if err := os.WriteFile(resultPath, data, 0o644); err != nil {
			return fmt.Errorf("write allure result %s: %w", result.UUID, err)
		}

		for _, a := range result.Attachments {
			src := filepath.Join(reportDir, filepath.FromSlash(index.Lookups[i].Screenshot))
			if err := copyFile(src, filepath.Join(allureDir, a.Source)); err != nil {
				return fmt.Errorf("copy attachment for %s: %w", result.UUID, err)
			}
		}
	}

	if err := writeAllureCategories(allureDir); err != nil {
		return err
	}
	if err := writeAllureEnvironment(allureDir, index); err != nil {
		return err
	}
	return writeAllureExecutor(allureDir)
}

// buildAllureResult builds an AllureResult from a lookup.
func buildAllureResult(l *Lookup, index *Index) AllureResult {
	name := l.Locator.String()
	if l.Plural {
		name = "find all: " + name
	}

	startMs := l.StartTime.UnixMilli()

	labels := []AllureLabel{
		{Name: "feature", Value: "Self-Healing"},
		{Name: "suite", Value: index.URL},
		{Name: "framework", Value: "selfheal"},
		{Name: "severity", Value: "normal"},
	}
	if index.Session.Backend != "" {
		labels = append(labels, AllureLabel{Name: "host", Value: index.Session.Backend})
	}
	if l.Status == StatusHealed {
		labels = append(labels, AllureLabel{Name: "tag", Value: "healed"})
	}

	var details AllureStatusDetails
	switch {
	case l.Error != nil:
		details.Message = l.Error.Message
	case l.HealedBy != nil:
		details.Message = "healed with " + l.HealedBy.String()
	}

	var attachments []AllureAttachment
	if l.Screenshot != "" {
		attachments = append(attachments, AllureAttachment{
			Name:   "Screenshot",
			Source: l.ID + "-attachment.png",
			Type:   "image/png",
		})
	}

	return AllureResult{
		UUID:          l.ID,
		HistoryID:     fnv32aHash(index.URL + ":" + name),
		FullName:      name,
		Name:          name,
		Status:        mapAllureStatus(l.Status),
		Stage:         "finished",
		Start:         startMs,
		Stop:          startMs + l.Duration,
		Labels:        labels,
		StatusDetails: details,
		Steps:         buildAllureSteps(l),
		Attachments:   attachments,
	}
}

// buildAllureSteps renders the primary lookup followed by each backup attempt.
func buildAllureSteps(l *Lookup) []AllureStep {
	primary := "passed"
	if l.Status != StatusPassed {
		primary = "failed"
	}
	steps := []AllureStep{{
		Name:   "locate " + l.Locator.String(),
		Status: primary,
		Stage:  "finished",
	}}

	for _, a := range l.Attempts {
		status := "failed"
		if a.Error == "" && a.Matches > 0 {
			status = "passed"
		}
		steps = append(steps, AllureStep{
			Name:   "try backup " + a.Selector.String(),
			Status: status,
			Stage:  "finished",
		})
	}
	return steps
}

// copyFile copies src to dst, replacing dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// mapAllureStatus maps report Status to Allure status string.
func mapAllureStatus(s Status) string {
	switch s {
	case StatusPassed, StatusHealed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// fnv32aHash returns a hex-encoded FNV-32a hash of the input string.
func fnv32aHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

// writeAllureCategories writes categories.json for failure categorization.
func writeAllureCategories(allureDir string) error {
	categories := []AllureCategory{
		{Name: "Healing Exhausted", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*self-healing attempts.*"},
		{Name: "Element Not Found", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*element not found.*|.*no such element.*"},
		{Name: "Stale Element", MatchedStatuses: []string{"broken"}, MessageRegex: "(?i).*stale.*|.*no longer attached.*"},
		{Name: "Invalid Selector", MatchedStatuses: []string{"broken"}, MessageRegex: "(?i).*invalid selector.*|.*selector is not valid.*"},
		{Name: "Timeout", MatchedStatuses: []string{"broken"}, MessageRegex: "(?i).*timeout.*|.*timed out.*"},
		{Name: "Connection Error", MatchedStatuses: []string{"broken"}, MessageRegex: "(?i).*connect.*|.*session.*|.*network.*"},
	}

	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	path := filepath.Join(allureDir, "categories.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write categories.json: %w", err)
	}

	return nil
}

// writeAllureEnvironment writes environment.properties with session metadata.
func writeAllureEnvironment(allureDir string, index *Index) error {
	var b strings.Builder
	b.WriteString("framework=selfheal\n")

	if index.URL != "" {
		b.WriteString(fmt.Sprintf("url=%s\n", index.URL))
	}
	if index.Session.Backend != "" {
		b.WriteString(fmt.Sprintf("session.backend=%s\n", index.Session.Backend))
	}
	if index.Session.Browser != "" {
		b.WriteString(fmt.Sprintf("session.browser=%s\n", index.Session.Browser))
	}
	b.WriteString(fmt.Sprintf("session.headless=%t\n", index.Session.Headless))
	if index.Runner.Version != "" {
		b.WriteString(fmt.Sprintf("runner.version=%s\n", index.Runner.Version))
	}
	b.WriteString(fmt.Sprintf("healing.recoverAllErrors=%t\n", index.Runner.RecoverAllErrors))

	path := filepath.Join(allureDir, "environment.properties")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write environment.properties: %w", err)
	}

	return nil
}

// writeAllureExecutor writes executor.json.
func writeAllureExecutor(allureDir string) error {
	executor := AllureExecutor{
		Name:       "selfheal",
		Type:       "selfheal",
		ReportName: "Self-Healing Lookups",
	}

	data, err := json.MarshalIndent(executor, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal executor: %w", err)
	}

	path := filepath.Join(allureDir, "executor.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write executor.json: %w", err)
	}

	return nil
}
