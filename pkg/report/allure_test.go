package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper to write a test report to disk.
func writeTestReport(t *testing.T, dir string, index *Index) {
	t.Helper()
	if err := atomicWriteJSON(filepath.Join(dir, "report.json"), index); err != nil {
		t.Fatalf("write index: %v", err)
	}
}

func testIndex() *Index {
	now := time.Now()
	end := now.Add(3 * time.Second)
	healedBy := Selector{Type: "id", Value: "login-button"}
	return &Index{
		Version:   Version,
		StartTime: now,
		EndTime:   &end,
		URL:       "https://www.saucedemo.com",
		Session:   SessionInfo{Backend: "chromedp", Browser: "chrome", Headless: true},
		Runner:    RunnerInfo{Version: "0.3.0"},
		Summary:   Summary{Total: 2, Healed: 1, Failed: 1},
		Lookups: []Lookup{
			{
				Index: 0, ID: "lookup-0",
				Locator:   Selector{Type: "css selector", Value: "#login-button.btn"},
				Status:    StatusHealed,
				StartTime: now,
				Duration:  120,
				Matches:   1,
				HealedBy:  &healedBy,
				Attempts:  []Attempt{{Selector: healedBy, Matches: 1}},
			},
			{
				Index: 1, ID: "lookup-1",
				Locator:   Selector{Type: "id", Value: "gone"},
				Status:    StatusFailed,
				StartTime: now,
				Duration:  300,
				Attempts: []Attempt{
					{Selector: Selector{Type: "css selector", Value: "#gone"}, Error: "element not found"},
					{Selector: Selector{Type: "xpath", Value: "//*[@id='gone']"}, Error: "element not found"},
				},
				Error: &Error{Type: "healing_exhausted", Message: "could not find element after self-healing attempts: id=gone (2 candidates tried)"},
			},
		},
	}
}

func readAllureResult(t *testing.T, dir, id string) AllureResult {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "allure-results", id+"-result.json"))
	require.NoError(t, err)
	var result AllureResult
	require.NoError(t, json.Unmarshal(data, &result))
	return result
}

func TestGenerateAllure(t *testing.T) {
	dir := t.TempDir()
	index := testIndex()
	writeTestReport(t, dir, index)

	require.NoError(t, GenerateAllure(dir))

	healed := readAllureResult(t, dir, "lookup-0")
	assert.Equal(t, "passed", healed.Status)
	assert.Equal(t, "finished", healed.Stage)
	assert.Equal(t, "css selector=#login-button.btn", healed.Name)
	assert.Equal(t, "healed with id=login-button", healed.StatusDetails.Message)
	assert.Equal(t, index.Lookups[0].StartTime.UnixMilli()+120, healed.Stop)
	assert.Contains(t, healed.Labels, AllureLabel{Name: "tag", Value: "healed"})
	assert.Contains(t, healed.Labels, AllureLabel{Name: "host", Value: "chromedp"})
	require.Len(t, healed.Steps, 2)
	assert.Equal(t, "failed", healed.Steps[0].Status)
	assert.Equal(t, "try backup id=login-button", healed.Steps[1].Name)
	assert.Equal(t, "passed", healed.Steps[1].Status)

	failed := readAllureResult(t, dir, "lookup-1")
	assert.Equal(t, "failed", failed.Status)
	assert.Contains(t, failed.StatusDetails.Message, "self-healing attempts")
	assert.Len(t, failed.Steps, 3)
	assert.NotContains(t, failed.Labels, AllureLabel{Name: "tag", Value: "healed"})

	// Same locator on the same page keeps its history ID
	assert.Equal(t, fnv32aHash(index.URL+":"+failed.Name), failed.HistoryID)
}

func TestGenerateAllure_MetadataFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestReport(t, dir, testIndex())
	require.NoError(t, GenerateAllure(dir))

	env, err := os.ReadFile(filepath.Join(dir, "allure-results", "environment.properties"))
	require.NoError(t, err)
	for _, line := range []string{
		"framework=selfheal",
		"url=https://www.saucedemo.com",
		"session.backend=chromedp",
		"session.browser=chrome",
		"session.headless=true",
		"runner.version=0.3.0",
		"healing.recoverAllErrors=false",
	} {
		assert.Contains(t, strings.Split(string(env), "\n"), line)
	}

	data, err := os.ReadFile(filepath.Join(dir, "allure-results", "categories.json"))
	require.NoError(t, err)
	var categories []AllureCategory
	require.NoError(t, json.Unmarshal(data, &categories))
	assert.Equal(t, "Healing Exhausted", categories[0].Name)

	data, err = os.ReadFile(filepath.Join(dir, "allure-results", "executor.json"))
	require.NoError(t, err)
	var executor AllureExecutor
	require.NoError(t, json.Unmarshal(data, &executor))
	assert.Equal(t, "selfheal", executor.Name)
}

func TestGenerateAllure_ScreenshotAttachment(t *testing.T) {
	dir := t.TempDir()
	index := testIndex()
	index.Lookups[1].Screenshot = "screenshots/lookup-1.png"
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "screenshots"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "screenshots", "lookup-1.png"), []byte("png"), 0o644))
	writeTestReport(t, dir, index)

	require.NoError(t, GenerateAllure(dir))

	assert.Empty(t, readAllureResult(t, dir, "lookup-0").Attachments)
	failed := readAllureResult(t, dir, "lookup-1")
	assert.Equal(t, []AllureAttachment{{Name: "Screenshot", Source: "lookup-1-attachment.png", Type: "image/png"}}, failed.Attachments)

	data, err := os.ReadFile(filepath.Join(dir, "allure-results", "lookup-1-attachment.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestGenerateAllure_MissingScreenshot(t *testing.T) {
	dir := t.TempDir()
	index := testIndex()
	index.Lookups[1].Screenshot = "screenshots/lookup-1.png"
	writeTestReport(t, dir, index)

	assert.Error(t, GenerateAllure(dir))
}

func TestGenerateAllure_MissingReport(t *testing.T) {
	err := GenerateAllure(t.TempDir())
	assert.Error(t, err)
}

func TestMapAllureStatus(t *testing.T) {
	assert.Equal(t, "passed", mapAllureStatus(StatusPassed))
	assert.Equal(t, "passed", mapAllureStatus(StatusHealed))
	assert.Equal(t, "failed", mapAllureStatus(StatusFailed))
	assert.Equal(t, "broken", mapAllureStatus(StatusBroken))
	assert.Equal(t, "unknown", mapAllureStatus(Status("running")))
}
