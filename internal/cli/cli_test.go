package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/app"
	"github.com/fastygo/taskflow/internal/config"
)

type harness struct {
	t    *testing.T
	path string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{t: t, path: filepath.Join(t.TempDir(), "tasks.db")}
}

func (h *harness) build(ctx context.Context, opts Options) (*app.App, error) {
	cfg := &config.Config{
		AppName:  "taskctl-test",
		Timezone: "UTC",
		Storage: config.StorageConfig{
			Driver:   config.DriverBolt,
			BoltPath: h.path,
		},
		Engine: config.EngineConfig{
			SuggestionLimit: 3,
			TrackerTick:     10 * time.Millisecond,
		},
	}
	applyOptions(cfg, opts)
	return app.Build(ctx, cfg, nil)
}

// run executes one command line in a fresh command tree, like a separate
// process invocation against the same data file.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	c := New(h.build)
	c.SetOutput(&out, &errOut)
	err := c.Execute(context.Background(), args)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("taskctl %s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

func (h *harness) tasks(args ...string) []domain.Task {
	h.t.Helper()
	out := h.mustRun(append(append([]string{}, args...), "-o", "json")...)
	var tasks []domain.Task
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		h.t.Fatalf("decoding %q: %v", out, err)
	}
	return tasks
}

func TestAddUsesPreferredDefaults(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	h.mustRun("settings", "set", "default-category", "work")
	h.mustRun("add", "Write", "report", "--due", "2024-07-01", "-t", "q3,review")

	tasks := h.tasks("ls")
	if len(tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Write report" || got.Category != domain.CategoryWork || got.Priority != domain.PriorityMedium {
		t.Errorf("unexpected task %+v", got)
	}
	if got.DueDate == nil || got.DueDate.Format("2006-01-02") != "2024-07-01" {
		t.Errorf("unexpected due date %v", got.DueDate)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "review" {
		t.Errorf("unexpected tags %v", got.Tags)
	}
}

func TestEditToggleAndFilterByPrefix(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.mustRun("add", "Buy milk", "-c", "personal")
	h.mustRun("add", "Fix bug", "-c", "work", "-p", "high")

	var bug domain.Task
	for _, task := range h.tasks("ls") {
		if task.Title == "Fix bug" {
			bug = task
		}
	}
	prefix := bug.ID[:8]

	h.mustRun("edit", prefix, "--status", "in_progress", "--due", "none", "-d", "stack trace in #12")
	h.mustRun("toggle", prefix)

	completed := h.tasks("ls", "--filter", "completed")
	if len(completed) != 1 || completed[0].ID != bug.ID {
		t.Fatalf("expected the bug to be completed, got %+v", completed)
	}
	if completed[0].CompletedAt == nil || completed[0].Description != "stack trace in #12" {
		t.Errorf("unexpected task %+v", completed[0])
	}

	found := h.tasks("ls", "-q", "MILK")
	if len(found) != 1 || found[0].Title != "Buy milk" {
		t.Errorf("search should be case-insensitive, got %+v", found)
	}

	if _, err := h.run("show", "zzzz"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND for unknown id, got %v", err)
	}
}

func TestExportWipeImport(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.mustRun("add", "Buy milk")
	h.mustRun("add", "Call mom", "-c", "personal", "-p", "low")

	dir := t.TempDir()
	h.mustRun("export", "-f", "csv", "--out", dir)
	files, err := filepath.Glob(filepath.Join(dir, "tasks-*.csv"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one dated csv file, got %v (%v)", files, err)
	}

	if _, err := h.run("wipe"); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("wipe without --yes must be refused, got %v", err)
	}
	h.mustRun("wipe", "--yes")
	if tasks := h.tasks("ls"); len(tasks) != 0 {
		t.Fatalf("expected no tasks after wipe, got %d", len(tasks))
	}

	out := h.mustRun("import", files[0])
	if !strings.Contains(out, "Imported 2 task(s) from csv") {
		t.Errorf("unexpected output %q", out)
	}
	tasks := h.tasks("ls", "--sort", "title")
	if len(tasks) != 2 || tasks[0].Title != "Buy milk" || tasks[1].Priority != domain.PriorityLow {
		t.Errorf("unexpected tasks after import %+v", tasks)
	}
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "tasks.xml")
	if err := os.WriteFile(path, []byte("<tasks/>"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := h.run("import", path); !domain.IsDomainError(err, domain.ErrCodeUnsupportedFormat) {
		t.Errorf("expected UNSUPPORTED_FORMAT, got %v", err)
	}
}

func TestTrackRecordsSessionAndSaves(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.mustRun("add", "Deep work")
	id := h.tasks("ls")[0].ID

	out := h.mustRun("track", id, "--for", "1100ms", "-o", "json")
	var result trackResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if result.Session == nil || result.Session.Duration != 1 {
		t.Fatalf("expected a one second session, got %+v", result.Session)
	}
	if result.Task == nil || result.Task.ActualTime <= 0 {
		t.Errorf("expected actual time to be saved, got %+v", result.Task)
	}

	sessions := h.mustRun("sessions", id, "-o", "yaml")
	if !strings.Contains(sessions, "duration: 1") || !strings.Contains(sessions, "total: 1") {
		t.Errorf("unexpected sessions output:\n%s", sessions)
	}
}

func TestSettingsPatch(t *testing.T) {
	t.Parallel()
	cases := []struct {
		key, value string
		check      func(domain.SettingsPatch) bool
	}{
		{"theme", "Dark", func(p domain.SettingsPatch) bool { return *p.Theme == "dark" }},
		{"auto-save", "false", func(p domain.SettingsPatch) bool { return p.AutoSave != nil && !*p.AutoSave }},
		{"notifications", "true", func(p domain.SettingsPatch) bool { return p.Notifications != nil && *p.Notifications }},
		{"working-hours", "08:30-16:30", func(p domain.SettingsPatch) bool { return p.WorkingHours.Start == "08:30" && p.WorkingHours.End == "16:30" }},
		{"reminder-time", "15", func(p domain.SettingsPatch) bool { return *p.ReminderTime == 15 }},
	}
	for _, tc := range cases {
		patch, err := settingsPatch(tc.key, tc.value)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.key, err)
			continue
		}
		if !tc.check(patch) {
			t.Errorf("%s=%s produced %+v", tc.key, tc.value, patch)
		}
	}

	for _, bad := range [][2]string{{"volume", "11"}, {"auto-save", "maybe"}, {"working-hours", "9"}, {"reminder-time", "soon"}} {
		if _, err := settingsPatch(bad[0], bad[1]); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
			t.Errorf("%s=%s: expected INVALID, got %v", bad[0], bad[1], err)
		}
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	if _, err := h.run("ls", "-o", "xml"); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("expected INVALID, got %v", err)
	}
}
