package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetCrashContext(t *testing.T, base string) {
	t.Helper()
	crash = &crashContext{}
	SetBasePath(base)
	t.Cleanup(func() { crash = &crashContext{} })
}

func TestSetCommand_TruncatesArgs(t *testing.T) {
	resetCrashContext(t, t.TempDir())
	SetCommand("task create", []string{strings.Repeat("x", 800)})

	crash.mu.RLock()
	defer crash.mu.RUnlock()
	if crash.command != "task create" {
		t.Errorf("command = %q", crash.command)
	}
	if !strings.HasSuffix(crash.args, "[truncated]") || len(crash.args) > 520 {
		t.Errorf("args not truncated: len=%d", len(crash.args))
	}
}

func TestWriteCrashReport(t *testing.T) {
	base := t.TempDir()
	resetCrashContext(t, base)
	SetVersion("0.1.0-test")
	SetCommand("task transition", []string{"task-1", "COMPLETED"})

	report := newCrashReport("boom", []byte("goroutine 1 [running]:\nmain.main()"))
	path, err := writeCrashReport(report)
	if err != nil {
		t.Fatalf("writeCrashReport() error = %v", err)
	}
	if filepath.Dir(path) != filepath.Join(base, CrashLogDir) {
		t.Errorf("report written to %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)
	for _, want := range []string{"0.1.0-test", "task transition", "task-1 COMPLETED", "panic: boom", "main.main()"} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestPruneCrashLogs(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 15 {
		name := crashFileName(start.Add(time.Duration(i) * time.Minute))
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := pruneCrashLogs(dir, MaxCrashLogs); err != nil {
		t.Fatalf("pruneCrashLogs() error = %v", err)
	}

	logs, err := listCrashLogs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != MaxCrashLogs {
		t.Fatalf("kept %d logs, want %d", len(logs), MaxCrashLogs)
	}
	oldestKept := filepath.Base(logs[0])
	if want := crashFileName(start.Add(5 * time.Minute)); oldestKept != want {
		t.Errorf("oldest kept = %s, want %s", oldestKept, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("non-crash files must not be removed")
	}
}

func TestListCrashLogs_MissingDir(t *testing.T) {
	resetCrashContext(t, filepath.Join(t.TempDir(), "absent"))
	logs, err := ListCrashLogs()
	if err != nil {
		t.Fatalf("ListCrashLogs() error = %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected no logs, got %v", logs)
	}
}

func TestNew(t *testing.T) {
	t.Cleanup(func() { _ = SetLevel("info") })

	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("hidden")
	log.Warn("shown", "task_id", "task-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["msg"] != "shown" || entry["task_id"] != "task-1" {
		t.Errorf("entry = %v", entry)
	}

	// Raising verbosity applies to existing loggers.
	if err := SetLevel("debug"); err != nil {
		t.Fatal(err)
	}
	log.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("SetLevel did not affect existing logger")
	}
}

func TestNew_Rejects(t *testing.T) {
	t.Cleanup(func() { _ = SetLevel("info") })
	for _, opts := range []Options{{Level: "loud"}, {Format: "xml"}} {
		t.Run(fmt.Sprintf("%+v", opts), func(t *testing.T) {
			if _, err := New(opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}
