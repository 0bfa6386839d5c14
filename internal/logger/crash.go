package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

const (
	// CrashLogDir lives under the data directory.
	CrashLogDir = "crash_logs"

	// MaxCrashLogs is how many reports are kept; older ones are pruned.
	MaxCrashLogs = 10
)

type crashContext struct {
	mu       sync.RWMutex
	basePath string
	version  string
	command  string
	args     string
}

var crash = &crashContext{}

// SetBasePath sets the data directory crash reports are written under.
func SetBasePath(path string) {
	crash.mu.Lock()
	defer crash.mu.Unlock()
	crash.basePath = path
}

func SetVersion(version string) {
	crash.mu.Lock()
	defer crash.mu.Unlock()
	crash.version = version
}

// SetCommand records the running command and its arguments for the report.
func SetCommand(cmd string, args []string) {
	crash.mu.Lock()
	defer crash.mu.Unlock()
	crash.command = cmd
	crash.args = truncate(strings.Join(args, " "), 500)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "... [truncated]"
}

// CrashReport is one recovered panic.
type CrashReport struct {
	Timestamp  time.Time
	Version    string
	Command    string
	Args       string
	PanicValue string
	Stack      string
	GoVersion  string
	Platform   string
}

// HandlePanic recovers a panic, writes a crash report and exits with status 1.
// Use it as the first deferred call in main.
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}
	report := newCrashReport(r, debug.Stack())
	path, err := writeCrashReport(report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskgraph crashed and the crash report could not be saved: %v\n", err)
		fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, report.Stack)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\ntaskgraph crashed unexpectedly: %v\n", r)
	fmt.Fprintf(os.Stderr, "Crash report saved to %s\n", path)
	os.Exit(1)
}

func newCrashReport(panicValue any, stack []byte) CrashReport {
	crash.mu.RLock()
	defer crash.mu.RUnlock()
	return CrashReport{
		Timestamp:  time.Now(),
		Version:    crash.version,
		Command:    crash.command,
		Args:       crash.args,
		PanicValue: fmt.Sprintf("%v", panicValue),
		Stack:      string(stack),
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func crashDir() string {
	crash.mu.RLock()
	base := crash.basePath
	crash.mu.RUnlock()
	if base == "" {
		base = ".taskgraph"
	}
	return filepath.Join(base, CrashLogDir)
}

func crashFileName(t time.Time) string {
	return fmt.Sprintf("crash_%s.log", t.Format("20060102_150405"))
}

// writeCrashReport stores r and returns its path.
func writeCrashReport(r CrashReport) (string, error) {
	dir := crashDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}
	if err := pruneCrashLogs(dir, MaxCrashLogs-1); err != nil {
		fmt.Fprintf(os.Stderr, "warning: prune crash logs: %v\n", err)
	}
	path := filepath.Join(dir, crashFileName(r.Timestamp))
	if err := os.WriteFile(path, []byte(r.Format()), 0o644); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}
	return path, nil
}

// Format renders the report as plain text.
func (r CrashReport) Format() string {
	var sb strings.Builder
	rule := strings.Repeat("-", 72)
	fmt.Fprintf(&sb, "taskgraph crash report\n%s\n", rule)
	fmt.Fprintf(&sb, "time:     %s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "version:  %s\n", r.Version)
	fmt.Fprintf(&sb, "command:  %s\n", r.Command)
	if r.Args != "" {
		fmt.Fprintf(&sb, "args:     %s\n", r.Args)
	}
	fmt.Fprintf(&sb, "go:       %s\n", r.GoVersion)
	fmt.Fprintf(&sb, "platform: %s\n", r.Platform)
	fmt.Fprintf(&sb, "%s\npanic: %s\n%s\n", rule, r.PanicValue, rule)
	sb.WriteString(r.Stack)
	return sb.String()
}

func isCrashLog(name string) bool {
	return strings.HasPrefix(name, "crash_") && strings.HasSuffix(name, ".log")
}

// pruneCrashLogs deletes the oldest reports until at most keep remain.
// Names embed the timestamp, so directory order is age order.
func pruneCrashLogs(dir string, keep int) error {
	logs, err := listCrashLogs(dir)
	if err != nil {
		return err
	}
	for i := 0; i < len(logs)-keep; i++ {
		if err := os.Remove(logs[i]); err != nil {
			return fmt.Errorf("remove %s: %w", filepath.Base(logs[i]), err)
		}
	}
	return nil
}

func listCrashLogs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var logs []string
	for _, e := range entries {
		if !e.IsDir() && isCrashLog(e.Name()) {
			logs = append(logs, filepath.Join(dir, e.Name()))
		}
	}
	return logs, nil
}

// ListCrashLogs returns the stored crash reports, oldest first.
func ListCrashLogs() ([]string, error) {
	return listCrashLogs(crashDir())
}
