package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// CrashLogDir is the directory for crash reports, relative to the data directory.
	CrashLogDir = "crash_logs"

	// MaxCrashLogs is the maximum number of crash reports to keep.
	MaxCrashLogs = 10
)

// crashContext stores what was running when a panic escaped.
type crashContext struct {
	mu       sync.RWMutex
	command  string
	version  string
	dataFile string
	basePath string
}

var globalContext = &crashContext{}

// SetBasePath sets the directory crash reports are written under.
func SetBasePath(path string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.basePath = path
}

// SetVersion records the application version.
func SetVersion(version string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.version = version
}

// SetCommand records the command line being executed.
func SetCommand(cmd string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.command = truncateForLog(strings.TrimSpace(cmd), 500)
}

// SetDataFile records the task document in use.
func SetDataFile(path string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.dataFile = path
}

func truncateForLog(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "... [truncated]"
}

// CrashLog is one crash report.
type CrashLog struct {
	Timestamp  time.Time
	Version    string
	Command    string
	DataFile   string
	PanicValue string
	StackTrace string
	GoVersion  string
	OS         string
	Arch       string
}

// HandlePanic recovers a panic, writes a crash report and exits with status 1.
// Usage: defer logger.HandlePanic()
func HandlePanic() {
	if r := recover(); r != nil {
		report := createCrashLog(r, debug.Stack())
		path, err := writeCrashLog(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\n[CRASH] Failed to write crash report: %v\n", err)
			fmt.Fprintf(os.Stderr, "[CRASH] Panic: %v\n%s\n", r, report.StackTrace)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "\nchorepay stopped unexpectedly: %v\n", r)
		fmt.Fprintf(os.Stderr, "A crash report has been saved to:\n  %s\n\n", path)
		os.Exit(1)
	}
}

func createCrashLog(panicValue any, stack []byte) CrashLog {
	globalContext.mu.RLock()
	defer globalContext.mu.RUnlock()

	return CrashLog{
		Timestamp:  time.Now(),
		Version:    globalContext.version,
		Command:    globalContext.command,
		DataFile:   globalContext.dataFile,
		PanicValue: fmt.Sprintf("%v", panicValue),
		StackTrace: string(stack),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	}
}

// writeCrashLog writes report to disk and returns its path.
func writeCrashLog(report CrashLog) (string, error) {
	dir := crashLogDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}

	if err := pruneCrashLogs(dir, MaxCrashLogs-1); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to prune old crash reports: %v\n", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("crash_%s.log", report.Timestamp.Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(formatCrashLog(report)), 0o644); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}
	return path, nil
}

func crashLogDir() string {
	globalContext.mu.RLock()
	basePath := globalContext.basePath
	globalContext.mu.RUnlock()

	if basePath == "" {
		basePath = "."
	}
	return filepath.Join(basePath, CrashLogDir)
}

func formatCrashLog(report CrashLog) string {
	rule := strings.Repeat("-", 72)
	var sb strings.Builder
	fmt.Fprintf(&sb, "chorepay crash report\n%s\n", rule)
	fmt.Fprintf(&sb, "time:      %s\n", report.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "version:   %s\n", report.Version)
	fmt.Fprintf(&sb, "command:   %s\n", report.Command)
	fmt.Fprintf(&sb, "data file: %s\n", report.DataFile)
	fmt.Fprintf(&sb, "runtime:   %s %s/%s\n", report.GoVersion, report.OS, report.Arch)
	fmt.Fprintf(&sb, "%s\npanic: %s\n%s\n", rule, report.PanicValue, rule)
	sb.WriteString(report.StackTrace)
	return sb.String()
}

// pruneCrashLogs removes the oldest reports until at most keep remain.
func pruneCrashLogs(dir string, keep int) error {
	logs, err := listCrashLogs(dir)
	if err != nil || len(logs) <= keep {
		return err
	}
	for _, path := range logs[:len(logs)-keep] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove old crash log %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func listCrashLogs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, filepath.Join(dir, e.Name()))
		}
	}
	// Names embed the timestamp, so lexical order is oldest first.
	sort.Strings(logs)
	return logs, nil
}

// ListCrashLogs returns the stored crash reports, oldest first.
func ListCrashLogs() ([]string, error) {
	return listCrashLogs(crashLogDir())
}
