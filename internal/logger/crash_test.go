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

func TestCrashHandler_SetContext(t *testing.T) {
	globalContext = &crashContext{}

	SetBasePath("/tmp/test-chorepay")
	SetVersion("1.0.0-test")
	SetCommand("chorepay serve --port 8080")
	SetDataFile("data/tasks.json")

	globalContext.mu.RLock()
	defer globalContext.mu.RUnlock()

	if globalContext.basePath != "/tmp/test-chorepay" {
		t.Errorf("Expected basePath '/tmp/test-chorepay', got '%s'", globalContext.basePath)
	}
	if globalContext.version != "1.0.0-test" {
		t.Errorf("Expected version '1.0.0-test', got '%s'", globalContext.version)
	}
	if globalContext.command != "chorepay serve --port 8080" {
		t.Errorf("Expected command, got '%s'", globalContext.command)
	}
	if globalContext.dataFile != "data/tasks.json" {
		t.Errorf("Expected dataFile 'data/tasks.json', got '%s'", globalContext.dataFile)
	}
}

func TestCrashHandler_CommandTruncation(t *testing.T) {
	globalContext = &crashContext{}
	SetCommand(strings.Repeat("a", 3000))

	globalContext.mu.RLock()
	defer globalContext.mu.RUnlock()
	if !strings.HasSuffix(globalContext.command, "[truncated]") {
		t.Error("Expected long command to be truncated")
	}
}

func TestCrashHandler_WriteAndPrune(t *testing.T) {
	dir := t.TempDir()
	globalContext = &crashContext{basePath: dir, version: "1.2.3", command: "chorepay reset"}

	logDir := filepath.Join(dir, CrashLogDir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < MaxCrashLogs+3; i++ {
		name := fmt.Sprintf("crash_20240101_0000%02d.log", i)
		if err := os.WriteFile(filepath.Join(logDir, name), []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	report := createCrashLog("boom", []byte("goroutine 1 [running]:"))
	report.Timestamp = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	path, err := writeCrashLog(report)
	if err != nil {
		t.Fatalf("writeCrashLog failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read crash log: %v", err)
	}
	for _, want := range []string{"panic: boom", "version:   1.2.3", "chorepay reset", "goroutine 1"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("crash report missing %q", want)
		}
	}

	logs, err := ListCrashLogs()
	if err != nil {
		t.Fatalf("ListCrashLogs failed: %v", err)
	}
	if len(logs) != MaxCrashLogs {
		t.Errorf("expected %d crash logs after pruning, got %d", MaxCrashLogs, len(logs))
	}
	if logs[len(logs)-1] != path {
		t.Errorf("newest report should sort last, got %s", logs[len(logs)-1])
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json", false)
	log.Debug("hidden")
	log.Info("task created", "id", "a")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("json handler output is not JSON: %v", err)
	}
	if entry["id"] != "a" {
		t.Errorf("expected id attribute, got %v", entry["id"])
	}

	buf.Reset()
	New(&buf, "text", true).Debug("visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Errorf("verbose text logger should emit debug, got %q", buf.String())
	}
}
