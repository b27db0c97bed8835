package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephgoksu/chorepay/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag of c and its children back to its default,
// since cobra keeps flag values between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setupCLI points the data file and uploads at a temp dir.
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.Set("data.file", filepath.Join(dir, "tasks.json"))
	viper.Set("data.uploadsDir", filepath.Join(dir, "uploads"))
	viper.Set("data.backend", "file")
	viper.Set("data.seed", false)
	viper.Set("telemetry.enabled", false)
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func listJSON(t *testing.T, extra ...string) []models.Task {
	t.Helper()
	out, err := runCLI(t, append([]string{"list", "--json"}, extra...)...)
	require.NoError(t, err, out)
	var tasks []models.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks), out)
	return tasks
}

func TestRootCmd(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "chorepay")
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "Commands:")
	for _, name := range []string{"serve", "list", "add", "done", "delete", "reset", "report", "backup", "restore", "dashboard", "version"} {
		assert.Contains(t, out, name)
	}
}

func TestVersion(t *testing.T) {
	setupCLI(t)
	assert.Equal(t, "1.0.0", GetVersion())

	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "chorepay 1.0.0")
}

func TestAddListDone(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "add", "Vacuum", "living", "room", "--size", "large")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Added 'Vacuum living room'")
	assert.Contains(t, out, "$3,000.00")

	_, err = runCLI(t, "add", "Dishes")
	require.NoError(t, err)

	tasks := listJSON(t)
	require.Len(t, tasks, 2)
	assert.InDelta(t, 2400, tasks[0].Value, 0.001)
	assert.InDelta(t, 600, tasks[1].Value, 0.001)

	out, err = runCLI(t, "done", tasks[1].ID[:8])
	require.NoError(t, err, out)
	assert.Contains(t, out, "'Dishes'")
	assert.Contains(t, out, "$600.00")

	out, err = runCLI(t, "done", tasks[1].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "already done")

	pending := listJSON(t, "--pending")
	require.Len(t, pending, 1)
	assert.Equal(t, "Vacuum living room", pending[0].Name)

	out, err = runCLI(t, "done", tasks[1].ID, "--undo")
	require.NoError(t, err)
	assert.Contains(t, out, "reopened")
	assert.Len(t, listJSON(t, "--pending"), 2)
}

func TestAdd_Rejects(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "add", "Dishes", "--size", "huge")
	assert.ErrorContains(t, err, "unknown size")

	_, err = runCLI(t, "add", "Dishes", "--month", "July")
	assert.Error(t, err)

	_, err = runCLI(t, "add")
	assert.Error(t, err)

	assert.Empty(t, listJSON(t))
}

func TestList_Table(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks.")

	_, err = runCLI(t, "add", "Feed cat", "--recurring", "daily")
	require.NoError(t, err)

	out, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Feed cat (Day 1)")
	assert.NotContains(t, out, "daily", "templates are hidden by default")

	out, err = runCLI(t, "list", "--templates")
	require.NoError(t, err)
	assert.Contains(t, out, "daily")
}

func TestDone_UnknownAndNonInteractive(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "done", "does-not-exist")
	assert.ErrorContains(t, err, "no such task")

	// Test binaries have no terminal to pick from.
	_, err = runCLI(t, "done")
	assert.ErrorContains(t, err, "no task id given")
}

func TestDelete(t *testing.T) {
	setupCLI(t)
	_, err := runCLI(t, "add", "Dishes")
	require.NoError(t, err)
	id := listJSON(t)[0].ID

	out, err := runCLI(t, "delete", id, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 'Dishes'")
	assert.Empty(t, listJSON(t))

	_, err = runCLI(t, "delete", id, "--yes")
	assert.ErrorContains(t, err, "no such task")
}

func TestReset(t *testing.T) {
	dir := setupCLI(t)
	_, err := runCLI(t, "add", "Dishes")
	require.NoError(t, err)
	task := listJSON(t)[0]
	_, err = runCLI(t, "done", task.ID)
	require.NoError(t, err)

	out, err := runCLI(t, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset 1 tasks")

	after := listJSON(t)
	require.Len(t, after, 1)
	assert.False(t, after[0].Completed)
	assert.NotEqual(t, task.Month, after[0].Month)

	backups, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.Len(t, backups, 1, "reset writes a backup first")
}

func TestReportFormats(t *testing.T) {
	setupCLI(t)
	_, err := runCLI(t, "add", "Dishes", "--size", "medium")
	require.NoError(t, err)

	out, err := runCLI(t, "report", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Name,Value,Completed,Date,Picture,DueDate", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Dishes,3000.00,No"), lines[1])

	out, err = runCLI(t, "report", "--format", "json")
	require.NoError(t, err)
	var report models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Total)
	assert.InDelta(t, 3000, report.Pool, 0.001)

	out, err = runCLI(t, "report", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "bonusEarned: false")

	out, err = runCLI(t, "report", "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "bonusEarned = false")

	out, err = runCLI(t, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Payout")

	_, err = runCLI(t, "report", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestBackupRestore(t *testing.T) {
	dir := setupCLI(t)
	_, err := runCLI(t, "add", "Dishes")
	require.NoError(t, err)

	backup := filepath.Join(dir, "saved.json")
	out, err := runCLI(t, "backup", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Backup written")

	_, err = runCLI(t, "add", "Trash")
	require.NoError(t, err)
	require.Len(t, listJSON(t), 2)

	out, err = runCLI(t, "restore", backup, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "restored")

	tasks := listJSON(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Dishes", tasks[0].Name)

	_, err = runCLI(t, "restore", filepath.Join(dir, "missing.json"), "--yes")
	assert.Error(t, err)
}

func TestDashboard_NeedsTerminal(t *testing.T) {
	setupCLI(t)
	_, err := runCLI(t, "dashboard")
	assert.ErrorContains(t, err, "needs a terminal")
}

func TestDefaultBackupPath(t *testing.T) {
	p := defaultBackupPath(filepath.Join("data", "tasks.json"), "reset")
	assert.Equal(t, filepath.Join("data", "backups"), filepath.Dir(p))
	assert.True(t, strings.HasPrefix(filepath.Base(p), "tasks-reset-"))
	assert.Equal(t, ".json", filepath.Ext(p))
}

func TestInitConfig_Port(t *testing.T) {
	setupCLI(t)

	t.Setenv("PORT", "")
	t.Setenv("CHOREPAY_SERVER_PORT", "")
	InitConfig()
	assert.Equal(t, 3000, GetConfig().Server.Port)

	t.Setenv("PORT", "8081")
	InitConfig()
	assert.Equal(t, 8081, GetConfig().Server.Port)

	t.Setenv("CHOREPAY_SERVER_PORT", "9090")
	InitConfig()
	assert.Equal(t, 9090, GetConfig().Server.Port, "the prefixed variable wins over PORT")
}

func TestVersion_ListsCrashReports(t *testing.T) {
	dir := setupCLI(t)

	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.NotContains(t, out, "crash report")

	crashDir := filepath.Join(dir, "crash_logs")
	require.NoError(t, os.MkdirAll(crashDir, 0o755))
	report := filepath.Join(crashDir, "crash_20250710-120000.log")
	require.NoError(t, os.WriteFile(report, []byte("panic: boom"), 0o644))

	out, err = runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "1 crash report(s)")
	assert.Contains(t, out, report)

	out, err = runCLI(t, "version", "--json")
	require.NoError(t, err)
	var info struct {
		Version      string   `json:"version"`
		CrashReports []string `json:"crashReports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, []string{report}, info.CrashReports)
}
