package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/josephgoksu/chorepay/internal/chores"
	"github.com/josephgoksu/chorepay/internal/telemetry"
	"github.com/josephgoksu/chorepay/models"
	"github.com/josephgoksu/chorepay/store"
	"github.com/josephgoksu/chorepay/types"
	"github.com/manifoldco/promptui"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

func isJSON() bool {
	return viper.GetBool("json")
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// app bundles what a command needs to operate on the task list.
type app struct {
	cfg       *types.AppConfig
	store     store.TaskStore
	proofs    *store.ProofStore
	svc       *chores.Service
	telemetry telemetry.Client
}

// openApp opens the configured store and builds the chore service on top of it.
func openApp() (*app, error) {
	cfg := GetConfig()

	ts, err := openStore(cfg.Data)
	if err != nil {
		return nil, err
	}
	proofs := store.NewProofStore(afero.NewOsFs(), cfg.Data.UploadsDir)

	svc := chores.NewService(ts, proofs, chores.Options{
		Pool:          cfg.Rewards.Pool,
		Bonus:         cfg.Rewards.Bonus,
		MaxImageBytes: cfg.Images.MaxBytes,
		RequireProof:  cfg.Rewards.RequireProof,
		Logger:        slog.Default(),
	})

	return &app{
		cfg:       cfg,
		store:     ts,
		proofs:    proofs,
		svc:       svc,
		telemetry: newTelemetryClient(cfg),
	}, nil
}

// Close flushes telemetry and releases the store.
func (a *app) Close() error {
	if err := a.telemetry.Close(); err != nil {
		LogError("telemetry flush failed", err)
	}
	return a.store.Close()
}

// openStore initializes the backend selected by data.backend.
func openStore(d types.DataConfig) (store.TaskStore, error) {
	var ts store.TaskStore
	switch d.Backend {
	case "sqlite":
		ts = store.NewSQLiteTaskStore()
	default:
		ts = store.NewFileTaskStore()
	}
	if err := ts.Initialize(d.StoreConfig()); err != nil {
		return nil, fmt.Errorf("failed to initialize %s store at %s: %w", d.Backend, d.File, err)
	}
	return ts, nil
}

// newTelemetryClient returns a no-op client unless telemetry is enabled and keyed.
func newTelemetryClient(cfg *types.AppConfig) telemetry.Client {
	tcfg, err := telemetry.LoadConfig(filepath.Dir(cfg.Data.File), cfg.Telemetry.Enabled)
	if err != nil {
		LogError("telemetry config unavailable", err)
		return telemetry.NewNoopClient()
	}
	client, err := telemetry.New(telemetry.ClientConfig{
		APIKey:   cfg.Telemetry.APIKey,
		Version:  version,
		Config:   tcfg,
		Endpoint: cfg.Telemetry.Endpoint,
	})
	if err != nil {
		LogError("telemetry client unavailable", err)
		return telemetry.NewNoopClient()
	}
	return client
}

// resolveTask maps an id or unique id prefix to the stored task.
func resolveTask(ctx context.Context, svc *chores.Service, idOrPrefix string) (models.Task, error) {
	id, err := svc.Resolve(ctx, idOrPrefix)
	if err != nil {
		return models.Task{}, err
	}
	return svc.Get(ctx, id)
}

// selectTaskInteractive presents a prompt to the user to select a task from a list.
// It can be filtered using the provided filter function.
func selectTaskInteractive(tasks []models.Task, filterFn func(models.Task) bool, label string) (models.Task, error) {
	var candidates []models.Task
	for _, t := range tasks {
		if filterFn == nil || filterFn(t) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return models.Task{}, ErrNoTasksFound
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   `> {{ .Name | cyan }} ({{ .Size }}, {{ .Month }})`,
		Inactive: `  {{ .Name | faint }} ({{ .Size }}, {{ .Month }})`,
		Selected: `{{ "✔" | green }} {{ .Name | faint }}`,
		Details: `
--------- Task Details ----------
{{ "ID:\t" | faint }} {{ .ID }}
{{ "Name:\t" | faint }} {{ .Name }}
{{ "Size:\t" | faint }} {{ .Size }}
{{ "Value:\t" | faint }} {{ printf "%.2f" .Value }}
{{ "Due:\t" | faint }} {{ .DueDate }}`,
	}

	searcher := func(input string, index int) bool {
		task := candidates[index]
		input = strings.ToLower(input)
		return strings.Contains(strings.ToLower(task.Name), input) || strings.HasPrefix(task.ID, input)
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     candidates,
		Templates: templates,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return models.Task{}, err // Return error as is (includes promptui.ErrInterrupt)
	}
	return candidates[i], nil
}
