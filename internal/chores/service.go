// Package chores implements the chore list operations: value distribution,
// recurring instance expansion and the read-modify-write task lifecycle.
package chores

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/josephgoksu/chorepay/internal/util"
	"github.com/josephgoksu/chorepay/models"
	"github.com/josephgoksu/chorepay/store"
)

// DefaultBonus is paid on top of earned value when every task of the period is done.
const DefaultBonus = 500.0

// maxSaveAttempts covers the first save plus three retries after a conflict.
const maxSaveAttempts = 4

// paymentDay is the day of month from which a payment may be requested with tasks still open.
const paymentDay = 28

// Options configures a Service. Zero values select the defaults.
type Options struct {
	Pool          float64
	Bonus         float64
	MaxImageBytes int
	RequireProof  bool
	Now           func() time.Time
	NewID         func() string
	Logger        *slog.Logger
}

// Service runs chore operations against a TaskStore.
type Service struct {
	store        store.TaskStore
	proofs       *store.ProofStore
	calc         Calculator
	expander     Expander
	bonus        float64
	maxImage     int
	requireProof bool
	now          func() time.Time
	newID        func() string
	log          *slog.Logger
}

// NewService creates a Service. proofs may be nil, in which case image uploads are rejected.
func NewService(ts store.TaskStore, proofs *store.ProofStore, opts Options) *Service {
	if opts.Pool <= 0 {
		opts.Pool = DefaultPool
	}
	if opts.Bonus < 0 {
		opts.Bonus = 0
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = util.NewID
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		store:        ts,
		proofs:       proofs,
		calc:         Calculator{Pool: opts.Pool},
		expander:     Expander{NewID: opts.NewID},
		bonus:        opts.Bonus,
		maxImage:     opts.MaxImageBytes,
		requireProof: opts.RequireProof,
		now:          opts.Now,
		newID:        opts.NewID,
		log:          opts.Logger,
	}
}

// Pool returns the configured monthly pool.
func (s *Service) Pool() float64 {
	return s.calc.Pool
}

// CurrentPeriod returns the period of the service clock.
func (s *Service) CurrentPeriod() Period {
	return PeriodOf(s.now())
}

// mutate runs a read-modify-write cycle. fn edits the snapshot and reports
// whether it must be saved. A save that hits store.ErrConflict starts over
// from a fresh read.
func (s *Service) mutate(ctx context.Context, op string, fn func(snap *models.Snapshot) (bool, error)) (models.Snapshot, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.Snapshot{}, err
		}

		snap, err := s.store.Load()
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("load tasks: %w", err)
		}

		save, err := fn(&snap)
		if err != nil {
			return models.Snapshot{}, err
		}
		if !save {
			return snap, nil
		}

		saved, err := s.store.Save(snap)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, store.ErrConflict) || attempt >= maxSaveAttempts {
			return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Debug("task document changed during update, retrying", "op", op, "attempt", attempt)
	}
}

// List expands recurring templates for the current period, persisting the
// result when it changed, and returns the tasks of month (all when empty).
func (s *Service) List(ctx context.Context, month string) ([]models.Task, error) {
	if month != "" {
		if _, err := ParsePeriod(month); err != nil {
			return nil, fmt.Errorf("%w: month must be YYYY-MM", ErrValidation)
		}
	}

	var discarded []string
	snap, err := s.mutate(ctx, "expand recurring tasks", func(snap *models.Snapshot) (bool, error) {
		discarded = discarded[:0]
		expanded, changed := s.expander.Expand(snap.Tasks, s.now())
		if !changed {
			return false, nil
		}
		for _, t := range snap.Tasks {
			if t.Generated && t.HasPicture() {
				discarded = append(discarded, *t.Picture)
			}
		}
		s.calc.Apply(expanded)
		snap.Tasks = expanded
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	// Regenerated instances never carry a picture, so these files are orphans.
	for _, ref := range discarded {
		s.removeProof(ref)
	}

	if month == "" {
		return snap.Tasks, nil
	}
	filtered := make([]models.Task, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		if t.Month == month {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// Get returns the task with id.
func (s *Service) Get(ctx context.Context, id string) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}
	snap, err := s.store.Load()
	if err != nil {
		return models.Task{}, fmt.Errorf("load tasks: %w", err)
	}
	i := snap.FindTask(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snap.Tasks[i], nil
}

// Resolve maps a full id or a unique id prefix to a stored task id.
func (s *Service) Resolve(ctx context.Context, idOrPrefix string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	snap, err := s.store.Load()
	if err != nil {
		return "", fmt.Errorf("load tasks: %w", err)
	}
	ids := make([]string, len(snap.Tasks))
	for i, t := range snap.Tasks {
		ids[i] = t.ID
	}
	id, err := util.ResolveTaskID(ids, idOrPrefix)
	if errors.Is(err, util.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return id, err
}

// TaskFields carries the client-settable fields of a task. Nil means "not given".
// Value is accepted for compatibility and always ignored.
type TaskFields struct {
	Name          *string            `json:"name"`
	Size          *models.TaskSize   `json:"size"`
	Month         *string            `json:"month"`
	Recurring     *models.Recurrence `json:"recurring"`
	DueDate       *string            `json:"dueDate"`
	Completed     *bool              `json:"completed"`
	CompletedDate *time.Time         `json:"completedDate"`
	Picture       *string            `json:"picture"`
	UserName      *string            `json:"userName"`
	Value         *float64           `json:"value"`
}

func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// Create appends a new task. It always starts incomplete, without a picture,
// and with its value assigned by the calculator.
func (s *Service) Create(ctx context.Context, in TaskFields) (models.Task, error) {
	task := models.Task{
		ID:        s.newID(),
		Size:      models.SizeSmall,
		Month:     s.CurrentPeriod().String(),
		Recurring: models.RecurNone,
	}
	if in.Name != nil {
		task.Name = strings.TrimSpace(*in.Name)
	}
	if in.Size != nil && in.Size.Valid() {
		task.Size = *in.Size
	}
	if in.Month != nil && *in.Month != "" {
		task.Month = *in.Month
	}
	if in.Recurring != nil && *in.Recurring != "" {
		task.Recurring = *in.Recurring
	}
	if in.DueDate != nil {
		task.DueDate = *in.DueDate
	}
	if in.UserName != nil {
		task.UserName = strings.TrimSpace(*in.UserName)
	}
	if err := models.ValidateStruct(task); err != nil {
		return models.Task{}, validationError(err)
	}

	var created models.Task
	_, err := s.mutate(ctx, "create task", func(snap *models.Snapshot) (bool, error) {
		snap.Tasks = append(snap.Tasks, task)
		s.calc.Apply(snap.Tasks)
		created = snap.Tasks[len(snap.Tasks)-1]
		return true, nil
	})
	if err != nil {
		return models.Task{}, err
	}
	s.log.Info("task created", "id", created.ID, "name", created.Name, "size", created.Size)
	return created, nil
}

// Update merges the given fields onto task id. A data URI picture is decoded,
// checked and written to the proof store; the task keeps the reference.
func (s *Service) Update(ctx context.Context, id string, in TaskFields) (models.Task, error) {
	var proof *ProofImage
	if in.Picture != nil && IsDataURI(*in.Picture) {
		img, err := DecodeDataURI(*in.Picture, s.maxImage)
		if err != nil {
			return models.Task{}, err
		}
		if s.proofs == nil {
			return models.Task{}, fmt.Errorf("%w: image uploads are disabled", ErrValidation)
		}
		proof = &img
	}

	var staged *store.StagedProof
	if proof != nil {
		var err error
		if staged, err = s.proofs.Stage(id, proof.Ext, proof.Data); err != nil {
			return models.Task{}, fmt.Errorf("store proof image: %w", err)
		}
	}

	var (
		updated models.Task
		stale   string
	)
	_, err := s.mutate(ctx, "update task", func(snap *models.Snapshot) (bool, error) {
		stale = ""
		i := snap.FindTask(id)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		task := snap.Tasks[i]
		previous := ""
		if task.HasPicture() {
			previous = *task.Picture
		}

		if err := s.merge(&task, in); err != nil {
			return false, err
		}
		normalize(&task)
		if s.requireProof && task.Completed && !task.HasPicture() && proof == nil {
			return false, fmt.Errorf("%w: a proof picture is required to complete a task", ErrValidation)
		}
		if err := models.ValidateStruct(task); err != nil {
			return false, validationError(err)
		}

		if staged != nil {
			ref := staged.Ref()
			task.Picture = &ref
		}
		if previous != "" && (!task.HasPicture() || *task.Picture != previous) {
			stale = previous
		}

		snap.Tasks[i] = task
		s.calc.Apply(snap.Tasks)
		updated = snap.Tasks[i]
		return true, nil
	})
	if err != nil {
		if staged != nil {
			staged.Discard()
		}
		return models.Task{}, err
	}

	if staged != nil {
		// The task already points at the final name; a failed move leaves it without a file.
		if err := staged.Commit(); err != nil {
			return models.Task{}, fmt.Errorf("store proof image: %w", err)
		}
	}
	if stale != "" {
		s.removeProof(stale)
	}
	return updated, nil
}

// SetCompleted marks task id done or not done.
func (s *Service) SetCompleted(ctx context.Context, id string, done bool) (models.Task, error) {
	return s.Update(ctx, id, TaskFields{Completed: &done})
}

// merge applies the given fields to task. Pictures that are not data URIs
// are only accepted when they clear the picture or repeat the current one.
func (s *Service) merge(task *models.Task, in TaskFields) error {
	if in.Name != nil {
		task.Name = strings.TrimSpace(*in.Name)
	}
	if in.Size != nil {
		if !in.Size.Valid() {
			return fmt.Errorf("%w: unknown size %q", ErrValidation, *in.Size)
		}
		task.Size = *in.Size
	}
	if in.Month != nil {
		task.Month = *in.Month
	}
	if in.Recurring != nil {
		task.Recurring = *in.Recurring
	}
	if in.DueDate != nil {
		task.DueDate = *in.DueDate
	}
	if in.UserName != nil {
		task.UserName = strings.TrimSpace(*in.UserName)
	}

	if in.Picture != nil && !IsDataURI(*in.Picture) {
		switch {
		case *in.Picture == "":
			task.Picture = nil
		case task.HasPicture() && *task.Picture == *in.Picture:
		default:
			return fmt.Errorf("%w: picture must be a base64 data URI", ErrValidation)
		}
	}

	if in.Completed != nil {
		task.Completed = *in.Completed
		if !task.Completed {
			task.CompletedDate = nil
		}
	}
	if task.Completed {
		switch {
		case in.CompletedDate != nil:
			ts := in.CompletedDate.UTC()
			task.CompletedDate = &ts
		case task.CompletedDate == nil:
			ts := s.now().UTC()
			task.CompletedDate = &ts
		}
	}
	return nil
}

// normalize fills fields that hand-edited or legacy documents may lack.
func normalize(t *models.Task) {
	if !t.Size.Valid() {
		t.Size = models.SizeSmall
	}
	if t.Recurring == "" {
		t.Recurring = models.RecurNone
	}
}

// Delete removes task id and, best-effort, its proof image.
func (s *Service) Delete(ctx context.Context, id string) error {
	var picture string
	_, err := s.mutate(ctx, "delete task", func(snap *models.Snapshot) (bool, error) {
		i := snap.FindTask(id)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		picture = ""
		if snap.Tasks[i].HasPicture() {
			picture = *snap.Tasks[i].Picture
		}
		snap.Tasks = append(snap.Tasks[:i:i], snap.Tasks[i+1:]...)
		s.calc.Apply(snap.Tasks)
		return true, nil
	})
	if err != nil {
		return err
	}

	s.log.Info("task deleted", "id", id)
	if picture != "" {
		s.removeProof(picture)
	}
	return nil
}

// Reset starts the next period for every non-template task: completion and
// proof are cleared and the month advances by one. Templates are untouched.
// It returns the number of tasks reset.
func (s *Service) Reset(ctx context.Context) (int, error) {
	var (
		count    int
		pictures []string
	)
	fallback := s.CurrentPeriod().Next().String()

	_, err := s.mutate(ctx, "reset tasks", func(snap *models.Snapshot) (bool, error) {
		count, pictures = 0, pictures[:0]
		for i := range snap.Tasks {
			t := &snap.Tasks[i]
			if t.IsTemplate() {
				continue
			}
			if t.HasPicture() {
				pictures = append(pictures, *t.Picture)
			}
			t.Completed = false
			t.Picture = nil
			t.CompletedDate = nil
			t.Value = 0
			if p, err := ParsePeriod(t.Month); err == nil {
				t.Month = p.Next().String()
			} else {
				t.Month = fallback
			}
			count++
		}
		s.calc.Apply(snap.Tasks)
		return true, nil
	})
	if err != nil {
		return 0, err
	}

	for _, ref := range pictures {
		s.removeProof(ref)
	}
	s.log.Info("tasks reset for next period", "count", count)
	return count, nil
}

// Recalculate reassigns values and saves only when one changed.
func (s *Service) Recalculate(ctx context.Context) (bool, error) {
	changed := false
	_, err := s.mutate(ctx, "recalculate values", func(snap *models.Snapshot) (bool, error) {
		changed = s.calc.Apply(snap.Tasks)
		return changed, nil
	})
	return changed, err
}

// ApplyExternalEdit accepts a data file that was edited outside the service,
// when the store supports that, and recalculates values for the edited list.
func (s *Service) ApplyExternalEdit(ctx context.Context) (bool, error) {
	if a, ok := s.store.(store.Adopter); ok {
		adopted, err := a.Adopt()
		if err != nil {
			return false, fmt.Errorf("accept edited tasks: %w", err)
		}
		if adopted {
			s.log.Info("task document edited outside the service")
		}
	}
	return s.Recalculate(ctx)
}

// SeedIfEmpty writes the starter chores for the current period into an empty list.
func (s *Service) SeedIfEmpty(ctx context.Context) (bool, error) {
	seeded := false
	_, err := s.mutate(ctx, "seed tasks", func(snap *models.Snapshot) (bool, error) {
		seeded = len(snap.Tasks) == 0
		if !seeded {
			return false, nil
		}
		snap.Tasks = StarterTasks(s.CurrentPeriod(), s.newID)
		s.calc.Apply(snap.Tasks)
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if seeded {
		s.log.Info("seeded starter tasks", "count", len(starterChores), "month", s.CurrentPeriod().String())
	}
	return seeded, nil
}

func (s *Service) removeProof(ref string) {
	if s.proofs == nil {
		return
	}
	if err := s.proofs.Remove(ref); err != nil {
		s.log.Warn("failed to remove proof image", "ref", ref, "error", err)
	}
}
