package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskSize is the effort tag that drives a task's share of the reward pool.
type TaskSize string

const (
	SizeExtraSmall TaskSize = "extra-small"
	SizeSmall      TaskSize = "small"
	SizeMedium     TaskSize = "medium"
	SizeLarge      TaskSize = "large"
)

// sizeWeights is the fixed weight table. Unknown sizes weigh 1.
var sizeWeights = map[TaskSize]int{
	SizeExtraSmall: 1,
	SizeSmall:      2,
	SizeMedium:     4,
	SizeLarge:      8,
}

// Weight returns the pool weight for the size.
func (s TaskSize) Weight() int {
	if w, ok := sizeWeights[s]; ok {
		return w
	}
	return 1
}

// Valid reports whether s is one of the known sizes.
func (s TaskSize) Valid() bool {
	_, ok := sizeWeights[s]
	return ok
}

// Recurrence is how often a template task spawns generated instances.
type Recurrence string

const (
	RecurNone    Recurrence = "none"
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

// Valid reports whether r is one of the known recurrences.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurNone, RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

// Task is one chore record. Value is derived from Size and never authoritative.
type Task struct {
	ID            string     `json:"id" yaml:"id" toml:"id" validate:"required"`
	Name          string     `json:"name" yaml:"name" toml:"name" validate:"required,max=255"`
	Size          TaskSize   `json:"size" yaml:"size" toml:"size" validate:"required,oneof=extra-small small medium large"`
	Value         float64    `json:"value" yaml:"value" toml:"value" validate:"min=0"`
	Month         string     `json:"month" yaml:"month" toml:"month" validate:"required,datetime=2006-01"`
	Recurring     Recurrence `json:"recurring" yaml:"recurring" toml:"recurring" validate:"required,oneof=none daily weekly monthly"`
	DueDate       string     `json:"dueDate,omitempty" yaml:"dueDate,omitempty" toml:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Completed     bool       `json:"completed" yaml:"completed" toml:"completed"`
	CompletedDate *time.Time `json:"completedDate" yaml:"completedDate,omitempty" toml:"completedDate,omitempty"`
	Picture       *string    `json:"picture" yaml:"picture,omitempty" toml:"picture,omitempty"`
	UserName      string     `json:"userName,omitempty" yaml:"userName,omitempty" toml:"userName,omitempty"`
	Generated     bool       `json:"generated,omitempty" yaml:"generated,omitempty" toml:"generated,omitempty"`
}

// IsTemplate reports whether the task spawns generated instances.
func (t Task) IsTemplate() bool {
	return t.Recurring != "" && t.Recurring != RecurNone
}

// HasPicture reports whether a proof image reference is set.
func (t Task) HasPicture() bool {
	return t.Picture != nil && *t.Picture != ""
}

// Snapshot is the whole persisted document. Version increases by one on every save.
type Snapshot struct {
	Version   int64     `json:"version" yaml:"version" toml:"version"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt" toml:"updatedAt"`
	Tasks     []Task    `json:"tasks" yaml:"tasks" toml:"tasks" validate:"dive"`
}

// FindTask returns the index of the task with the given id, or -1.
func (s Snapshot) FindTask(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("field '%s' failed rule '%s' (value: '%v')", e.Field(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}
