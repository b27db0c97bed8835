package chores

import (
	"fmt"
	"time"

	"github.com/josephgoksu/chorepay/models"
)

// weeklyDays are the fixed due days of the four weekly instances.
var weeklyDays = [4]int{7, 14, 21, 28}

// Expander regenerates the dated instances of recurring templates.
type Expander struct {
	NewID func() string
}

// Expand drops every generated task and derives fresh instances for the
// templates of now's period. Templates keep their order; instances follow them.
// When the result matches the input (ignoring instance ids) the input slice is
// returned as is and changed is false.
func (e Expander) Expand(tasks []models.Task, now time.Time) (out []models.Task, changed bool) {
	period := PeriodOf(now)
	current := period.String()

	out = make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Generated {
			out = append(out, t)
		}
	}

	templates := len(out)
	for i := 0; i < templates; i++ {
		t := out[i]
		if t.Month != current || !t.IsTemplate() {
			continue
		}
		switch t.Recurring {
		case models.RecurDaily:
			for day := 1; day <= period.Days(); day++ {
				out = append(out, e.instance(t, fmt.Sprintf("%s (Day %d)", t.Name, day), period.Date(day)))
			}
		case models.RecurWeekly:
			for n, day := range weeklyDays {
				out = append(out, e.instance(t, fmt.Sprintf("%s (Week %d)", t.Name, n+1), period.Date(day)))
			}
		case models.RecurMonthly:
			out = append(out, e.instance(t, t.Name+" (Monthly)", period.Date(dayOfMonth(t.DueDate))))
		}
	}

	if sameContent(tasks, out) {
		return tasks, false
	}
	return out, true
}

func (e Expander) instance(tmpl models.Task, name, due string) models.Task {
	return models.Task{
		ID:        e.NewID(),
		Name:      name,
		Size:      tmpl.Size,
		Value:     tmpl.Value,
		Month:     tmpl.Month,
		Recurring: models.RecurNone,
		DueDate:   due,
		UserName:  tmpl.UserName,
		Generated: true,
	}
}

// sameContent compares two lists position by position, ignoring the ids of generated tasks.
func sameContent(a, b []models.Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Generated && y.Generated {
			x.ID, y.ID = "", ""
		}
		if !taskEqual(x, y) {
			return false
		}
	}
	return true
}

func taskEqual(a, b models.Task) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Size != b.Size || a.Value != b.Value ||
		a.Month != b.Month || a.Recurring != b.Recurring || a.DueDate != b.DueDate ||
		a.Completed != b.Completed || a.UserName != b.UserName || a.Generated != b.Generated {
		return false
	}
	if (a.CompletedDate == nil) != (b.CompletedDate == nil) ||
		(a.CompletedDate != nil && !a.CompletedDate.Equal(*b.CompletedDate)) {
		return false
	}
	return a.HasPicture() == b.HasPicture() && (!a.HasPicture() || *a.Picture == *b.Picture)
}
