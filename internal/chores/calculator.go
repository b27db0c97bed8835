package chores

import (
	"math"

	"github.com/josephgoksu/chorepay/models"
)

// DefaultPool is the monthly amount split across all tasks.
const DefaultPool = 3000.0

// Calculator distributes Pool across tasks in proportion to their size weight.
type Calculator struct {
	Pool float64
}

// Apply overwrites every task's value in place and reports whether any value changed.
// An empty list is a no-op.
func (c Calculator) Apply(tasks []models.Task) bool {
	totalWeight := 0
	for _, t := range tasks {
		totalWeight += t.Size.Weight()
	}

	unit := 0.0
	if totalWeight > 0 {
		unit = c.Pool / float64(totalWeight)
	}

	changed := false
	for i := range tasks {
		v := roundCents(unit * float64(tasks[i].Size.Weight()))
		if tasks[i].Value != v {
			tasks[i].Value = v
			changed = true
		}
	}
	return changed
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
