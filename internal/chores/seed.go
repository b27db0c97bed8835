package chores

import "github.com/josephgoksu/chorepay/models"

type starterChore struct {
	name string
	size models.TaskSize
	day  int
}

var starterChores = []starterChore{
	{"Pay Rent", models.SizeLarge, 1},
	{"Pay Phone Bill", models.SizeMedium, 5},
	{"Pay Electricity Bill", models.SizeMedium, 10},
	{"Laundry", models.SizeSmall, 7},
	{"Folding and Putting Away Laundry", models.SizeSmall, 7},
	{"Do Dishes", models.SizeSmall, 15},
	{"Feed Dogs Breakfast", models.SizeExtraSmall, 1},
	{"Feed Dogs Dinner", models.SizeExtraSmall, 1},
	{"Order Medicine", models.SizeMedium, 10},
	{"Pick up Medicine", models.SizeMedium, 12},
	{"Eat Breakfast", models.SizeExtraSmall, 1},
	{"Eat Dinner", models.SizeExtraSmall, 1},
	{"Sweep Floors", models.SizeSmall, 20},
	{"Vacuum", models.SizeMedium, 20},
	{"Mop", models.SizeMedium, 20},
	{"Shower or Bath", models.SizeSmall, 25},
	{"Grocery Shop", models.SizeMedium, 15},
	{"Take Dogs for Morning Walk", models.SizeExtraSmall, 1},
	{"Take Dogs for Afternoon or Evening Walk", models.SizeExtraSmall, 1},
}

// StarterTasks returns the default household list for period, with values unset.
func StarterTasks(period Period, newID func() string) []models.Task {
	tasks := make([]models.Task, 0, len(starterChores))
	for _, c := range starterChores {
		tasks = append(tasks, models.Task{
			ID:        newID(),
			Name:      c.name,
			Size:      c.size,
			Month:     period.String(),
			Recurring: models.RecurNone,
			DueDate:   period.Date(c.day),
		})
	}
	return tasks
}
