package chores

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/josephgoksu/chorepay/models"
)

// Report summarizes the due tasks of month (the current period when empty).
// Templates are not due instances and are left out.
func (s *Service) Report(ctx context.Context, month string) (models.Report, error) {
	if month == "" {
		month = s.CurrentPeriod().String()
	}
	tasks, err := s.List(ctx, month)
	if err != nil {
		return models.Report{}, err
	}

	r := models.Report{
		Month: month,
		Pool:  s.calc.Pool,
		Bonus: s.bonus,
		Tasks: make([]models.Task, 0, len(tasks)),
	}
	for _, t := range tasks {
		if t.IsTemplate() {
			continue
		}
		r.Tasks = append(r.Tasks, t)
		r.Total++
		if t.Completed {
			r.Completed++
			r.Earned += t.Value
		}
	}
	r.Earned = roundCents(r.Earned)
	if r.Total > 0 {
		r.Progress = roundCents(float64(r.Completed) / float64(r.Total) * 100)
	}
	r.BonusEarned = r.Total > 0 && r.Completed == r.Total
	r.PaymentReady = r.BonusEarned || s.now().Day() >= paymentDay
	return r, nil
}

// csvHeader is the column layout of the report download.
var csvHeader = []string{"Name", "Value", "Completed", "Date", "Picture", "DueDate"}

// ExportCSV writes the tasks of month (all tasks when empty) as CSV.
func (s *Service) ExportCSV(ctx context.Context, month string, w io.Writer) error {
	tasks, err := s.List(ctx, month)
	if err != nil {
		return err
	}
	return WriteCSV(w, tasks)
}

// WriteCSV writes tasks in the report download layout.
func WriteCSV(w io.Writer, tasks []models.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range tasks {
		completed := "No"
		if t.Completed {
			completed = "Yes"
		}
		date := ""
		if t.CompletedDate != nil {
			date = t.CompletedDate.UTC().Format(time.RFC3339)
		}
		picture := ""
		if t.HasPicture() {
			picture = *t.Picture
		}
		row := []string{t.Name, strconv.FormatFloat(t.Value, 'f', 2, 64), completed, date, picture, t.DueDate}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
