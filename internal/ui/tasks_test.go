package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/josephgoksu/chorepay/models"
	"github.com/stretchr/testify/assert"
)

func sampleReport() models.Report {
	pic := "/uploads/a.png"
	return models.Report{
		Month:     "2025-07",
		Total:     2,
		Completed: 1,
		Earned:    2400,
		Pool:      3000,
		Bonus:     500,
		Progress:  50,
		Tasks: []models.Task{
			{ID: "3f2a9c1e-7b4d-4e0f-9a51-2c8d6e0b1f34", Name: "Vacuum", Size: models.SizeLarge, Value: 2400, Month: "2025-07", Recurring: models.RecurNone, Completed: true, Picture: &pic},
			{ID: "b", Name: "Dishes", Size: models.SizeSmall, Value: 600, Month: "2025-07", Recurring: models.RecurNone},
		},
	}
}

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "XS", SizeLabel(models.SizeExtraSmall))
	assert.Equal(t, "L", SizeLabel(models.SizeLarge))
	assert.Equal(t, "huge", SizeLabel("huge"))
}

func TestRenderTaskList(t *testing.T) {
	var buf bytes.Buffer
	RenderTaskList(&buf, sampleReport().Tasks)

	out := buf.String()
	assert.Contains(t, out, "3f2a9c1e")
	assert.NotContains(t, out, "3f2a9c1e-7b4d", "ids are shortened")
	assert.Contains(t, out, "Vacuum")
	assert.Contains(t, out, "$2,400.00")
	assert.Contains(t, out, "📷")
}

func TestRenderTaskList_Template(t *testing.T) {
	var buf bytes.Buffer
	RenderTaskList(&buf, []models.Task{{ID: "t", Name: "Feed cat", Size: models.SizeSmall, Recurring: models.RecurDaily, Month: "2025-07"}})

	assert.Contains(t, buf.String(), "daily")
}

func TestRenderTaskList_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderTaskList(&buf, nil)
	assert.Contains(t, buf.String(), "No tasks.")
}

func TestReportSummary(t *testing.T) {
	r := sampleReport()
	out := ReportSummary(r)
	assert.Contains(t, out, "1 of 2 (50%)")
	assert.Contains(t, out, "$2,400.00")
	assert.Contains(t, out, "finish every task")
	assert.NotContains(t, out, "ready to request")

	r.Completed, r.BonusEarned, r.PaymentReady = 2, true, true
	out = ReportSummary(r)
	assert.Contains(t, out, "earned")
	assert.Contains(t, out, "$2,900.00")
	assert.Contains(t, out, "ready to request")
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	RenderReport(&buf, sampleReport())

	out := buf.String()
	assert.Contains(t, out, "Chores for 2025-07")
	assert.True(t, strings.Index(out, "Payout") < strings.Index(out, "Dishes"), "summary comes before the table")
}

func TestColumnCap(t *testing.T) {
	assert.Equal(t, 40, columnCap(200))
	assert.Equal(t, 36, columnCap(100))
	assert.Equal(t, 16, columnCap(60))
	assert.Equal(t, 16, columnCap(0))
}
