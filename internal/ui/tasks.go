package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/josephgoksu/chorepay/internal/util"
	"github.com/josephgoksu/chorepay/models"
)

// sizeLabels are the short size tags shown in tables.
var sizeLabels = map[models.TaskSize]string{
	models.SizeExtraSmall: "XS",
	models.SizeSmall:      "S",
	models.SizeMedium:     "M",
	models.SizeLarge:      "L",
}

// SizeLabel returns the short tag for a size.
func SizeLabel(s models.TaskSize) string {
	if l, ok := sizeLabels[s]; ok {
		return l
	}
	return string(s)
}

// RenderTaskList writes tasks as a table. Templates are marked with their
// recurrence instead of a value, since only their instances are paid.
func RenderTaskList(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, StyleSubtle.Render(" No tasks."))
		return
	}

	t := &Table{
		Headers:  []string{"", "ID", "Name", "Size", "Value", "Month", "Due", "Proof"},
		Align:    []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight},
		MaxWidth: columnCap(TerminalWidth(120)),
	}
	for _, task := range tasks {
		value := Money(task.Value)
		if task.IsTemplate() {
			value = string(task.Recurring)
		}
		proof := ""
		if task.HasPicture() {
			proof = "📷"
		}
		t.Rows = append(t.Rows, []string{
			CheckMark(task.Completed),
			util.ShortID(task.ID, 0),
			task.Name,
			SizeLabel(task.Size),
			value,
			task.Month,
			task.DueDate,
			proof,
		})
	}
	fmt.Fprint(w, t.Render())
}

// columnCap is the widest a task table column may get in a terminal of
// termWidth cells. The short columns need about 64 cells together.
func columnCap(termWidth int) int {
	return min(max(termWidth-64, 16), 40)
}

// ReportSummary returns the headline numbers of a report as plain lines.
func ReportSummary(r models.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Done:    %d of %d (%s)\n", r.Completed, r.Total, Percent(r.Progress))
	fmt.Fprintf(&sb, "Earned:  %s of %s\n", StyleMoney.Render(Money(r.Earned)), Money(r.Pool))
	if r.BonusEarned {
		fmt.Fprintf(&sb, "Bonus:   %s %s\n", StyleMoney.Render(Money(r.Bonus)), StyleSuccess.Render("earned"))
	} else {
		fmt.Fprintf(&sb, "Bonus:   %s %s\n", Money(r.Bonus), StyleSubtle.Render("finish every task to earn it"))
	}
	fmt.Fprintf(&sb, "Payout:  %s", StyleMoney.Render(Money(r.Payout())))
	if r.PaymentReady {
		sb.WriteString("  " + StyleSuccess.Render("ready to request"))
	}
	return sb.String()
}

// RenderReport writes the summary panel followed by the task table.
func RenderReport(w io.Writer, r models.Report) {
	fmt.Fprintln(w, NewPanel("Chores for "+r.Month, ReportSummary(r)).WithBorderColor(ColorMoney).Render())
	RenderTaskList(w, r.Tasks)
}
