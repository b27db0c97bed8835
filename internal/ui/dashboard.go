package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/josephgoksu/chorepay/models"
)

// DashboardBackend is what the dashboard reads and toggles.
type DashboardBackend interface {
	Report(ctx context.Context, month string) (models.Report, error)
	SetCompleted(ctx context.Context, id string, done bool) (models.Task, error)
}

// RunDashboard shows the interactive month view until the user quits.
func RunDashboard(ctx context.Context, backend DashboardBackend, month string) error {
	p := tea.NewProgram(NewDashboard(ctx, backend, month), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}
	return nil
}

type dashboardKeys struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k dashboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Refresh, k.Quit}
}

func (k dashboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultDashboardKeys = dashboardKeys{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "enter", "x"), key.WithHelp("space", "toggle done")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// reportMsg carries a freshly loaded report, or the error that prevented it.
type reportMsg struct {
	report models.Report
	err    error
}

// DashboardModel is the bubbletea model behind the dashboard command.
type DashboardModel struct {
	ctx      context.Context
	backend  DashboardBackend
	month    string
	today    string
	report   models.Report
	loaded   bool
	cursor   int
	err      error
	progress progress.Model
	help     help.Model
	keys     dashboardKeys
}

// NewDashboard creates the model. An empty month follows the current period.
func NewDashboard(ctx context.Context, backend DashboardBackend, month string) DashboardModel {
	return DashboardModel{
		ctx:      ctx,
		backend:  backend,
		month:    month,
		today:    time.Now().Format(time.DateOnly),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     defaultDashboardKeys,
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.load()
}

func (m DashboardModel) load() tea.Cmd {
	return func() tea.Msg {
		r, err := m.backend.Report(m.ctx, m.month)
		return reportMsg{report: r, err: err}
	}
}

func (m DashboardModel) toggle(task models.Task) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.backend.SetCompleted(m.ctx, task.ID, !task.Completed); err != nil {
			return reportMsg{err: err}
		}
		r, err := m.backend.Report(m.ctx, m.month)
		return reportMsg{report: r, err: err}
	}
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.loaded = true
		m.report = msg.report
		if m.cursor >= len(m.report.Tasks) {
			m.cursor = max(len(m.report.Tasks)-1, 0)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.progress.Width = max(min(msg.Width-4, 60), 10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.report.Tasks)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.Toggle):
			if m.cursor < len(m.report.Tasks) {
				return m, m.toggle(m.report.Tasks[m.cursor])
			}
		}
	}
	return m, nil
}

// dueToday lists the open tasks whose due date is today.
func (m DashboardModel) dueToday() []string {
	var names []string
	for _, t := range m.report.Tasks {
		if !t.Completed && t.DueDate == m.today {
			names = append(names, t.Name)
		}
	}
	return names
}

func (m DashboardModel) View() string {
	var s strings.Builder
	s.WriteString("\n" + StyleHeader.Render("Chores "+m.report.Month) + "\n\n")

	if !m.loaded {
		if m.err != nil {
			s.WriteString(StyleError.Render("  "+m.err.Error()) + "\n")
		} else {
			s.WriteString(StyleSubtle.Render("  Loading…") + "\n")
		}
		return s.String()
	}

	r := m.report
	s.WriteString("  " + m.progress.ViewAs(r.Progress/100) + "\n")
	s.WriteString(fmt.Sprintf("  %d of %d done  •  earned %s  •  payout %s\n",
		r.Completed, r.Total, StyleMoney.Render(Money(r.Earned)), StyleMoney.Render(Money(r.Payout()))))
	if r.BonusEarned {
		s.WriteString("  " + StyleSuccess.Render("Bonus of "+Money(r.Bonus)+" earned!") + "\n")
	}
	if due := m.dueToday(); len(due) > 0 {
		s.WriteString("  " + StyleWarning.Render("Due today: "+strings.Join(due, ", ")) + "\n")
	}
	s.WriteString("\n")

	if len(r.Tasks) == 0 {
		s.WriteString(StyleSubtle.Render("  No tasks this month.") + "\n")
	}
	for i, t := range r.Tasks {
		cursor := "  "
		style := StyleRowNormal
		if t.Completed {
			style = StyleRowDone
		}
		if i == m.cursor {
			cursor = "▶ "
			style = StyleRowActive
		}
		line := fmt.Sprintf("%s %-36s %3s %10s", CheckMark(t.Completed), Truncate(t.Name, 36), SizeLabel(t.Size), Money(t.Value))
		s.WriteString(cursor + style.Render(line) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + StyleError.Render("  "+m.err.Error()) + "\n")
	}
	s.WriteString("\n" + m.help.View(m.keys) + "\n")
	return s.String()
}
