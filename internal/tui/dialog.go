package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"trk-cli/internal/tasks"
)

// statusOptions are the two statuses the client may submit; everything else
// is server-defined and read-only here.
var statusOptions = []struct {
	value string
	label string
}{
	{value: "completed", label: "Completed"},
	{value: "in progress", label: "In progress"},
}

const (
	dialogFocusStatus = iota
	dialogFocusComment
)

// dialogModel collects a completion status and comment. Nothing is sent
// until both pass validation; the reconciler enforces that again before any
// network call.
type dialogModel struct {
	task      *tasks.Task
	statusIdx int // -1 until the user picks one
	focus     int
	comment   textarea.Model
	width     int
}

func newDialogModel(task *tasks.Task, width int) dialogModel {
	ta := textarea.New()
	ta.Placeholder = "Add any comments about the completed task..."
	ta.CharLimit = 2000
	ta.SetHeight(4)
	ta.SetWidth(min(60, max(30, width-10)))

	return dialogModel{
		task:      task,
		statusIdx: -1,
		focus:     dialogFocusStatus,
		comment:   ta,
		width:     width,
	}
}

func (d *dialogModel) setWidth(w int) {
	d.width = w
	d.comment.SetWidth(min(60, max(30, w-10)))
}

func (d *dialogModel) status() string {
	if d.statusIdx < 0 {
		return ""
	}
	return statusOptions[d.statusIdx].value
}

func (d *dialogModel) update(m *Model, t *tasksModel, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		t.dialog = nil
		return m, nil
	case "tab", "shift+tab":
		if d.focus == dialogFocusStatus {
			d.focus = dialogFocusComment
			return m, d.comment.Focus()
		}
		d.focus = dialogFocusStatus
		d.comment.Blur()
		return m, nil
	case "ctrl+s":
		taskName := ""
		if d.task != nil {
			taskName = d.task.Name
		}
		return m, t.submitCmd(m.app.Session.Identity(), d.status(), d.comment.Value(), taskName)
	}

	if d.focus == dialogFocusStatus {
		switch msg.String() {
		case "left", "right", "up", "down", " ":
			if d.statusIdx < 0 {
				d.statusIdx = 0
			} else {
				d.statusIdx = (d.statusIdx + 1) % len(statusOptions)
			}
		case "enter":
			if d.statusIdx < 0 {
				d.statusIdx = 0
			}
			d.focus = dialogFocusComment
			return m, d.comment.Focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	d.comment, cmd = d.comment.Update(msg)
	return m, cmd
}

func (d *dialogModel) view() string {
	var b strings.Builder
	b.WriteString("Complete Task\n\n")

	if d.task != nil {
		b.WriteString(d.task.Name)
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(d.task.ProjectName + " · " + d.task.SupervisorName))
		b.WriteString("\n\n")
	}

	b.WriteString("Status *")
	if d.focus == dialogFocusStatus {
		b.WriteString(mutedStyle.Render("  (←/→ to choose)"))
	}
	b.WriteString("\n")
	for i, opt := range statusOptions {
		marker := "( ) "
		if i == d.statusIdx {
			marker = "(•) "
		}
		line := marker + opt.label
		if d.focus == dialogFocusStatus && i == max(d.statusIdx, 0) {
			b.WriteString(selectedRowStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nComments\n")
	b.WriteString(d.comment.View())
	b.WriteString("\n")

	return dialogStyle.Render(b.String())
}
