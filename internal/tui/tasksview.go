package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"trk-cli/internal/app"
	"trk-cli/internal/session"
	"trk-cli/internal/tasks"
	"trk-cli/internal/timer"
)

// tasksModel is the task list plus the timer header and, while a completion
// is being collected, the status dialog.
type tasksModel struct {
	app     *app.Application
	list    []tasks.Task
	cursor  int
	loading bool
	dialog  *dialogModel
	width   int
}

func newTasksModel(application *app.Application) tasksModel {
	return tasksModel{app: application, loading: true, width: 80}
}

func (t *tasksModel) setWidth(w int) {
	t.width = w
	if t.dialog != nil {
		t.dialog.setWidth(w)
	}
}

func (t *tasksModel) dialogOpen() bool { return t.dialog != nil }

// loadCmd refreshes the registry for the identity's operational user id.
func (t *tasksModel) loadCmd() tea.Cmd {
	registry := t.app.Tasks
	ace := t.app.Session.Identity().AceUserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return tasksLoadedMsg{tasks: registry.Refresh(ctx, ace)}
	}
}

// selectCmd runs the reconciler's select flow off the UI loop: reset, open
// log lookup, then a duration refresh for an adopted log.
func (t *tasksModel) selectCmd(task tasks.Task, user session.Identity) tea.Cmd {
	reconciler := t.app.Timer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		reconciler.SelectTask(ctx, &task, user)
		reconciler.RefreshDuration(ctx)
		return taskSelectedMsg{taskID: task.ID}
	}
}

func (t *tasksModel) startCmd(user session.Identity) tea.Cmd {
	reconciler := t.app.Timer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		gen, err := reconciler.Start(ctx, user)
		return startResultMsg{gen: gen, err: err}
	}
}

// tickCmd schedules the next one-second tick for a generation. The
// generation check in the reconciler is what cancels a stale tick chain.
func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (t *tasksModel) pauseCmd() tea.Cmd {
	reconciler := t.app.Timer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return pauseResultMsg{err: reconciler.Pause(ctx)}
	}
}

func (t *tasksModel) submitCmd(user session.Identity, status, comment, taskName string) tea.Cmd {
	reconciler := t.app.Timer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := reconciler.SubmitCompletion(ctx, user, status, comment)
		return completionResultMsg{status: status, taskName: taskName, err: err}
	}
}

func (t *tasksModel) update(m *Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		t.list = msg.tasks
		t.loading = false
		if t.cursor >= len(t.list) {
			t.cursor = 0
		}
		return m, nil

	case taskSelectedMsg:
		snap := t.app.Timer.Snapshot()
		if snap.Task != nil && snap.Task.ID == msg.taskID && snap.LogID != "" {
			return m, m.notify(fmt.Sprintf("Resumed open log at %s", timer.FormatClock(snap.Elapsed)), false)
		}
		return m, nil

	case startResultMsg:
		if msg.err != nil {
			return m, m.notify(msg.err.Error(), true)
		}
		return m, tea.Batch(m.notify("Timer running", false), tickCmd(msg.gen))

	case pauseResultMsg:
		if msg.err != nil {
			return m, m.notify(msg.err.Error(), true)
		}
		return m, m.notify("Task paused and saved", false)

	case completionResultMsg:
		if msg.err != nil {
			// Validation failures keep the dialog open for correction.
			return m, m.notify(msg.err.Error(), true)
		}
		t.dialog = nil
		note := fmt.Sprintf("%s has been marked as %s", msg.taskName, msg.status)
		return m, tea.Batch(m.notify(note, false), t.loadCmd())

	case tea.KeyMsg:
		if t.dialog != nil {
			return t.dialog.update(m, t, msg)
		}
		return t.handleKey(m, msg)
	}

	if t.dialog != nil {
		var cmd tea.Cmd
		t.dialog.comment, cmd = t.dialog.comment.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (t *tasksModel) handleKey(m *Model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	user := t.app.Session.Identity()
	snap := t.app.Timer.Snapshot()

	switch msg.String() {
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(t.list)-1 {
			t.cursor++
		}
	case "enter":
		if t.cursor < len(t.list) {
			// Switching tasks always resets the session; unsaved elapsed
			// time for the previous task is discarded.
			return m, t.selectCmd(t.list[t.cursor], user)
		}
	case "r":
		t.loading = true
		return m, t.loadCmd()
	case "s":
		if snap.Status == timer.StatusRunning {
			return m, nil
		}
		return m, t.startCmd(user)
	case "p":
		if snap.Status != timer.StatusRunning {
			return m, nil
		}
		return m, t.pauseCmd()
	case "x":
		if err := t.app.Timer.RequestCompletion(); err != nil {
			if errors.Is(err, timer.ErrNotRunning) {
				return m, m.notify("Start the timer before completing the task", true)
			}
			return m, m.notify(err.Error(), true)
		}
		d := newDialogModel(snap.Task, t.width)
		t.dialog = &d
		return m, d.comment.Focus()
	}
	return m, nil
}

func (t *tasksModel) view() string {
	var b strings.Builder
	b.WriteString(t.renderTimer())
	b.WriteString("\n")

	if t.dialog != nil {
		b.WriteString(t.dialog.view())
		return b.String()
	}

	if t.loading {
		b.WriteString(mutedStyle.Render("Loading tasks..."))
		b.WriteString("\n")
		return b.String()
	}
	if len(t.list) == 0 {
		b.WriteString(mutedStyle.Render("No tasks assigned."))
		b.WriteString("\n")
		return b.String()
	}

	snap := t.app.Timer.Snapshot()
	for i, task := range t.list {
		line := fmt.Sprintf("%-30s %s", truncate(task.Name, 30),
			mutedStyle.Render(task.ProjectName+" · "+task.SupervisorName))
		marker := "  "
		if snap.Task != nil && snap.Task.ID == task.ID {
			marker = "▸ "
		}
		row := marker + line + " " + badgeStyle.Render(task.Status)
		if i == t.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderTimer is the clock header: elapsed time, timer status and the
// currently selected task.
func (t *tasksModel) renderTimer() string {
	snap := t.app.Timer.Snapshot()

	var status string
	switch snap.Status {
	case timer.StatusRunning:
		status = statusRunningStyle.Render("RUNNING")
	case timer.StatusPaused:
		status = statusPausedStyle.Render("PAUSED")
	default:
		status = statusIdleStyle.Render("IDLE")
	}

	line := clockStyle.Render(timer.FormatClock(snap.Elapsed)) + "  " + status
	if snap.Task != nil {
		line += "  " + mutedStyle.Render(snap.Task.Name+" · "+snap.Task.ProjectName)
	} else {
		line += "  " + mutedStyle.Render("no task selected")
	}
	return line
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
