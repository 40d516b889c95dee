package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"trk-cli/internal/app"
)

type route int

const (
	routeLogin route = iota
	routeTasks
	routeDashboard
	routeChat
)

// noticeTTL is how long a transient status-line notice stays visible.
const noticeTTL = 4 * time.Second

type notice struct {
	text  string
	isErr bool
	seq   int
}

// Model is the root TUI state. It owns the route, the per-view models and
// the transient notice line; all domain state lives in the application.
type Model struct {
	app    *app.Application
	route  route
	login  loginModel
	tasks  tasksModel
	chat   chatModel
	notice notice
	width  int
	height int
}

// New builds the root model. An unauthenticated launch lands on the login
// view; that is the client's route guard.
func New(application *app.Application) *Model {
	m := &Model{
		app:   application,
		login: newLoginModel(application.Config.AccountID),
		tasks: newTasksModel(application),
		chat:  newChatModel(application),
		route: routeLogin,
	}
	if application.Session.Authenticated() {
		m.route = routeTasks
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.route == routeTasks {
		return tea.Batch(m.tasks.loadCmd(), m.login.blink())
	}
	return m.login.blink()
}

// notify replaces the status line and schedules its expiry.
func (m *Model) notify(text string, isErr bool) tea.Cmd {
	m.notice.seq++
	m.notice.text = text
	m.notice.isErr = isErr
	seq := m.notice.seq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpireMsg{seq: seq}
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.login.setWidth(msg.Width)
		m.tasks.setWidth(msg.Width)
		m.chat.setWidth(msg.Width)
		return m, nil

	case noticeExpireMsg:
		if msg.seq == m.notice.seq {
			m.notice.text = ""
		}
		return m, nil

	case loginResultMsg:
		m.login.submitting = false
		if !msg.res.Success {
			return m, m.notify(msg.res.Message, true)
		}
		if err := m.app.Session.OnLogin(msg.res.AccessToken, msg.res.RefreshToken, msg.res.Payload); err != nil {
			m.app.Logger.Error("persisting session failed", map[string]interface{}{"error": err.Error()})
		}
		m.route = routeTasks
		welcome := msg.res.Message
		if welcome == "" {
			welcome = "Login successful"
		}
		return m, tea.Batch(m.notify(welcome, false), m.tasks.loadCmd())

	case tickMsg:
		if m.app.Timer.Tick(msg.gen) {
			return m, tickCmd(msg.gen)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+l":
			if m.route != routeLogin {
				m.app.Session.OnLogout()
				m.route = routeLogin
				m.login = newLoginModel(m.app.Config.AccountID)
				return m, tea.Batch(m.notify("Logged out", false), m.login.blink())
			}
		case "tab":
			if m.route != routeLogin && !m.tasks.dialogOpen() {
				return m, m.cycleRoute()
			}
		}
	}

	switch m.route {
	case routeLogin:
		return m.login.update(m, msg)
	case routeTasks:
		return m.tasks.update(m, msg)
	case routeChat:
		return m.chat.update(m, msg)
	default:
		return m, nil
	}
}

// cycleRoute moves tasks → dashboard → chat → tasks. Entering the chat view
// opens the conversation on first visit.
func (m *Model) cycleRoute() tea.Cmd {
	switch m.route {
	case routeTasks:
		m.route = routeDashboard
		return nil
	case routeDashboard:
		m.route = routeChat
		return m.chat.enterCmd()
	default:
		m.route = routeTasks
		return nil
	}
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.route {
	case routeLogin:
		b.WriteString(m.login.view())
	case routeTasks:
		b.WriteString(m.tasks.view())
	case routeDashboard:
		b.WriteString(m.renderDashboard())
	case routeChat:
		b.WriteString(m.chat.view())
	}

	b.WriteString("\n")
	if m.notice.text != "" {
		style := noticeStyle
		if m.notice.isErr {
			style = errorNoticeStyle
		}
		b.WriteString(style.Render(m.notice.text))
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := "trk"
	switch m.route {
	case routeLogin:
		title += " · sign in"
	case routeTasks:
		title += " · tasks"
	case routeDashboard:
		title += " · dashboard"
	case routeChat:
		title += " · assistant"
	}
	if user := m.app.Session.Identity(); user.Username != "" && m.route != routeLogin {
		title += fmt.Sprintf(" · %s", user.Username)
	}
	return headerStyle.Width(max(20, m.width-2)).Render(title)
}

func (m *Model) renderDashboard() string {
	var b strings.Builder
	b.WriteString(mutedStyle.Render("Dashboard"))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("Nothing here yet. Reports are on the way."))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderFooter() string {
	switch m.route {
	case routeLogin:
		return helpStyle.Render("enter submit · tab next field · ctrl+c quit")
	case routeTasks:
		if m.tasks.dialogOpen() {
			return helpStyle.Render("tab focus · ctrl+s submit · esc cancel")
		}
		return helpStyle.Render("↑/↓ move · enter select · s start · p pause · x complete · r refresh · tab view · ctrl+l logout · ctrl+c quit")
	case routeChat:
		return helpStyle.Render("enter send · tab view · ctrl+l logout · ctrl+c quit")
	default:
		return helpStyle.Render("tab view · ctrl+l logout · ctrl+c quit")
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
