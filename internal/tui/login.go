package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldAccount = iota
	fieldUsername
	fieldPassword
	fieldCount
)

// loginModel is the sign-in form: account id, username, password.
type loginModel struct {
	inputs     [fieldCount]textinput.Model
	focus      int
	submitting bool
	width      int
}

func newLoginModel(defaultAccount string) loginModel {
	var m loginModel

	account := textinput.New()
	account.Placeholder = "Account ID"
	account.CharLimit = 64
	account.SetValue(defaultAccount)
	account.Focus()

	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 64

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	m.inputs[fieldAccount] = account
	m.inputs[fieldUsername] = username
	m.inputs[fieldPassword] = password
	return m
}

func (l *loginModel) blink() tea.Cmd {
	return textinput.Blink
}

func (l *loginModel) setWidth(w int) {
	l.width = w
	for i := range l.inputs {
		l.inputs[i].Width = min(48, max(20, w-10))
	}
}

func (l *loginModel) setFocus(i int) {
	l.focus = i
	for j := range l.inputs {
		if j == i {
			l.inputs[j].Focus()
		} else {
			l.inputs[j].Blur()
		}
	}
}

func (l *loginModel) update(m *Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			l.setFocus((l.focus + 1) % fieldCount)
			return m, nil
		case "shift+tab", "up":
			l.setFocus((l.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case "enter":
			if l.focus < fieldPassword {
				l.setFocus(l.focus + 1)
				return m, nil
			}
			return l.submit(m)
		}
	}

	var cmd tea.Cmd
	l.inputs[l.focus], cmd = l.inputs[l.focus].Update(msg)
	return m, cmd
}

func (l *loginModel) submit(m *Model) (tea.Model, tea.Cmd) {
	account := strings.TrimSpace(l.inputs[fieldAccount].Value())
	username := strings.TrimSpace(l.inputs[fieldUsername].Value())
	password := l.inputs[fieldPassword].Value()
	if account == "" || username == "" || password == "" {
		return m, m.notify("Account ID, username and password are all required", true)
	}
	if l.submitting {
		return m, nil
	}
	l.submitting = true

	client := m.app.Client
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return loginResultMsg{res: client.Login(ctx, account, username, password)}
	}
}

func (l *loginModel) view() string {
	var b strings.Builder
	b.WriteString(mutedStyle.Render("Sign in to your workspace"))
	b.WriteString("\n\n")
	labels := [fieldCount]string{"Account", "Username", "Password"}
	for i := range l.inputs {
		b.WriteString(mutedStyle.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(inputFrameStyle.Render(l.inputs[i].View()))
		b.WriteString("\n")
	}
	if l.submitting {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Signing in..."))
		b.WriteString("\n")
	}
	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
