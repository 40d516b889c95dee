package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trk-cli/internal/app"
	"trk-cli/internal/chat"
)

// chatModel is the assistant view: a transcript and a single-line-ish input.
// Assistant replies that look tabular render as tables, everything else as
// markdown; user text stays plain.
type chatModel struct {
	app      *app.Application
	input    textarea.Model
	spin     spinner.Model
	markdown *MarkdownRenderer
	loading  bool
	opened   bool
	ready    bool
	width    int
}

func newChatModel(application *app.Application) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.CharLimit = 2000
	ta.SetHeight(2)
	ta.SetWidth(72)
	ta.Prompt = "▍ "
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPrimary))

	return chatModel{
		app:      application,
		input:    ta,
		spin:     sp,
		markdown: NewMarkdownRenderer(),
		width:    80,
	}
}

func (c *chatModel) setWidth(w int) {
	c.width = w
	c.input.SetWidth(max(30, w-8))
}

// enterCmd opens the conversation the first time the view is shown.
func (c *chatModel) enterCmd() tea.Cmd {
	if c.opened {
		return nil
	}
	c.opened = true
	conv := c.app.Chat
	userID := c.app.Session.Identity().UserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return chatOpenedMsg{ok: conv.Open(ctx, userID)}
	}
}

// sendCmd runs the whole exchange sequentially: user message, question,
// assistant message. One command, so no two calls from the same action can
// interleave their effects.
func (c *chatModel) sendCmd(text string) tea.Cmd {
	conv := c.app.Chat
	userID := c.app.Session.Identity().UserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		conv.Send(ctx, userID, text)
		return chatAnswerMsg{}
	}
}

func (c *chatModel) update(m *Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chatOpenedMsg:
		c.ready = msg.ok
		if !msg.ok {
			return m, m.notify("Assistant is unavailable right now", true)
		}
		return m, nil

	case chatAnswerMsg:
		c.loading = false
		return m, nil

	case spinner.TickMsg:
		if c.loading {
			var cmd tea.Cmd
			c.spin, cmd = c.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			text := strings.TrimSpace(c.input.Value())
			if text == "" || c.loading {
				return m, nil
			}
			if !c.ready {
				return m, m.notify("Assistant is unavailable right now", true)
			}
			c.input.Reset()
			c.loading = true
			return m, tea.Batch(c.sendCmd(text), c.spin.Tick)
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return m, cmd
}

func (c *chatModel) view() string {
	var b strings.Builder

	history := c.app.Chat.History()
	if len(history) == 0 && !c.loading {
		b.WriteString(mutedStyle.Render("Ask the assistant about your tasks and tracked time."))
		b.WriteString("\n\n")
	}

	for _, msg := range history {
		if msg.Sender == chat.SenderUser {
			b.WriteString(userMsgStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.Text)
		} else {
			b.WriteString(assistantMsgStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(c.renderAssistant(msg.Text))
		}
		b.WriteString("\n\n")
	}

	if c.loading {
		b.WriteString(c.spin.View())
		b.WriteString(mutedStyle.Render(" Thinking..."))
		b.WriteString("\n\n")
	}

	b.WriteString(inputFrameStyle.Render(c.input.View()))
	b.WriteString("\n")
	return b.String()
}

// renderAssistant applies the content sniff: comma plus a newline means
// table, otherwise markdown. The sniff can misclassify prose with commas
// spread over lines; that is accepted.
func (c *chatModel) renderAssistant(text string) string {
	if chat.IsTabular(text) {
		return renderTable(chat.ParseCSV(text))
	}
	return c.markdown.Render(text, c.width-4)
}
