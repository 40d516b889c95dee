package tui

import "github.com/charmbracelet/lipgloss"

// Color palette shared by every view.
const (
	colorBg      = "#0F172A" // Slate 900
	colorBgCard  = "#1E293B" // Slate 800
	colorFg      = "#F8FAFC" // Slate 50
	colorFgMuted = "#94A3B8" // Slate 400
	colorPrimary = "#3B82F6" // Blue 500
	colorAccent  = "#06B6D4" // Cyan 500
	colorSuccess = "#10B981" // Emerald 500
	colorWarning = "#F59E0B" // Amber 500
	colorError   = "#EF4444" // Red 500
	colorBorder  = "#334155" // Slate 700
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorFg)).
			Background(lipgloss.Color(colorBgCard)).
			Padding(0, 2).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(colorBorder))

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent))

	statusRunningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorSuccess))
	statusPausedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorWarning))
	statusIdleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorFgMuted))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(colorFg)).
				Background(lipgloss.Color(colorPrimary)).
				Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorFg)).
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorFgMuted))

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorBg)).
			Background(lipgloss.Color(colorAccent)).
			Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorWarning)).
			Padding(0, 1)

	errorNoticeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorError)).
				Padding(0, 1)

	userMsgStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary))

	assistantMsgStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(colorSuccess))

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(1, 2)

	inputFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorFgMuted)).
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(colorFg)).
				Background(lipgloss.Color(colorBgCard)).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorFg)).
			Padding(0, 1)
)
