package tui

import (
	"trk-cli/internal/api"
	"trk-cli/internal/tasks"
)

// loginResultMsg carries the outcome of the user/login call.
type loginResultMsg struct {
	res api.LoginResult
}

// tasksLoadedMsg delivers a refreshed, normalized task list.
type tasksLoadedMsg struct {
	tasks []tasks.Task
}

// taskSelectedMsg signals that the select-task flow (reset, open-log lookup,
// duration refresh) has resolved for the given task id.
type taskSelectedMsg struct {
	taskID string
}

// startResultMsg carries the tick generation to arm, or the refusal.
type startResultMsg struct {
	gen int
	err error
}

// tickMsg is one second of running time for a specific generation. Ticks
// from a superseded generation are dropped by the reconciler.
type tickMsg struct {
	gen int
}

type pauseResultMsg struct {
	err error
}

// completionResultMsg is the outcome of a completion submission; status is
// echoed for the confirmation notice.
type completionResultMsg struct {
	status   string
	taskName string
	err      error
}

// chatOpenedMsg reports whether a conversation is available.
type chatOpenedMsg struct {
	ok bool
}

// chatAnswerMsg signals that the send flow (post question, await answer,
// post assistant reply) finished; the transcript is read from the store.
type chatAnswerMsg struct{}

// noticeExpireMsg clears the status-line notice with matching sequence.
type noticeExpireMsg struct {
	seq int
}
