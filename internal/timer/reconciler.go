package timer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"trk-cli/internal/api"
	"trk-cli/internal/session"
	"trk-cli/internal/tasks"
)

// Status is the local timer state. The server never sees it directly; it
// only sees start/pause/stop calls.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

// Validation failures surfaced before any network call is made.
var (
	ErrNoTaskSelected = errors.New("select a task first")
	ErrAlreadyRunning = errors.New("timer is already running")
	ErrNotRunning     = errors.New("timer is not running")
	ErrNoStatus       = errors.New("select a status before submitting")
	ErrShortComment   = errors.New("comment must be at least 10 characters long")
)

// MinCommentLen is the completion-comment floor enforced client-side.
const MinCommentLen = 10

// TimeAPI is the gateway slice the reconciler drives.
type TimeAPI interface {
	StartTime(ctx context.Context, userID int64, aceTaskID string) api.StartResult
	PauseTime(ctx context.Context, logID string, duration int) api.Result
	StopTime(ctx context.Context, req api.StopRequest) api.Result
	GetDuration(ctx context.Context, logID string) api.LogResult
	LatestLog(ctx context.Context, userID int64, taskID string) api.LogResult
}

// Logger matches the application's JSON-lines logger.
type Logger interface {
	Info(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

// Snapshot is a read-only copy of the reconciler state for rendering.
type Snapshot struct {
	Task    *tasks.Task
	LogID   string
	Elapsed int
	Status  Status
	Gen     int
}

// Reconciler binds the local elapsed-time counter to the server-side time
// log. Local state is authoritative while running; the server is the durable
// source of truth for persisted durations. Every transition out of running
// bumps the tick generation, so a tick scheduled before the transition can
// never increment elapsed time afterwards.
type Reconciler struct {
	mu      sync.Mutex
	client  TimeAPI
	log     Logger
	task    *tasks.Task
	logID   string
	elapsed int
	status  Status
	gen     int
}

func NewReconciler(client TimeAPI, log Logger) *Reconciler {
	if log == nil {
		log = nopLogger{}
	}
	return &Reconciler{client: client, log: log, status: StatusIdle}
}

// resetLocked discards the current session state. Unsaved elapsed time that
// was never paused is dropped here; the server keeps whatever was last
// persisted. Caller holds the mutex.
func (r *Reconciler) resetLocked() {
	r.gen++
	r.status = StatusIdle
	r.elapsed = 0
	r.logID = ""
}

// SelectTask switches the session to task. The reset is unconditional and
// happens before the open-log lookup, so the view always sees idle/zero
// state the moment a row is chosen. If the server knows an open log for
// (user, task) its id and duration are adopted; a failed lookup is logged
// and treated as "no existing log".
func (r *Reconciler) SelectTask(ctx context.Context, task *tasks.Task, user session.Identity) {
	r.mu.Lock()
	r.resetLocked()
	if task != nil {
		copied := *task
		r.task = &copied
	} else {
		r.task = nil
	}
	r.mu.Unlock()

	if task == nil || task.ID == "" || user.UserID == 0 {
		return
	}

	res := r.client.LatestLog(ctx, user.UserID, task.ID)
	if !res.Success {
		r.log.Error("latest log lookup failed", map[string]interface{}{
			"task_id": task.ID, "error": res.Message,
		})
		return
	}
	if res.LogID == "" {
		return
	}
	r.adoptLog(task.ID, res.LogID, res.Duration)
}

// adoptLog applies a lookup result, but only if it still corresponds to the
// currently selected task and nothing newer happened in between. A stale
// response arriving after a task switch or a start must not overwrite state.
func (r *Reconciler) adoptLog(taskID, logID string, duration int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.task == nil || r.task.ID != taskID {
		return
	}
	if r.status != StatusIdle || r.logID != "" {
		return
	}
	r.logID = logID
	if duration > 0 {
		r.elapsed = duration
	}
}

// RefreshDuration re-reads the server-side duration for the adopted log.
// With no log the counter stays at zero. The result is applied only while
// the same log is still bound and the timer has not started.
func (r *Reconciler) RefreshDuration(ctx context.Context) {
	r.mu.Lock()
	logID := r.logID
	r.mu.Unlock()
	if logID == "" {
		return
	}

	res := r.client.GetDuration(ctx, logID)
	if !res.Success {
		r.log.Error("duration refresh failed", map[string]interface{}{
			"log_id": logID, "error": res.Message,
		})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.logID == logID && r.status == StatusIdle {
		r.elapsed = res.Duration
	}
}

// Start moves idle or paused to running. It calls tasks/start, adopts the
// returned log id and returns the tick generation the caller must attach to
// its one-second ticks. Without a selected task the transition is refused
// and nothing changes.
func (r *Reconciler) Start(ctx context.Context, user session.Identity) (int, error) {
	r.mu.Lock()
	if r.task == nil {
		r.mu.Unlock()
		return 0, ErrNoTaskSelected
	}
	if r.status == StatusRunning {
		r.mu.Unlock()
		return 0, ErrAlreadyRunning
	}
	taskID := r.task.ID
	r.mu.Unlock()

	res := r.client.StartTime(ctx, user.UserID, taskID)
	if !res.Success {
		return 0, errors.New(res.Message)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.task == nil || r.task.ID != taskID {
		// Task switched while the start call was in flight; the reset
		// from the switch wins.
		return 0, ErrNoTaskSelected
	}
	r.logID = res.LogID
	r.status = StatusRunning
	r.gen++
	return r.gen, nil
}

// Tick advances the counter by one second. It reports whether the tick was
// current; a false return tells the caller to stop re-arming. Ticks from a
// previous generation are ignored outright, which is what makes pause and
// task switches drift-free.
func (r *Reconciler) Tick(gen int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen || r.status != StatusRunning {
		return false
	}
	r.elapsed++
	return true
}

// Pause freezes the counter immediately, then persists {log_id, duration}
// to the server. The local transition is kept even when persistence fails:
// local state wins and the sync is best-effort, the caller surfaces the
// error to the user.
func (r *Reconciler) Pause(ctx context.Context) error {
	r.mu.Lock()
	if r.task == nil {
		r.mu.Unlock()
		return ErrNoTaskSelected
	}
	if r.status != StatusRunning {
		r.mu.Unlock()
		return ErrNotRunning
	}
	r.status = StatusPaused
	r.gen++
	logID := r.logID
	elapsed := r.elapsed
	r.mu.Unlock()

	if logID == "" {
		return nil
	}
	res := r.client.PauseTime(ctx, logID, elapsed)
	if !res.Success {
		r.log.Error("pause sync failed", map[string]interface{}{
			"log_id": logID, "error": res.Message,
		})
		return fmt.Errorf("failed to save paused time: %s", res.Message)
	}
	return nil
}

// RequestCompletion validates that a completion dialog may open. The timer
// status itself does not change; collecting status and comment is the
// presentation layer's job.
func (r *Reconciler) RequestCompletion() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.task == nil {
		return ErrNoTaskSelected
	}
	if r.status == StatusIdle {
		return ErrNotRunning
	}
	return nil
}

// ValidateCompletion runs the client-side checks without touching the
// network: a status must be chosen and the trimmed comment must reach the
// minimum length.
func ValidateCompletion(status, comment string) error {
	if status == "" {
		return ErrNoStatus
	}
	if len(strings.TrimSpace(comment)) < MinCommentLen {
		return ErrShortComment
	}
	return nil
}

// SubmitCompletion closes the log with the chosen status and comment. On
// validation failure no network call is made. On success the session resets
// to idle/zero; the caller refreshes the task registry so the list reflects
// the new status. On a server failure the paused/running state stays as the
// most recent known-good local state.
func (r *Reconciler) SubmitCompletion(ctx context.Context, user session.Identity, status, comment string) error {
	if err := ValidateCompletion(status, comment); err != nil {
		return err
	}

	r.mu.Lock()
	if r.task == nil {
		r.mu.Unlock()
		return ErrNoTaskSelected
	}
	req := api.StopRequest{
		LogID:    r.logID,
		UserID:   user.UserID,
		TaskID:   r.task.ID,
		GUID:     user.GUID,
		Status:   status,
		Comment:  comment,
		Duration: r.elapsed,
	}
	r.mu.Unlock()

	res := r.client.StopTime(ctx, req)
	if !res.Success {
		return errors.New(res.Message)
	}

	r.mu.Lock()
	r.resetLocked()
	r.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current state for rendering.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := Snapshot{
		LogID:   r.logID,
		Elapsed: r.elapsed,
		Status:  r.status,
		Gen:     r.gen,
	}
	if r.task != nil {
		copied := *r.task
		snap.Task = &copied
	}
	return snap
}

// FormatClock renders elapsed seconds as zero-padded HH:MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
