package tasks

import (
	"context"
	"sync"

	"trk-cli/internal/api"
)

// Task is the normalized shape the rest of the client works with. Status is
// server-defined and treated as opaque; the two values the client itself can
// submit are "completed" and "in progress".
type Task struct {
	ID             string
	Name           string
	ProjectName    string
	SupervisorName string
	Status         string
}

// StatusPending is the default when the server omits a status.
const StatusPending = "pending"

// Fetcher is the gateway slice the registry needs.
type Fetcher interface {
	FetchTasks(ctx context.Context, aceUserID string) ([]api.TaskRecord, api.Result)
}

// Registry holds the task list for the logged-in user. Refresh replaces the
// list wholesale; there is no merging and no polling, the presentation layer
// re-fetches after any mutating action.
type Registry struct {
	mu      sync.Mutex
	client  Fetcher
	tasks   []Task
	loading bool
}

func NewRegistry(client Fetcher) *Registry {
	return &Registry{client: client}
}

// Refresh fetches and normalizes the task list for an operational user id.
// Any fetch failure or non-array response resets the registry to empty
// rather than leaving stale rows. The loading flag is cleared on every path.
func (r *Registry) Refresh(ctx context.Context, aceUserID string) []Task {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()

	records, res := r.client.FetchTasks(ctx, aceUserID)

	normalized := make([]Task, 0, len(records))
	if res.Success {
		for _, rec := range records {
			normalized = append(normalized, Normalize(rec))
		}
	}

	r.mu.Lock()
	r.tasks = normalized
	r.loading = false
	r.mu.Unlock()
	return normalized
}

// Normalize maps one server row to the uniform Task shape, falling back
// through the name variants different backend versions emit.
func Normalize(rec api.TaskRecord) Task {
	name := rec.TaskName
	if name == "" {
		name = rec.Name
	}
	if name == "" {
		name = rec.TaskTitle
	}
	status := rec.Status
	if status == "" {
		status = StatusPending
	}
	return Task{
		ID:             rec.TaskID,
		Name:           name,
		ProjectName:    rec.ProjectName,
		SupervisorName: rec.SupervisorName,
		Status:         status,
	}
}

// Tasks returns the current snapshot of the list.
func (r *Registry) Tasks() []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Loading reports whether a refresh is in flight.
func (r *Registry) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}
