package tasks

import (
	"context"
	"testing"

	"trk-cli/internal/api"
)

type fakeFetcher struct {
	records []api.TaskRecord
	result  api.Result
	calls   int
}

func (f *fakeFetcher) FetchTasks(ctx context.Context, aceUserID string) ([]api.TaskRecord, api.Result) {
	f.calls++
	return f.records, f.result
}

func TestNormalize_NameFallbacksAndDefaultStatus(t *testing.T) {
	tests := []struct {
		name string
		rec  api.TaskRecord
		want Task
	}{
		{
			name: "task_name preferred",
			rec:  api.TaskRecord{TaskID: "1", TaskName: "A", Name: "B", TaskTitle: "C", Status: "done"},
			want: Task{ID: "1", Name: "A", Status: "done"},
		},
		{
			name: "name second",
			rec:  api.TaskRecord{TaskID: "2", Name: "B", TaskTitle: "C"},
			want: Task{ID: "2", Name: "B", Status: StatusPending},
		},
		{
			name: "task_title last",
			rec:  api.TaskRecord{TaskID: "3", TaskTitle: "C"},
			want: Task{ID: "3", Name: "C", Status: StatusPending},
		},
		{
			name: "missing status defaults to pending",
			rec:  api.TaskRecord{TaskID: "4", TaskName: "D", ProjectName: "P", SupervisorName: "S"},
			want: Task{ID: "4", Name: "D", ProjectName: "P", SupervisorName: "S", Status: StatusPending},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.rec); got != tc.want {
				t.Fatalf("Normalize() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRefresh_ReplacesWholesale(t *testing.T) {
	f := &fakeFetcher{
		records: []api.TaskRecord{{TaskID: "1", TaskName: "A"}},
		result:  api.Result{Success: true},
	}
	r := NewRegistry(f)

	r.Refresh(context.Background(), "ACE-7")
	if got := r.Tasks(); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("tasks after first refresh = %+v", got)
	}

	f.records = []api.TaskRecord{{TaskID: "2", TaskName: "B"}, {TaskID: "3", TaskName: "C"}}
	r.Refresh(context.Background(), "ACE-7")
	got := r.Tasks()
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "3" {
		t.Fatalf("tasks after second refresh = %+v, want wholesale replacement", got)
	}
}

func TestRefresh_FailureResetsToEmpty(t *testing.T) {
	f := &fakeFetcher{
		records: []api.TaskRecord{{TaskID: "1", TaskName: "A"}},
		result:  api.Result{Success: true},
	}
	r := NewRegistry(f)
	r.Refresh(context.Background(), "ACE-7")

	f.result = api.Result{Success: false, Message: "boom"}
	r.Refresh(context.Background(), "ACE-7")

	if got := r.Tasks(); len(got) != 0 {
		t.Fatalf("tasks after failed refresh = %+v, want empty", got)
	}
	if r.Loading() {
		t.Fatalf("loading flag not cleared after failure")
	}
}
