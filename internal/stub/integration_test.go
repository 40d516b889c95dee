package stub

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"trk-cli/internal/api"
	"trk-cli/internal/chat"
	"trk-cli/internal/session"
	"trk-cli/internal/tasks"
	"trk-cli/internal/timer"
)

// harness wires the real client stack against an httptest-hosted stub,
// the same way the application assembles it.
type harness struct {
	stub    *Server
	client  *api.Client
	session *session.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s := NewServer()
	srv := httptest.NewServer(s.Engine())
	t.Cleanup(srv.Close)

	store := session.NewStore(t.TempDir())
	return &harness{
		stub:    s,
		client:  api.NewClient(srv.URL, store, nil),
		session: store,
	}
}

func (h *harness) login(t *testing.T) session.Identity {
	t.Helper()
	res := h.client.Login(context.Background(), "acme", "jdoe", "secret")
	if !res.Success {
		t.Fatalf("login failed: %+v", res)
	}
	if err := h.session.OnLogin(res.AccessToken, res.RefreshToken, res.Payload); err != nil {
		t.Fatalf("persisting session: %v", err)
	}
	return h.session.Identity()
}

func TestLoginPersistsSessionAndLoadsTasks(t *testing.T) {
	h := newHarness(t)
	user := h.login(t)

	if !h.session.Authenticated() {
		t.Fatalf("not authenticated after login")
	}
	if user.Username != "jdoe" || user.UserID != 42 || user.AceUserID != "ACE-7" {
		t.Fatalf("identity = %+v", user)
	}

	reg := tasks.NewRegistry(h.client)
	reg.Refresh(context.Background(), user.AceUserID)

	list := reg.Tasks()
	if len(list) != 3 {
		t.Fatalf("task count = %d, want 3", len(list))
	}
	byID := map[string]tasks.Task{}
	for _, task := range list {
		byID[task.ID] = task
	}
	if got := byID["T-100"]; got.Name != "Quarterly report" || got.Status != "in progress" {
		t.Fatalf("T-100 = %+v", got)
	}
	// T-200 arrives with the alternate name field and no status at all.
	if got := byID["T-200"]; got.Name != "Onboarding docs" || got.Status != tasks.StatusPending {
		t.Fatalf("T-200 = %+v", got)
	}
	if got := byID["T-300"]; got.Name != "API cleanup" {
		t.Fatalf("T-300 = %+v", got)
	}
}

func TestTimerSessionAgainstServer(t *testing.T) {
	h := newHarness(t)
	user := h.login(t)
	ctx := context.Background()

	rec := timer.NewReconciler(h.client, nil)
	taskA := &tasks.Task{ID: "T-100", Name: "Quarterly report"}
	taskB := &tasks.Task{ID: "T-200", Name: "Onboarding docs"}

	// Fresh task, no server log yet.
	rec.SelectTask(ctx, taskA, user)
	if snap := rec.Snapshot(); snap.LogID != "" || snap.Elapsed != 0 || snap.Status != timer.StatusIdle {
		t.Fatalf("snapshot after select = %+v", snap)
	}

	gen, err := rec.Start(ctx, user)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := rec.Snapshot()
	if snap.Status != timer.StatusRunning || snap.LogID == "" {
		t.Fatalf("snapshot after start = %+v", snap)
	}
	logID := snap.LogID

	for i := 0; i < 5; i++ {
		if !rec.Tick(gen) {
			t.Fatalf("tick %d rejected while running", i)
		}
	}
	if err := rec.Pause(ctx); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if rec.Tick(gen) {
		t.Fatalf("tick accepted after pause")
	}

	// Switching away resets to zero; switching back adopts the open log
	// with the duration the pause persisted.
	rec.SelectTask(ctx, taskB, user)
	if snap := rec.Snapshot(); snap.Elapsed != 0 || snap.LogID != "" {
		t.Fatalf("snapshot on task B = %+v", snap)
	}
	rec.SelectTask(ctx, taskA, user)
	snap = rec.Snapshot()
	if snap.LogID != logID {
		t.Fatalf("log id after reselect = %q, want %q", snap.LogID, logID)
	}
	if snap.Elapsed != 5 {
		t.Fatalf("elapsed after reselect = %d, want 5", snap.Elapsed)
	}

	// Resume and finish the task.
	if _, err := rec.Start(ctx, user); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := rec.SubmitCompletion(ctx, user, "completed", "wrapped up the report"); err != nil {
		t.Fatalf("submit completion: %v", err)
	}
	if snap := rec.Snapshot(); snap.Status != timer.StatusIdle || snap.LogID != "" || snap.Elapsed != 0 {
		t.Fatalf("snapshot after completion = %+v", snap)
	}

	// The server closed the log and updated the task row.
	reg := tasks.NewRegistry(h.client)
	reg.Refresh(ctx, user.AceUserID)
	for _, task := range reg.Tasks() {
		if task.ID == "T-100" && task.Status != "completed" {
			t.Fatalf("T-100 status = %q, want completed", task.Status)
		}
	}
	rec.SelectTask(ctx, taskA, user)
	if snap := rec.Snapshot(); snap.LogID != "" {
		t.Fatalf("closed log adopted on reselect: %+v", snap)
	}
}

func TestExpiredAccessTokenIsRefreshedTransparently(t *testing.T) {
	h := newHarness(t)
	user := h.login(t)
	before := h.session.AccessToken()

	h.stub.ExpireAccessTokens()

	reg := tasks.NewRegistry(h.client)
	reg.Refresh(context.Background(), user.AceUserID)
	if got := reg.Tasks(); len(got) != 3 {
		t.Fatalf("tasks after token expiry = %d, want refresh to recover", len(got))
	}
	if after := h.session.AccessToken(); after == before || after == "" {
		t.Fatalf("access token not rotated by refresh")
	}
}

func TestChatRoundTripAndTabularAnswer(t *testing.T) {
	h := newHarness(t)
	user := h.login(t)
	ctx := context.Background()

	// Seed some logged time so the summary answer has rows.
	rec := timer.NewReconciler(h.client, nil)
	rec.SelectTask(ctx, &tasks.Task{ID: "T-300", Name: "API cleanup"}, user)
	gen, err := rec.Start(ctx, user)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 3; i++ {
		rec.Tick(gen)
	}
	if err := rec.Pause(ctx); err != nil {
		t.Fatalf("pause: %v", err)
	}

	conv := chat.NewConversation(h.client)
	if !conv.Open(ctx, user.UserID) {
		t.Fatalf("opening conversation failed")
	}

	answer := conv.Send(ctx, user.UserID, "give me a summary of my hours")
	if !chat.IsTabular(answer) {
		t.Fatalf("summary answer not tabular: %q", answer)
	}
	rows := chat.ParseCSV(answer)
	if len(rows) < 2 || rows[0][0] != "task_id" {
		t.Fatalf("csv rows = %v", rows)
	}
	found := false
	for _, row := range rows[1:] {
		if row[0] == "T-300" && row[1] == "3" {
			found = true
		}
	}
	if !found {
		t.Fatalf("logged time missing from summary: %v", rows)
	}

	plain := conv.Send(ctx, user.UserID, "hello there")
	if chat.IsTabular(plain) {
		t.Fatalf("plain answer misclassified as tabular: %q", plain)
	}
	if !strings.Contains(plain, "hello there") {
		t.Fatalf("plain answer = %q", plain)
	}

	// Both exchanges were persisted in send order and survive a reopen.
	reopened := chat.NewConversation(h.client)
	if !reopened.Open(ctx, user.UserID) {
		t.Fatalf("reopening conversation failed")
	}
	history := reopened.History()
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
	if history[0].Sender != chat.SenderUser || history[1].Sender != chat.SenderAssistant {
		t.Fatalf("history order = %+v", history)
	}
}
