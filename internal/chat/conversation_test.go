package chat

import (
	"context"
	"testing"

	"trk-cli/internal/api"
)

type fakeChatAPI struct {
	conversationID string
	stored         []api.ChatMessage
	askResult      api.AskResult
	postFails      bool
	posted         []api.ChatMessage
}

func (f *fakeChatAPI) StartConversation(ctx context.Context, userID int64) string {
	return f.conversationID
}

func (f *fakeChatAPI) GetConversation(ctx context.Context, conversationID string) []api.ChatMessage {
	return f.stored
}

func (f *fakeChatAPI) PostMessage(ctx context.Context, conversationID, sender, text string) *api.ChatMessage {
	msg := api.ChatMessage{Sender: sender, Text: text}
	f.posted = append(f.posted, msg)
	if f.postFails {
		return nil
	}
	return &msg
}

func (f *fakeChatAPI) AskQuestion(ctx context.Context, userID int64, question string) api.AskResult {
	return f.askResult
}

func TestOpen_FailureMeansNotReady(t *testing.T) {
	c := NewConversation(&fakeChatAPI{conversationID: ""})
	if c.Open(context.Background(), 42) {
		t.Fatalf("Open succeeded without a conversation id")
	}
	if c.Ready() {
		t.Fatalf("Ready after failed Open")
	}
}

func TestOpen_HydratesTranscript(t *testing.T) {
	f := &fakeChatAPI{
		conversationID: "conv-1",
		stored: []api.ChatMessage{
			{Sender: SenderUser, Text: "hi"},
			{Sender: SenderAssistant, Text: "hello"},
		},
	}
	c := NewConversation(f)
	if !c.Open(context.Background(), 42) {
		t.Fatalf("Open failed")
	}
	if got := c.History(); len(got) != 2 || got[0].Text != "hi" {
		t.Fatalf("history = %+v", got)
	}
}

func TestSend_AppendsInOrder(t *testing.T) {
	f := &fakeChatAPI{
		conversationID: "conv-1",
		askResult:      api.AskResult{Result: api.Result{Success: true}, Answer: "42 hours"},
	}
	c := NewConversation(f)
	c.Open(context.Background(), 42)

	answer := c.Send(context.Background(), 42, "how long?")
	if answer != "42 hours" {
		t.Fatalf("answer = %q", answer)
	}

	history := c.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Sender != SenderUser || history[0].Text != "how long?" {
		t.Fatalf("first entry = %+v, want the user question", history[0])
	}
	if history[1].Sender != SenderAssistant || history[1].Text != "42 hours" {
		t.Fatalf("second entry = %+v, want the assistant answer", history[1])
	}
	// Server posts happen in the same order: user first, assistant second.
	if len(f.posted) != 2 || f.posted[0].Sender != SenderUser || f.posted[1].Sender != SenderAssistant {
		t.Fatalf("posted = %+v", f.posted)
	}
}

func TestSend_AskFailureUsesDetailMessage(t *testing.T) {
	f := &fakeChatAPI{
		conversationID: "conv-1",
		askResult:      api.AskResult{Result: api.Result{Success: false, Message: "model offline"}},
	}
	c := NewConversation(f)
	c.Open(context.Background(), 42)

	if got := c.Send(context.Background(), 42, "q"); got != "model offline" {
		t.Fatalf("answer = %q, want server detail", got)
	}
}

func TestSend_AskFailureWithoutDetailFallsBack(t *testing.T) {
	f := &fakeChatAPI{
		conversationID: "conv-1",
		askResult:      api.AskResult{Result: api.Result{Success: false}},
	}
	c := NewConversation(f)
	c.Open(context.Background(), 42)

	if got := c.Send(context.Background(), 42, "q"); got != FallbackAnswer {
		t.Fatalf("answer = %q, want fallback", got)
	}
}

func TestSend_KeepsLocalOrderWhenServerPostFails(t *testing.T) {
	f := &fakeChatAPI{
		conversationID: "conv-1",
		postFails:      true,
		askResult:      api.AskResult{Result: api.Result{Success: true}, Answer: "ok"},
	}
	c := NewConversation(f)
	c.Open(context.Background(), 42)
	c.Send(context.Background(), 42, "q")

	history := c.History()
	if len(history) != 2 || history[0].Sender != SenderUser || history[1].Sender != SenderAssistant {
		t.Fatalf("history = %+v, want send order despite post failures", history)
	}
}

func TestSend_WithoutOpenIsNoOp(t *testing.T) {
	f := &fakeChatAPI{}
	c := NewConversation(f)

	if got := c.Send(context.Background(), 42, "q"); got != "" {
		t.Fatalf("Send without conversation returned %q", got)
	}
	if len(f.posted) != 0 {
		t.Fatalf("Send without conversation posted messages: %+v", f.posted)
	}
}
