package chat

import (
	"context"
	"sync"

	"trk-cli/internal/api"
)

// Senders recognized in a transcript.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// FallbackAnswer is shown as the assistant's reply when agent/ask fails
// without a server-provided detail message.
const FallbackAnswer = "Sorry, something went wrong."

// ChatAPI is the gateway slice the conversation needs.
type ChatAPI interface {
	StartConversation(ctx context.Context, userID int64) string
	GetConversation(ctx context.Context, conversationID string) []api.ChatMessage
	PostMessage(ctx context.Context, conversationID, sender, text string) *api.ChatMessage
	AskQuestion(ctx context.Context, userID int64, question string) api.AskResult
}

// Conversation is the client side of one user's chat transcript. Messages
// are appended in send order and never reordered or deleted locally; the
// server copy is best-effort.
type Conversation struct {
	mu      sync.Mutex
	client  ChatAPI
	id      string
	history []api.ChatMessage
}

func NewConversation(client ChatAPI) *Conversation {
	return &Conversation{client: client}
}

// Open starts (or resumes) the conversation for userID and hydrates the
// transcript from the server. It reports whether a conversation is
// available; when it is not, Send must not be called.
func (c *Conversation) Open(ctx context.Context, userID int64) bool {
	id := c.client.StartConversation(ctx, userID)
	if id == "" {
		return false
	}
	history := c.client.GetConversation(ctx, id)

	c.mu.Lock()
	c.id = id
	c.history = history
	c.mu.Unlock()
	return true
}

// Ready reports whether Open succeeded.
func (c *Conversation) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id != ""
}

// Send runs the full exchange for one user question, strictly in order:
// append the user message, ask the assistant, append the assistant message.
// A failed ask still produces an assistant entry carrying the failure
// detail, so the transcript always alternates. The assistant's text is
// returned for convenience.
func (c *Conversation) Send(ctx context.Context, userID int64, text string) string {
	c.mu.Lock()
	id := c.id
	c.mu.Unlock()
	if id == "" {
		return ""
	}

	c.append(ctx, id, SenderUser, text)

	res := c.client.AskQuestion(ctx, userID, text)
	answer := res.Answer
	if !res.Success {
		answer = res.Message
		if answer == "" {
			answer = FallbackAnswer
		}
	}

	c.append(ctx, id, SenderAssistant, answer)
	return answer
}

// append posts the message to the server and records it locally. The local
// transcript keeps send order even when the server post fails.
func (c *Conversation) append(ctx context.Context, id, sender, text string) {
	msg := c.client.PostMessage(ctx, id, sender, text)
	if msg == nil {
		msg = &api.ChatMessage{Sender: sender, Text: text}
	}
	c.mu.Lock()
	c.history = append(c.history, *msg)
	c.mu.Unlock()
}

// History returns a copy of the transcript, oldest first.
func (c *Conversation) History() []api.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.ChatMessage, len(c.history))
	copy(out, c.history)
	return out
}
