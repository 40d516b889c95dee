package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Login authenticates against user/login. It is the one unauthenticated
// call; the caller hands the returned payload to the session store.
func (c *Client) Login(ctx context.Context, accountID, username, password string) LoginResult {
	body := map[string]string{
		"account_id": accountID,
		"username":   username,
		"password":   password,
	}
	resp, err := c.do(ctx, http.MethodPost, "user/login", body)
	if err != nil {
		return LoginResult{Result: failure(errMessage(err))}
	}

	status := resp.StatusCode
	var envelope loginEnvelope
	if err := decode(resp, &envelope); err != nil {
		return LoginResult{Result: failure("malformed login response")}
	}
	if status >= 300 || !envelope.Success {
		msg := envelope.Message
		if msg == "" {
			msg = "Login failed"
		}
		return LoginResult{Result: failure(msg)}
	}

	var tokens tokenData
	_ = json.Unmarshal(envelope.Data, &tokens)
	return LoginResult{
		Result:       Result{Success: true, Message: envelope.Message},
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Payload:      envelope.Data,
	}
}

// FetchTasks returns the raw task rows for an operational user id. A failed
// call or a body that is not an array yields (nil, failure) so the registry
// can reset to empty instead of keeping stale rows.
func (c *Client) FetchTasks(ctx context.Context, aceUserID string) ([]TaskRecord, Result) {
	resp, err := c.do(ctx, http.MethodGet, "tasks/"+url.PathEscape(aceUserID), nil)
	if err != nil {
		return nil, failure(errMessage(err))
	}
	var records []TaskRecord
	if err := decode(resp, &records); err != nil {
		return nil, failure("task list was not an array")
	}
	return records, Result{Success: true}
}

// StartTime opens (or reopens) a time log for (user, task).
func (c *Client) StartTime(ctx context.Context, userID int64, aceTaskID string) StartResult {
	body := map[string]any{"user_id": userID, "ace_task_id": aceTaskID}
	resp, err := c.do(ctx, http.MethodPost, "tasks/start", body)
	if err != nil {
		return StartResult{Result: failure(errMessage(err))}
	}
	var out StartResult
	if err := decode(resp, &out); err != nil {
		return StartResult{Result: failure("malformed start response")}
	}
	if out.LogID == "" {
		return StartResult{Result: failure(nonEmpty(out.Message, "start returned no log id"))}
	}
	out.Success = true
	return out
}

// PauseTime persists the accumulated duration for an open log.
func (c *Client) PauseTime(ctx context.Context, logID string, duration int) Result {
	body := map[string]any{"log_id": logID, "duration": duration}
	resp, err := c.do(ctx, http.MethodPost, "tasks/pause", body)
	if err != nil {
		return failure(errMessage(err))
	}
	var out Result
	if err := decode(resp, &out); err != nil {
		return failure("malformed pause response")
	}
	return out
}

// StopTime closes a log with the completion status and comment.
func (c *Client) StopTime(ctx context.Context, req StopRequest) Result {
	resp, err := c.do(ctx, http.MethodPost, "tasks/stop", req)
	if err != nil {
		return failure(errMessage(err))
	}
	var out Result
	if err := decode(resp, &out); err != nil {
		return failure("malformed stop response")
	}
	return out
}

// GetDuration reads the server-side duration for a log id.
func (c *Client) GetDuration(ctx context.Context, logID string) LogResult {
	resp, err := c.do(ctx, http.MethodGet, "tasks/duration/"+url.PathEscape(logID), nil)
	if err != nil {
		return LogResult{Result: failure(errMessage(err))}
	}
	var out LogResult
	if err := decode(resp, &out); err != nil {
		return LogResult{Result: failure("malformed duration response")}
	}
	out.Success = true
	return out
}

// LatestLog looks up an existing open log for (user, task). An empty LogID
// with Success set means no open log exists; that is not a failure.
func (c *Client) LatestLog(ctx context.Context, userID int64, taskID string) LogResult {
	path := fmt.Sprintf("tasks/latest-log/?user_id=%d&task_id=%s", userID, url.QueryEscape(taskID))
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return LogResult{Result: failure(errMessage(err))}
	}
	var out LogResult
	if err := decode(resp, &out); err != nil {
		return LogResult{Result: failure("malformed latest-log response")}
	}
	out.Success = true
	return out
}

// StartConversation opens (or resumes) the user's chat conversation.
// An empty id means no conversation is available; message operations
// must not be attempted against it.
func (c *Client) StartConversation(ctx context.Context, userID int64) string {
	resp, err := c.do(ctx, http.MethodPost, "chat/start", map[string]any{"user_id": userID})
	if err != nil {
		return ""
	}
	var envelope struct {
		Data struct {
			ConversationID string `json:"conversation_id"`
		} `json:"data"`
	}
	if err := decode(resp, &envelope); err != nil {
		return ""
	}
	return envelope.Data.ConversationID
}

// GetConversation returns the stored transcript, oldest first.
func (c *Client) GetConversation(ctx context.Context, conversationID string) []ChatMessage {
	resp, err := c.do(ctx, http.MethodGet, "chat/conversation/"+url.PathEscape(conversationID), nil)
	if err != nil {
		return nil
	}
	var envelope struct {
		Data []ChatMessage `json:"data"`
	}
	if err := decode(resp, &envelope); err != nil {
		return nil
	}
	return envelope.Data
}

// PostMessage appends one message to the conversation. Nil means the append
// did not reach the server; the transcript ordering is the client's send
// order either way.
func (c *Client) PostMessage(ctx context.Context, conversationID, sender, text string) *ChatMessage {
	body := map[string]string{
		"conversation_id": conversationID,
		"sender":          sender,
		"text":            text,
	}
	resp, err := c.do(ctx, http.MethodPost, "chat/message", body)
	if err != nil {
		return nil
	}
	var envelope struct {
		Data *ChatMessage `json:"data"`
	}
	if err := decode(resp, &envelope); err != nil {
		return nil
	}
	return envelope.Data
}

// AskQuestion sends a question to the data assistant. A non-OK status is
// translated into a failure carrying the server's detail message when the
// server provided one.
func (c *Client) AskQuestion(ctx context.Context, userID int64, question string) AskResult {
	body := map[string]any{"user_id": userID, "question": question}
	resp, err := c.do(ctx, http.MethodPost, "agent/ask", body)
	if err != nil {
		return AskResult{Result: failure(errMessage(err))}
	}

	status := resp.StatusCode
	var raw struct {
		Answer string `json:"answer"`
		Detail string `json:"detail"`
	}
	if err := decode(resp, &raw); err != nil {
		return AskResult{Result: failure("malformed answer")}
	}
	if status >= 300 {
		return AskResult{Result: failure(nonEmpty(raw.Detail, "Failed to get answer"))}
	}
	return AskResult{Result: Result{Success: true}, Answer: raw.Answer}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
