package api

import "encoding/json"

// Result is the uniform outcome every gateway call folds into. Transport
// failures, malformed bodies and server-side rejections all end up here;
// callers never see a raw error from the HTTP layer.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func failure(message string) Result {
	if message == "" {
		message = "request failed"
	}
	return Result{Success: false, Message: message}
}

// LoginResult carries the identity payload from user/login. Data stays raw
// so the session store can merge it over defaults without the gateway
// deciding which fields matter.
type LoginResult struct {
	Result
	AccessToken  string
	RefreshToken string
	Payload      json.RawMessage
}

type loginEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type tokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TaskRecord is a server task row before normalization. The three name
// fields reflect the variants different backend versions emit.
type TaskRecord struct {
	TaskID         string `json:"task_id"`
	TaskName       string `json:"task_name"`
	Name           string `json:"name"`
	TaskTitle      string `json:"task_title"`
	ProjectName    string `json:"project_name"`
	SupervisorName string `json:"supervisor_name"`
	Status         string `json:"status"`
}

// StartResult is the tasks/start response.
type StartResult struct {
	Result
	LogID string `json:"log_id"`
}

// LogResult is shared by tasks/duration/{log_id} and tasks/latest-log.
// A missing log comes back with an empty LogID, not an error.
type LogResult struct {
	Result
	LogID    string `json:"log_id"`
	Duration int    `json:"duration"`
}

// StopRequest is the completion submission for tasks/stop.
type StopRequest struct {
	LogID    string `json:"log_id"`
	UserID   int64  `json:"userid"`
	TaskID   string `json:"taskid"`
	GUID     string `json:"guid"`
	Status   string `json:"status"`
	Comment  string `json:"comment"`
	Duration int    `json:"duration"`
}

// ChatMessage is one transcript entry as stored by the server.
type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// AskResult carries the assistant's answer from agent/ask.
type AskResult struct {
	Result
	Answer string `json:"answer"`
}
