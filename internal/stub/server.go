// Package stub is an in-memory stand-in for the time-tracking backend. It
// implements every endpoint the client speaks against fixture data, so the
// TUI can be exercised locally and the test suite has a real HTTP surface to
// talk to. It is a test fixture, not a reimplementation of the backend.
package stub

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type user struct {
	AccountID string
	Username  string
	Password  string
	GUID      string
	Role      string
	UserID    int64
	AceUserID string
}

type taskRow struct {
	TaskID         string `json:"task_id"`
	TaskName       string `json:"task_name,omitempty"`
	Name           string `json:"name,omitempty"`
	TaskTitle      string `json:"task_title,omitempty"`
	ProjectName    string `json:"project_name"`
	SupervisorName string `json:"supervisor_name"`
	Status         string `json:"status,omitempty"`
}

type timeLog struct {
	LogID    string
	UserID   int64
	TaskID   string
	Duration int
	Open     bool
}

type chatEntry struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Server holds all fixture state behind one mutex. Handlers are small
// enough that coarse locking is fine.
type Server struct {
	mu            sync.Mutex
	users         []user
	tasks         map[string][]taskRow
	logs          map[string]*timeLog
	conversations map[int64]string
	transcripts   map[string][]chatEntry
	access        map[string]int64
	refresh       map[string]int64
	engine        *gin.Engine
}

// NewServer builds a stub with the default fixture account:
// account "acme", username "jdoe", password "secret".
func NewServer() *Server {
	s := &Server{
		users: []user{{
			AccountID: "acme",
			Username:  "jdoe",
			Password:  "secret",
			GUID:      "3f1c9c1e-8a1d-4c57-9e43-6d2f3a6a9b10",
			Role:      "employee",
			UserID:    42,
			AceUserID: "ACE-7",
		}},
		tasks: map[string][]taskRow{
			"ACE-7": {
				{TaskID: "T-100", TaskName: "Quarterly report", ProjectName: "Finance", SupervisorName: "M. Rivera", Status: "in progress"},
				{TaskID: "T-200", Name: "Onboarding docs", ProjectName: "People Ops", SupervisorName: "A. Chen"},
				{TaskID: "T-300", TaskTitle: "API cleanup", ProjectName: "Platform", SupervisorName: "M. Rivera", Status: "pending"},
			},
		},
		logs:          map[string]*timeLog{},
		conversations: map[int64]string{},
		transcripts:   map[string][]chatEntry{},
		access:        map[string]int64{},
		refresh:       map[string]int64{},
	}
	s.engine = s.buildRouter()
	return s
}

// Engine exposes the router for httptest servers.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run serves on addr.
func (s *Server) Run(addr string) error { return s.engine.Run(addr) }

// ExpireAccessTokens invalidates every access token while keeping refresh
// tokens valid. Lets tests drive the client's refresh-and-retry path.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = map[string]int64{}
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/user/login", s.handleLogin)
	r.PATCH("/auth/refresh", s.handleRefresh)

	authed := r.Group("/", s.requireAuth)
	authed.GET("/tasks/latest-log/", s.handleLatestLog)
	authed.GET("/tasks/duration/:log_id", s.handleDuration)
	authed.GET("/tasks/:ace_user_id", s.handleTasks)
	authed.POST("/tasks/start", s.handleStart)
	authed.POST("/tasks/pause", s.handlePause)
	authed.POST("/tasks/stop", s.handleStop)
	authed.POST("/chat/start", s.handleChatStart)
	authed.GET("/chat/conversation/:id", s.handleConversation)
	authed.POST("/chat/message", s.handleChatMessage)
	authed.POST("/agent/ask", s.handleAsk)

	return r
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func (s *Server) requireAuth(c *gin.Context) {
	token := bearer(c)
	s.mu.Lock()
	_, ok := s.access[token]
	s.mu.Unlock()
	if token == "" || !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid or expired token"})
		return
	}
	c.Next()
}

func (s *Server) issueTokens(userID int64) (access, refresh string) {
	access = uuid.NewString()
	refresh = uuid.NewString()
	s.access[access] = userID
	s.refresh[refresh] = userID
	return access, refresh
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		AccountID string `json:"account_id"`
		Username  string `json:"username"`
		Password  string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.AccountID == req.AccountID && u.Username == req.Username && u.Password == req.Password {
			access, refresh := s.issueTokens(u.UserID)
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Login successful",
				"data": gin.H{
					"access_token":  access,
					"refresh_token": refresh,
					"username":      u.Username,
					"guid":          u.GUID,
					"role":          u.Role,
					"user_id":       u.UserID,
					"ace_user_id":   u.AceUserID,
					"account_id":    u.AccountID,
				},
			})
			return
		}
	}
	c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
}

func (s *Server) handleRefresh(c *gin.Context) {
	token := bearer(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.refresh[token]
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid refresh token"})
		return
	}
	delete(s.refresh, token)
	access, refresh := s.issueTokens(userID)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	}})
}

func (s *Server) handleTasks(c *gin.Context) {
	aceUserID := c.Param("ace_user_id")
	s.mu.Lock()
	rows := append([]taskRow(nil), s.tasks[aceUserID]...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, rows)
}

func (s *Server) openLog(userID int64, taskID string) *timeLog {
	for _, l := range s.logs {
		if l.UserID == userID && l.TaskID == taskID && l.Open {
			return l
		}
	}
	return nil
}

func (s *Server) handleStart(c *gin.Context) {
	var req struct {
		UserID    int64  `json:"user_id"`
		AceTaskID string `json:"ace_task_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.openLog(req.UserID, req.AceTaskID)
	if l == nil {
		l = &timeLog{LogID: uuid.NewString(), UserID: req.UserID, TaskID: req.AceTaskID, Open: true}
		s.logs[l.LogID] = l
	}
	c.JSON(http.StatusOK, gin.H{"log_id": l.LogID, "duration": l.Duration})
}

func (s *Server) handlePause(c *gin.Context) {
	var req struct {
		LogID    string `json:"log_id"`
		Duration int    `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[req.LogID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "unknown log"})
		return
	}
	l.Duration = req.Duration
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Duration saved"})
}

func (s *Server) handleStop(c *gin.Context) {
	var req struct {
		LogID    string `json:"log_id"`
		UserID   int64  `json:"userid"`
		TaskID   string `json:"taskid"`
		GUID     string `json:"guid"`
		Status   string `json:"status"`
		Comment  string `json:"comment"`
		Duration int    `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.logs[req.LogID]; ok {
		l.Duration = req.Duration
		l.Open = false
	}
	for ace, rows := range s.tasks {
		for i := range rows {
			if rows[i].TaskID == req.TaskID && req.Status != "" {
				s.tasks[ace][i].Status = req.Status
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task log closed"})
}

func (s *Server) handleDuration(c *gin.Context) {
	logID := c.Param("log_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[logID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "unknown log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"log_id": l.LogID, "duration": l.Duration})
}

func (s *Server) handleLatestLog(c *gin.Context) {
	var userID int64
	fmt.Sscan(c.Query("user_id"), &userID)
	taskID := c.Query("task_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if l := s.openLog(userID, taskID); l != nil {
		c.JSON(http.StatusOK, gin.H{"log_id": l.LogID, "duration": l.Duration})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) handleChatStart(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.conversations[req.UserID]
	if !ok {
		id = uuid.NewString()
		s.conversations[req.UserID] = id
		s.transcripts[id] = []chatEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"conversation_id": id}})
}

func (s *Server) handleConversation(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	entries := append([]chatEntry(nil), s.transcripts[id]...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) handleChatMessage(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversation_id"`
		Sender         string `json:"sender"`
		Text           string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "malformed request"})
		return
	}

	entry := chatEntry{Sender: req.Sender, Text: req.Text}
	s.mu.Lock()
	s.transcripts[req.ConversationID] = append(s.transcripts[req.ConversationID], entry)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": entry})
}

// handleAsk answers deterministically: questions mentioning hours or a
// summary get a CSV of logged time per task, anything else gets a short
// markdown reply. Deterministic answers keep the client tests stable.
func (s *Server) handleAsk(c *gin.Context) {
	var req struct {
		UserID   int64  `json:"user_id"`
		Question string `json:"question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "malformed request"})
		return
	}

	q := strings.ToLower(req.Question)
	if strings.Contains(q, "hours") || strings.Contains(q, "summary") || strings.Contains(q, "table") {
		var b strings.Builder
		b.WriteString("task_id,seconds")
		s.mu.Lock()
		for _, l := range s.logs {
			if l.UserID == req.UserID {
				fmt.Fprintf(&b, "\n%s,%d", l.TaskID, l.Duration)
			}
		}
		s.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{"answer": b.String()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": "**" + req.Question + "**\n\nI can summarize your tracked time. Try asking for a summary of your hours."})
}
