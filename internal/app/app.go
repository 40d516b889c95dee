package app

import (
	"path/filepath"

	"trk-cli/internal/api"
	"trk-cli/internal/chat"
	"trk-cli/internal/session"
	"trk-cli/internal/tasks"
	"trk-cli/internal/timer"
)

// Application wires the gateway, the stores and the reconciler together.
// The TUI and the plain CLI subcommands both run against this.
type Application struct {
	Config  Config
	Logger  *Logger
	Session *session.Store
	Client  *api.Client
	Tasks   *tasks.Registry
	Timer   *timer.Reconciler
	Chat    *chat.Conversation
}

// NewApplication builds the full client. The session store hydrates itself
// from disk here, so a previously logged-in user comes back authenticated.
func NewApplication(cfg Config) *Application {
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = filepath.Join(session.DefaultDir(), "trk.log")
	}
	logger := OpenLogFile(logPath)

	store := session.NewStore(session.DefaultDir())
	client := api.NewClient(cfg.BaseURL, store, logger)

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Session: store,
		Client:  client,
		Tasks:   tasks.NewRegistry(client),
		Timer:   timer.NewReconciler(client, logger),
		Chat:    chat.NewConversation(client),
	}
}
