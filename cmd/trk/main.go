package main

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"trk-cli/internal/app"
	"trk-cli/internal/tui"
)

const version = "1.0.0"

func loadApplication() (*app.Application, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return nil, err
	}
	if v := os.Getenv("TRK_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TRK_ACCOUNT_ID"); v != "" && cfg.AccountID == "" {
		cfg.AccountID = v
	}
	return app.NewApplication(cfg), nil
}

func main() {
	root := &cobra.Command{
		Use:     "trk",
		Short:   "trk - terminal time tracking",
		Long:    "trk is a terminal client for the time-tracking backend.\n\nRun without arguments for the interactive TUI; use the subcommands for scripting.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			p := tea.NewProgram(tui.New(application), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}

	var loginAccount, loginUser, loginPassword string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			if loginAccount == "" {
				loginAccount = application.Config.AccountID
			}
			if loginAccount == "" || loginUser == "" {
				return fmt.Errorf("both --account and --username are required")
			}
			if loginPassword == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				raw, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return err
				}
				loginPassword = string(raw)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			res := application.Client.Login(ctx, loginAccount, loginUser, loginPassword)
			if !res.Success {
				return fmt.Errorf("login failed: %s", res.Message)
			}
			if err := application.Session.OnLogin(res.AccessToken, res.RefreshToken, res.Payload); err != nil {
				return err
			}
			identity := application.Session.Identity()
			fmt.Printf("Logged in as %s (account %s)\n", identity.Username, identity.AccountID)
			return nil
		},
	}
	loginCmd.Flags().StringVarP(&loginAccount, "account", "a", "", "account id")
	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "", "username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
	root.AddCommand(loginCmd)

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			application.Session.OnLogout()
			fmt.Println("Logged out")
			return nil
		},
	}
	root.AddCommand(logoutCmd)

	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Print the assigned task list",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			if !application.Session.Authenticated() {
				return fmt.Errorf("not logged in; run 'trk login' first")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			list := application.Tasks.Refresh(ctx, application.Session.Identity().AceUserID)
			if len(list) == 0 {
				fmt.Println("No tasks assigned.")
				return nil
			}
			for _, t := range list {
				fmt.Printf("%-10s %-30s %-20s %-20s %s\n", t.ID, t.Name, t.ProjectName, t.SupervisorName, t.Status)
			}
			return nil
		},
	}
	root.AddCommand(tasksCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
