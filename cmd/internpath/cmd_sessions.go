package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"internpath/internal/api"
)

// sessionsCmd manages stored mentor chats.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved mentor chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Print the transcript of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sessions, err := newClient(store).ListSessions(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No saved sessions")
		return nil
	}

	t := table.New().Border(lipgloss.NormalBorder()).Headers("ID", "TITLE", "CREATED")
	for _, s := range sessions {
		t.Row(s.ID.String(), s.Title, formatTimestamp(s.CreatedAt))
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	id, err := api.ParseSessionID(args[0])
	if err != nil {
		return err
	}
	store, err := newStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	msgs, err := newClient(store).SessionMessages(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("session %s not found", id)
		}
		return err
	}

	out := cmd.OutOrStdout()
	for _, m := range msgs {
		who := "Mentor"
		if m.Role == "user" {
			who = "You"
		}
		fmt.Fprintf(out, "%s:\n%s\n\n", who, m.Content)
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	id, err := api.ParseSessionID(args[0])
	if err != nil {
		return err
	}
	store, err := newStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := newClient(store).DeleteSession(ctx, id); err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("session %s not found", id)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", id)
	return nil
}

func formatTimestamp(s string) string {
	if t, ok := api.ParseTimestamp(s); ok {
		return t.Local().Format(time.DateTime)
	}
	return s
}
