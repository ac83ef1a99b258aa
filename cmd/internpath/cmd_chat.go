package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"internpath/internal/api"
	"internpath/internal/chat"
)

var askSession string

// askCmd sends one message to the mentor.
var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask the mentor a single question",
	Long: `Sends one message to the AI mentor and prints the reply.

Without --session a new session is started; its id is printed so the
conversation can be continued:
  internpath ask "Which skills do I need for a data internship?"
  internpath ask --session 12 "And which projects should I build?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "Continue an existing session")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctrl := chat.NewController()
	if askSession != "" {
		id, err := api.ParseSessionID(askSession)
		if err != nil {
			return err
		}
		ctrl.Resume(id, nil)
	}

	req, ok := ctrl.Send(strings.Join(args, " "))
	if !ok {
		return fmt.Errorf("message is empty")
	}

	store, err := newStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	res := req.Do(ctx, newClient(store))
	ctrl.Resolve(res)

	snap := ctrl.Snapshot()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, snap.Messages[len(snap.Messages)-1].Content)
	if res.Err != nil {
		return res.Err
	}
	if snap.SessionID != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nsession %s\n", snap.SessionID)
	}
	return nil
}
