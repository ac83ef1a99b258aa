package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// statusCmd reports backend reachability and local state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health, login state and config",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	store, err := newStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	fmt.Fprintf(out, "Backend:     %s\n", cfg.API.BaseURL)
	health, err := newClient(store).Health(ctx)
	if err != nil {
		logger.Warn("health check failed", zap.Error(err))
		fmt.Fprintf(out, "Health:      unreachable (%v)\n", err)
	} else {
		fmt.Fprintf(out, "Health:      %s\n", health.Status)
	}

	switch u, ok, err := store.User(); {
	case err != nil:
		fmt.Fprintf(out, "User:        unreadable token (%v)\n", err)
	case !ok:
		fmt.Fprintln(out, "User:        not logged in")
	default:
		fmt.Fprintf(out, "User:        %s\n", displayName(u))
	}

	fmt.Fprintf(out, "Credentials: %s\n", store.Path())
	fmt.Fprintf(out, "Timeout:     %s\n", cfg.GetAPITimeout())
	fmt.Fprintf(out, "Log file:    %s\n", cfg.Logging.File)
	fmt.Fprintf(out, "Requests:    %s\n", tracker.Summary())
	return nil
}
