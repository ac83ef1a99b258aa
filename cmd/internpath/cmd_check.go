package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"internpath/cmd/internpath/ui"
	"internpath/internal/fakecheck"
)

// checkCmd analyses a listing URL.
var checkCmd = &cobra.Command{
	Use:   "check [url]",
	Short: "Check an internship listing URL for scam signals",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	report, err := fakecheck.Check(ctx, newClient(store), args[0])
	if err != nil {
		if errors.Is(err, fakecheck.ErrInvalidURL) {
			return err
		}
		logger.Sugar().Debugf("check failed: %v", err)
		return errors.New(fakecheck.FailedMessage)
	}

	out := cmd.OutOrStdout()
	level := lipgloss.NewStyle().Bold(true).Foreground(ui.SeverityColor(report.Severity)).Render(report.RiskLevel)
	fmt.Fprintf(out, "%s  %s\n", level, report.Site)
	fmt.Fprintf(out, "Risk score: %.0f   Confidence: %.0f%%\n", report.RiskScore, report.Confidence)
	for _, r := range report.Reasons {
		fmt.Fprintf(out, "  - %s\n", r)
	}
	return nil
}
