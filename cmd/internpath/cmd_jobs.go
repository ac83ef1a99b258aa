package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"internpath/internal/api"
	"internpath/internal/discovery"
)

var (
	jobsSearch    string
	jobsDomain    string
	jobsRecommend bool
)

// jobsCmd prints internships the same way the Internships page shows them.
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List, search or filter internships",
	Long: `Lists internships, annotated with your match percentage when logged in.

Examples:
  internpath jobs
  internpath jobs --search backend
  internpath jobs --domain ai
  internpath jobs --recommend   # only the top matches`,
	RunE: runJobs,
}

func init() {
	jobsCmd.Flags().StringVarP(&jobsSearch, "search", "s", "", "Search text")
	jobsCmd.Flags().StringVarP(&jobsDomain, "domain", "d", "", "Domain filter: ai, web, data or mobile")
	jobsCmd.Flags().BoolVarP(&jobsRecommend, "recommend", "r", false, "Show only your top recommendations")
	jobsCmd.MarkFlagsMutuallyExclusive("search", "domain")
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctrl := discovery.NewController(
		discovery.WithTopN(cfg.GetTopN()),
		discovery.WithStaleRecorder(tracker),
	)
	reqs := ctrl.Mount()

	switch {
	case jobsDomain != "":
		d, err := discovery.ParseDomain(jobsDomain)
		if err != nil {
			return err
		}
		if req, ok := ctrl.SetQuery(discovery.DomainQuery(d)); ok {
			reqs = append(reqs, req)
		}
	case strings.TrimSpace(jobsSearch) != "":
		if req, ok := ctrl.SetSearchText(jobsSearch); ok {
			reqs = append(reqs, req)
		}
	}

	store, err := newStore()
	if err != nil {
		return err
	}
	client := newClient(store)
	ctx, cancel := commandContext(cmd)
	defer cancel()

	// Requests run concurrently; results are applied on this goroutine.
	results := make([]discovery.Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = req.Do(gctx, client)
			return nil
		})
	}
	_ = g.Wait()
	for _, res := range results {
		ctrl.Resolve(res)
	}

	snap := ctrl.Snapshot()
	out := cmd.OutOrStdout()
	logger.Debug("jobs loaded",
		zap.Stringer("query", snap.Query),
		zap.Int("items", len(snap.Items)),
		zap.Float64("max_match", snap.MaxMatch))

	if jobsRecommend {
		if snap.RecommendationsErr != nil {
			return fmt.Errorf("recommendations unavailable: %w", snap.RecommendationsErr)
		}
		if len(snap.Top) == 0 {
			fmt.Fprintln(out, "No recommendations yet. Fill in your profile with internpath profile create.")
			return nil
		}
		printInternships(out, snap.Top)
		return nil
	}

	if snap.ActiveErr != nil {
		return fmt.Errorf("%s failed: %w", snap.Query, snap.ActiveErr)
	}
	if snap.Query.Kind == discovery.QueryNone && snap.AllErr != nil {
		return fmt.Errorf("listing failed: %w", snap.AllErr)
	}
	if snap.RecommendationsErr != nil && api.CategoryOf(snap.RecommendationsErr) != api.CategoryAuthRequired {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: match scores unavailable: %v\n", snap.RecommendationsErr)
	}
	if len(snap.Items) == 0 {
		fmt.Fprintln(out, "No internships match.")
		return nil
	}
	printInternships(out, snap.Items)
	return nil
}

func printInternships(w io.Writer, items []discovery.Annotated) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "MATCH", "TITLE", "COMPANY", "LOCATION", "STIPEND", "APPLY")
	for _, it := range items {
		match := "-"
		if it.Match > 0 {
			match = fmt.Sprintf("%.0f%% %s", it.Match, it.Band)
		}
		t.Row(
			fmt.Sprint(it.ID),
			match,
			it.Title,
			it.Company,
			it.Location,
			it.Stipend,
			it.ApplyLink,
		)
	}
	fmt.Fprintln(w, t.Render())
}
