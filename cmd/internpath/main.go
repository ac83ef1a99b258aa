// Command internpath is a terminal client for the internship platform.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"internpath/cmd/internpath/tui"
	"internpath/cmd/internpath/ui"
	"internpath/internal/api"
	"internpath/internal/auth"
	"internpath/internal/config"
	"internpath/internal/logging"
	"internpath/internal/usage"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiURL     string
	timeout    time.Duration

	logger  *zap.Logger
	cfg     *config.Config
	tracker = usage.NewTracker()
)

// rootCmd launches the interactive client.
var rootCmd = &cobra.Command{
	Use:   "internpath",
	Short: "InternPath - find internships, check listings, talk to your mentor",
	Long: `internpath is a terminal client for the InternPath platform.

Run without arguments to start the interactive interface with four pages:
  Mentor       chat with the AI internship mentor
  Internships  browse, search and filter listings with match scores
  Fake Check   analyse a listing URL for scam signals
  Sessions     resume or delete saved mentor chats`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.internpath/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (or set INTERNPATH_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall operation timeout for subcommands")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(jobsCmd, askCmd, sessionsCmd, profileCmd, checkCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads .env, the config file and the logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if apiURL != "" {
		loaded.API.BaseURL = apiURL
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg = loaded

	opts := logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		DebugMode:  cfg.Logging.DebugMode || verbose,
		Categories: cfg.Logging.Categories,
	}
	root, err := logging.Build(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = root
	if err := logging.Initialize(opts, root); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("path", path),
		zap.String("api", cfg.API.BaseURL),
		zap.Duration("request_timeout", cfg.GetAPITimeout()))
	return nil
}

func newStore() (*auth.Store, error) {
	return auth.NewStore(cfg.Auth.CredentialsPath)
}

// newClient builds an API client. INTERNPATH_TOKEN wins over stored credentials.
func newClient(store *auth.Store) *api.Client {
	var ts api.TokenSource = store
	if cfg.API.Token != "" {
		ts = api.StaticToken(cfg.API.Token)
	}
	return api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.GetAPITimeout()),
		api.WithTokenSource(ts),
		api.WithRecorder(tracker),
	)
}

// commandContext bounds a subcommand by --timeout and cancels it on SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	client := newClient(store)

	var name string
	if u, ok, err := store.User(); err != nil {
		logger.Warn("stored token is unreadable", zap.Error(err))
	} else if ok {
		name = displayName(u)
		if u.Expired(time.Now()) {
			name += " (session expired, run internpath login)"
		}
	}

	var stats *usage.Tracker
	if cfg.UI.ShowStats {
		stats = tracker
	}

	logger.Info("starting interactive client", zap.String("api", cfg.API.BaseURL))
	return tui.Run(tui.Options{
		Backend:  client,
		Styles:   ui.NewStyles(ui.ThemeFor(cfg.UI.Theme)),
		Stats:    stats,
		TopN:     cfg.GetTopN(),
		WordWrap: cfg.UI.WordWrap,
		User:     name,
	})
}

func displayName(u auth.User) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	}
	return u.ID
}
