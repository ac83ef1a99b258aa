// Package tui is the interactive terminal client. The bubbletea update loop is
// the single goroutine that owns the chat and discovery controllers; network
// calls run as commands and come back as messages.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"internpath/cmd/internpath/ui"
	"internpath/internal/api"
	"internpath/internal/chat"
	"internpath/internal/discovery"
	"internpath/internal/fakecheck"
	"internpath/internal/usage"
)

// Page is the visible tab.
type Page int

const (
	ChatPage Page = iota
	DiscoverPage
	CheckPage
	SessionsPage
	pageCount
)

func (p Page) String() string {
	switch p {
	case ChatPage:
		return "Mentor"
	case DiscoverPage:
		return "Internships"
	case CheckPage:
		return "Fake Check"
	case SessionsPage:
		return "Sessions"
	}
	return "?"
}

// Backend is everything the TUI asks of the API.
type Backend interface {
	chat.Sender
	discovery.Source
	fakecheck.Checker
	ListSessions(ctx context.Context) ([]api.SessionSummary, error)
	SessionMessages(ctx context.Context, id api.SessionID) ([]api.StoredMessage, error)
	DeleteSession(ctx context.Context, id api.SessionID) error
}

// Options configures a Model.
type Options struct {
	Backend  Backend
	Styles   ui.Styles
	Stats    *usage.Tracker
	TopN     int
	WordWrap int
	User     string // shown in the header; empty when logged out
}

// =============================================================================
// MESSAGES
// =============================================================================

type chatResultMsg struct{ result chat.Result }

type discoveryResultMsg struct{ result discovery.Result }

type checkResultMsg struct {
	report *fakecheck.Report
	err    error
}

type sessionsLoadedMsg struct {
	sessions []api.SessionSummary
	err      error
}

type sessionOpenedMsg struct {
	id       api.SessionID
	messages []api.StoredMessage
	err      error
}

type sessionDeletedMsg struct {
	id  api.SessionID
	err error
}

// sessionItem is a stored chat session in the sessions list.
type sessionItem struct {
	id   api.SessionID
	date string
}

func (i sessionItem) Title() string       { return "Session " + i.id.String() }
func (i sessionItem) Description() string { return i.date }
func (i sessionItem) FilterValue() string { return i.id.String() + " " + i.date }

// =============================================================================
// MODEL
// =============================================================================

// Model is the root bubbletea model.
type Model struct {
	page    Page
	backend Backend
	styles  ui.Styles
	stats   *usage.Tracker
	user    string

	chat      *chat.Controller
	discovery *discovery.Controller

	chatInput   textarea.Model
	transcript  viewport.Model
	searchInput textinput.Model
	results     viewport.Model
	checkInput  textinput.Model
	sessions    list.Model
	spinner     spinner.Model
	renderer    *glamour.TermRenderer

	checking    bool
	checkReport *fakecheck.Report
	checkErr    error

	sessionsLoading bool
	status          string
	width, height   int
}

// New builds the model. Nothing touches the network until Init.
func New(opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask your mentor about internships, skills or resumes..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.Focus()

	search := textinput.New()
	search.Placeholder = "Search internships by role.."
	search.Prompt = "🔍 "
	search.CharLimit = 120
	search.Width = 60

	check := textinput.New()
	check.Placeholder = "Paste an internship listing URL"
	check.Prompt = "🔗 "
	check.CharLimit = 2048
	check.Width = 70

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	sessions := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	sessions.Title = "Saved sessions"
	sessions.SetShowHelp(false)

	wrap := opts.WordWrap
	if wrap <= 0 {
		wrap = 80
	}
	style := "light"
	if opts.Styles.Theme.IsDark {
		style = "dark"
	}
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)

	dopts := []discovery.Option{discovery.WithTopN(opts.TopN)}
	if opts.Stats != nil {
		dopts = append(dopts, discovery.WithStaleRecorder(opts.Stats))
	}

	return Model{
		page:        ChatPage,
		backend:     opts.Backend,
		styles:      opts.Styles,
		stats:       opts.Stats,
		user:        opts.User,
		chat:        chat.NewController(),
		discovery:   discovery.NewController(dopts...),
		chatInput:   ta,
		transcript:  viewport.New(80, 20),
		searchInput: search,
		results:     viewport.New(80, 20),
		checkInput:  check,
		sessions:    sessions,
		spinner:     sp,
		renderer:    renderer,
	}
}

// Init mounts the discovery view and loads stored sessions.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick, m.loadSessionsCmd()}
	for _, req := range m.discovery.Mount() {
		cmds = append(cmds, m.discoveryCmd(req))
	}
	return tea.Batch(cmds...)
}

// Run starts the program on the alternate screen.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
