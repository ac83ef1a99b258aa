package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"internpath/internal/api"
	"internpath/internal/chat"
	"internpath/internal/discovery"
	"internpath/internal/fakecheck"
)

// domainKeys maps F1..F4 to domain toggles.
var domainKeys = map[tea.KeyType]discovery.Domain{
	tea.KeyF1: discovery.DomainAI,
	tea.KeyF2: discovery.DomainWeb,
	tea.KeyF3: discovery.DomainData,
	tea.KeyF4: discovery.DomainMobile,
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.chat.State() == chat.Sending {
			m.refreshTranscript()
		}
		return m, cmd

	case chatResultMsg:
		if m.chat.Resolve(msg.result) {
			if msg.result.Err == nil {
				m.status = ""
			} else {
				m.status = "Message failed: " + api.CategoryOf(msg.result.Err).String()
			}
			m.chatInput.Focus()
		}
		m.refreshTranscript()
		return m, nil

	case discoveryResultMsg:
		m.discovery.Resolve(msg.result)
		m.refreshResults()
		return m, nil

	case checkResultMsg:
		m.checking = false
		m.checkReport, m.checkErr = msg.report, msg.err
		return m, nil

	case sessionsLoadedMsg:
		m.sessionsLoading = false
		if msg.err != nil {
			m.status = "Could not load sessions: " + describeErr(msg.err)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.sessions))
		for _, s := range msg.sessions {
			items = append(items, sessionItem{id: s.ID, date: s.CreatedAt})
		}
		return m, m.sessions.SetItems(items)

	case sessionOpenedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Could not open session %s: %s", msg.id, describeErr(msg.err))
			return m, nil
		}
		if !m.chat.Resume(msg.id, msg.messages) {
			m.status = "Wait for the current reply before switching sessions"
			return m, nil
		}
		m.status = fmt.Sprintf("Resumed session %s", msg.id)
		m.setPage(ChatPage)
		m.refreshTranscript()
		return m, nil

	case sessionDeletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Could not delete session %s: %s", msg.id, describeErr(msg.err))
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted session %s", msg.id)
		if current := m.chat.SessionID(); current != nil && current.Equal(msg.id) {
			m.chat.NewChat()
			m.refreshTranscript()
		}
		m.sessionsLoading = true
		return m, m.loadSessionsCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyTab:
		if !m.filteringSessions() {
			m.setPage((m.page + 1) % pageCount)
			return m, nil
		}
	case tea.KeyShiftTab:
		if !m.filteringSessions() {
			m.setPage((m.page + pageCount - 1) % pageCount)
			return m, nil
		}
	}

	switch m.page {
	case ChatPage:
		return m.handleChatKey(msg)
	case DiscoverPage:
		return m.handleDiscoverKey(msg)
	case CheckPage:
		return m.handleCheckKey(msg)
	case SessionsPage:
		return m.handleSessionsKey(msg)
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlN:
		if m.chat.NewChat() {
			m.status = "Started a new chat"
			m.refreshTranscript()
		}
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	case tea.KeyEnter:
		if msg.Alt {
			break
		}
		req, ok := m.chat.Send(m.chatInput.Value())
		if !ok {
			return m, nil
		}
		m.chatInput.Reset()
		m.chatInput.Blur()
		m.refreshTranscript()
		return m, tea.Batch(m.chatCmd(req), m.spinner.Tick)
	}

	// Input is disabled while a reply is pending.
	if m.chat.State() == chat.Sending {
		return m, nil
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m Model) handleDiscoverKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if d, ok := domainKeys[msg.Type]; ok {
		req, issue := m.discovery.ToggleDomain(d)
		m.refreshResults()
		if issue {
			return m, tea.Batch(m.discoveryCmd(req), m.spinner.Tick)
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if after := m.searchInput.Value(); after != before {
		req, issue := m.discovery.SetSearchText(after)
		m.refreshResults()
		if issue {
			return m, tea.Batch(cmd, m.discoveryCmd(req), m.spinner.Tick)
		}
	}
	return m, cmd
}

func (m Model) handleCheckKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		if m.checking {
			return m, nil
		}
		if _, err := fakecheck.Normalize(m.checkInput.Value()); err != nil {
			m.checkReport, m.checkErr = nil, err
			return m, nil
		}
		m.checking = true
		m.checkReport, m.checkErr = nil, nil
		return m, tea.Batch(m.checkCmd(m.checkInput.Value()), m.spinner.Tick)
	}
	var cmd tea.Cmd
	m.checkInput, cmd = m.checkInput.Update(msg)
	return m, cmd
}

func (m Model) handleSessionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.filteringSessions() {
		item, selected := m.sessions.SelectedItem().(sessionItem)
		switch msg.String() {
		case "enter":
			if selected {
				return m, m.openSessionCmd(item.id)
			}
			return m, nil
		case "d":
			if selected {
				return m, m.deleteSessionCmd(item.id)
			}
			return m, nil
		case "r":
			m.sessionsLoading = true
			return m, m.loadSessionsCmd()
		}
	}
	var cmd tea.Cmd
	m.sessions, cmd = m.sessions.Update(msg)
	return m, cmd
}

func (m Model) busy() bool {
	snap := m.discovery.Snapshot()
	return m.chat.State() == chat.Sending || m.checking || m.sessionsLoading ||
		snap.LoadingAll || snap.LoadingRecommendations || snap.LoadingActive
}

func (m Model) filteringSessions() bool {
	return m.page == SessionsPage && m.sessions.FilterState() == list.Filtering
}

func (m *Model) setPage(p Page) {
	m.page = p
	m.chatInput.Blur()
	m.searchInput.Blur()
	m.checkInput.Blur()
	switch p {
	case ChatPage:
		if m.chat.State() == chat.Idle {
			m.chatInput.Focus()
		}
		m.refreshTranscript()
	case DiscoverPage:
		m.searchInput.Focus()
		m.refreshResults()
	case CheckPage:
		m.checkInput.Focus()
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	body := height - 8 // header, tabs, input, footer
	if body < 5 {
		body = 5
	}
	m.chatInput.SetWidth(width - 4)
	m.transcript.Width, m.transcript.Height = width, body-2
	m.results.Width, m.results.Height = width, body-4
	m.searchInput.Width = width - 8
	m.checkInput.Width = width - 8
	m.sessions.SetSize(width, body)
	m.refreshTranscript()
	m.refreshResults()
}

func (m *Model) refreshTranscript() {
	m.transcript.SetContent(m.renderTranscript())
	m.transcript.GotoBottom()
}

func (m *Model) refreshResults() {
	m.results.SetContent(m.renderResults())
}

func describeErr(err error) string {
	switch api.CategoryOf(err) {
	case api.CategoryAuthRequired:
		return "please log in"
	case api.CategoryServerError:
		return "server error, try again later"
	}
	if api.IsNotFound(err) {
		return "not found"
	}
	return "network error, try again"
}
