package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"internpath/internal/api"
	"internpath/internal/chat"
	"internpath/internal/discovery"
	"internpath/internal/fakecheck"
)

// Requests are never cancelled when superseded; their results are filtered
// by the controllers on arrival. The HTTP client timeout bounds them.

func (m Model) chatCmd(req chat.Request) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return chatResultMsg{result: req.Do(context.Background(), backend)}
	}
}

func (m Model) discoveryCmd(req discovery.Request) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return discoveryResultMsg{result: req.Do(context.Background(), backend)}
	}
}

func (m Model) checkCmd(raw string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		report, err := fakecheck.Check(context.Background(), backend, raw)
		return checkResultMsg{report: report, err: err}
	}
}

func (m Model) loadSessionsCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		sessions, err := backend.ListSessions(context.Background())
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

func (m Model) openSessionCmd(id api.SessionID) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		msgs, err := backend.SessionMessages(context.Background(), id)
		return sessionOpenedMsg{id: id, messages: msgs, err: err}
	}
}

func (m Model) deleteSessionCmd(id api.SessionID) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return sessionDeletedMsg{id: id, err: backend.DeleteSession(context.Background(), id)}
	}
}
