package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"internpath/cmd/internpath/ui"
	"internpath/internal/chat"
	"internpath/internal/discovery"
	"internpath/internal/fakecheck"
)

func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	return content
}

func (m Model) View() string {
	var b strings.Builder

	title := "InternPath"
	if m.user != "" {
		title += " · " + m.user
	}
	b.WriteString(m.styles.Header.Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.page {
	case ChatPage:
		b.WriteString(m.transcript.View())
		b.WriteString("\n")
		if m.chat.State() == chat.Sending {
			b.WriteString(m.styles.Muted.Render("  waiting for the mentor..."))
		} else {
			b.WriteString(m.chatInput.View())
		}
	case DiscoverPage:
		b.WriteString(m.styles.Content.Render(m.searchInput.View()))
		b.WriteString("\n")
		b.WriteString(m.styles.Content.Render(m.renderDomainChips()))
		b.WriteString("\n\n")
		b.WriteString(m.results.View())
	case CheckPage:
		b.WriteString(m.styles.Content.Render(m.checkInput.View()))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Content.Render(m.renderCheck()))
	case SessionsPage:
		b.WriteString(m.sessions.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, pageCount)
	for p := Page(0); p < pageCount; p++ {
		if p == m.page {
			tabs = append(tabs, m.styles.ActiveTab.Render(p.String()))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(p.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderFooter() string {
	help := map[Page]string{
		ChatPage:     "enter send · ctrl+n new chat · pgup/pgdn scroll",
		DiscoverPage: "type to search · F1 AI · F2 Web · F3 Data · F4 Mobile (again to clear)",
		CheckPage:    "enter analyse",
		SessionsPage: "enter open · d delete · r refresh · / filter",
	}[m.page]

	parts := []string{"tab switch · " + help}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	if m.stats != nil {
		parts = append(parts, m.stats.Summary())
	}
	return m.styles.Footer.Render(strings.Join(parts, "  │  "))
}

// =============================================================================
// CHAT
// =============================================================================

func (m Model) renderTranscript() string {
	snap := m.chat.Snapshot()
	if len(snap.Messages) == 0 {
		return m.styles.Content.Render(m.styles.Subtitle.Render(chat.Greeting))
	}

	var b strings.Builder
	for _, msg := range snap.Messages {
		switch {
		case msg.Role == chat.RoleUser:
			b.WriteString(m.styles.UserInput.Render("You"))
			b.WriteString("\n")
			b.WriteString(m.styles.Body.Render(msg.Content))
		case msg.Pending:
			b.WriteString(m.styles.Title.Render("Mentor"))
			b.WriteString("\n")
			b.WriteString(m.spinner.View() + " " + m.styles.Muted.Render("typing..."))
		default:
			b.WriteString(m.styles.Title.Render("Mentor"))
			b.WriteString("\n")
			b.WriteString(m.safeRenderMarkdown(msg.Content))
		}
		b.WriteString("\n\n")
	}
	if snap.SessionID != nil {
		b.WriteString(m.styles.Muted.Render("session " + snap.SessionID.String()))
	}
	return m.styles.Content.Render(b.String())
}

// =============================================================================
// DISCOVERY
// =============================================================================

func (m Model) renderDomainChips() string {
	q := m.discovery.Query()
	chips := make([]string, 0, len(discovery.Domains))
	for i, d := range discovery.Domains {
		label := fmt.Sprintf("F%d %s", i+1, d.Label())
		if q.Kind == discovery.QueryDomain && q.Domain == d {
			chips = append(chips, m.styles.ActiveTab.Render(label))
		} else {
			chips = append(chips, m.styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m Model) renderResults() string {
	snap := m.discovery.Snapshot()
	var b strings.Builder

	if len(snap.Top) > 0 {
		b.WriteString(m.styles.Title.Render("Top matches for you"))
		b.WriteString("\n")
		for _, it := range snap.Top {
			fmt.Fprintf(&b, "  %s %s · %s\n", m.styles.MatchBadge(it.Match, it.Band), it.Title, it.Company)
		}
		b.WriteString("\n")
	} else if snap.RecommendationsErr != nil {
		b.WriteString(m.styles.Muted.Render("Recommendations unavailable: " + describeErr(snap.RecommendationsErr)))
		b.WriteString("\n\n")
	}

	heading := "All internships"
	switch snap.Query.Kind {
	case discovery.QuerySearch:
		heading = fmt.Sprintf("Results for %q", snap.Query.Text)
	case discovery.QueryDomain:
		heading = snap.Query.Domain.Label() + " internships"
	}
	if snap.LoadingActive || (snap.Query.Kind == discovery.QueryNone && snap.LoadingAll) {
		heading += " " + m.spinner.View()
	}
	b.WriteString(m.styles.Title.Render(heading))
	b.WriteString("\n")

	if snap.ActiveErr != nil {
		b.WriteString(m.styles.Warning.Render("Could not refresh: " + describeErr(snap.ActiveErr)))
		b.WriteString("\n")
	} else if snap.Query.Kind == discovery.QueryNone && snap.AllErr != nil {
		b.WriteString(m.styles.Warning.Render("Could not load internships: " + describeErr(snap.AllErr)))
		b.WriteString("\n")
	}

	if len(snap.Items) == 0 && !snap.LoadingActive && !snap.LoadingAll {
		if snap.Query.Kind == discovery.QueryNone {
			b.WriteString(m.styles.Muted.Render("No internships yet."))
		} else {
			b.WriteString(m.styles.Muted.Render("No internships match."))
		}
		return m.styles.Content.Render(b.String())
	}

	for _, it := range snap.Items {
		b.WriteString(m.renderInternship(it))
		b.WriteString("\n")
	}
	return m.styles.Content.Render(b.String())
}

func (m Model) renderInternship(it discovery.Annotated) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(it.Title))
	b.WriteString("  ")
	b.WriteString(m.styles.MatchBadge(it.Match, it.Band))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(joinNonEmpty(" · ", it.Company, it.Location, it.Duration, it.Stipend)))
	if skills := it.Skills(); len(skills) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Body.Render("Skills: " + strings.Join(skills, ", ")))
	}
	if len(it.SkillGap) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render("Skill gap: " + strings.Join(it.SkillGap, ", ")))
	}
	if it.ApplyLink != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Info.Render(it.ApplyLink))
	}
	return m.styles.Card.Render(b.String())
}

// =============================================================================
// FAKE CHECK
// =============================================================================

func (m Model) renderCheck() string {
	switch {
	case m.checking:
		return m.spinner.View() + " Analysing..."
	case errors.Is(m.checkErr, fakecheck.ErrInvalidURL):
		return m.styles.Warning.Render("Enter a valid http(s) URL")
	case m.checkErr != nil:
		return m.styles.Error.Render(fakecheck.FailedMessage)
	case m.checkReport == nil:
		return m.styles.Muted.Render("We look at the listing and its site for common scam signals.")
	}

	r := m.checkReport
	var b strings.Builder
	level := lipgloss.NewStyle().Bold(true).Foreground(ui.SeverityColor(r.Severity)).Render(r.RiskLevel)
	fmt.Fprintf(&b, "%s  score %.0f · confidence %.0f%%\n", level, r.RiskScore, r.Confidence)
	b.WriteString(m.styles.Muted.Render(r.Site))
	b.WriteString("\n")
	for _, reason := range r.Reasons {
		b.WriteString("  • " + reason + "\n")
	}
	return b.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
