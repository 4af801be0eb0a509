// Package tui provides a Bubble Tea viewer for recorded sessions.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gellab/graphlog/internal/classify"
	"github.com/gellab/graphlog/internal/sessionlog"
	"github.com/gellab/graphlog/internal/store"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	actionDocStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	actionValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	actionWireStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	actionOtherStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

var tabNames = []string{"Events", "Summary"}

type model struct {
	summary  store.Summary
	events   []sessionlog.Line
	tab      int
	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

// Run opens the viewer for one session.
func Run(summary store.Summary, events []sessionlog.Line) error {
	m := model{summary: summary, events: events}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % len(tabNames)
			m.viewport.SetContent(m.tabContent())
			m.viewport.GotoTop()
		case "shift+tab", "left", "h":
			m.tab = (m.tab + len(tabNames) - 1) % len(tabNames)
			m.viewport.SetContent(m.tabContent())
			m.viewport.GotoTop()
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		headerHeight := 3
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.SetContent(m.tabContent())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "loading…"
	}

	title := titleStyle.Render(fmt.Sprintf("graphlog · %s · %s", m.summary.User, m.summary.ID))

	var tabs []string
	for i, name := range tabNames {
		if i == m.tab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	status := statusBarStyle.Width(m.width).Render(
		fmt.Sprintf("%d events · tab: switch · q: quit · %3.f%%", len(m.events), m.viewport.ScrollPercent()*100))

	return title + "\n" + tabBar + "\n\n" + m.viewport.View() + "\n" + status
}

func (m model) tabContent() string {
	if m.tab == 0 {
		return m.renderEvents()
	}
	return m.renderSummary()
}

func (m model) renderEvents() string {
	if len(m.events) == 0 {
		return dimStyle.Render("no events recorded")
	}
	var sb strings.Builder
	for _, ev := range m.events {
		fmt.Fprintf(&sb, "%s  %s  %s\n",
			timeStyle.Render(ev.Timestamp.Format("15:04:05")),
			actionStyle(ev.Action).Render(fmt.Sprintf("%-20s", ev.Action)),
			ev.Detail,
		)
	}
	return sb.String()
}

func (m model) renderSummary() string {
	var sb strings.Builder
	sb.WriteString(sectionHeader.Render("Session") + "\n\n")
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("User:"), m.summary.User)
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Folder:"), m.summary.Path)
	if !m.summary.Start.IsZero() {
		fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Started:"), m.summary.Start.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Last event:"), m.summary.End.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&sb, "%s %d\n", labelStyle.Render("Events:"), m.summary.EventCount)

	sb.WriteString("\n" + sectionHeader.Render("Documents") + "\n\n")
	if len(m.summary.Documents) == 0 {
		sb.WriteString(dimStyle.Render("none recorded") + "\n")
	} else {
		for _, d := range m.summary.Documents {
			fmt.Fprintf(&sb, "  • %s\n", d)
		}
	}

	sb.WriteString("\n" + sectionHeader.Render("Actions") + "\n\n")
	counts := make(map[string]int)
	var order []string
	for _, ev := range m.events {
		if counts[ev.Action] == 0 {
			order = append(order, ev.Action)
		}
		counts[ev.Action]++
	}
	for _, a := range order {
		fmt.Fprintf(&sb, "  %s %d\n", labelStyle.Render(fmt.Sprintf("%-20s", a)), counts[a])
	}
	return sb.String()
}

func actionStyle(action string) lipgloss.Style {
	switch action {
	case classify.ActionDocumentCreated, classify.ActionDocumentOpened,
		classify.ActionDocumentRenamed, classify.ActionDocumentSaved,
		classify.ActionDocumentSavedAs, classify.ActionSessionStart,
		classify.ActionSessionEnd:
		return actionDocStyle
	case classify.ActionSliderChanged, classify.ActionToggleChanged,
		classify.ActionPanelChanged, classify.ActionValueListChanged,
		classify.ActionGraphMapperChange, classify.ActionMDSliderChanged:
		return actionValueStyle
	case classify.ActionWireConnected, classify.ActionWireDisconnected:
		return actionWireStyle
	default:
		return actionOtherStyle
	}
}
