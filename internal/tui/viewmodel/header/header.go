package header

import (
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ras0q/rotmgstash/internal/tui/shared"
)

type State struct {
	accounts int
}

type Model struct {
	w, h    int
	apiHost string
	theme   shared.Theme

	state State
}

func New(w, h int, baseURL string, theme shared.Theme) *Model {
	apiHost := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		apiHost = u.Host
	}

	return &Model{
		w:       w,
		h:       h,
		apiHost: apiHost,
		theme:   theme,
	}
}

var _ tea.Model = (*Model)(nil)

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case shared.AccountsLoadedMsg:
		m.state.accounts = len(msg)
	}

	return m, nil
}

func (m *Model) View() string {
	leftPart := lipgloss.JoinHorizontal(
		lipgloss.Center,
		m.theme.Header.Title.Render("RotMG Stash"),
		" on ",
		m.theme.Header.Host.Render(m.apiHost),
	)

	count := "1 account"
	if m.state.accounts != 1 {
		count = fmt.Sprintf("%d accounts", m.state.accounts)
	}
	rightPart := m.theme.Header.Count.
		Width(m.w - lipgloss.Width(leftPart) - 1).
		Align(lipgloss.Right).
		Render(count)

	return lipgloss.NewStyle().Height(m.h).Width(m.w).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			leftPart,
			rightPart,
		),
	)
}
