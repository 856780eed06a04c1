package accountlist

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ras0q/rotmgstash/internal/accounts"
	"github.com/ras0q/rotmgstash/internal/tui/shared"
	"github.com/samber/lo"
)

type Model struct {
	w, h int
	list list.Model
}

var _ tea.Model = (*Model)(nil)

func New(w, h int, theme shared.Theme) *Model {
	l := list.New([]list.Item{}, newListDelegate(), w, h)
	l.Title = "Accounts"
	l.SetShowHelp(false)
	l.SetStatusBarItemName("account", "accounts")
	l.DisableQuitKeybindings()
	l.Styles.Title = l.Styles.Title.Background(theme.Colors.Primary)

	return &Model{
		w:    w,
		h:    h,
		list: l,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 2)

	switch msg := msg.(type) {
	case shared.AccountsLoadedMsg:
		items := lo.Map(msg, func(a accounts.Account, _ int) list.Item {
			return Item{Account: a}
		})
		cmds = append(cmds, m.list.SetItems(items))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	return lipgloss.NewStyle().
		Width(m.w).
		Height(m.h).
		Render(m.list.View())
}

// Selected returns the highlighted account.
func (m *Model) Selected() (accounts.Account, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return accounts.Account{}, false
	}

	return item.Account, true
}

// Filtering reports whether keys are going to the filter input.
func (m *Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
