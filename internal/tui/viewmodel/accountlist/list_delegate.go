package accountlist

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ras0q/rotmgstash/internal/tui/shared"
)

// newListDelegate announces every change of the selected account.
func newListDelegate() list.ItemDelegate {
	d := list.NewDefaultDelegate()

	var currentGUID string

	d.UpdateFunc = func(msg tea.Msg, m *list.Model) tea.Cmd {
		item, ok := m.SelectedItem().(Item)
		if !ok {
			return nil
		}

		if currentGUID == item.Account.GUID {
			return nil
		}

		currentGUID = item.Account.GUID

		return func() tea.Msg {
			return shared.PreviewAccountMsg(item.Account)
		}
	}

	return d
}
