package preview

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ras0q/rotmgstash/internal/accounts"
	"github.com/ras0q/rotmgstash/internal/rotmgapi"
	"github.com/ras0q/rotmgstash/internal/tui/shared"
)

// classNames maps character object types to class names.
var classNames = map[string]string{
	"768": "Rogue",
	"775": "Archer",
	"782": "Wizard",
	"784": "Priest",
	"785": "Samurai",
	"796": "Bard",
	"797": "Warrior",
	"798": "Knight",
	"799": "Paladin",
	"800": "Assassin",
	"801": "Necromancer",
	"802": "Huntress",
	"803": "Mystic",
	"804": "Trickster",
	"805": "Sorcerer",
	"806": "Ninja",
	"817": "Summoner",
	"818": "Kensei",
}

type Model struct {
	w, h     int
	viewport viewport.Model
	theme    shared.Theme

	account *accounts.Account
}

var _ tea.Model = (*Model)(nil)

func New(w, h int, theme shared.Theme) *Model {
	vp := viewport.New(w, h)
	vp.SetContent("No account selected.")

	return &Model{
		w:        w,
		h:        h,
		viewport: vp,
		theme:    theme,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case shared.PreviewAccountMsg:
		account := accounts.Account(msg)
		m.account = &account
		m.viewport.SetContent(fmt.Sprintf("%s\n\nPress c to load characters.",
			m.theme.Preview.AccountName.Render(cmp.Or(account.Name, account.GUID)),
		))
		m.viewport.GotoTop()

	case shared.CharListLoadedMsg:
		if m.account == nil || m.account.GUID != msg.GUID {
			break
		}
		if msg.Err != nil {
			m.viewport.SetContent(m.theme.Status.Error.Render(msg.Err.Error()))
			break
		}
		m.viewport.SetContent(m.render(msg.Summary))
		m.viewport.GotoTop()

	case tea.KeyMsg:
		m.viewport, cmd = m.viewport.Update(msg)
	}

	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	return lipgloss.NewStyle().
		Width(m.w).
		Height(m.h).
		Render(m.viewport.View())
}

func (m *Model) render(summary *rotmgapi.CharListSummary) string {
	styles := m.theme.Preview

	var b strings.Builder
	b.WriteString(styles.AccountName.Render(cmp.Or(summary.AccountName, m.account.Name)))
	b.WriteString("\n")
	b.WriteString(styles.Label.Render("Characters"))
	fmt.Fprintf(&b, "%d / %s", len(summary.Characters), cmp.Or(summary.MaxChars, "?"))
	b.WriteString("\n")
	b.WriteString(styles.Separator.Render(strings.Repeat("─", max(m.w, 1))))
	b.WriteString("\n")

	if len(summary.Characters) == 0 {
		b.WriteString("No characters.")
		return b.String()
	}

	for _, c := range summary.Characters {
		b.WriteString(styles.Class.Render(ClassName(c.ObjectType)))
		b.WriteString(styles.Label.Render("lv"))
		fmt.Fprintf(&b, "%-3s", c.Level)
		b.WriteString(styles.Label.Render(" fame"))
		b.WriteString(cmp.Or(c.Fame, "0"))
		b.WriteString(styles.Label.Render(" #" + c.ID))
		b.WriteString("\n")
	}

	return b.String()
}

// ClassName returns the class of objectType, or the raw type when unknown.
func ClassName(objectType string) string {
	if name, ok := classNames[objectType]; ok {
		return name
	}

	return "type " + objectType
}
