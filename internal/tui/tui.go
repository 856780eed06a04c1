package tui

import (
	"cmp"
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-faster/errors"
	"github.com/ras0q/rotmgstash/internal/accounts"
	"github.com/ras0q/rotmgstash/internal/rotmgapi"
	"github.com/ras0q/rotmgstash/internal/tui/shared"
	"github.com/ras0q/rotmgstash/internal/tui/viewmodel/accountlist"
	"github.com/ras0q/rotmgstash/internal/tui/viewmodel/header"
	"github.com/ras0q/rotmgstash/internal/tui/viewmodel/preview"
	"go.uber.org/zap"
)

// Service is what the account picker needs from the stash service.
type Service interface {
	Accounts() (*accounts.Store, error)
	LaunchAccount(ctx context.Context, installDir, guid string) (string, error)
	CharListSummary(ctx context.Context, guid string) (*rotmgapi.CharListSummary, error)
	ForgetCharList(guid string) error
}

type Options struct {
	BaseURL    string
	InstallDir string
	// Debug dumps every message to the logger.
	Debug  bool
	Logger *zap.Logger
}

type AppModel struct {
	theme       shared.Theme
	header      *header.Model
	accountList *accountlist.Model
	preview     *preview.Model
	Errors      []error

	service    Service
	installDir string
	debug      bool
	logger     *zap.Logger
	dumper     spew.ConfigState

	focus  focusArea
	status shared.StatusMsg
}

type focusArea int

const (
	focusAreaAccounts focusArea = iota + 1
	focusAreaPreview
)

const helpText = "enter launch • c characters • r refresh • tab focus • / filter • q quit"

func NewAppModel(w, h int, service Service, opts Options) *AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Layout calculation
	// ---------------------
	// |       header      |
	// |-------------------|
	// |          |        |
	// | accounts | chars  |
	// |          |        |
	// |-------------------|
	//   status
	//   help

	headerHeight := 3
	statusHeight := 2
	mainHeight := h - headerHeight - statusHeight

	headerWidth := w
	accountsWidth := w * 4 / 10
	previewWidth := w - accountsWidth
	padding := 2

	theme := shared.DefaultTheme()

	return &AppModel{
		theme: theme,
		header: header.New(
			headerWidth-padding,
			headerHeight-padding,
			opts.BaseURL,
			theme,
		),
		accountList: accountlist.New(
			accountsWidth-padding,
			mainHeight-padding,
			theme,
		),
		preview: preview.New(
			previewWidth-padding,
			mainHeight-padding,
			theme,
		),
		Errors:     make([]error, 0, 10),
		service:    service,
		installDir: opts.InstallDir,
		debug:      opts.Debug,
		logger:     logger.Named("tui"),
		dumper: spew.ConfigState{
			Indent:                  "  ",
			MaxDepth:                4,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
		},
		focus: focusAreaAccounts,
	}
}

var _ tea.Model = (*AppModel)(nil)

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.header.Init(),
		m.accountList.Init(),
		m.preview.Init(),
		m.loadAccountsCmd(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 10)

	if m.debug {
		m.logger.Debug("[TUI] Update", zap.String("msg", m.dumper.Sdump(msg)))
	}

	switch msg := msg.(type) {
	case shared.ErrorMsg:
		m.Errors = append(m.Errors, msg)
		return m, tea.Quit

	case shared.StatusMsg:
		m.status = msg

	case shared.CharListLoadedMsg:
		if msg.Err != nil {
			m.status = shared.StatusMsg{Err: msg.Err}
		} else {
			m.status = shared.StatusMsg{Text: fmt.Sprintf("Loaded %d characters", len(msg.Summary.Characters))}
		}
		cmds = append(cmds, m.updatePreview(msg))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.accountList.Filtering() {
			cmds = append(cmds, m.updateAccountList(msg))
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit

		case "tab":
			if m.focus == focusAreaAccounts {
				m.focus = focusAreaPreview
			} else {
				m.focus = focusAreaAccounts
			}

		case "enter":
			if account, ok := m.accountList.Selected(); ok {
				m.status = shared.StatusMsg{Text: fmt.Sprintf("Launching %s...", displayName(account))}
				cmds = append(cmds, m.launchCmd(account))
			}

		case "c":
			if account, ok := m.accountList.Selected(); ok {
				m.status = shared.StatusMsg{Text: fmt.Sprintf("Loading characters of %s...", displayName(account))}
				cmds = append(cmds, m.charListCmd(account.GUID))
			}

		case "r":
			m.status = shared.StatusMsg{Text: "Refreshing..."}
			cmds = append(cmds, m.refreshCmd())

		default:
			switch m.focus {
			case focusAreaAccounts:
				cmds = append(cmds, m.updateAccountList(msg))

			case focusAreaPreview:
				cmds = append(cmds, m.updatePreview(msg))
			}
		}

	default:
		_header, cmd := m.header.Update(msg)
		m.header = _header.(*header.Model)
		cmds = append(cmds, cmd)

		cmds = append(cmds, m.updateAccountList(msg))
		cmds = append(cmds, m.updatePreview(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *AppModel) updateAccountList(msg tea.Msg) tea.Cmd {
	_accountList, cmd := m.accountList.Update(msg)
	m.accountList = _accountList.(*accountlist.Model)

	return cmd
}

func (m *AppModel) updatePreview(msg tea.Msg) tea.Cmd {
	_preview, cmd := m.preview.Update(msg)
	m.preview = _preview.(*preview.Model)

	return cmd
}

func (m *AppModel) View() string {
	status := m.theme.Status.Info.Render(m.status.Text)
	if m.status.Err != nil {
		status = m.theme.Status.Error.Render(m.status.Err.Error())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.WithBorder(m.header.View(), false),
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.theme.WithBorder(m.accountList.View(), m.focus == focusAreaAccounts),
			m.theme.WithBorder(m.preview.View(), m.focus == focusAreaPreview),
		),
		status,
		m.theme.Status.Help.Render(helpText),
	)
}

func (m *AppModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		store, err := m.service.Accounts()
		if err != nil {
			return shared.ErrorMsg(errors.Wrap(err, "open accounts"))
		}

		list, err := store.List()
		if err != nil {
			return shared.ErrorMsg(errors.Wrap(err, "list accounts"))
		}

		return shared.AccountsLoadedMsg(list)
	}
}

func (m *AppModel) launchCmd(account accounts.Account) tea.Cmd {
	return func() tea.Msg {
		msg, err := m.service.LaunchAccount(context.Background(), m.installDir, account.GUID)
		if err != nil {
			return shared.StatusMsg{Err: err}
		}

		return shared.StatusMsg{Text: fmt.Sprintf("%s: %s", displayName(account), msg)}
	}
}

func (m *AppModel) charListCmd(guid string) tea.Cmd {
	return func() tea.Msg {
		summary, err := m.service.CharListSummary(context.Background(), guid)

		return shared.CharListLoadedMsg{GUID: guid, Summary: summary, Err: err}
	}
}

func (m *AppModel) refreshCmd() tea.Cmd {
	cmds := []tea.Cmd{m.loadAccountsCmd()}

	if account, ok := m.accountList.Selected(); ok {
		cmds = append(cmds, func() tea.Msg {
			if err := m.service.ForgetCharList(account.GUID); err != nil {
				return shared.StatusMsg{Err: err}
			}

			return m.charListCmd(account.GUID)()
		})
	}

	return tea.Batch(cmds...)
}

func displayName(account accounts.Account) string {
	return cmp.Or(account.Name, account.GUID)
}
