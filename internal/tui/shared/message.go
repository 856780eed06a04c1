package shared

import (
	"github.com/ras0q/rotmgstash/internal/accounts"
	"github.com/ras0q/rotmgstash/internal/rotmgapi"
)

type (
	// ErrorMsg is fatal and ends the program.
	ErrorMsg error

	AccountsLoadedMsg []accounts.Account

	PreviewAccountMsg accounts.Account

	CharListLoadedMsg struct {
		GUID    string
		Summary *rotmgapi.CharListSummary
		Err     error
	}

	// StatusMsg replaces the status line. A non-nil Err is shown instead
	// of Text.
	StatusMsg struct {
		Text string
		Err  error
	}
)
