package accountlist

import (
	"cmp"

	"github.com/charmbracelet/bubbles/list"
	"github.com/ras0q/rotmgstash/internal/accounts"
	"github.com/ras0q/rotmgstash/internal/rotmgapi"
)

type Item struct {
	Account accounts.Account
}

var _ list.Item = Item{}
var _ list.DefaultItem = Item{}

// FilterValue implements list.Item.
func (i Item) FilterValue() string {
	return i.Account.Name + " " + i.Account.GUID
}

// Title implements list.DefaultItem.
func (i Item) Title() string {
	return cmp.Or(i.Account.Name, i.Account.GUID)
}

// Description implements list.DefaultItem.
func (i Item) Description() string {
	if (rotmgapi.Credentials{GUID: i.Account.GUID}).IsSteam() {
		return i.Account.GUID + " (Steam)"
	}

	return i.Account.GUID
}
