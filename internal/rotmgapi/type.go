package rotmgapi

import "strings"

// Credentials identify a game account. They are supplied by the caller and
// never persisted by this package.
type Credentials struct {
	GUID     string
	Password string
	// DeviceToken is the client token of this machine. Empty means unknown.
	DeviceToken string
}

// IsSteam reports whether the GUID is a Steam identity.
func (c Credentials) IsSteam() bool {
	return strings.HasPrefix(c.GUID, steamGUIDPrefix)
}

// AccessToken holds the session fields returned by /account/verify. Every
// field is copied verbatim from the response body.
type AccessToken struct {
	Token      string `json:"access_token"`
	Timestamp  string `json:"timestamp"`
	Expiration string `json:"expiration"`
}

type CharListSummary struct {
	AccountName string
	NextCharID  string
	MaxChars    string
	Characters  []Character
}

type Character struct {
	ID         string
	ObjectType string
	Level      string
	Fame       string
}
