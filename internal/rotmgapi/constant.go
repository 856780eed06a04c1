package rotmgapi

const DefaultBaseURL = "https://www.realmofthemadgod.com"

const (
	verifyPath   = "/account/verify"
	charListPath = "/char/list"
)

const (
	steamGUIDPrefix = "steamworks:"

	// defaultClientToken is sent when no device token is known.
	defaultClientToken = "0"
)

const (
	fieldAccessToken           = "AccessToken"
	fieldAccessTokenTimestamp  = "AccessTokenTimestamp"
	fieldAccessTokenExpiration = "AccessTokenExpiration"
)
