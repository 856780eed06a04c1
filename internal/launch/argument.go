package launch

import (
	"encoding/base64"
	"fmt"

	"github.com/ras0q/rotmgstash/internal/rotmgapi"
)

const argumentFormat = "data:{platform:Deca,guid:%s,token:%s,tokenTimestamp:%s,tokenExpiration:%s,env:4}"

// BuildArgument encodes the account and session fields into the single
// argument the game executable reads on start. Values are standard Base64
// and need no further escaping.
func BuildArgument(guid string, token rotmgapi.AccessToken) string {
	enc := base64.StdEncoding.EncodeToString

	return fmt.Sprintf(argumentFormat,
		enc([]byte(guid)),
		enc([]byte(token.Token)),
		enc([]byte(token.Timestamp)),
		enc([]byte(token.Expiration)),
	)
}
