package rotmgapi

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// ParseAccessToken extracts the session fields from a /account/verify body.
// The body is logged at error level when the token cannot be read; it is
// never part of the returned error.
func ParseAccessToken(body string, logger *zap.Logger) (*AccessToken, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	markup := NewMarkup(body)

	token, err := markup.Field(fieldAccessToken)
	if err != nil {
		if errors.Is(err, ErrFieldMissing) {
			logger.Error("[RotMG API] Access token not found",
				zap.String("server_error", ServerError(body)),
				zap.String("body", body),
			)
			return nil, ErrTokenNotFound
		}

		logger.Error("[RotMG API] Failed to parse access token", zap.String("body", body))
		return nil, ErrCouldNotParseToken
	}

	timestamp, err := markup.Field(fieldAccessTokenTimestamp)
	if err != nil {
		return nil, fieldError(err, "access token timestamp", body, logger)
	}

	expiration, err := markup.Field(fieldAccessTokenExpiration)
	if err != nil {
		return nil, fieldError(err, "access token expiration", body, logger)
	}

	return &AccessToken{
		Token:      token,
		Timestamp:  timestamp,
		Expiration: expiration,
	}, nil
}

func fieldError(err error, what, body string, logger *zap.Logger) error {
	reason := "could not parse " + what
	if errors.Is(err, ErrFieldMissing) {
		reason = what + " not found"
	}

	logger.Error("[RotMG API] Invalid response", zap.String("reason", reason), zap.String("body", body))

	return &InvalidResponseError{Reason: reason}
}

// ServerError returns the text of the <Error> element the account service
// sends on rejected logins, or "" when there is none.
func ServerError(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	return strings.TrimSpace(doc.Find("error").First().Text())
}
