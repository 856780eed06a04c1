package rotmgapi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

type Client struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

type Option func(*Client)

// WithBaseURL points the client at another account service host, such as a
// local stub server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		client:  new(http.Client),
		baseURL: DefaultBaseURL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// With returns a shallow copy of c whose log lines carry fields. The copy
// shares the underlying http.Client.
func (c *Client) With(fields ...zap.Field) *Client {
	clone := *c
	clone.logger = c.logger.With(fields...)

	return &clone
}

func (c *Client) SetProxy(proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return errors.Wrap(err, "parse proxy url")
	}
	c.client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}

	return nil
}

// verifyForm builds the /account/verify payload. Steam identities send the
// GUID again as steamid and the password as secret.
func verifyForm(creds Credentials) url.Values {
	clientToken := creds.DeviceToken
	if clientToken == "" {
		clientToken = defaultClientToken
	}

	values := url.Values{
		"clientToken": {clientToken},
		"guid":        {creds.GUID},
	}
	if creds.IsSteam() {
		values.Set("steamid", creds.GUID)
		values.Set("secret", creds.Password)
	} else {
		values.Set("password", creds.Password)
	}

	return values
}

// AccessToken posts the credentials to /account/verify once and parses the
// session fields out of the response.
func (c *Client) AccessToken(ctx context.Context, creds Credentials) (*AccessToken, error) {
	body := verifyForm(creds).Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+verifyPath, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create verify request")
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Info("[RotMG API] Sending /account/verify request")

	resBody, err := c.do(request)
	if err != nil {
		return nil, err
	}

	c.logger.Info("[RotMG API] Parsing Access Token")

	return ParseAccessToken(resBody, c.logger)
}

// CharList fetches the raw character list for an access token. The body is
// returned as is.
func (c *Client) CharList(ctx context.Context, accessToken string) (string, error) {
	query := url.Values{"accessToken": {accessToken}}.Encode()
	charListURL := c.baseURL + charListPath + "?muleDump=true&" + query

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, charListURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "create char list request")
	}

	c.logger.Info("[RotMG API] Sending /char/list request")

	return c.do(request)
}

// AccountData logs in without a device token and returns the raw character
// list of the account.
func (c *Client) AccountData(ctx context.Context, guid, password string) (string, error) {
	start := time.Now()

	token, err := c.AccessToken(ctx, Credentials{GUID: guid, Password: password})
	if err != nil {
		return "", err
	}

	body, err := c.CharList(ctx, token.Token)
	if err != nil {
		return "", err
	}

	c.logger.Info("[RotMG API] Request completed",
		zap.Float64("elapsed_ms", float64(time.Since(start).Microseconds())/1000),
	)

	return body, nil
}

func (c *Client) do(request *http.Request) (string, error) {
	op := request.Method + " " + request.URL.Path

	response, err := c.client.Do(request)
	if err != nil {
		return "", &NetworkError{Op: op, Err: err}
	}
	defer response.Body.Close()

	b, err := io.ReadAll(response.Body)
	if err != nil {
		return "", &NetworkError{Op: op, Err: err}
	}

	return string(b), nil
}
