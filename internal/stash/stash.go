// Package stash is the boundary the front-ends talk to. Each operation
// returns a result or an error whose message is fit to show the player.
package stash

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/motoki317/sc"
	"github.com/ras0q/rotmgstash/internal/accounts"
	"github.com/ras0q/rotmgstash/internal/config"
	"github.com/ras0q/rotmgstash/internal/devicetoken"
	"github.com/ras0q/rotmgstash/internal/launch"
	"github.com/ras0q/rotmgstash/internal/rotmgapi"
	"github.com/ras0q/rotmgstash/internal/settings"
	"github.com/ras0q/rotmgstash/internal/vault"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const LaunchedMessage = "Successfully launched Exalt"

// maxConcurrentFetches bounds AccountDataAll so a long account list does
// not open one connection per account.
const maxConcurrentFetches = 4

type Service struct {
	api         *rotmgapi.Client
	launcher    *launch.Launcher
	settings    *settings.Store
	deviceToken *devicetoken.Generator
	logger      *zap.Logger

	// charLists backs CharListSummary only; AccountData always asks the
	// server.
	charLists *sc.Cache[rotmgapi.Credentials, string]
}

type options struct {
	api         []rotmgapi.Option
	launch      []launch.Option
	deviceToken []devicetoken.Option
}

type Option func(*options)

func WithAPIOptions(opts ...rotmgapi.Option) Option {
	return func(o *options) {
		o.api = append(o.api, opts...)
	}
}

func WithLaunchOptions(opts ...launch.Option) Option {
	return func(o *options) {
		o.launch = append(o.launch, opts...)
	}
}

func WithDeviceTokenOptions(opts ...devicetoken.Option) Option {
	return func(o *options) {
		o.deviceToken = append(o.deviceToken, opts...)
	}
}

func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	apiOpts := append([]rotmgapi.Option{
		rotmgapi.WithBaseURL(cfg.BaseURL),
		rotmgapi.WithLogger(logger.Named("rotmgapi")),
	}, o.api...)
	api := rotmgapi.NewClient(apiOpts...)

	deviceToken, err := devicetoken.New(logger.Named("devicetoken"), o.deviceToken...)
	if err != nil {
		return nil, err
	}

	s := &Service{
		api:         api,
		launcher:    launch.NewLauncher(logger.Named("launch"), o.launch...),
		settings:    settings.NewStore(cfg.DataDir, logger.Named("settings")),
		deviceToken: deviceToken,
		logger:      logger.Named("stash"),
	}

	s.charLists, err = newCharListStore(api)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func newCharListStore(api *rotmgapi.Client) (*sc.Cache[rotmgapi.Credentials, string], error) {
	freshFor := time.Minute * 1
	ttl := time.Minute * 5

	return sc.New(func(ctx context.Context, creds rotmgapi.Credentials) (string, error) {
		return api.With(requestIDField(ctx)).AccountData(ctx, creds.GUID, creds.Password)
	}, freshFor, ttl)
}

type requestIDKey struct{}

// withRequestID tags ctx with a new request id and returns the logger for
// the request.
func (s *Service) withRequestID(ctx context.Context) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey{}, uuid.NewString())

	return ctx, s.logger.With(requestIDField(ctx))
}

func requestIDField(ctx context.Context) zap.Field {
	id, _ := ctx.Value(requestIDKey{}).(string)
	if id == "" {
		return zap.Skip()
	}

	return zap.String("request_id", id)
}

// LaunchExalt logs in with creds and starts the game found in installDir.
// The executable is checked first so a bad path never costs a login.
func (s *Service) LaunchExalt(ctx context.Context, installDir string, creds rotmgapi.Credentials) (string, error) {
	ctx, logger := s.withRequestID(ctx)
	launcher := s.launcher.With(requestIDField(ctx))

	if _, err := launcher.Resolve(installDir); err != nil {
		return "", err
	}

	logger.Info("[Exalt] Launching Exalt", zap.String("dir", installDir), zap.Bool("steam", creds.IsSteam()))

	token, err := s.api.With(requestIDField(ctx)).AccessToken(ctx, creds)
	if err != nil {
		logger.Error("[Exalt] Failed to get access token", zap.Error(err))
		return "", err
	}

	if err := launcher.Launch(installDir, launch.BuildArgument(creds.GUID, *token)); err != nil {
		return "", err
	}

	return LaunchedMessage, nil
}

// LaunchAccount launches a saved account. The device token is best effort:
// when it cannot be generated the login goes out without one.
func (s *Service) LaunchAccount(ctx context.Context, installDir, guid string) (string, error) {
	store, err := s.Accounts()
	if err != nil {
		return "", err
	}

	creds, _, err := store.Credentials(guid)
	if err != nil {
		return "", err
	}

	if token, err := s.DeviceToken(ctx); err == nil {
		creds.DeviceToken = token
	} else {
		s.logger.Warn("[Exalt] Launching without device token", zap.Error(err))
	}

	return s.LaunchExalt(ctx, installDir, creds)
}

// AccessToken logs in once and returns the session fields.
func (s *Service) AccessToken(ctx context.Context, creds rotmgapi.Credentials) (*rotmgapi.AccessToken, error) {
	ctx, _ = s.withRequestID(ctx)

	return s.api.With(requestIDField(ctx)).AccessToken(ctx, creds)
}

// AccountData logs in and returns the raw character list of an account.
// Every call sends both requests.
func (s *Service) AccountData(ctx context.Context, guid, password string) (string, error) {
	ctx, _ = s.withRequestID(ctx)

	return s.api.With(requestIDField(ctx)).AccountData(ctx, guid, password)
}

// AccountDataAll fetches the character lists of all logins concurrently.
// The result is in the order of logins. After the first failure no new
// fetch starts and the ones in flight are cancelled.
func (s *Service) AccountDataAll(ctx context.Context, logins []rotmgapi.Credentials) ([]string, error) {
	bodies := make([]string, len(logins))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentFetches)

	for i, login := range logins {
		if ctx.Err() != nil {
			break
		}

		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			body, err := s.AccountData(ctx, login.GUID, login.Password)
			if err != nil {
				return errors.Wrapf(err, "fetch char list of %s", login.GUID)
			}
			bodies[i] = body

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return bodies, nil
}

// CharListSummary fetches and summarizes the character list of a saved
// account. The list is cached briefly per account; see ForgetCharList.
func (s *Service) CharListSummary(ctx context.Context, guid string) (*rotmgapi.CharListSummary, error) {
	store, err := s.Accounts()
	if err != nil {
		return nil, err
	}

	creds, _, err := store.Credentials(guid)
	if err != nil {
		return nil, err
	}

	ctx, _ = s.withRequestID(ctx)

	body, err := s.charLists.Get(ctx, creds)
	if err != nil {
		return nil, err
	}

	return rotmgapi.SummarizeCharList(body)
}

// ForgetCharList drops the cached character list of a saved account so the
// next CharListSummary asks the server again.
func (s *Service) ForgetCharList(guid string) error {
	store, err := s.Accounts()
	if err != nil {
		return err
	}

	creds, _, err := store.Credentials(guid)
	if err != nil {
		return err
	}
	s.charLists.Forget(creds)

	return nil
}

func (s *Service) Settings() (*settings.Settings, error) {
	return s.settings.LoadOrCreate()
}

func (s *Service) SettingsPath() string {
	return s.settings.Path()
}

func (s *Service) DeviceToken(ctx context.Context) (string, error) {
	return s.deviceToken.Token(ctx)
}

// Vault returns the cipher keyed by the settings secret key.
func (s *Service) Vault() (*vault.Vault, error) {
	st, err := s.Settings()
	if err != nil {
		return nil, err
	}

	return vault.New(st.SecretKey, s.logger)
}

func (s *Service) Accounts() (*accounts.Store, error) {
	v, err := s.Vault()
	if err != nil {
		return nil, err
	}

	return accounts.NewStore(s.settings.Dir(), v, s.logger.Named("accounts")), nil
}
