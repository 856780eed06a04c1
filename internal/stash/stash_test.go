package stash_test

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ras0q/rotmgstash/internal/accounts"
	"github.com/ras0q/rotmgstash/internal/config"
	"github.com/ras0q/rotmgstash/internal/devicetoken"
	"github.com/ras0q/rotmgstash/internal/launch"
	"github.com/ras0q/rotmgstash/internal/rotmgapi"
	"github.com/ras0q/rotmgstash/internal/stash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const verifyBody = `<Account><AccessToken>abc123</AccessToken><AccessTokenTimestamp>1700000000</AccessTokenTimestamp><AccessTokenExpiration>1700003600</AccessTokenExpiration></Account>`

const charListBody = `<Chars nextCharId="2" maxNumChars="1"><Char id="1"><ObjectType>782</ObjectType><Level>20</Level><CurrentFame>10</CurrentFame></Char><Account><Name>Stasher</Name></Account></Chars>`

type fakeServer struct {
	*httptest.Server
	verifies  atomic.Int32
	charLists atomic.Int32
	charList  atomic.Pointer[string]
	forms     chan url.Values
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	s := &fakeServer{forms: make(chan url.Values, 16)}
	s.SetCharList(charListBody)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /account/verify", func(w http.ResponseWriter, r *http.Request) {
		s.verifies.Add(1)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.forms <- r.PostForm
		_, _ = io.WriteString(w, verifyBody)
	})
	mux.HandleFunc("GET /char/list", func(w http.ResponseWriter, r *http.Request) {
		s.charLists.Add(1)
		if r.URL.Query().Get("accessToken") != "abc123" {
			_, _ = io.WriteString(w, "<Error>Account credentials not valid</Error>")
			return
		}
		_, _ = io.WriteString(w, *s.charList.Load())
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

func (s *fakeServer) SetCharList(body string) {
	s.charList.Store(&body)
}

type recordedStart struct {
	cmd *exec.Cmd
}

func newService(t *testing.T, server *fakeServer, logger *zap.Logger, opts ...stash.Option) (*stash.Service, *recordedStart) {
	t.Helper()

	rec := &recordedStart{}
	opts = append([]stash.Option{
		stash.WithLaunchOptions(launch.WithStarter(func(cmd *exec.Cmd) error {
			rec.cmd = cmd
			return nil
		})),
		stash.WithDeviceTokenOptions(devicetoken.WithRunner(func(context.Context, string, ...string) ([]byte, []byte, error) {
			return []byte("device-123\r\n"), nil, nil
		})),
	}, opts...)

	svc, err := stash.New(config.Config{BaseURL: server.URL, DataDir: t.TempDir()}, logger, opts...)
	require.NoError(t, err)

	return svc, rec
}

func installDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, launch.ExecutableName), nil, 0o755))

	return dir
}

func TestLaunchExalt(t *testing.T) {
	server := newFakeServer(t)
	svc, rec := newService(t, server, nil)
	dir := installDir(t)

	msg, err := svc.LaunchExalt(t.Context(), dir, rotmgapi.Credentials{GUID: "player@example.com", Password: "hunter2", DeviceToken: "dev"})
	require.NoError(t, err)
	assert.Equal(t, stash.LaunchedMessage, msg)
	assert.Equal(t, "Successfully launched Exalt", msg)

	form := <-server.forms
	assert.Equal(t, "dev", form.Get("clientToken"))
	assert.Equal(t, "hunter2", form.Get("password"))

	require.NotNil(t, rec.cmd)
	assert.Equal(t, dir, rec.cmd.Dir)
	require.Len(t, rec.cmd.Args, 2)

	b64 := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }
	want := "data:{platform:Deca,guid:" + b64("player@example.com") +
		",token:" + b64("abc123") +
		",tokenTimestamp:" + b64("1700000000") +
		",tokenExpiration:" + b64("1700003600") + ",env:4}"
	assert.Equal(t, want, rec.cmd.Args[1])
}

func TestLaunchExaltMissingExecutableSkipsLogin(t *testing.T) {
	server := newFakeServer(t)
	svc, rec := newService(t, server, nil)

	_, err := svc.LaunchExalt(t.Context(), t.TempDir(), rotmgapi.Credentials{GUID: "g", Password: "p"})
	require.ErrorIs(t, err, launch.ErrExecutableNotFound)
	assert.Zero(t, server.verifies.Load())
	assert.Nil(t, rec.cmd)
}

func TestLaunchExaltLoginRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /account/verify", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<Error>WebChangePasswordDialog.passwordError</Error>")
	})
	server := &fakeServer{Server: httptest.NewServer(mux)}
	t.Cleanup(server.Close)

	svc, rec := newService(t, server, nil)

	_, err := svc.LaunchExalt(t.Context(), installDir(t), rotmgapi.Credentials{GUID: "g", Password: "wrong"})
	require.ErrorIs(t, err, rotmgapi.ErrTokenNotFound)
	assert.Equal(t, "access token not found in response", err.Error())
	assert.NotContains(t, err.Error(), "passwordError")
	assert.Nil(t, rec.cmd)
}

func TestLaunchExaltLogsRequestID(t *testing.T) {
	server := newFakeServer(t)
	core, logs := observer.New(zap.InfoLevel)
	svc, _ := newService(t, server, zap.New(core))

	_, err := svc.LaunchExalt(t.Context(), installDir(t), rotmgapi.Credentials{GUID: "g", Password: "p"})
	require.NoError(t, err)

	var ids []string
	for _, entry := range logs.All() {
		if id, ok := entry.ContextMap()["request_id"].(string); ok {
			ids = append(ids, id)
		}
	}
	require.NotEmpty(t, ids)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.NotEmpty(t, logs.FilterMessage("[RotMG API] Sending /account/verify request").FilterFieldKey("request_id").All())
}

func TestAccountDataAsksServerEveryCall(t *testing.T) {
	server := newFakeServer(t)
	svc, _ := newService(t, server, nil)

	server.SetCharList("<Chars>v1</Chars>")
	first, err := svc.AccountData(t.Context(), "g", "p")
	require.NoError(t, err)

	server.SetCharList("<Chars>v2</Chars>")
	second, err := svc.AccountData(t.Context(), "g", "p")
	require.NoError(t, err)

	assert.Equal(t, "<Chars>v1</Chars>", first)
	assert.Equal(t, "<Chars>v2</Chars>", second)
	assert.Equal(t, int32(2), server.verifies.Load())
	assert.Equal(t, int32(2), server.charLists.Load())

	form := <-server.forms
	assert.Equal(t, "0", form.Get("clientToken"))
}

func TestAccountDataAll(t *testing.T) {
	server := newFakeServer(t)
	svc, _ := newService(t, server, nil)

	logins := []rotmgapi.Credentials{
		{GUID: "a", Password: "1"},
		{GUID: "b", Password: "2"},
		{GUID: "c", Password: "3"},
		{GUID: "d", Password: "4"},
		{GUID: "e", Password: "5"},
	}

	bodies, err := svc.AccountDataAll(t.Context(), logins)
	require.NoError(t, err)
	require.Len(t, bodies, len(logins))
	for _, body := range bodies {
		assert.Equal(t, charListBody, body)
	}
	assert.Equal(t, int32(len(logins)), server.verifies.Load())
}

func TestAccountDataAllFailure(t *testing.T) {
	server := newFakeServer(t)
	svc, _ := newService(t, server, nil)
	server.Close()

	_, err := svc.AccountDataAll(t.Context(), []rotmgapi.Credentials{{GUID: "a", Password: "1"}})
	var netErr *rotmgapi.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, strings.HasPrefix(err.Error(), "fetch char list of a: "))
}

func TestAccountDataAllStopsAfterFailure(t *testing.T) {
	var verifies, charLists atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /account/verify", func(w http.ResponseWriter, r *http.Request) {
		verifies.Add(1)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("guid") == "bad" {
			_, _ = io.WriteString(w, "<Error>Account credentials not valid</Error>")
			return
		}

		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		_, _ = io.WriteString(w, verifyBody)
	})
	mux.HandleFunc("GET /char/list", func(w http.ResponseWriter, _ *http.Request) {
		charLists.Add(1)
		_, _ = io.WriteString(w, charListBody)
	})
	server := &fakeServer{Server: httptest.NewServer(mux)}
	t.Cleanup(server.Close)

	svc, _ := newService(t, server, nil)

	logins := []rotmgapi.Credentials{{GUID: "bad", Password: "x"}}
	for i := range 8 {
		logins = append(logins, rotmgapi.Credentials{GUID: "good" + string(rune('a'+i)), Password: "p"})
	}

	_, err := svc.AccountDataAll(t.Context(), logins)
	require.ErrorIs(t, err, rotmgapi.ErrTokenNotFound)
	assert.Equal(t, "fetch char list of bad: access token not found in response", err.Error())

	assert.LessOrEqual(t, verifies.Load(), int32(4))
	assert.Zero(t, charLists.Load())
}

func TestSettingsAndVault(t *testing.T) {
	server := newFakeServer(t)
	svc, _ := newService(t, server, nil)

	first, err := svc.Settings()
	require.NoError(t, err)
	require.NotNil(t, first.SecretKey)

	second, err := svc.Settings()
	require.NoError(t, err)
	assert.Equal(t, *first.SecretKey, *second.SecretKey)
	assert.FileExists(t, svc.SettingsPath())

	v, err := svc.Vault()
	require.NoError(t, err)
	ciphertext, err := v.Encrypt("hunter2")
	require.NoError(t, err)

	again, err := svc.Vault()
	require.NoError(t, err)
	plaintext, err := again.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plaintext)
}

func TestLaunchAccountUsesSavedLogin(t *testing.T) {
	keyring.MockInit()
	server := newFakeServer(t)
	svc, rec := newService(t, server, nil)

	store, err := svc.Accounts()
	require.NoError(t, err)
	_, err = store.Add("main", "player@example.com", "hunter2")
	require.NoError(t, err)

	msg, err := svc.LaunchAccount(t.Context(), installDir(t), "player@example.com")
	require.NoError(t, err)
	assert.Equal(t, stash.LaunchedMessage, msg)
	require.NotNil(t, rec.cmd)

	form := <-server.forms
	assert.Equal(t, "device-123", form.Get("clientToken"))
	assert.Equal(t, "hunter2", form.Get("password"))
}

func TestCharListSummary(t *testing.T) {
	keyring.MockInit()
	server := newFakeServer(t)
	svc, _ := newService(t, server, nil)

	store, err := svc.Accounts()
	require.NoError(t, err)
	_, err = store.Add("main", "g", "p")
	require.NoError(t, err)

	summary, err := svc.CharListSummary(t.Context(), "g")
	require.NoError(t, err)
	assert.Equal(t, "Stasher", summary.AccountName)
	require.Len(t, summary.Characters, 1)
	assert.Equal(t, "782", summary.Characters[0].ObjectType)

	_, err = svc.CharListSummary(t.Context(), "g")
	require.NoError(t, err)
	assert.Equal(t, int32(1), server.charLists.Load())

	require.NoError(t, svc.ForgetCharList("g"))
	_, err = svc.CharListSummary(t.Context(), "g")
	require.NoError(t, err)
	assert.Equal(t, int32(2), server.charLists.Load())

	assert.ErrorIs(t, svc.ForgetCharList("unknown"), accounts.ErrAccountNotFound)
}

func TestDeviceToken(t *testing.T) {
	server := newFakeServer(t)
	svc, _ := newService(t, server, nil)

	token, err := svc.DeviceToken(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "device-123", token)
}
