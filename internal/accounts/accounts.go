package accounts

import (
	"encoding/json"
	"os"

	"github.com/go-faster/errors"
	"github.com/ras0q/rotmgstash/internal/rotmgapi"
	"github.com/ras0q/rotmgstash/internal/vault"
	"github.com/samber/lo"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

const FileName = "rotmg-stash-accounts.json"

var (
	keyringService = "rotmg-stash"

	ErrAccountNotFound  = errors.New("account not found")
	ErrPasswordNotFound = errors.New("password not found")
)

type PasswordStore int

const (
	PasswordStoreUnknown PasswordStore = iota
	PasswordStoreKeyring
	PasswordStoreFile
)

func (p PasswordStore) String() string {
	switch p {
	case PasswordStoreKeyring:
		return "keyring"
	case PasswordStoreFile:
		return "file"
	default:
		return "unknown"
	}
}

type Account struct {
	Name string `json:"name"`
	GUID string `json:"guid"`
	// Password is vault ciphertext. It is only set when the OS keyring could
	// not hold the password.
	Password string `json:"password,omitempty"`
}

// Store keeps the saved accounts in a JSON file next to the settings file.
// Passwords live in the OS keyring when it is available.
type Store struct {
	dir    string
	vault  *vault.Vault
	logger *zap.Logger
}

func NewStore(dir string, v *vault.Vault, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{dir: dir, vault: v, logger: logger}
}

func (s *Store) List() ([]Account, error) {
	f, err := os.OpenInRoot(s.dir, FileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Account{}, nil
		}

		return nil, errors.Wrapf(err, "open file (%s)", FileName)
	}
	defer f.Close()

	var accounts []Account
	if err := json.NewDecoder(f).Decode(&accounts); err != nil {
		return nil, errors.Wrapf(err, "decode file (%s) to json", FileName)
	}

	return accounts, nil
}

// Add saves an account, replacing any account with the same GUID, and
// reports where the password ended up.
func (s *Store) Add(name, guid, password string) (PasswordStore, error) {
	if guid == "" {
		return PasswordStoreUnknown, errors.New("guid is empty")
	}

	accounts, err := s.List()
	if err != nil {
		return PasswordStoreUnknown, err
	}

	account := Account{Name: name, GUID: guid}
	store := PasswordStoreKeyring

	if keyringErr := keyring.Set(keyringService, guid, password); keyringErr != nil {
		s.logger.Warn("[Accounts] Keyring unavailable, storing encrypted password in file", zap.Error(keyringErr))

		encrypted, err := s.vault.Encrypt(password)
		if err != nil {
			return PasswordStoreUnknown, errors.Wrapf(err, "set password to keyring: %v; encrypt password", keyringErr)
		}
		account.Password = encrypted
		store = PasswordStoreFile
	}

	if _, i, ok := lo.FindIndexOf(accounts, func(a Account) bool { return a.GUID == guid }); ok {
		accounts[i] = account
	} else {
		accounts = append(accounts, account)
	}

	if err := s.write(accounts); err != nil {
		return PasswordStoreUnknown, err
	}

	return store, nil
}

func (s *Store) Remove(guid string) error {
	accounts, err := s.List()
	if err != nil {
		return err
	}

	kept := lo.Reject(accounts, func(a Account, _ int) bool { return a.GUID == guid })
	if len(kept) == len(accounts) {
		return errors.Wrapf(ErrAccountNotFound, "guid %q", guid)
	}

	if err := keyring.Delete(keyringService, guid); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		s.logger.Warn("[Accounts] Failed to delete password from keyring", zap.Error(err))
	}

	return s.write(kept)
}

// Credentials returns the saved login for guid, reading the password from
// the keyring first and the file second.
func (s *Store) Credentials(guid string) (rotmgapi.Credentials, PasswordStore, error) {
	accounts, err := s.List()
	if err != nil {
		return rotmgapi.Credentials{}, PasswordStoreUnknown, err
	}

	account, ok := lo.Find(accounts, func(a Account) bool { return a.GUID == guid })
	if !ok {
		return rotmgapi.Credentials{}, PasswordStoreUnknown, errors.Wrapf(ErrAccountNotFound, "guid %q", guid)
	}

	password, keyringErr := keyring.Get(keyringService, guid)
	if keyringErr == nil {
		return rotmgapi.Credentials{GUID: guid, Password: password}, PasswordStoreKeyring, nil
	}

	if account.Password != "" {
		password, err := s.vault.Decrypt(account.Password)
		if err != nil {
			return rotmgapi.Credentials{}, PasswordStoreUnknown, errors.Wrap(err, "decrypt password from file")
		}

		return rotmgapi.Credentials{GUID: guid, Password: password}, PasswordStoreFile, nil
	}

	if errors.Is(keyringErr, keyring.ErrNotFound) {
		return rotmgapi.Credentials{}, PasswordStoreUnknown, errors.Wrapf(ErrPasswordNotFound, "guid %q", guid)
	}

	return rotmgapi.Credentials{}, PasswordStoreUnknown, errors.Wrap(keyringErr, "get password from keyring")
}

func (s *Store) write(accounts []Account) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, "create data dir")
	}

	root, err := os.OpenRoot(s.dir)
	if err != nil {
		return errors.Wrap(err, "open data dir")
	}
	defer root.Close()

	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode accounts to json")
	}

	if err := root.WriteFile(FileName, data, 0o600); err != nil {
		return errors.Wrapf(err, "write file (%s)", FileName)
	}

	return nil
}
