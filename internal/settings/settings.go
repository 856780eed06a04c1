package settings

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

const (
	FileName = "rotmg-stash-settings.json"

	secretKeyBytes = 32
)

type Settings struct {
	// SecretKey is the hex encoded key used to encrypt stored passwords.
	SecretKey *string `json:"secret_key"`
}

// IOError reports a failure creating or writing the settings directory or
// file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

type Store struct {
	dir    string
	logger *zap.Logger
}

func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{dir: dir, logger: logger}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// LoadOrCreate reads the settings file, or writes a new one holding a fresh
// secret key when none exists. An existing file is never rewritten. A file
// that fails to decode yields empty Settings instead of an error.
func (s *Store) LoadOrCreate() (*Settings, error) {
	s.logger.Info("[Settings] Checking settings", zap.String("path", s.Path()))

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, &IOError{Op: "create directory", Path: s.dir, Err: err}
	}

	root, err := os.OpenRoot(s.dir)
	if err != nil {
		return nil, &IOError{Op: "open directory", Path: s.dir, Err: err}
	}
	defer root.Close()

	data, err := root.ReadFile(FileName)
	if err == nil {
		s.logger.Info("[Settings] Found existing settings")

		var settings Settings
		if err := json.Unmarshal(data, &settings); err != nil {
			s.logger.Warn("[Settings] Settings file is corrupt, using defaults", zap.Error(err))
			return &Settings{}, nil
		}

		return &settings, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, &IOError{Op: "read", Path: s.Path(), Err: err}
	}

	s.logger.Info("[Settings] No settings found, generating settings file")

	key, err := generateHexKey(secretKeyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "generate secret key")
	}
	settings := &Settings{SecretKey: &key}

	data, err = json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode settings to json")
	}

	if err := root.WriteFile(FileName, data, 0o600); err != nil {
		return nil, &IOError{Op: "write", Path: s.Path(), Err: err}
	}

	s.logger.Info("[Settings] New settings file created", zap.String("path", s.Path()))

	return settings, nil
}

// generateHexKey returns n random bytes as a 2n character hex string.
func generateHexKey(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
