//go:build !android

package settings

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-faster/errors"
)

const appDirName = "RotMG Stash"

// DefaultDir returns the per-user local application data directory of the
// app. The directory is not created.
func DefaultDir() (string, error) {
	base, err := localDataDir()
	if err != nil {
		return "", errors.Wrap(err, "get local data directory")
	}

	return filepath.Join(base, appDirName), nil
}

func localDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return "", errors.New("%LOCALAPPDATA% is not defined")

	case "darwin", "ios":
		return os.UserConfigDir()

	default:
		if dir := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}
