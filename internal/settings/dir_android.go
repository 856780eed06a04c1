package settings

// The app sandbox on Android has no user data directory to derive from.
const androidDir = "/data/data/com.rotmg_stash.app/files"

func DefaultDir() (string, error) {
	return androidDir, nil
}
