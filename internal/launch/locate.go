package launch

import (
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"

	"github.com/spf13/afero"
)

// PlayerName is the base name of the bundled player on the current platform.
func PlayerName() string {
	if goruntime.GOOS == "windows" {
		return "ffplay.exe"
	}
	return "ffplay"
}

// BaseDir returns the directory holding the running binary.
func BaseDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Resolve returns the absolute player path. An empty configured value means
// the bundled player next to base; relative values are taken from base.
func Resolve(base, configured string) string {
	if configured == "" {
		return filepath.Join(base, PlayerName())
	}
	configured = os.ExpandEnv(configured)
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(base, configured))
}

// Present reports whether path names a regular file on fs. Lookup errors
// other than non-existence are returned.
func Present(fs afero.Fs, path string) (bool, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}
