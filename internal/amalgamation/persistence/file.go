package persistence

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mantonx/amalgam/internal/amalgamation"
)

// SettingsFileName is the fixed name of the settings document
const SettingsFileName = "AmalgamationSettings.json"

// SettingsPath returns the settings document location under baseDir
func SettingsPath(baseDir string) string {
	return filepath.Join(baseDir, SettingsFileName)
}

// Load reads preferences from path. A missing file yields nil preferences
// and no error.
func Load(path string, resolver Resolver) (*amalgamation.Preferences, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return Decode(f, resolver)
}

// Save writes prefs to path, replacing its content. The write is not
// crash-safe: there is no temporary file or fsync.
func Save(prefs *amalgamation.Preferences, path string) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Encode(f, prefs)
}
