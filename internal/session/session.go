// Package session resolves the per-session directory layout.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/matheus3301/wppview/internal/config"
)

// DefaultName is used when neither a flag nor the config names a session.
const DefaultName = "main"

var nameRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// Paths is the on-disk layout of one session.
type Paths struct {
	Name string
	Root string
}

// BaseDir returns ~/.wppview.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wppview")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return ConfigPathIn(BaseDir())
}

// ConfigPathIn returns the config file path under base.
func ConfigPathIn(base string) string {
	return filepath.Join(base, "config.toml")
}

// For returns the layout of the named session under BaseDir.
func For(name string) Paths {
	return In(BaseDir(), name)
}

// In returns the layout of the named session under base.
func In(base, name string) Paths {
	return Paths{Name: name, Root: filepath.Join(base, "sessions", name)}
}

// Socket returns the daemon's Unix socket path.
func (p Paths) Socket() string { return filepath.Join(p.Root, "daemon.sock") }

// Lock returns the daemon's single-instance lock file.
func (p Paths) Lock() string { return filepath.Join(p.Root, "daemon.lock") }

// Store returns the record store path.
func (p Paths) Store() string { return filepath.Join(p.Root, "records.db") }

// Device returns the whatsmeow device store path.
func (p Paths) Device() string { return filepath.Join(p.Root, "session.db") }

// LogDir returns the session log directory.
func (p Paths) LogDir() string { return filepath.Join(p.Root, "logs") }

// Log returns the daemon log file path.
func (p Paths) Log() string { return filepath.Join(p.LogDir(), "wppviewd.log") }

// Ensure creates the session directory tree with owner-only permissions.
func (p Paths) Ensure() error {
	for _, d := range []string{p.Root, p.LogDir()} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}

// ValidateName checks that name conforms to session naming rules.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("invalid session name %q: must match %s", name, nameRegexp)
	}
	return nil
}

// Resolve picks the active session name: flag, then the config's
// default_session, then DefaultName.
func Resolve(flagOverride string, cfg *config.Config) string {
	if flagOverride != "" {
		return flagOverride
	}
	if cfg != nil && cfg.DefaultSession != "" {
		return cfg.DefaultSession
	}
	return DefaultName
}
