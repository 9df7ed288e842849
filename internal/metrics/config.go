package metrics

import (
	"os"

	"codeberg.org/mutker/r730fanctl/internal/errors"
)

const (
	// File system permissions
	defaultDirPerm = 0o755
	backupDirName  = "backups"
)

// Config selects the sqlite database. An empty DBPath disables recording.
type Config struct {
	DBPath string
}

func (c Config) Enabled() bool {
	return c.DBPath != ""
}

// Validate rejects a database path that names a directory.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if info, err := os.Stat(c.DBPath); err == nil && info.IsDir() {
		return errors.New().WithData(ErrInvalidDBPath, c.DBPath)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
