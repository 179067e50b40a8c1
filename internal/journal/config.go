package journal

import "codeberg.org/mutker/llmbind/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "/var/lib/llmbind/failures.db"
)

type Config struct {
	DBPath  string
	Enabled bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:  defaultDBPath,
		Enabled: false, // Disabled by default
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if the journal is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	return nil
}
