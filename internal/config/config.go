package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/llmbind/internal/errors"
	"codeberg.org/mutker/llmbind/internal/journal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = string(LogLevelInfo)
	DefaultJournalDB = "/var/lib/llmbind/failures.db"

	defaultEnvPrefix = "LLMBIND"
	configName       = "llmbind"
)

type Config struct {
	Library   string `mapstructure:"library"`
	LogLevel  string `mapstructure:"log_level"`
	Journal   bool   `mapstructure:"journal"`
	JournalDB string `mapstructure:"journal_db"`
}

// Load reads configuration from defaults, an optional TOML file, the
// environment and any bound flags, in increasing order of precedence.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: defaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	v.SetDefault("library", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("journal", false)
	v.SetDefault("journal_db", DefaultJournalDB)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if o.configPath == "" {
		o.configPath = os.Getenv(o.envPrefix + "_CONFIG")
	}

	v.SetConfigType("toml")
	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath("/etc/llmbind")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	if o.flags != nil {
		if err := bindFlags(v, o.flags); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// bindFlags binds flags named like the keys, with dashes for underscores.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		bindErr = v.BindPFlag(key, f)
	})

	return bindErr
}

// Validate checks values that cannot be expressed through defaults.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if err := c.JournalConfig().Validate(); err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	return nil
}

// JournalConfig returns the failure journal settings.
func (c *Config) JournalConfig() journal.Config {
	return journal.Config{
		DBPath:  c.JournalDB,
		Enabled: c.Journal,
	}
}

// RegisterFlags adds the flags understood by Load to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("library", "", "Path to the engine shared library")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("journal", false, "Record engine failures in the journal")
	fs.String("journal-db", DefaultJournalDB, "Path to the failure journal database")
}
