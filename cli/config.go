package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogFile       = "log.file"
	KeyLogMaxSize    = "log.max_size"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAge     = "log.max_age"
	KeyPageSize      = "page_size"
)

// EnvPrefix is prepended to environment variables, e.g. TABULA_LOG_LEVEL.
const EnvPrefix = "TABULA"

// LogConfig configures the process logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// Config is the process configuration of the tabula command.
type Config struct {
	Log      LogConfig `mapstructure:"log"`
	PageSize int       `mapstructure:"page_size"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSize, 100)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyLogMaxAge, 28)
	v.SetDefault(KeyPageSize, 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the configuration from defaults, the environment and, when
// path is set, a config file. Without a path, tabula.yaml is looked up in the
// working directory and ignored when absent.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tabula")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.PageSize < 0 {
		return nil, fmt.Errorf("invalid %s %d: must not be negative", KeyPageSize, cfg.PageSize)
	}
	return &cfg, nil
}
