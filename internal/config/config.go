package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of environment variables that override settings
	EnvPrefix = "DSHCTL"

	// DefaultSeparator joins the resources bound to a single junction
	DefaultSeparator = ","
)

// Settings is the complete configuration of one dshctl invocation. It is
// loaded once at process start and handed to the components that need it.
type Settings struct {
	Target        Target          `mapstructure:"target"`
	ProcessorsDir string          `mapstructure:"processors-dir"`
	HistoryPath   string          `mapstructure:"history-path"`
	Separator     string          `mapstructure:"separator"`
	Resources     ResourcesConfig `mapstructure:"resources"`
	Log           LogConfig       `mapstructure:"log"`
	TLS           TLSConfig       `mapstructure:"tls"`
}

// ResourcesConfig maps resource ids to the concrete names used on the platform
type ResourcesConfig struct {
	// Topics maps dsh-topic resource ids to kafka topic names
	Topics map[string]string `mapstructure:"topics"`
	// Streams maps dsh-stream resource ids to stream names
	Streams map[string]string `mapstructure:"streams"`
	// Naming enables deriving topic names from the tenant naming convention
	// when a resource is not listed explicitly
	Naming bool `mapstructure:"naming"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// Load reads settings from the given file (optional), the default config
// location and DSHCTL_ prefixed environment variables.
func Load(configPath string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "dshctl"))
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("dshctl")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("processors-dir", "processors")
	v.SetDefault("history-path", defaultHistoryPath())
	v.SetDefault("separator", DefaultSeparator)
	v.SetDefault("resources.naming", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")

	// Registering target keys lets AutomaticEnv pick them up on Unmarshal
	for _, key := range []string{
		"platform", "tenant", "user", "realm", "token",
		"rest-api-url", "rest-access-token-url", "console-url", "monitoring-url",
		"app-domain", "public-vhosts-domain", "internal-domain",
	} {
		v.SetDefault("target."+key, "")
	}
}

func fromViper(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if s.Separator == "" {
		s.Separator = DefaultSeparator
	}
	s.Target = s.Target.WithPlatformDefaults()
	return &s, nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dshctl-history.db"
	}
	return filepath.Join(home, ".config", "dshctl", "history.db")
}

// Validate checks that the settings are sufficient to talk to the platform
func (s *Settings) Validate() error {
	if err := s.Target.Validate(); err != nil {
		return err
	}
	if s.ProcessorsDir == "" {
		return fmt.Errorf("processors-dir is required")
	}
	return s.TLS.Validate()
}
