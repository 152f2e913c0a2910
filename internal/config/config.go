package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the effective configuration of the pkg command.
type Config struct {
	// Root is the target root filesystem.
	Root string `mapstructure:"root" yaml:"root"`
	// Architecture of the catalog. Empty means the host architecture.
	Architecture string `mapstructure:"architecture" yaml:"architecture"`
	// Backend selects the capabilities: native or shell.
	Backend string `mapstructure:"backend" yaml:"backend"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose"`
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rootpkg", "config.yaml")
}

// Load reads the config from path, $PKG_CONFIG or the default path, in that order.
// Environment variables (PKG_ROOT, PKG_BACKEND, ...) override the file.
// Only an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("root", "/")
	v.SetDefault("architecture", "")
	v.SetDefault("backend", "native")
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("PKG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("PKG_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
		if !missing || explicit {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Backend {
	case "native", "shell":
	default:
		return fmt.Errorf("invalid backend %q (expected native or shell)", c.Backend)
	}
	if c.Root == "" {
		return errors.New("root must not be empty")
	}
	return nil
}

// Dump renders the configuration as YAML.
func Dump(cfg *Config) (string, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
