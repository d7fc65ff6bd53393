// Package config loads treepick settings from the embedded defaults, an
// optional YAML file and TREEPICK_* environment variables, in that order.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/treepick/pkg/settings"
)

const (
	// ConfigFileName is the config file looked up in ConfigDir.
	ConfigFileName = "config.yaml"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// configDirOverride lets tests point ConfigDir at a temp directory.
var configDirOverride string

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// DefaultConfigYAML returns a copy of the embedded default config.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default returns the embedded defaults.
func Default() Config {
	cfg, _, err := Load(LoadOptions{SkipUserConfig: true, SkipEnv: true})
	if err != nil {
		panic(fmt.Sprintf("embedded default config: %v", err))
	}
	return *cfg
}

// ConfigDir returns $XDG_CONFIG_HOME/treepick, falling back to
// ~/.config/treepick.
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, settings.CliBinaryName), nil
}

// LoadOptions select the sources Load reads.
type LoadOptions struct {
	// ConfigFile is used instead of the file in ConfigDir. It must exist.
	ConfigFile     string
	SkipUserConfig bool
	SkipEnv        bool
}

// Load returns the validated configuration and the path of the user config
// file it merged, if any.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(embeddedDefaultConfig)); err != nil {
		return nil, "", fmt.Errorf("decode default config: %w", err)
	}

	resolved := ""
	if !opts.SkipUserConfig {
		path, err := userConfigPath(opts.ConfigFile)
		if err != nil {
			return nil, "", err
		}
		if path != "" {
			v.SetConfigFile(path)
			if err := v.MergeInConfig(); err != nil {
				return nil, "", fmt.Errorf("read config %s: %w", path, err)
			}
			resolved = path
		}
	}

	if !opts.SkipEnv {
		v.SetEnvPrefix(settings.EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, err
	}
	return &cfg, resolved, nil
}

func userConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// YAML renders c in the config file format.
func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
