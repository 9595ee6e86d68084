// Package config loads one instance's startup configuration: listen port,
// data directory, and whether to probe for a free port instead of binding
// the configured one exactly (§4.7). Values come from built-in defaults, an
// optional YAML file, and ARRAYSIM_* environment variables, in that order of
// increasing precedence, following the pack's viper-based cobra wiring; the
// serve command's flags then override the loaded values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultPort is the instance's listen port absent any override,
	// mirroring the source's FLASK_PORT default.
	DefaultPort = 5000

	// ProbeRangeStart and ProbeRangeEnd bound the free-port probe window
	// used when PortProbe is enabled.
	ProbeRangeStart = 5000
	ProbeRangeEnd   = 5050
)

// Config is one instance's resolved startup configuration.
type Config struct {
	Port         int    `mapstructure:"port"`
	PortProbe    bool   `mapstructure:"port_probe"`
	DataDir      string `mapstructure:"data_dir"`
	RegistryPath string `mapstructure:"registry_path"`
	LogLevel     string `mapstructure:"log_level"`
}

// Load resolves configuration from an optional file at path (ignored if
// empty or missing), then the ARRAYSIM_* environment variables, which take
// precedence over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("arraysim")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("port_probe", false)
	v.SetDefault("data_dir", "")
	v.SetDefault("registry_path", "global_systems.json")
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir(cfg.Port)
	}
	return cfg, nil
}

// DefaultDataDir is the instance data directory convention, used both at
// config load time and again after port probing resolves the actual bound
// port.
func DefaultDataDir(port int) string {
	return fmt.Sprintf("data_instance_%d", port)
}
