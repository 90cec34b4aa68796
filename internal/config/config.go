package config

import (
	"errors"
	"fmt"
	"strings"

	"hostsnap/internal/logger"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultPort      = 7878
	DefaultLogLevel  = "info"
	DefaultHwmonPath = "/sys/class/hwmon"

	envPrefix        = "HOSTSNAP"
	defaultConfigDir = "/etc/hostsnap"
)

type Config struct {
	Port       int    `mapstructure:"port"`
	LogLevel   string `mapstructure:"log_level"`
	Nvidia     bool   `mapstructure:"nvidia"`
	HwmonPath  string `mapstructure:"hwmon_path"`
	ConfigFile string `mapstructure:"config"`
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// Load resolves configuration from flags, HOSTSNAP_* environment variables,
// an optional TOML file and defaults, in that order of precedence.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("hostsnap", pflag.ContinueOnError)
	fs.Int("port", DefaultPort, "Port for the HTTP server")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warn, error")
	fs.Bool("nvidia", false, "Report NVIDIA GPU temperatures via NVML")
	fs.String("hwmon-path", DefaultHwmonPath, "Root of the hwmon sysfs tree")
	fs.String("config", "", "Path to a TOML config file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	v := viper.New()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("nvidia", false)
	v.SetDefault("hwmon_path", DefaultHwmonPath)
	v.SetDefault("config", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"port":       "port",
		"log_level":  "log-level",
		"nvidia":     "nvidia",
		"hwmon_path": "hwmon-path",
		"config":     "config",
	}
	for key, flagName := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flagName)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper) error {
	v.SetConfigType("toml")

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	v.SetConfigName("hostsnap")
	v.AddConfigPath(defaultConfigDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}

// Validate checks ranges and fills empty optional values
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.HwmonPath == "" {
		c.HwmonPath = DefaultHwmonPath
	}

	return nil
}
