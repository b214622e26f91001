// Package config loads the ledd YAML configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dokzlo13/ledd/internal/calib"
	"github.com/dokzlo13/ledd/internal/pwm"
)

// Config represents the application configuration
type Config struct {
	Log             LogConfig          `yaml:"log"`
	Database        DatabaseConfig     `yaml:"database"`
	Server          ServerConfig       `yaml:"server"`
	PWM             PWMConfig          `yaml:"pwm"`
	Script          string             `yaml:"script"`
	Calibration     *calib.Calibration `yaml:"calibration"`
	ShutdownTimeout Duration           `yaml:"shutdown_timeout"` // General shutdown timeout for graceful stops
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	Colors  bool   `yaml:"colors"`
	UseJSON bool   `yaml:"json"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig contains HTTP control API settings
type ServerConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Host         string  `yaml:"host"`
	Port         int     `yaml:"port"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"` // Mutation endpoint rate limit
}

// PWMConfig describes the output driver and channel wiring
type PWMConfig struct {
	Driver     string         `yaml:"driver"`     // "sysfs" or "memory" (dry run)
	Chip       int            `yaml:"chip"`       // sysfs PWM chip number
	Period     Duration       `yaml:"period"`     // PWM period (sysfs driver)
	Resolution uint32         `yaml:"resolution"` // Duty cycle steps, e.g. 255 or 1023
	Channels   map[string]int `yaml:"channels"`   // channel name -> PWM line
}

// Lines resolves the configured channel map to pwm channel identifiers.
func (p *PWMConfig) Lines() (map[pwm.Channel]int, error) {
	byName := map[string]pwm.Channel{}
	for _, ch := range pwm.Channels {
		byName[ch.String()] = ch
	}

	lines := make(map[pwm.Channel]int, len(p.Channels))
	for name, line := range p.Channels {
		ch, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown pwm channel %q", name)
		}
		lines[ch] = line
	}
	return lines, nil
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./ledd.sqlite"
	}

	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 10.0 // 10 requests per second
	}

	// PWM defaults - dry-run driver unless wired to real hardware
	if cfg.PWM.Driver == "" {
		cfg.PWM.Driver = "memory"
	}
	if cfg.PWM.Resolution == 0 {
		cfg.PWM.Resolution = 255
	}
	if cfg.PWM.Period == 0 {
		cfg.PWM.Period = Duration(time.Millisecond)
	}
	if len(cfg.PWM.Channels) == 0 {
		cfg.PWM.Channels = map[string]int{
			"red": 0, "green": 1, "blue": 2, "warm": 3, "cold": 4,
		}
	}

	// General shutdown timeout
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}

	return &cfg, nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
