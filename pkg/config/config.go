// Package config loads engine settings and network scenarios from YAML.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-gridswitch/pkg/logging"
	"github.com/dd0wney/cluso-gridswitch/pkg/topology"
	"github.com/dd0wney/cluso-gridswitch/pkg/validation"
)

// Config holds the engine settings
type Config struct {
	Topology TopologyConfig `yaml:"topology"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Events   EventsConfig   `yaml:"events"`
	S3       S3Config       `yaml:"s3"`
}

// TopologyConfig configures the switch topology engine
type TopologyConfig struct {
	ConnectedBusPrefix string `yaml:"connected_bus_prefix"`
}

// LoggingConfig configures the JSON logger
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig toggles the prometheus registry
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// EventsConfig enables the nanomsg topology event forwarder
type EventsConfig struct {
	Listen   string `yaml:"listen"`
	Compress bool   `yaml:"compress"`
}

var (
	prefixPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)
	listenPattern  = regexp.MustCompile(`^(tcp|ipc|inproc)://.+$`)
	endpointPrefix = regexp.MustCompile(`^https?://`)
	logLevels      = []string{"debug", "info", "warn", "error"}
)

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Topology: TopologyConfig{ConnectedBusPrefix: topology.DefaultConnectedBusPrefix},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file. Missing keys take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates YAML config data
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	c.Topology.ConnectedBusPrefix = validation.DefaultOr(c.Topology.ConnectedBusPrefix, def.Topology.ConnectedBusPrefix)
	c.Logging.Level = strings.ToLower(validation.DefaultOr(c.Logging.Level, def.Logging.Level))
}

// Validate checks every setting and reports all problems at once
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("config").
		Required("topology.connected_bus_prefix", c.Topology.ConnectedBusPrefix).
		Matches("topology.connected_bus_prefix", c.Topology.ConnectedBusPrefix, prefixPattern).
		OneOf("logging.level", c.Logging.Level, logLevels)
	if c.Events.Listen != "" {
		cv.Matches("events.listen", c.Events.Listen, listenPattern)
	}
	if c.S3.Endpoint != "" {
		cv.Matches("s3.endpoint", c.S3.Endpoint, endpointPrefix)
	}
	if c.S3.AccessKeyID != "" {
		cv.Required("s3.secret_access_key", c.S3.SecretAccessKey)
	}
	return cv.Validate()
}

// LogLevel returns the parsed logging level
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}
