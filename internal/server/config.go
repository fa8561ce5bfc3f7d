package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/replica/internal/core/interest"
	"github.com/zeusync/replica/internal/core/observability/log"
	"github.com/zeusync/replica/internal/core/replication"
)

// UnmarshalYAML decodes the host configuration, accepting Go duration strings
// for tick_every and level names (debug, info, warn, error) for log_level.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		ListenAddr  *string                `yaml:"listen_addr"`
		TickEvery   *string                `yaml:"tick_every"`
		SendLimit   *int                   `yaml:"send_limit"`
		LogLevel    *string                `yaml:"log_level"`
		Replication *replication.Config    `yaml:"replication"`
		Radius      *interest.RadiusConfig `yaml:"radius"`
	}
	raw.Replication = &c.Replication
	raw.Radius = &c.Radius
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.ListenAddr != nil {
		c.ListenAddr = *raw.ListenAddr
	}
	if raw.TickEvery != nil {
		every, err := time.ParseDuration(*raw.TickEvery)
		if err != nil {
			return fmt.Errorf("tick_every: %w", err)
		}
		c.TickEvery = every
	}
	if raw.SendLimit != nil {
		c.SendLimit = *raw.SendLimit
	}
	if raw.LogLevel != nil {
		c.LogLevel = log.ParseLevel(*raw.LogLevel)
	}
	return nil
}

// LoadConfig reads a YAML host configuration file, applying defaults for any
// omitted option.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	config := DefaultConfig()
	if err = yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err = config.Replication.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
