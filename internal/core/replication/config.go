package replication

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds replication manager configuration.
type Config struct {
	// TickRate is the intended simulation frequency in ticks per second.
	// Informational only; the host owns the tick loop and this core never
	// schedules anything itself.
	TickRate int `json:"tick_rate" yaml:"tick_rate"`

	// UseDeltaCompression enables delta encoding against the last recorded
	// baseline. When disabled every included entity is sent as a full state.
	UseDeltaCompression bool `json:"use_delta_compression" yaml:"use_delta_compression"`

	// MaxBatchSize is an advisory byte budget per batch. The core computes
	// logical batches and never truncates; enforcement is a transport
	// concern. Batch assembly drains entities highest priority first so a
	// truncating transport drops the least important updates.
	MaxBatchSize int `json:"max_batch_size" yaml:"max_batch_size"`

	// HistorySize is the number of snapshots retained per entity.
	HistorySize int `json:"history_size" yaml:"history_size"`

	// UseInterestManagement gates per-observer filtering. When false, or
	// when no policy is configured, every batch is a broadcast over all
	// registered entities.
	UseInterestManagement bool `json:"use_interest_management" yaml:"use_interest_management"`

	// InterestRadius is the default cutoff distance used when a spatial
	// policy is built without explicit thresholds.
	InterestRadius float64 `json:"interest_radius" yaml:"interest_radius"`

	// ResyncInterval bounds drift from undetected delta loss: an entity that
	// has gone this long without a sync is refreshed with a full state.
	ResyncInterval time.Duration `json:"resync_interval" yaml:"resync_interval"`
}

// DefaultConfig returns the default replication configuration.
func DefaultConfig() Config {
	return Config{
		TickRate:              20,
		UseDeltaCompression:   true,
		MaxBatchSize:          64 * 1024,
		HistorySize:           64,
		UseInterestManagement: true,
		InterestRadius:        100,
		ResyncInterval:        5 * time.Second,
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.TickRate < 0 {
		return fmt.Errorf("%w: tick rate %d", ErrInvalidConfig, c.TickRate)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("%w: history size %d", ErrInvalidConfig, c.HistorySize)
	}
	if c.ResyncInterval <= 0 {
		return fmt.Errorf("%w: resync interval %s", ErrInvalidConfig, c.ResyncInterval)
	}
	return nil
}

// UnmarshalYAML decodes the configuration, accepting Go duration strings such
// as "5s" for resync_interval. Omitted options keep whatever the target config
// already holds, so decoding over DefaultConfig yields defaults.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		TickRate              *int     `yaml:"tick_rate"`
		UseDeltaCompression   *bool    `yaml:"use_delta_compression"`
		MaxBatchSize          *int     `yaml:"max_batch_size"`
		HistorySize           *int     `yaml:"history_size"`
		UseInterestManagement *bool    `yaml:"use_interest_management"`
		InterestRadius        *float64 `yaml:"interest_radius"`
		ResyncInterval        *string  `yaml:"resync_interval"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.TickRate != nil {
		c.TickRate = *raw.TickRate
	}
	if raw.UseDeltaCompression != nil {
		c.UseDeltaCompression = *raw.UseDeltaCompression
	}
	if raw.MaxBatchSize != nil {
		c.MaxBatchSize = *raw.MaxBatchSize
	}
	if raw.HistorySize != nil {
		c.HistorySize = *raw.HistorySize
	}
	if raw.UseInterestManagement != nil {
		c.UseInterestManagement = *raw.UseInterestManagement
	}
	if raw.InterestRadius != nil {
		c.InterestRadius = *raw.InterestRadius
	}
	if raw.ResyncInterval != nil {
		interval, err := time.ParseDuration(*raw.ResyncInterval)
		if err != nil {
			return fmt.Errorf("resync_interval: %w", err)
		}
		c.ResyncInterval = interval
	}
	return nil
}

// LoadConfig reads a YAML configuration file, applying defaults for any
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
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// ConfigPatch is a partial configuration update; nil fields keep their
// current value.
type ConfigPatch struct {
	TickRate              *int           `json:"tick_rate,omitempty" yaml:"tick_rate,omitempty"`
	UseDeltaCompression   *bool          `json:"use_delta_compression,omitempty" yaml:"use_delta_compression,omitempty"`
	MaxBatchSize          *int           `json:"max_batch_size,omitempty" yaml:"max_batch_size,omitempty"`
	HistorySize           *int           `json:"history_size,omitempty" yaml:"history_size,omitempty"`
	UseInterestManagement *bool          `json:"use_interest_management,omitempty" yaml:"use_interest_management,omitempty"`
	InterestRadius        *float64       `json:"interest_radius,omitempty" yaml:"interest_radius,omitempty"`
	ResyncInterval        *time.Duration `json:"resync_interval,omitempty" yaml:"resync_interval,omitempty"`
}

// apply merges the patch into the config and returns the result.
func (p ConfigPatch) apply(config Config) Config {
	if p.TickRate != nil {
		config.TickRate = *p.TickRate
	}
	if p.UseDeltaCompression != nil {
		config.UseDeltaCompression = *p.UseDeltaCompression
	}
	if p.MaxBatchSize != nil {
		config.MaxBatchSize = *p.MaxBatchSize
	}
	if p.HistorySize != nil {
		config.HistorySize = *p.HistorySize
	}
	if p.UseInterestManagement != nil {
		config.UseInterestManagement = *p.UseInterestManagement
	}
	if p.InterestRadius != nil {
		config.InterestRadius = *p.InterestRadius
	}
	if p.ResyncInterval != nil {
		config.ResyncInterval = *p.ResyncInterval
	}
	return config
}
