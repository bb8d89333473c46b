package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration file
type Config struct {
	Engine Settings     `yaml:"engine" json:"engine"`
	MQTT   MQTTConfig   `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
	HTTP   HTTPConfig   `yaml:"http,omitempty" json:"http,omitempty"`
	Render RenderConfig `yaml:"render,omitempty" json:"render,omitempty"`
}

// MQTTConfig holds MQTT connection settings for the room summary publisher
type MQTTConfig struct {
	Broker        string `yaml:"broker,omitempty" json:"broker,omitempty"`
	PublishPrefix string `yaml:"publishPrefix,omitempty" json:"publishPrefix,omitempty"`
	ClientID      string `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// HTTPConfig holds HTTP server settings
type HTTPConfig struct {
	Port int `yaml:"port,omitempty" json:"port,omitempty"`
}

// RenderConfig holds output rendering settings
type RenderConfig struct {
	Scale       float64 `yaml:"scale,omitempty" json:"scale,omitempty"`             // output units per cm
	Padding     float64 `yaml:"padding,omitempty" json:"padding,omitempty"`         // cm around the plan
	GridSpacing float64 `yaml:"gridSpacing,omitempty" json:"gridSpacing,omitempty"` // cm, 0 disables the grid
	ShowJoints  bool    `yaml:"showJoints,omitempty" json:"showJoints,omitempty"`
}

// DefaultConfig returns a configuration with stock engine settings
func DefaultConfig() *Config {
	return &Config{
		Engine: DefaultSettings(),
		HTTP:   HTTPConfig{Port: 8080},
	}
}

// LoadConfig loads the configuration from a YAML file. Engine values left
// out of the file fall back to their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	config.Engine = config.Engine.withDefaults()
	if config.HTTP.Port == 0 {
		config.HTTP.Port = 8080
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that the engine thresholds are mutually consistent
func (c *Config) Validate() error {
	e := c.Engine
	if e.DirectSnapThreshold >= e.WallSnapThreshold {
		return fmt.Errorf("engine.directSnapThreshold (%.1f) must be below engine.wallSnapThreshold (%.1f)",
			e.DirectSnapThreshold, e.WallSnapThreshold)
	}
	if e.ConnectionHysteresis < 0 {
		return fmt.Errorf("engine.connectionHysteresis must not be negative")
	}
	switch e.JointClustering {
	case ClusterSingleLink, ClusterUnionFind:
	default:
		return fmt.Errorf("engine.jointClustering must be %q or %q, got %q",
			ClusterSingleLink, ClusterUnionFind, e.JointClustering)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	return nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
