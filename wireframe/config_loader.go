package wireframe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MQTTConfig holds MQTT connection settings for result publishing
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// RenderConfig holds debug rendering settings
type RenderConfig struct {
	Format      string  `yaml:"format,omitempty" json:"format,omitempty"`           // "svg", "png" or "both"
	GridSpacing float64 `yaml:"gridSpacing,omitempty" json:"gridSpacing,omitempty"` // grid line spacing in dataset units
	Padding     float64 `yaml:"padding,omitempty" json:"padding,omitempty"`         // margin around the drawing
}

// Config represents the full configuration file
type Config struct {
	Epsilon   float64           `yaml:"epsilon" json:"epsilon"`
	Epsilons  []float64         `yaml:"epsilons,omitempty" json:"epsilons,omitempty"` // optional multi-tolerance sweep
	OutputDir string            `yaml:"outputDir,omitempty" json:"outputDir,omitempty"`
	LineTags  map[string]string `yaml:"lineTags,omitempty" json:"lineTags,omitempty"` // dataset tag -> line kind name
	MQTT      *MQTTConfig       `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
	Render    RenderConfig      `yaml:"render,omitempty" json:"render,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Epsilon:   0.1,
		OutputDir: ".",
		Render:    RenderConfig{Format: "svg", GridSpacing: 0, Padding: 1.0},
	}
}

// LoadConfig loads the unified configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if config.Epsilon <= 0 && len(config.Epsilons) == 0 {
		return nil, fmt.Errorf("epsilon must be positive")
	}
	for i, epsilon := range config.Epsilons {
		if epsilon <= 0 {
			return nil, fmt.Errorf("epsilons[%d] must be positive", i)
		}
	}
	if config.MQTT != nil && config.MQTT.Broker == "" {
		return nil, fmt.Errorf("mqtt.broker is required when mqtt is configured")
	}
	switch config.Render.Format {
	case "", "svg", "png", "both":
	default:
		return nil, fmt.Errorf("render.format must be svg, png or both, got %q", config.Render.Format)
	}

	return config, nil
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

// EpsilonSweep returns the tolerances to trace with: the explicit sweep list
// when given, otherwise the single epsilon.
func (c *Config) EpsilonSweep() []float64 {
	if len(c.Epsilons) > 0 {
		return c.Epsilons
	}
	return []float64{c.Epsilon}
}

// LineKinds resolves the tag table into line kinds, falling back to the
// built-in dataset tags when none is configured.
func (c *Config) LineKinds() (map[string]LineKind, error) {
	if len(c.LineTags) == 0 {
		return DefaultLineKindTags(), nil
	}

	names := map[string]LineKind{
		"ridge":         KindRidge,
		"edge":          KindEdge,
		"roof-gap":      KindRoofGap,
		"roof-gap-line": KindRoofGapLine,
		"building":      KindBuilding,
		"helping":       KindHelping,
	}

	tags := make(map[string]LineKind, len(c.LineTags))
	for tag, name := range c.LineTags {
		kind, ok := names[name]
		if !ok {
			return nil, fmt.Errorf("lineTags[%q]: unknown line kind %q", tag, name)
		}
		tags[tag] = kind
	}
	return tags, nil
}
