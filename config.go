package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// --- CONFIGURATION ---

const defaultConfigPath = "cloudpanel.yaml"

// ActionConfig defines a single action in the config file.
type ActionConfig struct {
	Label     string    `yaml:"label"`
	Resource  resource  `yaml:"resource"`
	Direction direction `yaml:"direction"`
	URL       string    `yaml:"url"`
	Icon      string    `yaml:"icon,omitempty"`
}

// PanelConfig defines the top-level structure of the config file.
type PanelConfig struct {
	Actions []ActionConfig `yaml:"actions"`
}

var errInvalidConfig = errors.New("invalid config")

// defaultConfig returns the four actions of the production deployment.
func defaultConfig() PanelConfig {
	return PanelConfig{Actions: []ActionConfig{
		{Label: "Start RDS", Resource: resourceDatabase, Direction: directionStart, Icon: "🛢️",
			URL: "https://a4552wrm2urw3v623x7lz7vqle0gmrrc.lambda-url.ap-south-1.on.aws/"},
		{Label: "Start EC2", Resource: resourceCompute, Direction: directionStart, Icon: "🖥️",
			URL: "https://j5zxbrxtf7x4og3is62inv7agu0cuurt.lambda-url.ap-south-1.on.aws/"},
		{Label: "Stop RDS", Resource: resourceDatabase, Direction: directionStop, Icon: "🛢️",
			URL: "https://7jklls3rfp5p6ybneatexyhuay0rmmzu.lambda-url.ap-south-1.on.aws/"},
		{Label: "Stop EC2", Resource: resourceCompute, Direction: directionStop, Icon: "🖥️",
			URL: "https://c665d2ugxezezbdzceuebtlaku0cacbv.lambda-url.ap-south-1.on.aws/"},
	}}
}

// For mocking in tests
var osStat = os.Stat

// loadConfig returns the defaults, replaced by the file at path when one is
// given or when cloudpanel.yaml exists in the working directory.
func loadConfig(path string) (PanelConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
		if _, err := osStat(path); err != nil {
			return defaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return PanelConfig{}, fmt.Errorf("error reading config %s: %w", path, err)
	}
	var cfg PanelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PanelConfig{}, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return PanelConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// validate checks that the config describes exactly one start and one stop
// action for each of the database and compute resources.
func (c PanelConfig) validate() error {
	if len(c.Actions) != 4 {
		return fmt.Errorf("%w: expected 4 actions, got %d", errInvalidConfig, len(c.Actions))
	}

	labels := make(map[string]bool, len(c.Actions))
	pairs := make(map[string]bool, len(c.Actions))
	for i, a := range c.Actions {
		label := strings.TrimSpace(a.Label)
		if label == "" {
			return fmt.Errorf("%w: action %d has no label", errInvalidConfig, i)
		}
		if labels[label] {
			return fmt.Errorf("%w: duplicate label %q", errInvalidConfig, label)
		}
		labels[label] = true

		if a.Direction != directionStart && a.Direction != directionStop {
			return fmt.Errorf("%w: %q has unknown direction %q", errInvalidConfig, label, a.Direction)
		}
		if a.Resource != resourceDatabase && a.Resource != resourceCompute {
			return fmt.Errorf("%w: %q has unknown resource %q", errInvalidConfig, label, a.Resource)
		}
		pair := string(a.Direction) + "/" + string(a.Resource)
		if pairs[pair] {
			return fmt.Errorf("%w: more than one %s action for %s", errInvalidConfig, a.Direction, a.Resource)
		}
		pairs[pair] = true

		u, err := url.Parse(a.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q has invalid url %q", errInvalidConfig, label, a.URL)
		}
	}
	return nil
}
