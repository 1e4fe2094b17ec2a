package configs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads an AgentConfig from a YAML file. An empty path yields an
// empty config so callers can always merge its fields.
func LoadFile(path string) (*AgentConfig, error) {
	cfg := &AgentConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ConfigFile = path
	return cfg, nil
}
