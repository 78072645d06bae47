package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no --config is given.
const EnvPath = "TEXTSVC_CONFIG"

type Config struct {
	Plugins       []string                `yaml:"plugins" toml:"plugins"`
	Services      []ServiceConfig         `yaml:"services" toml:"services"`
	Tables        map[string]*TableConfig `yaml:"tables" toml:"tables"`
	IncludeTables []string                `yaml:"include_tables" toml:"include_tables"`
	ExcludeTables []string                `yaml:"exclude_tables" toml:"exclude_tables"`
}

// ServiceConfig adds one entry to the catalogue on top of the stock services.
type ServiceConfig struct {
	Key    string         `yaml:"key" toml:"key"`
	Type   string         `yaml:"type" toml:"type"`
	Label  string         `yaml:"label" toml:"label"`
	Times  *int           `yaml:"times" toml:"times"`
	Shift  *int           `yaml:"shift" toml:"shift"`
	Seed   *uint64        `yaml:"seed" toml:"seed"`
	Params map[string]any `yaml:"params" toml:"params"`
}

// TableConfig maps column names to catalogue keys for the batch command.
type TableConfig struct {
	Columns map[string]string `yaml:"columns" toml:"columns"`
}

// Load reads a YAML or TOML (by extension) configuration file. An empty path
// yields an empty configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath prefers an explicit flag value over the environment.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(EnvPath)
}

func (c *Config) Validate() error {
	seen := map[string]bool{}
	for i, s := range c.Services {
		key := strings.ToLower(strings.TrimSpace(s.Key))
		if key == "" {
			return fmt.Errorf("services[%d]: key is required", i)
		}
		if strings.TrimSpace(s.Type) == "" {
			return fmt.Errorf("services[%d] (%s): type is required", i, key)
		}
		if seen[key] {
			return fmt.Errorf("services[%d]: duplicate key %q", i, key)
		}
		seen[key] = true
	}
	for name, tbl := range c.Tables {
		if tbl == nil {
			continue
		}
		for col, key := range tbl.Columns {
			if strings.TrimSpace(key) == "" {
				return fmt.Errorf("tables.%s.columns.%s: service key is required", name, col)
			}
		}
	}
	return nil
}

// Param returns an integer from Params, accepting the numeric types YAML and
// TOML decoders produce.
func (s *ServiceConfig) Param(name string) (int, bool) {
	if s == nil || s.Params == nil {
		return 0, false
	}
	switch t := s.Params[name].(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}
