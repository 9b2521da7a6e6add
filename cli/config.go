package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/asaidimu/go-mongosql/core/query"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when --config is not
// given and the file exists.
const DefaultConfigFile = ".mongosql.yaml"

// Config is the optional YAML configuration file.
type Config struct {
	Dialect        string            `yaml:"dialect"`
	Format         string            `yaml:"format"`
	StrictStages   bool              `yaml:"strict_stages"`
	EmptyCondition string            `yaml:"empty_condition"`
	Functions      map[string]string `yaml:"functions"` // expression tag -> SQL function name
}

// LoadConfig reads the config file at path. With an empty path the default
// file is tried and a missing file yields an empty Config.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Dialect != "" {
		if _, err := query.ParseDialect(cfg.Dialect); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if cfg.Format != "" && !isValidFormat(cfg.Format) {
		return nil, fmt.Errorf("config %s: invalid format %q: must be one of %v", path, cfg.Format, ValidFormats)
	}
	return cfg, nil
}

// RegisterFunctions adds every configured function alias to c, in tag order.
func (cfg *Config) RegisterFunctions(c *query.Compiler) error {
	tags := make([]string, 0, len(cfg.Functions))
	for tag := range cfg.Functions {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, tag := range tags {
		name := cfg.Functions[tag]
		if name == "" {
			return fmt.Errorf("function %s: missing SQL function name", tag)
		}
		if err := c.RegisterExpression(tag, query.FunctionOperator(name)); err != nil {
			return fmt.Errorf("function %s: %w", tag, err)
		}
	}
	return nil
}
