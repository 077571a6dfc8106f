package driftkv

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxLevel is the height bound of the store-facing
	// skiplist.
	DefaultMaxLevel = 6

	DefaultProbability = 0.5
)

const (
	keydirSkiplist = "skiplist"
	keydirBTree    = "btree"
)

// validate is a singleton validator instance
var validate = validator.New()

// Config is the file-loadable form of the engine options.
type Config struct {
	MaxLevel    int     `yaml:"max_level" validate:"min=1"`
	Probability float64 `yaml:"probability" validate:"gte=0,lte=1"`
	Keydir      string  `yaml:"keydir" validate:"omitempty,oneof=skiplist btree"`
	BTreeDegree int     `yaml:"btree_degree" validate:"omitempty,min=2"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxLevel:    DefaultMaxLevel,
		Probability: DefaultProbability,
		Keydir:      keydirSkiplist,
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig reads a YAML config file and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
