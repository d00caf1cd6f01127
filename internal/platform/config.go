package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/jsonvault/pkg/core"
)

// KeyEnv is the environment variable consulted for the encryption key.
const KeyEnv = "JSONVAULT_KEY"

// FileConfig is the YAML configuration read by the CLI.
type FileConfig struct {
	DB        string `yaml:"db"`
	Key       string `yaml:"key"`
	Encrypted bool   `yaml:"encrypted"`
	Verbose   bool   `yaml:"verbose"`
}

// LoadConfig reads a FileConfig. A relative DB path is resolved against the
// directory holding the config file.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", core.ErrInvalidConfig, path, err)
	}

	if cfg.DB != "" && !filepath.IsAbs(cfg.DB) {
		cfg.DB = filepath.Join(filepath.Dir(path), cfg.DB)
	}
	return cfg, nil
}

// Options converts the configuration into service options.
func (c FileConfig) Options() []Option {
	var opts []Option
	if c.Encrypted {
		opts = append(opts, WithEncryption(true))
	}
	if c.Key != "" {
		opts = append(opts, WithKey(c.Key))
	}
	return opts
}
