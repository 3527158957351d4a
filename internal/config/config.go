// Package config loads ggtool's CLI defaults from a YAML file, the way
// the rest of this module's ambient stack favors the pack's actual
// libraries over hand-rolled parsing.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds CLI-wide defaults, overridable per invocation by flags.
type Config struct {
	// Jobs is the default worker-pool concurrency for batch extract/convert.
	// Zero means "use hardware thread count".
	Jobs int `yaml:"jobs"`

	// FailFast cancels a batch as soon as any entry errors.
	FailFast bool `yaml:"failFast"`

	// Quiet suppresses the progress bar.
	Quiet bool `yaml:"quiet"`

	// CatalogPath names the sqlite scan-cache file. No subcommand opens
	// the catalog; the value is only carried in Config.
	CatalogPath string `yaml:"catalogPath"`

	// ProgressAddr is the listen address for the "serve" subcommand's
	// websocket progress stream.
	ProgressAddr string `yaml:"progressAddr"`
}

// Default returns the built-in defaults used when no config file exists.
func Default() Config {
	return Config{
		Jobs:         0,
		FailFast:     false,
		Quiet:        false,
		CatalogPath:  "ggtool-catalog.db",
		ProgressAddr: "127.0.0.1:8089",
	}
}

// Load reads a YAML config file, starting from Default and overriding only
// the fields the file sets.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
