package tidyframe

import (
	"fmt"

	"github.com/paveg/tidyframe/internal/config"
)

// Config holds library-wide settings. Verbs read it when they are built.
type Config = config.Config

// DefaultConfig returns the built-in settings
func DefaultConfig() Config {
	return config.NewConfig()
}

// CurrentConfig returns the settings new verbs will use
func CurrentConfig() Config {
	return config.GetGlobalConfig()
}

// Configure validates cfg and makes it the library-wide configuration.
// Unset fields take their defaults.
func Configure(cfg Config) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	config.SetGlobalConfig(cfg)
	return nil
}

// ConfigureFromFile loads a .json, .yaml or .yml file and applies it with Configure
func ConfigureFromFile(filename string) error {
	cfg, err := config.LoadFromFile(filename)
	if err != nil {
		return err
	}
	return Configure(cfg)
}

// ConfigureFromEnv applies the TIDYFRAME_* environment variables on top of the defaults
func ConfigureFromEnv() error {
	return Configure(config.LoadFromEnv())
}
