// Package config handles configuration for the spray CLI.
//
// Configuration comes from an optional TOML file with environment-variable
// overrides applied by the cmd layer. A missing file is not an error — the
// defaults describe a standard 600-gallon rig. The refill tolerance and
// display precision look like magic numbers but are part of the wire
// format's history; change them only for a fresh fleet.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the complete CLI configuration.
type Config struct {
	// DBPath is the SQLite database path.
	DBPath string `toml:"db_path"`

	// Operator is the default operator identity for ledger operations.
	Operator string `toml:"operator"`

	Tank    TankConfig    `toml:"tank"`
	Display DisplayConfig `toml:"display"`
}

// TankConfig holds the physical tank defaults.
type TankConfig struct {
	// DefaultCapacityGal is the starting tank capacity when the shift log
	// is empty.
	DefaultCapacityGal float64 `toml:"default_capacity_gal"`

	// RefillToleranceGal is the minimum useful refill; smaller effective
	// additions are rejected as a full tank.
	RefillToleranceGal float64 `toml:"refill_tolerance_gal"`
}

// DisplayConfig holds rendering precision.
type DisplayConfig struct {
	// VolumeDecimals is the precision for volumes and applied quantities.
	VolumeDecimals int `toml:"volume_decimals"`

	// RatioDecimals is the stored precision for concentration ratios.
	RatioDecimals int `toml:"ratio_decimals"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		DBPath: filepath.Join(".spraytank", "spray.db"),
		Tank: TankConfig{
			DefaultCapacityGal: 600,
			RefillToleranceGal: 0.01,
		},
		Display: DisplayConfig{
			VolumeDecimals: 2,
			RatioDecimals:  4,
		},
	}
}

// Load reads a TOML config file, filling unset fields from Default.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as TOML, creating the parent directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks the configuration for physically impossible values.
func (c Config) Validate() error {
	if c.Tank.DefaultCapacityGal <= 0 {
		return fmt.Errorf("tank.default_capacity_gal must be positive, got %v", c.Tank.DefaultCapacityGal)
	}
	if c.Tank.RefillToleranceGal <= 0 {
		return fmt.Errorf("tank.refill_tolerance_gal must be positive, got %v", c.Tank.RefillToleranceGal)
	}
	if c.Display.VolumeDecimals < 0 || c.Display.RatioDecimals < 0 {
		return fmt.Errorf("display precision must not be negative")
	}
	return nil
}
