// Package config loads tileworld.toml with environment overrides
package config

import (
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/lixenwraith/tileworld/parameter"
)

const (
	EnvPrefix   = "TILEWORLD"
	DefaultName = "tileworld"
)

// Storage drivers
const (
	StorageNone     = "none"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

var ErrInvalidConfig = errors.New("config: invalid")

type WorldConfig struct {
	Cols          int     `mapstructure:"cols"`
	Rows          int     `mapstructure:"rows"`
	ElevationStep float64 `mapstructure:"elevation_step"`
	Border        bool    `mapstructure:"border"`
	Seed          int64   `mapstructure:"seed"`
}

type PathfindingConfig struct {
	MaxConcurrent int  `mapstructure:"max_concurrent"`
	DoorAccess    bool `mapstructure:"door_access"`
	// Classes maps class names (open, water) to entry costs; a missing class is not walkable
	Classes map[string]float64 `mapstructure:"classes"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
	Slot   string `mapstructure:"slot"`
}

type SandboxConfig struct {
	Sound bool `mapstructure:"sound"`
}

// Config is the full application configuration
type Config struct {
	World       WorldConfig       `mapstructure:"world"`
	Pathfinding PathfindingConfig `mapstructure:"pathfinding"`
	Log         LogConfig         `mapstructure:"log"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Sandbox     SandboxConfig     `mapstructure:"sandbox"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("world.cols", parameter.DefaultCols)
	v.SetDefault("world.rows", parameter.DefaultRows)
	v.SetDefault("world.elevation_step", parameter.ElevationStep)
	v.SetDefault("world.border", true)
	v.SetDefault("world.seed", 1)

	v.SetDefault("pathfinding.max_concurrent", parameter.PathMaxConcurrent)
	v.SetDefault("pathfinding.door_access", true)
	v.SetDefault("pathfinding.classes", map[string]float64{
		"open":  parameter.PathCostOpen,
		"water": parameter.PathCostWater,
	})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)

	v.SetDefault("storage.driver", StorageFile)
	v.SetDefault("storage.path", "saves")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.slot", "default")

	v.SetDefault("sandbox.sound", true)
}

// Default returns the configuration with only built-in defaults applied
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads an optional .env, then path (or ./tileworld.toml when path is empty), then TILEWORLD_* variables
// A missing default file is not an error; a missing explicit path is
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultName)
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrapf(err, "read config %q", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	switch {
	case c.World.Cols <= 0 || c.World.Rows <= 0:
		return errors.Wrapf(ErrInvalidConfig, "world size %dx%d", c.World.Cols, c.World.Rows)
	case c.World.ElevationStep <= 0:
		return errors.Wrapf(ErrInvalidConfig, "elevation_step %v", c.World.ElevationStep)
	case c.Pathfinding.MaxConcurrent <= 0:
		return errors.Wrapf(ErrInvalidConfig, "max_concurrent %d", c.Pathfinding.MaxConcurrent)
	}
	for name, cost := range c.Pathfinding.Classes {
		if cost < 0 {
			return errors.Wrapf(ErrInvalidConfig, "negative cost for class %s", name)
		}
	}
	switch c.Storage.Driver {
	case StorageNone, StorageFile:
	case StoragePostgres:
		if c.Storage.DSN == "" {
			return errors.Wrap(ErrInvalidConfig, "postgres storage needs a dsn")
		}
	default:
		return errors.Wrapf(ErrInvalidConfig, "storage driver %q", c.Storage.Driver)
	}
	return nil
}
