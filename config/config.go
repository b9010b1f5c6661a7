// Package config loads run settings from defaults, a YAML file, .env files
// and COMMUNITIES_* environment variables, in that order of precedence,
// and validates the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COMMUNITIES_"

// Snapshot sink kinds.
const (
	SinkNone  = "none"
	SinkFile  = "file"
	SinkRedis = "redis"
)

// Config is the full run configuration.
type Config struct {
	// Communities is the number of communities to build.
	Communities int `yaml:"communities" validate:"required,min=1"`

	// Seed drives every random pick of the run.
	Seed int64 `yaml:"seed"`

	// Workers bounds parallel bordering scans; 0 means one per CPU.
	Workers int `yaml:"workers" validate:"min=0"`

	Input    Input    `yaml:"input"`
	Fill     Fill     `yaml:"fill"`
	Refine   Refine   `yaml:"refine"`
	Snapshot Snapshot `yaml:"snapshot"`
	Log      Log      `yaml:"log"`
	Metrics  Metrics  `yaml:"metrics"`
}

// Input names the GeoJSON property keys and the geometry tolerance.
type Input struct {
	ID           string `yaml:"id" validate:"required"`
	Population   string `yaml:"population" validate:"required"`
	Democratic   string `yaml:"dem" validate:"required"`
	Republican   string `yaml:"rep" validate:"required"`
	Green        string `yaml:"green"`
	Libertarian  string `yaml:"lib"`
	Reform       string `yaml:"reform"`
	Independent  string `yaml:"ind"`
	Constitution string `yaml:"const"`

	// SnapTolerance rounds vertices to this grid so shared borders match;
	// 0 disables snapping.
	SnapTolerance float64 `yaml:"snap_tolerance" validate:"min=0"`

	// Corridors is an optional JSON file of [idA, idB] pairs.
	Corridors string `yaml:"corridors"`
}

// Fill tunes the community filler.
type Fill struct {
	Restarts int `yaml:"restarts" validate:"min=0"`
}

// Pass tunes one refinement pass.
type Pass struct {
	Enabled       bool    `yaml:"enabled"`
	Threshold     float64 `yaml:"threshold" validate:"min=0"`
	MaxIterations int     `yaml:"max_iterations" validate:"min=1"`
}

// Refine tunes both refinement passes.
type Refine struct {
	Population   Pass `yaml:"population"`
	Partisanship Pass `yaml:"partisanship"`

	// Overshoot is the population guard in percent; 0 disables it.
	Overshoot float64 `yaml:"overshoot" validate:"min=0"`

	RestoreBest bool `yaml:"restore_best"`
}

// Snapshot selects where failure snapshots go.
type Snapshot struct {
	Kind string `yaml:"kind" validate:"oneof=none file redis"`
	Dir  string `yaml:"dir" validate:"required_if=Kind file"`

	Redis Redis `yaml:"redis"`
}

// Redis addresses the Redis snapshot sink.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"min=0"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl" validate:"min=0"`
}

// Log configures logging.New.
type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Metrics configures the Prometheus textfile.
type Metrics struct {
	Namespace string `yaml:"namespace"`
	Textfile  string `yaml:"textfile"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Communities: 1,
		Seed:        1,
		Input: Input{
			ID:           "id",
			Population:   "population",
			Democratic:   "dem",
			Republican:   "rep",
			Green:        "green",
			Libertarian:  "lib",
			Reform:       "reform",
			Independent:  "ind",
			Constitution: "const",
		},
		Fill: Fill{Restarts: 3},
		Refine: Refine{
			Population:   Pass{Enabled: true, Threshold: 1, MaxIterations: 100},
			Partisanship: Pass{Enabled: true, Threshold: 0.05, MaxIterations: 100},
			Overshoot:    1,
		},
		Snapshot: Snapshot{
			Kind:  SinkNone,
			Dir:   "snapshots",
			Redis: Redis{Addr: "127.0.0.1:6379", Prefix: "communities:snapshot:", TTL: 24 * time.Hour},
		},
		Log:     Log{Level: "info", Format: "json"},
		Metrics: Metrics{Namespace: "communities"},
	}
}

// Load builds a Config from the defaults, then path (skipped when empty),
// then envFiles (missing files are skipped; variables already set win),
// then the environment. The result is validated.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %s: %w", f, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"LOG_LEVEL":      &c.Log.Level,
		"LOG_FORMAT":     &c.Log.Format,
		"SNAPSHOT_KIND":  &c.Snapshot.Kind,
		"SNAPSHOT_DIR":   &c.Snapshot.Dir,
		"REDIS_ADDR":     &c.Snapshot.Redis.Addr,
		"REDIS_PASSWORD": &c.Snapshot.Redis.Password,
		"METRICS_FILE":   &c.Metrics.Textfile,
		"CORRIDORS":      &c.Input.Corridors,
	}
	for k, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + k); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"COUNT":    &c.Communities,
		"WORKERS":  &c.Workers,
		"RESTARTS": &c.Fill.Restarts,
		"REDIS_DB": &c.Snapshot.Redis.DB,
	}
	for k, dst := range ints {
		if v, ok := os.LookupEnv(EnvPrefix + k); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, k, err)
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		"POPULATION_THRESHOLD":   &c.Refine.Population.Threshold,
		"PARTISANSHIP_THRESHOLD": &c.Refine.Partisanship.Threshold,
		"OVERSHOOT":              &c.Refine.Overshoot,
	}
	for k, dst := range floats {
		if v, ok := os.LookupEnv(EnvPrefix + k); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, k, err)
			}
			*dst = f
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %sSEED: %w", EnvPrefix, err)
		}
		c.Seed = n
	}

	return nil
}
