// Package config provides configuration loading and validation for the
// evolution engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/motorpool/vehicle"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Evolution  EvolutionConfig  `yaml:"evolution"`
	Vehicle    VehicleConfig    `yaml:"vehicle"`
	HighScores HighScoresConfig `yaml:"high_scores"`
	Track      TrackConfig      `yaml:"track"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Storage    StorageConfig    `yaml:"storage"`
}

// EvolutionConfig holds the per-generation quotas and operator parameters.
type EvolutionConfig struct {
	PopulationSize    int     `yaml:"population_size"`
	CloneCount        int     `yaml:"clone_count"`
	RandomCount       int     `yaml:"random_count"`
	CrossoverRate     float64 `yaml:"crossover_rate"`
	MutationFlipCount int     `yaml:"mutation_flip_count"`
	TournamentSize    int     `yaml:"tournament_size"`
	Operators         string  `yaml:"operators"` // registry name; falls back to builtin
}

// VehicleConfig holds the phenotype bit layout and field ranges.
type VehicleConfig struct {
	BodyPoints  int `yaml:"body_points"`
	Wheels      int `yaml:"wheels"`
	BodyBits    int `yaml:"body_bits"`
	RadiusBits  int `yaml:"radius_bits"`
	DensityBits int `yaml:"density_bits"`
	TorqueBits  int `yaml:"torque_bits"`
	SpeedBits   int `yaml:"speed_bits"`

	BodyDistance vehicle.Range `yaml:"body_distance"`
	WheelRadius  vehicle.Range `yaml:"wheel_radius"`
	WheelDensity vehicle.Range `yaml:"wheel_density"`
	Torque       vehicle.Range `yaml:"torque"`
	Speed        vehicle.Range `yaml:"speed"`
}

// Schema converts the config section into the decoder's schema.
func (v VehicleConfig) Schema() vehicle.Schema {
	return vehicle.Schema{
		BodyPoints:   v.BodyPoints,
		Wheels:       v.Wheels,
		BodyBits:     v.BodyBits,
		RadiusBits:   v.RadiusBits,
		DensityBits:  v.DensityBits,
		TorqueBits:   v.TorqueBits,
		SpeedBits:    v.SpeedBits,
		BodyDistance: v.BodyDistance,
		WheelRadius:  v.WheelRadius,
		WheelDensity: v.WheelDensity,
		Torque:       v.Torque,
		Speed:        v.Speed,
	}
}

// HighScoresConfig holds the best-ever ledger settings.
type HighScoresConfig struct {
	Capacity int `yaml:"capacity"`
}

// TrackConfig holds the reference harness terrain parameters.
type TrackConfig struct {
	Length     float64 `yaml:"length"`     // total track length in world units
	Segment    float64 `yaml:"segment"`    // sample spacing
	Scale      float64 `yaml:"scale"`      // base noise frequency
	Octaves    int     `yaml:"octaves"`    // FBM octaves
	Lacunarity float64 `yaml:"lacunarity"` // frequency multiplier per octave
	Gain       float64 `yaml:"gain"`       // amplitude multiplier per octave
	Amplitude  float64 `yaml:"amplitude"`  // height scale
	Ramp       float64 `yaml:"ramp"`       // quadratic grade term, tracks steepen with distance
}

// TelemetryConfig holds stats output settings.
type TelemetryConfig struct {
	LogStats        bool `yaml:"log_stats"`
	DiversitySample int  `yaml:"diversity_sample"` // genomes sampled for pairwise diversity
}

// StorageConfig holds the run archive settings.
type StorageConfig struct {
	Path string `yaml:"path"` // sqlite file path, empty = in-memory only
}

// ConfigurationError reports an invalid configuration value. It is raised at
// load time so bad quotas never reach the generation loop.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated
// before being returned.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks quota sums, rates, and the phenotype schema.
func (c *Config) Validate() error {
	e := c.Evolution
	if e.PopulationSize < 1 {
		return &ConfigurationError{"evolution.population_size", fmt.Sprintf("must be positive, got %d", e.PopulationSize)}
	}
	if e.CloneCount < 0 {
		return &ConfigurationError{"evolution.clone_count", fmt.Sprintf("must be non-negative, got %d", e.CloneCount)}
	}
	if e.RandomCount < 0 {
		return &ConfigurationError{"evolution.random_count", fmt.Sprintf("must be non-negative, got %d", e.RandomCount)}
	}
	if e.CloneCount+e.RandomCount > e.PopulationSize {
		return &ConfigurationError{"evolution", fmt.Sprintf(
			"clone_count %d + random_count %d exceeds population_size %d",
			e.CloneCount, e.RandomCount, e.PopulationSize)}
	}
	if e.CrossoverRate < 0 || e.CrossoverRate > 1 {
		return &ConfigurationError{"evolution.crossover_rate", fmt.Sprintf("must be in [0,1], got %g", e.CrossoverRate)}
	}
	if e.MutationFlipCount < 0 {
		return &ConfigurationError{"evolution.mutation_flip_count", fmt.Sprintf("must be non-negative, got %d", e.MutationFlipCount)}
	}
	if e.TournamentSize < 1 {
		return &ConfigurationError{"evolution.tournament_size", fmt.Sprintf("must be at least 1, got %d", e.TournamentSize)}
	}

	if c.HighScores.Capacity < 1 {
		return &ConfigurationError{"high_scores.capacity", fmt.Sprintf("must be positive, got %d", c.HighScores.Capacity)}
	}

	if err := c.Vehicle.Schema().Validate(); err != nil {
		return &ConfigurationError{"vehicle", err.Error()}
	}

	if c.Track.Length <= 0 {
		return &ConfigurationError{"track.length", fmt.Sprintf("must be positive, got %g", c.Track.Length)}
	}
	if c.Track.Segment <= 0 {
		return &ConfigurationError{"track.segment", fmt.Sprintf("must be positive, got %g", c.Track.Segment)}
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
