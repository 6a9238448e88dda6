package abstractor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// Default extraction parameters. Zero values in Config resolve to these.
const (
	// DefaultXTolerance is the horizontal slack in points when matching
	// candidate edges against the abstract header.
	DefaultXTolerance = 20.0

	// DefaultMinWords is the word count above which a single block following
	// the header is accepted as the whole abstract.
	DefaultMinWords = 100

	// DefaultInitialBlocks is the number of blocks absorbed before gap
	// consistency checks begin.
	DefaultInitialBlocks = 5

	// DefaultGapThreshold is the allowed relative deviation of a block gap
	// from the running average.
	DefaultGapThreshold = 0.5

	// DefaultConcurrency is the worker count for batch extraction.
	DefaultConcurrency = 4
)

// Config holds all configuration for the extraction engine.
type Config struct {
	// Method is the primary extraction strategy. Defaults to
	// MethodAlignmentBased when empty.
	Method Method `json:"method" yaml:"method"`

	// NoFallback disables the second strategy when the primary one finds
	// no abstract. A strategy failure never falls back either way.
	NoFallback bool `json:"no_fallback" yaml:"no_fallback"`

	// XTolerance is the horizontal slack in points for alignment matching.
	XTolerance float64 `json:"x_tolerance" yaml:"x_tolerance"`

	// MinWords is the single-block acceptance threshold for the gap
	// strategy.
	MinWords int `json:"min_words" yaml:"min_words"`

	// InitialBlocks is the gap strategy's warm-up length.
	InitialBlocks int `json:"initial_blocks" yaml:"initial_blocks"`

	// GapThreshold is the gap strategy's relative deviation limit.
	GapThreshold float64 `json:"gap_threshold" yaml:"gap_threshold"`

	// DBPath is the path to the SQLite cache database. Empty disables
	// caching entirely.
	DBPath string `json:"db_path" yaml:"db_path"`

	// ForceReextract bypasses the cache lookup and overwrites any stored
	// result for the file.
	ForceReextract bool `json:"force_reextract" yaml:"force_reextract"`

	// Concurrency is the number of parallel workers for batch extraction
	// (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// DefaultConfig returns a Config with the stock extraction parameters and
// caching disabled.
func DefaultConfig() Config {
	return Config{
		Method:        MethodAlignmentBased,
		XTolerance:    DefaultXTolerance,
		MinWords:      DefaultMinWords,
		InitialBlocks: DefaultInitialBlocks,
		GapThreshold:  DefaultGapThreshold,
		Concurrency:   DefaultConcurrency,
	}
}

// params collects the strategy tuning knobs out of the configuration.
func (c Config) params() Params {
	return Params{
		MinWords:      c.MinWords,
		InitialBlocks: c.InitialBlocks,
		GapThreshold:  c.GapThreshold,
		XTolerance:    c.XTolerance,
	}
}

// LoadConfig reads a YAML or JSON config file layered over DefaultConfig,
// so absent fields keep their defaults. The format is chosen by file
// extension; unknown extensions try YAML first, then JSON.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse yaml: %v", ErrInvalidConfig, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse json: %v", ErrInvalidConfig, err)
		}
	default:
		if yerr := yaml.Unmarshal(data, &cfg); yerr != nil {
			if jerr := json.Unmarshal(data, &cfg); jerr != nil {
				return Config{}, fmt.Errorf("%w: %v (yaml) / %v (json)", ErrInvalidConfig, yerr, jerr)
			}
		}
	}
	return cfg, nil
}
