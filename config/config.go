// Package config handles slide.toml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/slide/heap"
)

// FileName is the configuration file this package looks for.
const FileName = "slide.toml"

// Policy names accepted in [heap].
const (
	PolicyFixed    = "fixed"
	PolicyHeadroom = "headroom"
)

// Config represents a slide.toml configuration.
type Config struct {
	Heap  Heap  `toml:"heap"`
	Stats Stats `toml:"stats"`

	// Dir is the directory containing the slide.toml file (set at load time).
	Dir string `toml:"-"`
}

// Heap configures the arena and root stack.
type Heap struct {
	InitialCapacity int     `toml:"initial-capacity"`
	MinCapacity     int     `toml:"min-capacity"`
	MaxRoots        int     `toml:"max-roots"`
	Policy          string  `toml:"policy"`
	HeadroomFactor  float64 `toml:"headroom-factor"`
}

// Stats configures collection-statistics persistence.
type Stats struct {
	// Database is the SQLite file collection stats are appended to.
	// Empty disables recording.
	Database string `toml:"database"`
}

// Default returns the configuration used when no slide.toml exists.
func Default() *Config {
	return &Config{
		Heap: Heap{
			Policy:         PolicyHeadroom,
			HeadroomFactor: heap.DefaultHeadroomFactor,
			MinCapacity:    heap.DefaultMinCapacity,
		},
	}
}

// Load parses a slide.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if c.Heap.Policy == "" {
		c.Heap.Policy = PolicyHeadroom
	}
	if c.Heap.HeadroomFactor == 0 {
		c.Heap.HeadroomFactor = heap.DefaultHeadroomFactor
	}
	if c.Heap.MinCapacity == 0 {
		c.Heap.MinCapacity = heap.DefaultMinCapacity
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a slide.toml file, then
// loads and returns it. Returns nil if no configuration is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", startDir, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) validate() error {
	switch c.Heap.Policy {
	case PolicyFixed, PolicyHeadroom:
	default:
		return fmt.Errorf("unknown growth policy %q", c.Heap.Policy)
	}
	if c.Heap.InitialCapacity < 0 {
		return fmt.Errorf("initial-capacity %d is negative", c.Heap.InitialCapacity)
	}
	if c.Heap.MinCapacity < 0 {
		return fmt.Errorf("min-capacity %d is negative", c.Heap.MinCapacity)
	}
	if c.Heap.MaxRoots < 0 {
		return fmt.Errorf("max-roots %d is negative", c.Heap.MaxRoots)
	}
	if c.Heap.HeadroomFactor <= 1 {
		return fmt.Errorf("headroom-factor %g must be greater than 1", c.Heap.HeadroomFactor)
	}
	return nil
}

// HeapConfig translates the configuration into heap construction options.
func (c *Config) HeapConfig() heap.Config {
	cfg := heap.Config{
		InitialCapacity: c.Heap.InitialCapacity,
		MaxRoots:        c.Heap.MaxRoots,
	}
	switch c.Heap.Policy {
	case PolicyFixed:
		cfg.Policy = heap.NewFixedPolicy()
	default:
		cfg.Policy = heap.NewHeadroomPolicy(c.Heap.HeadroomFactor, c.Heap.MinCapacity)
	}
	return cfg
}
