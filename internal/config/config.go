// Package config reads disambig.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"disambig/internal/collide"
	"disambig/internal/trace"
)

// FileName is the config file Find looks for.
const FileName = "disambig.toml"

type Config struct {
	Names    NamesConfig    `toml:"names"`
	Reserved ReservedConfig `toml:"reserved"`
	Build    BuildConfig    `toml:"build"`
	Trace    TraceConfig    `toml:"trace"`

	// Path is the file the config was read from, empty for Default.
	Path string `toml:"-"`
}

type NamesConfig struct {
	CheckReserved bool   `toml:"check_reserved"`
	SuperSuffix   string `toml:"super_suffix"`
}

type ReservedConfig struct {
	Words       []string `toml:"words"`
	Params      []string `toml:"params"`
	UseDefaults bool     `toml:"use_defaults"`
}

type BuildConfig struct {
	// Jobs is the number of build workers; 0 means GOMAXPROCS.
	Jobs           int `toml:"jobs"`
	MaxDiagnostics int `toml:"max_diagnostics"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

// Default returns the settings used when no disambig.toml exists.
func Default() *Config {
	return &Config{
		Names:    NamesConfig{CheckReserved: true, SuperSuffix: collide.SuffixAncestor.String()},
		Reserved: ReservedConfig{UseDefaults: true},
		Build:    BuildConfig{MaxDiagnostics: 100},
		Trace:    TraceConfig{Level: "off", Output: "-"},
	}
}

// Find searches for disambig.toml in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load reads path on top of Default. Keys left out keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("reserved", "use_defaults") && !cfg.Reserved.UseDefaults &&
		cfg.Names.CheckReserved && len(cfg.Reserved.Words)+len(cfg.Reserved.Params) == 0 {
		return nil, fmt.Errorf("%s: [reserved] disables the defaults without listing words; set [names].check_reserved = false instead", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the disambig.toml found from startDir, or returns
// Default when there is none.
func LoadOrDefault(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	if _, err := collide.ParseSuffixPolicy(c.Names.SuperSuffix); err != nil {
		return fmt.Errorf("[names].super_suffix: %w", err)
	}
	if c.Build.Jobs < 0 {
		return fmt.Errorf("[build].jobs must be >= 0, got %d", c.Build.Jobs)
	}
	if c.Build.MaxDiagnostics < 0 {
		return fmt.Errorf("[build].max_diagnostics must be >= 0, got %d", c.Build.MaxDiagnostics)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	return nil
}

// SuffixPolicy returns the parsed [names].super_suffix.
func (c *Config) SuffixPolicy() collide.SuffixPolicy {
	p, _ := collide.ParseSuffixPolicy(c.Names.SuperSuffix)
	return p
}

// ReservedWords returns the seed for the reserved table: the built-in list
// when enabled, followed by the configured words and parameter words.
func (c *Config) ReservedWords() []collide.ReservedWord {
	var words []collide.ReservedWord
	if c.Reserved.UseDefaults {
		words = collide.DefaultReservedWords()
	}
	for _, w := range c.Reserved.Words {
		words = append(words, collide.ReservedWord{Word: w})
	}
	for _, w := range c.Reserved.Params {
		words = append(words, collide.ReservedWord{Word: w, Param: true})
	}
	return words
}
