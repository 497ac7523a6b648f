package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds input archives and output settings of a conversion.
type Config struct {
	// Inputs
	Producer        string   `json:"producer" toml:"producer"`
	Archive         string   `json:"archive" toml:"archive"`
	Model           string   `json:"model" toml:"model"`
	MotionArchive   string   `json:"motion_archive" toml:"motion_archive"`
	TextureArchives []string `json:"texture_archives" toml:"texture_archives"`
	NodeScheme      string   `json:"node_scheme" toml:"node_scheme"`

	// Output
	OutputDir string `json:"output_dir" toml:"output_dir"`
	Format    string `json:"format" toml:"format"`
	WebP      bool   `json:"webp_textures" toml:"webp_textures"`
	Workers   int    `json:"workers" toml:"workers"`
	LogLevel  string `json:"log_level" toml:"log_level"`
}

// Load reads a config file. Files ending in .toml are read as TOML,
// everything else as JSON. Fields not set in the file keep their zero values.
// Relative paths in the file are made relative to the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	cfg.Archive = relTo(dir, cfg.Archive)
	cfg.MotionArchive = relTo(dir, cfg.MotionArchive)
	cfg.OutputDir = relTo(dir, cfg.OutputDir)
	for i, p := range cfg.TextureArchives {
		cfg.TextureArchives[i] = relTo(dir, p)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Archive         string
	Model           string
	MotionArchive   string
	TextureArchives []string
	NodeScheme      string
	OutputDir       string
	Format          string
	WebP            bool
	Workers         int
	LogLevel        string
}

// Resolve applies CLI flags and fills empty fields with defaults.
// CLI flags take priority when non-zero/non-empty; relative flag paths stay
// relative to the working directory.
func (c *Config) Resolve(producer string, flags Flags) {
	if producer != "" {
		c.Producer = producer
	}
	if flags.Archive != "" {
		c.Archive = flags.Archive
	}
	if flags.Model != "" {
		c.Model = flags.Model
	}
	if flags.MotionArchive != "" {
		c.MotionArchive = flags.MotionArchive
	}
	if len(flags.TextureArchives) > 0 {
		c.TextureArchives = flags.TextureArchives
	}
	if flags.NodeScheme != "" {
		c.NodeScheme = flags.NodeScheme
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.WebP {
		c.WebP = true
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.Producer == "" {
		c.Producer = "mechlib"
	}
	if c.NodeScheme == "" {
		c.NodeScheme = "children"
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Format == "" {
		c.Format = "glb"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func relTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate checks that the settings needed for a run are present.
func (c *Config) Validate() error {
	if c.Archive == "" {
		return fmt.Errorf("config: no %s archive given", c.Producer)
	}
	switch c.Format {
	case "glb", "gltf":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Format)
	}
	return nil
}

// OutputPath returns the file a named scene is written to.
func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.OutputDir, name+"."+c.Format)
}

// StringList is a repeatable string flag.
type StringList []string

func (l *StringList) String() string {
	return strings.Join(*l, ",")
}

// Set appends one value.
func (l *StringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
