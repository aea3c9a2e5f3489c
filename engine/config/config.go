// Package config loads core.Config from YAML.
//
//	window:
//	  title: "Hello"
//	  width: 800
//	  height: 600
//	  vsync: true
//	clear_color: [0.8, 1, 0.6, 1]   # or "#ccff99"
//	exit_key: escape
//	shaders:
//	  vertex: simple.vert
//	  fragment: simple.frag
//	  dir: ""
//	geometry: both
//	log_level: debug
//
// Missing keys keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hubastard/trisurf/engine/colors"
	"github.com/hubastard/trisurf/engine/core"
	"gopkg.in/yaml.v3"
)

type file struct {
	Window     *windowConfig `yaml:"window"`
	ClearColor *colorValue   `yaml:"clear_color"`
	ExitKey    *keyName      `yaml:"exit_key"`
	Shaders    *shaderConfig `yaml:"shaders"`
	Geometry   string        `yaml:"geometry"`
	LogLevel   string        `yaml:"log_level"`
}

type windowConfig struct {
	Title  *string `yaml:"title"`
	Width  *int    `yaml:"width"`
	Height *int    `yaml:"height"`
	VSync  *bool   `yaml:"vsync"`
}

type shaderConfig struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
	Dir      string `yaml:"dir"`
}

// colorValue decodes either a 3/4 component list or a hex string.
type colorValue colors.Color

// UnmarshalYAML implements yaml.Unmarshaler for colorValue.
func (c *colorValue) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		col, err := colors.ParseHex(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*c = colorValue(col)
		return nil
	}
	var comps []float32
	if err := value.Decode(&comps); err != nil {
		return err
	}
	if len(comps) != 3 && len(comps) != 4 {
		return fmt.Errorf("line %d: clear_color: want 3 or 4 components, got %d", value.Line, len(comps))
	}
	col := colors.Color{0, 0, 0, 1}
	copy(col[:], comps)
	*c = colorValue(col)
	return nil
}

// keyName decodes a key by name.
type keyName core.Key

// UnmarshalYAML implements yaml.Unmarshaler for keyName.
func (k *keyName) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" || s == "none" {
		*k = keyName(core.KeyUnknown)
		return nil
	}
	key, ok := core.ParseKey(s)
	if !ok {
		return fmt.Errorf("line %d: unknown key %q", value.Line, s)
	}
	*k = keyName(key)
	return nil
}

// Load reads path on top of core.DefaultConfig. An empty path returns the
// defaults.
func Load(path string) (core.Config, error) {
	if path == "" {
		return core.DefaultConfig(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return core.Config{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(b))
	if err != nil {
		return core.Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML on top of core.DefaultConfig and validates the result.
func Decode(r io.Reader) (core.Config, error) {
	cfg := core.DefaultConfig()

	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return core.Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if w := f.Window; w != nil {
		if w.Title != nil {
			cfg.Title = *w.Title
		}
		if w.Width != nil {
			cfg.Width = *w.Width
		}
		if w.Height != nil {
			cfg.Height = *w.Height
		}
		if w.VSync != nil {
			cfg.VSync = *w.VSync
		}
	}
	if f.ClearColor != nil {
		cfg.ClearColor = *f.ClearColor
	}
	if f.ExitKey != nil {
		cfg.ExitKey = core.Key(*f.ExitKey)
	}
	if s := f.Shaders; s != nil {
		if s.Vertex != "" {
			cfg.VertexShader = s.Vertex
		}
		if s.Fragment != "" {
			cfg.FragmentShader = s.Fragment
		}
		cfg.ShaderDir = s.Dir
	}
	if f.Geometry != "" {
		cfg.Geometry = f.Geometry
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}

	if err := Validate(cfg); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func Validate(cfg core.Config) error {
	var errs []error
	if cfg.Width <= 0 || cfg.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d: must be positive", cfg.Width, cfg.Height))
	}
	for i, c := range cfg.ClearColor {
		if c < 0 || c > 1 {
			errs = append(errs, fmt.Errorf("clear_color[%d] = %g: must be in [0, 1]", i, c))
		}
	}
	switch cfg.Geometry {
	case core.GeometryInterleaved, core.GeometryDeinterleaved, core.GeometryBoth:
	default:
		errs = append(errs, fmt.Errorf("geometry %q: want %s, %s or %s",
			cfg.Geometry, core.GeometryInterleaved, core.GeometryDeinterleaved, core.GeometryBoth))
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if cfg.VertexShader == "" || cfg.FragmentShader == "" {
		errs = append(errs, errors.New("shaders: vertex and fragment names are required"))
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", s, err)
	}
	return l, nil
}
