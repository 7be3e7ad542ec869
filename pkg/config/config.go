// Package config holds the settings shared by the arcmesh CLI and the
// desktop app. Settings come from built-in defaults, then an optional
// arcmesh.toml, then ARCMESH_* environment variables, which may in turn
// be seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/holodemo/arcmesh/pkg/export"
	"github.com/holodemo/arcmesh/pkg/kernel"
	"github.com/holodemo/arcmesh/pkg/kernel/procedural"
	"github.com/holodemo/arcmesh/pkg/kernel/sdfx"
	"github.com/holodemo/arcmesh/pkg/preset"
)

// FileName is the config file looked up in the working directory.
const FileName = "arcmesh.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ARCMESH_"

// Mesher backends.
const (
	MesherProcedural = "procedural"
	MesherSDFX       = "sdfx"
)

// Config is the resolved arcmesh configuration.
type Config struct {
	// Mesher selects the segment mesher: "procedural" or "sdfx".
	Mesher string `toml:"mesher"`
	// Cells is the marching cubes resolution of the sdfx mesher.
	Cells int `toml:"cells"`
	// Format is the default export format.
	Format string `toml:"format"`
	// Preset names the shape used when none is given.
	Preset string `toml:"preset"`
	// Presets is an optional YAML file merged over the built-in presets.
	Presets string `toml:"presets"`
	// EvalTimeout bounds DSL evaluation, as a Go duration string.
	EvalTimeout string `toml:"eval_timeout"`

	Log LogConfig `toml:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mesher:      MesherProcedural,
		Cells:       sdfx.DefaultMeshCells,
		Format:      string(export.FormatSTL),
		Preset:      "half",
		EvalTimeout: "5s",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration. An empty path reads FileName if it
// exists; an explicit path must exist. Environment overrides are applied
// last and the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"MESHER":       &c.Mesher,
		"FORMAT":       &c.Format,
		"PRESET":       &c.Preset,
		"PRESETS":      &c.Presets,
		"EVAL_TIMEOUT": &c.EvalTimeout,
		"LOG_LEVEL":    &c.Log.Level,
		"LOG_FORMAT":   &c.Log.Format,
	}
	for key, dst := range str {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	if v, ok := lookup(EnvPrefix + "CELLS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sCELLS: %w", EnvPrefix, err)
		}
		c.Cells = n
	}
	return nil
}

// Validate checks every field.
func (c Config) Validate() error {
	var errs []error
	switch c.Mesher {
	case MesherProcedural, MesherSDFX:
	default:
		errs = append(errs, fmt.Errorf("unknown mesher %q", c.Mesher))
	}
	if c.Cells < 8 {
		errs = append(errs, fmt.Errorf("cells must be at least 8, got %d", c.Cells))
	}
	if _, err := export.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if d, err := time.ParseDuration(c.EvalTimeout); err != nil {
		errs = append(errs, fmt.Errorf("eval_timeout: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("eval_timeout must be positive, got %s", d))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Timeout returns EvalTimeout as a duration.
func (c Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.EvalTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// ExportFormat returns Format parsed.
func (c Config) ExportFormat() export.Format {
	f, err := export.ParseFormat(c.Format)
	if err != nil {
		return export.FormatSTL
	}
	return f
}

// NewMesher returns the configured segment mesher.
func (c Config) NewMesher() (kernel.Mesher, error) {
	switch c.Mesher {
	case MesherProcedural:
		return procedural.New(), nil
	case MesherSDFX:
		return kernel.CSG{Kernel: sdfx.NewWithCells(c.Cells)}, nil
	}
	return nil, fmt.Errorf("config: unknown mesher %q", c.Mesher)
}

// PresetLibrary returns the built-in presets, merged with the Presets
// file when one is configured.
func (c Config) PresetLibrary() (*preset.Library, error) {
	lib := preset.Builtin()
	if c.Presets == "" {
		return lib, nil
	}
	user, err := preset.Load(c.Presets)
	if err != nil {
		return nil, err
	}
	return lib.Merge(user), nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// NewLogger builds a slog logger writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
