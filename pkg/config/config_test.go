package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/holodemo/arcmesh/pkg/export"
	"github.com/holodemo/arcmesh/pkg/kernel"
	"github.com/holodemo/arcmesh/pkg/kernel/procedural"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"MESHER", "CELLS", "FORMAT", "PRESET", "PRESETS", "EVAL_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(EnvPrefix+key, "")
		os.Unsetenv(EnvPrefix + key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() is invalid: %v", err)
	}
	if Default().Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v", Default().Timeout())
	}
	if Default().ExportFormat() != export.FormatSTL {
		t.Errorf("ExportFormat() = %v", Default().ExportFormat())
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "arcmesh.toml", `
mesher = "sdfx"
cells = 64
format = "json"
eval_timeout = "250ms"

[log]
level = "debug"
format = "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mesher != MesherSDFX || cfg.Cells != 64 || cfg.Format != "json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Preset != "half" {
		t.Errorf("unset preset = %q, want default", cfg.Preset)
	}
	if cfg.Timeout() != 250*time.Millisecond {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "arcmesh.toml", "mesher = \"sdfx\"\ncells = 64\n")
	t.Setenv("ARCMESH_MESHER", "procedural")
	t.Setenv("ARCMESH_CELLS", "32")
	t.Setenv("ARCMESH_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mesher != MesherProcedural || cfg.Cells != 32 || cfg.Log.Level != "warn" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
		env  map[string]string
		want string
	}{
		{"syntax", "mesher = ", nil, "arcmesh.toml"},
		{"mesher", `mesher = "manifold"`, nil, "unknown mesher"},
		{"cells", "cells = 2", nil, "cells must be at least 8"},
		{"format", `format = "obj"`, nil, "obj"},
		{"timeout", `eval_timeout = "soon"`, nil, "eval_timeout"},
		{"negative timeout", `eval_timeout = "-1s"`, nil, "must be positive"},
		{"level", "[log]\nlevel = \"loud\"", nil, "unknown log level"},
		{"log format", "[log]\nformat = \"xml\"", nil, "unknown log format"},
		{"env cells", "", map[string]string{"ARCMESH_CELLS": "many"}, "ARCMESH_CELLS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, "arcmesh.toml", tt.toml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, ".env", "# local settings\nARCMESH_FORMAT=stl-ascii\nARCMESH_PRESET='quarter'\n")
	t.Setenv("ARCMESH_PRESET", "fifth")

	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("ARCMESH_FORMAT") })

	if got := os.Getenv("ARCMESH_FORMAT"); got != "stl-ascii" {
		t.Errorf("ARCMESH_FORMAT = %q", got)
	}
	if got := os.Getenv("ARCMESH_PRESET"); got != "fifth" {
		t.Errorf(".env overrode an existing variable: ARCMESH_PRESET = %q", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env: %v", err)
	}
}

func TestNewMesher(t *testing.T) {
	cfg := Default()
	m, err := cfg.NewMesher()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.(*procedural.Mesher); !ok {
		t.Errorf("default mesher is %T", m)
	}

	cfg.Mesher = MesherSDFX
	m, err = cfg.NewMesher()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.(kernel.CSG); !ok {
		t.Errorf("sdfx mesher is %T", m)
	}

	cfg.Mesher = "other"
	if _, err := cfg.NewMesher(); err == nil {
		t.Error("expected error for unknown mesher")
	}
}

func TestPresetLibrary(t *testing.T) {
	cfg := Default()
	lib, err := cfg.PresetLibrary()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := lib.Lookup(cfg.Preset); !ok {
		t.Errorf("default preset %q missing", cfg.Preset)
	}

	cfg.Presets = writeFile(t, "presets.yaml", "presets:\n  - {name: tiny, segments: 4, parts: 40, inner_radius: 0.01, outer_radius: 0.02, depth: 0.01}\n")
	lib, err = cfg.PresetLibrary()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := lib.Lookup("tiny"); !ok {
		t.Error("user preset not merged")
	}
	if _, ok := lib.Lookup("half"); !ok {
		t.Error("built-in preset lost")
	}

	cfg.Presets = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.PresetLibrary(); err == nil {
		t.Error("expected error for a missing preset file")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Log.Level = "warn"
	log := cfg.NewLogger(&buf)
	log.Info("hidden")
	log.Warn("shown", "n", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info logged at warn level: %s", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("text output = %q", out)
	}

	buf.Reset()
	cfg.Log.Format = "json"
	cfg.NewLogger(&buf).Error("boom")
	if !strings.Contains(buf.String(), `"msg":"boom"`) {
		t.Errorf("json output = %q", buf.String())
	}
}
