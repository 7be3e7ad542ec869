// Package preset loads named segment shapes from YAML.
package preset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/holodemo/arcmesh/pkg/ringseg"
)

//go:embed presets.yaml
var builtinYAML []byte

// Preset is a named shape with optional materials.
type Preset struct {
	Name                string `yaml:"name"`
	Description         string `yaml:"description,omitempty"`
	ringseg.ShapeConfig `yaml:",inline"`
	Material            string `yaml:"material,omitempty"`
	AltMaterial         string `yaml:"alt_material,omitempty"`
}

// Library is a set of presets addressed by name.
type Library struct {
	Presets []Preset `yaml:"presets"`

	byName map[string]int
}

// Parse decodes and validates a preset file. Every shape must build.
func Parse(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("preset: parse: %w", err)
	}

	lib.byName = make(map[string]int, len(lib.Presets))
	var errs []error
	for i, p := range lib.Presets {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("preset %d: missing name", i))
			continue
		}
		if _, dup := lib.byName[p.Name]; dup {
			errs = append(errs, fmt.Errorf("preset %q: defined twice", p.Name))
			continue
		}
		lib.byName[p.Name] = i
		if err := p.ShapeConfig.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("preset %q: %w", p.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &lib, nil
}

// Load reads and parses a preset file.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}
	return Parse(data)
}

// Builtin returns the presets shipped with arcmesh.
func Builtin() *Library {
	lib, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("preset: builtin presets are invalid: %v", err))
	}
	return lib
}

// Lookup returns the named preset.
func (l *Library) Lookup(name string) (Preset, bool) {
	i, ok := l.byName[name]
	if !ok {
		return Preset{}, false
	}
	return l.Presets[i], true
}

// Names returns the preset names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.Presets))
	for _, p := range l.Presets {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a library with the presets of l overridden and extended
// by those of other.
func (l *Library) Merge(other *Library) *Library {
	out := &Library{byName: make(map[string]int)}
	for _, src := range []*Library{l, other} {
		if src == nil {
			continue
		}
		for _, p := range src.Presets {
			if i, ok := out.byName[p.Name]; ok {
				out.Presets[i] = p
				continue
			}
			out.byName[p.Name] = len(out.Presets)
			out.Presets = append(out.Presets, p)
		}
	}
	return out
}
