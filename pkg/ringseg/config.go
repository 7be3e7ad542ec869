package ringseg

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

const (
	// MinParts is the smallest number of slices a full ring may be divided into.
	MinParts = 16
	// MaxSegments is the largest number of buttons a ring may be split into.
	MaxSegments = 17
	// MaxParts bounds the tessellation density, which keeps mesh sizes and
	// triangle indices small.
	MaxParts = 1024
)

// ErrInvalidConfig is wrapped by every error Build returns for a shape it
// refuses to generate.
var ErrInvalidConfig = errors.New("invalid shape config")

// ConfigError names the field that made a ShapeConfig invalid.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// ShapeConfig describes one ring segment.
type ShapeConfig struct {
	// SegmentCount is how many equal segments the full ring is split into.
	// The generated arc spans 1/SegmentCount of a revolution.
	SegmentCount int `json:"segments" yaml:"segments" mapstructure:"segments"`
	// TotalParts is the number of slices of the full ring. It sets the
	// tessellation density and must be a multiple of SegmentCount.
	TotalParts  int     `json:"parts" yaml:"parts" mapstructure:"parts"`
	InnerRadius float32 `json:"innerRadius" yaml:"inner_radius" mapstructure:"inner_radius"`
	OuterRadius float32 `json:"outerRadius" yaml:"outer_radius" mapstructure:"outer_radius"`
	// Depth is the extrusion thickness along Z, centered on z=0.
	Depth float32 `json:"depth" yaml:"depth" mapstructure:"depth"`
	// RotationDegrees places the arc around the Z axis. Build ignores it.
	RotationDegrees float32 `json:"angle" yaml:"angle" mapstructure:"angle"`
}

// DefaultShape returns a half-ring button shape.
func DefaultShape() ShapeConfig {
	return ShapeConfig{
		SegmentCount: 2,
		TotalParts:   36,
		InnerRadius:  0.04,
		OuterRadius:  0.1,
		Depth:        0.04,
	}
}

// SliceCount is the number of angular subdivisions of the arc.
// It is zero when SegmentCount is not positive.
func (c ShapeConfig) SliceCount() int {
	if c.SegmentCount <= 0 {
		return 0
	}
	return c.TotalParts / c.SegmentCount
}

// SpanDegrees is the angle covered by the arc.
func (c ShapeConfig) SpanDegrees() float32 {
	if c.SegmentCount <= 0 {
		return 0
	}
	return 360 / float32(c.SegmentCount)
}

// Capped reports whether the arc is partial and gets end caps.
func (c ShapeConfig) Capped() bool {
	return c.SegmentCount > 1
}

// Validate checks c against the ranges Build accepts. The returned error
// is a *ConfigError wrapping ErrInvalidConfig.
func (c ShapeConfig) Validate() error {
	switch {
	case c.SegmentCount < 1:
		return &ConfigError{"segments", fmt.Sprintf("is %d, must be at least 1", c.SegmentCount)}
	case c.SegmentCount > MaxSegments:
		return &ConfigError{"segments", fmt.Sprintf("is %d, must be at most %d", c.SegmentCount, MaxSegments)}
	case c.TotalParts < c.SegmentCount:
		return &ConfigError{"parts", fmt.Sprintf("is %d, must not be less than segments (%d)", c.TotalParts, c.SegmentCount)}
	case c.TotalParts < MinParts:
		return &ConfigError{"parts", fmt.Sprintf("is %d, must be at least %d", c.TotalParts, MinParts)}
	case c.TotalParts > MaxParts:
		return &ConfigError{"parts", fmt.Sprintf("is %d, must be at most %d", c.TotalParts, MaxParts)}
	case c.TotalParts%c.SegmentCount != 0:
		return &ConfigError{"parts", fmt.Sprintf("%d is not a multiple of segments (%d)", c.TotalParts, c.SegmentCount)}
	}

	for _, f := range []struct {
		name string
		v    float32
	}{
		{"innerRadius", c.InnerRadius},
		{"outerRadius", c.OuterRadius},
		{"depth", c.Depth},
		{"angle", c.RotationDegrees},
	} {
		if math32.IsNaN(f.v) || math32.IsInf(f.v, 0) {
			return &ConfigError{f.name, "is not a finite number"}
		}
	}

	switch {
	case c.InnerRadius <= 0:
		return &ConfigError{"innerRadius", fmt.Sprintf("is %g, must be positive", c.InnerRadius)}
	case c.OuterRadius <= c.InnerRadius:
		return &ConfigError{"outerRadius", fmt.Sprintf("is %g, must exceed innerRadius (%g)", c.OuterRadius, c.InnerRadius)}
	case c.Depth <= 0:
		return &ConfigError{"depth", fmt.Sprintf("is %g, must be positive", c.Depth)}
	}
	return nil
}

// Normalized returns a copy of c with TotalParts replaced by the value
// NormalizeParts suggests. c itself is left untouched.
func (c ShapeConfig) Normalized() (ShapeConfig, error) {
	parts, err := NormalizeParts(c.SegmentCount, c.TotalParts)
	if err != nil {
		return c, err
	}
	c.TotalParts = parts
	return c, nil
}

// shapeKey strips the placement rotation, which does not change the
// generated geometry.
func (c ShapeConfig) shapeKey() ShapeConfig {
	c.RotationDegrees = 0
	return c
}
