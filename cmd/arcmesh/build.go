package main

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"github.com/holodemo/arcmesh/pkg/kernel"
	"github.com/holodemo/arcmesh/pkg/ringseg"
)

type buildFlags struct {
	preset    string
	shape     ringseg.ShapeConfig
	normalize bool
	out       outputFlags
}

func newBuildCmd(a *app) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a single ring segment",
		Long: `Build one ring segment from a preset, optionally overriding its
shape with flags, and export it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.preset, "preset", "p", "", "starting preset (default from config)")
	fl.IntVar(&f.shape.SegmentCount, "segments", 0, "segments in the full ring (1-17)")
	fl.IntVar(&f.shape.TotalParts, "parts", 0, "slices in the full ring, a multiple of --segments")
	fl.Float32Var(&f.shape.InnerRadius, "inner", 0, "inner radius")
	fl.Float32Var(&f.shape.OuterRadius, "outer", 0, "outer radius")
	fl.Float32Var(&f.shape.Depth, "depth", 0, "extrusion depth")
	fl.Float32Var(&f.shape.RotationDegrees, "angle", 0, "rotation about Z in degrees")
	fl.BoolVar(&f.normalize, "normalize", false, "raise --parts to a valid multiple of --segments")
	f.out.register(cmd)
	return cmd
}

// resolveShape starts from the preset and applies every flag the user set.
func (a *app) resolveShape(cmd *cobra.Command, f *buildFlags) (ringseg.ShapeConfig, string, error) {
	lib, err := a.cfg.PresetLibrary()
	if err != nil {
		return ringseg.ShapeConfig{}, "", err
	}
	name := f.preset
	if name == "" {
		name = a.cfg.Preset
	}
	p, ok := lib.Lookup(name)
	if !ok {
		return ringseg.ShapeConfig{}, "", fmt.Errorf("unknown preset %q (have %v)", name, lib.Names())
	}

	shape := p.ShapeConfig
	fl := cmd.Flags()
	if fl.Changed("segments") {
		shape.SegmentCount = f.shape.SegmentCount
	}
	if fl.Changed("parts") {
		shape.TotalParts = f.shape.TotalParts
	}
	if fl.Changed("inner") {
		shape.InnerRadius = f.shape.InnerRadius
	}
	if fl.Changed("outer") {
		shape.OuterRadius = f.shape.OuterRadius
	}
	if fl.Changed("depth") {
		shape.Depth = f.shape.Depth
	}
	if fl.Changed("angle") {
		shape.RotationDegrees = f.shape.RotationDegrees
	}

	if f.normalize {
		fixed, err := shape.Normalized()
		if err != nil {
			return ringseg.ShapeConfig{}, "", err
		}
		if fixed.TotalParts != shape.TotalParts {
			a.log.Info("normalized parts", "segments", shape.SegmentCount, "from", shape.TotalParts, "to", fixed.TotalParts)
		}
		shape = fixed
	}
	return shape, name, nil
}

func (a *app) runBuild(cmd *cobra.Command, f *buildFlags) error {
	shape, name, err := a.resolveShape(cmd, f)
	if err != nil {
		return err
	}
	mesher, err := a.cfg.NewMesher()
	if err != nil {
		return err
	}

	m, err := mesher.SegmentMesh(shape)
	if err != nil {
		var ce *ringseg.ConfigError
		if errors.As(err, &ce) && ce.Field == "parts" {
			if n, nerr := ringseg.NormalizeParts(shape.SegmentCount, shape.TotalParts); nerr == nil {
				return fmt.Errorf("%w (try --parts %d or --normalize)", err, n)
			}
		}
		return err
	}
	if shape.RotationDegrees != 0 {
		m = m.Transform(mgl32.HomogRotate3DZ(mgl32.DegToRad(shape.RotationDegrees)))
	}
	m.PartName = name

	a.log.Debug("built segment", "preset", name, "segments", shape.SegmentCount, "parts", shape.TotalParts,
		"vertices", m.VertexCount(), "triangles", m.TriangleCount())
	return a.write(cmd, &f.out, name, []*kernel.Mesh{m})
}
