package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/holodemo/arcmesh/pkg/config"
	"github.com/holodemo/arcmesh/pkg/export"
	"github.com/holodemo/arcmesh/pkg/kernel"
)

// app carries the state resolved before any subcommand runs.
type app struct {
	configPath string
	envFile    string

	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "arcmesh",
		Short:        "Build curved button meshes for radial menus",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./"+config.FileName+" if present)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "file of ARCMESH_* variables to load")

	root.AddCommand(
		newBuildCmd(a),
		newEvalCmd(a),
		newNormalizeCmd(a),
		newPresetsCmd(a),
	)
	return root
}

func (a *app) setup(stderr io.Writer) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = cfg.NewLogger(stderr)
	return nil
}

// outputFlags are shared by the commands that write meshes.
type outputFlags struct {
	format string
	output string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format: stl, stl-ascii or json (default from config)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
}

// resolve picks the format from the flag, the output extension, then the
// config, in that order.
func (o *outputFlags) resolve(cfg config.Config) (export.Format, error) {
	if o.format != "" {
		return export.ParseFormat(o.format)
	}
	switch filepath.Ext(o.output) {
	case ".json":
		return export.FormatJSON, nil
	case ".stl":
		if cfg.ExportFormat() == export.FormatSTLASCII {
			return export.FormatSTLASCII, nil
		}
		return export.FormatSTL, nil
	}
	return cfg.ExportFormat(), nil
}

// write exports meshes to the output file, or to stdout when none is set.
func (a *app) write(cmd *cobra.Command, o *outputFlags, name string, meshes []*kernel.Mesh) error {
	f, err := o.resolve(a.cfg)
	if err != nil {
		return err
	}
	if o.output == "" {
		return export.Write(cmd.OutOrStdout(), f, name, meshes)
	}

	file, err := os.Create(o.output)
	if err != nil {
		return err
	}
	if err := export.Write(file, f, name, meshes); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", o.output, err)
	}
	a.log.Info("wrote meshes", "path", o.output, "format", string(f), "meshes", len(meshes))
	return nil
}
