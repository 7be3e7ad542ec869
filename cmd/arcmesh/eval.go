package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/holodemo/arcmesh/pkg/engine"
	"github.com/holodemo/arcmesh/pkg/tessellate"
)

type evalFlags struct {
	watch bool
	out   outputFlags
}

func newEvalCmd(a *app) *cobra.Command {
	f := &evalFlags{}
	cmd := &cobra.Command{
		Use:   "eval FILE",
		Short: "Evaluate a menu script and export its meshes",
		Long: `Evaluate a menu script, validate the resulting scene and export
one mesh per placed segment. With --watch the script is rebuilt every
time it changes until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !f.watch {
				return a.runEval(cmd, f, path)
			}
			if f.out.output == "" {
				return errors.New("--watch needs --output")
			}
			if err := a.runEval(cmd, f, path); err != nil {
				a.log.Error("build failed", "path", path, "err", err)
			}
			return watchFile(cmd.Context(), path, a.log, func() error {
				return a.runEval(cmd, f, path)
			})
		},
	}
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "rebuild when the script changes")
	f.out.register(cmd)
	return cmd
}

func (a *app) runEval(cmd *cobra.Command, f *evalFlags, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	lib, err := a.cfg.PresetLibrary()
	if err != nil {
		return err
	}
	p, ok := lib.Lookup(a.cfg.Preset)
	if !ok {
		return fmt.Errorf("unknown preset %q", a.cfg.Preset)
	}

	eng := engine.New(engine.Options{
		Timeout: a.cfg.Timeout(),
		Shape:   p.ShapeConfig,
		Logger:  a.log,
	})
	res, err := eng.EvaluateAndValidate(string(src))
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		a.log.Warn(w.Message, "path", path, "node", w.NodeID.Short())
	}
	if !res.OK() {
		msgs := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("%s:\n  %s", path, strings.Join(msgs, "\n  "))
	}

	mesher, err := a.cfg.NewMesher()
	if err != nil {
		return err
	}
	meshes, err := tessellate.Tessellate(res.Graph, mesher)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return a.write(cmd, &f.out, name, meshes)
}

// watchFile calls rebuild whenever path is written or recreated, until ctx
// is done. The parent directory is watched so editors that save by
// renaming a temporary file are still seen.
func watchFile(ctx context.Context, path string, log *slog.Logger, rebuild func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	log.Info("watching", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if err := rebuild(); err != nil {
				log.Error("build failed", "path", target, "err", err)
				continue
			}
			log.Debug("rebuilt", "path", target)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		}
	}
}
