package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/holodemo/arcmesh/pkg/config"
	"github.com/holodemo/arcmesh/pkg/engine"
	"github.com/holodemo/arcmesh/pkg/export"
	"github.com/holodemo/arcmesh/pkg/kernel"
	"github.com/holodemo/arcmesh/pkg/menu"
	"github.com/holodemo/arcmesh/pkg/preset"
	"github.com/holodemo/arcmesh/pkg/ringseg"
	"github.com/holodemo/arcmesh/pkg/tessellate"
)

// Events emitted to the frontend.
const (
	EventRevealFrame = "menu:reveal"
	EventSelected    = "menu:selected"
)

// revealInterval paces the reveal animation at roughly 60 frames a second.
const revealInterval = 16 * time.Millisecond

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx     context.Context
	log     *slog.Logger
	engine  *engine.Engine
	mesher  kernel.Mesher
	presets *preset.Library
	builder *ringseg.Builder

	// emit sends an event to the frontend. It is a no-op until startup.
	emit func(event string, data ...interface{})

	mu           sync.Mutex
	menu         *menu.Menu
	cancelReveal context.CancelFunc
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// ButtonData describes one menu button for the frontend.
type ButtonData struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Material string `json:"material"`
}

// MenuState is the interaction state of the current menu.
type MenuState struct {
	Shown   bool         `json:"shown"`
	Focused string       `json:"focused"`
	Buttons []ButtonData `json:"buttons"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []export.MeshJSON `json:"meshes"`
	Errors   []EvalErrorData   `json:"errors"`
	Warnings []EvalErrorData   `json:"warnings"`
	Menu     MenuState         `json:"menu"`
}

// SegmentResult is returned by BuildSegment.
type SegmentResult struct {
	Mesh    *export.MeshJSON `json:"mesh"`
	Rebuilt bool             `json:"rebuilt"`
	Error   string           `json:"error,omitempty"`
	// SuggestedParts is set when the part count was the problem.
	SuggestedParts int `json:"suggestedParts,omitempty"`
}

// NewApp creates an App from the default configuration.
func NewApp() *App {
	app, err := NewAppWithConfig(config.Default())
	if err != nil {
		// The defaults always resolve.
		panic(err)
	}
	return app
}

// NewAppWithConfig creates an App from cfg.
func NewAppWithConfig(cfg config.Config) (*App, error) {
	log := cfg.NewLogger(os.Stderr)

	presets, err := cfg.PresetLibrary()
	if err != nil {
		return nil, err
	}
	p, ok := presets.Lookup(cfg.Preset)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", cfg.Preset)
	}
	mesher, err := cfg.NewMesher()
	if err != nil {
		return nil, err
	}

	return &App{
		log: log,
		engine: engine.New(engine.Options{
			Timeout: cfg.Timeout(),
			Shape:   p.ShapeConfig,
			Logger:  log,
		}),
		mesher:  mesher,
		presets: presets,
		builder: ringseg.NewBuilder(),
		emit:    func(string, ...interface{}) {},
		menu:    menu.New("scene", nil),
	}, nil
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.emit = func(event string, data ...interface{}) {
		runtime.EventsEmit(ctx, event, data...)
	}
}

// shutdown stops any running animation.
func (a *App) shutdown(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancelReveal != nil {
		a.cancelReveal()
		a.cancelReveal = nil
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
// This is the primary binding called by the frontend editor. A successful
// evaluation also replaces the interactive menu.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []export.MeshJSON{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the source and validate the scene.
	res, err := a.engine.EvaluateAndValidate(source)
	if err != nil {
		// Fatal error (panic, timeout, superseded).
		a.log.Error("evaluate", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}

	// Step 2: Report eval and validation errors.
	if !res.OK() {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	// Step 3: Lay out and tessellate every placed segment.
	placements, err := tessellate.Placements(res.Graph)
	if err != nil {
		a.log.Error("placements", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "layout failed: " + err.Error()})
		return result
	}
	meshes, err := tessellate.Tessellate(res.Graph, a.mesher)
	if err != nil {
		a.log.Error("tessellate", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}
	result.Meshes = export.ToJSON(meshes)

	// Step 4: Rebuild the menu over the new buttons.
	m := menu.FromPlacements("scene", placements)
	m.OnSelect(func(b *menu.Button) {
		a.log.Info("selected", "button", b.Name)
		a.emit(EventSelected, b.Name)
	})
	a.mu.Lock()
	a.stopRevealLocked()
	a.menu = m
	a.mu.Unlock()

	result.Menu = a.menuState()
	return result
}

// BuildSegment builds a single segment for the live shape editor. The
// mesh is only regenerated when the shape changed since the last call.
func (a *App) BuildSegment(shape ringseg.ShapeConfig) SegmentResult {
	md, rebuilt, err := a.builder.RebuildIfChanged(shape)
	if err != nil {
		res := SegmentResult{Error: err.Error()}
		var ce *ringseg.ConfigError
		if errors.As(err, &ce) && ce.Field == "parts" {
			if n, nerr := ringseg.NormalizeParts(shape.SegmentCount, shape.TotalParts); nerr == nil {
				res.SuggestedParts = n
			}
		}
		return res
	}
	if rebuilt {
		a.log.Debug("rebuilt segment", "segments", shape.SegmentCount, "parts", shape.TotalParts, "vertices", md.VertexCount())
	}

	m := kernel.FromMeshData(md.RotatedZ(shape.RotationDegrees))
	m.PartName = "segment"
	out := export.ToJSON([]*kernel.Mesh{m})[0]
	return SegmentResult{Mesh: &out, Rebuilt: rebuilt}
}

// SuggestParts returns a valid part count for segments, at least minimum.
func (a *App) SuggestParts(segments, minimum int) (int, error) {
	return ringseg.NormalizeParts(segments, minimum)
}

// Presets returns the available shape presets in name order.
func (a *App) Presets() []preset.Preset {
	names := a.presets.Names()
	out := make([]preset.Preset, 0, len(names))
	for _, name := range names {
		p, _ := a.presets.Lookup(name)
		out = append(out, p)
	}
	return out
}

// Tap handles a tap in empty space and starts the reveal animation when
// the menu opens.
func (a *App) Tap() MenuState {
	a.mu.Lock()
	m := a.menu
	if m.Tap() {
		a.startRevealLocked(m)
	}
	a.mu.Unlock()
	return a.menuState()
}

// Focus highlights the named button.
func (a *App) Focus(name string) (MenuState, error) {
	if err := a.currentMenu().Focus(name); err != nil {
		return a.menuState(), err
	}
	return a.menuState(), nil
}

// Blur removes focus from the focused button.
func (a *App) Blur() MenuState {
	a.currentMenu().Blur()
	return a.menuState()
}

// Select activates the named button and hides the menu.
func (a *App) Select(name string) (MenuState, error) {
	a.mu.Lock()
	a.stopRevealLocked()
	m := a.menu
	a.mu.Unlock()

	if _, err := m.Select(name); err != nil {
		return a.menuState(), err
	}
	return a.menuState(), nil
}

// RevealFrame returns the current reveal animation state.
func (a *App) RevealFrame() menu.Frame {
	return a.currentMenu().Reveal().Snapshot()
}

func (a *App) currentMenu() *menu.Menu {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.menu
}

func (a *App) menuState() MenuState {
	m := a.currentMenu()
	st := MenuState{Shown: m.Active(), Buttons: []ButtonData{}}
	if f := m.Focused(); f != nil {
		st.Focused = f.Name
	}
	for _, b := range m.Buttons() {
		mat, _ := m.Material(b.Name)
		st.Buttons = append(st.Buttons, ButtonData{Name: b.Name, Label: b.Label, Material: mat})
	}
	return st
}

func (a *App) startRevealLocked(m *menu.Menu) {
	a.stopRevealLocked()
	parent := a.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	a.cancelReveal = cancel
	go func() {
		defer cancel()
		err := m.Reveal().Run(ctx, revealInterval, func(f menu.Frame) {
			a.emit(EventRevealFrame, f)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn("reveal stopped", "err", err)
		}
	}()
}

func (a *App) stopRevealLocked() {
	if a.cancelReveal != nil {
		a.cancelReveal()
		a.cancelReveal = nil
	}
}
