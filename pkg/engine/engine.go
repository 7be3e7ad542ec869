// Package engine provides the Lisp evaluation engine for arcmesh menus.
// It wraps zygomys in a sandboxed environment and produces a DesignGraph
// from user source code.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/holodemo/arcmesh/pkg/graph"
	"github.com/holodemo/arcmesh/pkg/ringseg"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

// EvalResult bundles the full output of an evaluation for use by UI bindings.
type EvalResult struct {
	Graph    *graph.DesignGraph
	Errors   []EvalError
	Warnings []EvalWarning
}

// OK reports whether evaluation produced a graph without errors.
func (r EvalResult) OK() bool {
	return r.Graph != nil && len(r.Errors) == 0
}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Timeout time.Duration       // defaults to EvalTimeout
	Shape   ringseg.ShapeConfig // starting shape for (segment ...); defaults to ringseg.DefaultShape
	Logger  *slog.Logger        // defaults to slog.Default
}

// Engine wraps the zygomys interpreter for menu evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout time.Duration
	shape   ringseg.ShapeConfig
	log     *slog.Logger
}

// NewEngine creates a new Engine with default options.
func NewEngine() *Engine {
	return New(Options{})
}

// New creates an Engine with the given options.
func New(opts Options) *Engine {
	e := &Engine{
		timeout: opts.Timeout,
		shape:   opts.Shape,
		log:     opts.Logger,
	}
	if e.timeout <= 0 {
		e.timeout = EvalTimeout
	}
	if e.shape == (ringseg.ShapeConfig{}) {
		e.shape = ringseg.DefaultShape()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// Evaluate takes Lisp source code and produces a new DesignGraph.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval failure: returns nil graph + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*graph.DesignGraph, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		g, evalErrs, err := e.evaluate(source)
		ch <- evalResult{graph: g, errors: evalErrs, err: err}
	}()

	g, evalErrs, err := e.await(ch, gen)
	switch {
	case err != nil:
		e.log.Warn("evaluation failed", "generation", gen, "err", err)
	case len(evalErrs) > 0:
		e.log.Debug("evaluation errors", "generation", gen, "errors", len(evalErrs), "first", evalErrs[0].Error())
	default:
		e.log.Debug("evaluated", "generation", gen, "nodes", g.NodeCount(), "roots", len(g.Roots), "elapsed", time.Since(start))
	}
	return g, evalErrs, err
}

// EvaluateAndValidate evaluates source and runs every validation tier on
// the resulting graph. Blocking validation findings become errors without
// line information; advisory ones become warnings.
func (e *Engine) EvaluateAndValidate(source string) (EvalResult, error) {
	g, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return EvalResult{}, err
	}
	if len(evalErrs) > 0 {
		return EvalResult{Errors: evalErrs}, nil
	}

	res := EvalResult{Graph: g}
	vr := graph.ValidateAll(g)
	for _, ve := range vr.Errors {
		res.Errors = append(res.Errors, EvalError{Message: ve.Error()})
	}
	for _, w := range vr.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Message: w.Message, NodeID: w.NodeID})
	}
	return res, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*graph.DesignGraph, []EvalError, error) {
	g := graph.New()
	g.Defaults.Shape = e.shape

	// Empty source is a valid program that produces an empty graph.
	if strings.TrimSpace(source) == "" {
		return g, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := newBuilder(g)
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	b.finish()
	return g, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
