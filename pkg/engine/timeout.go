package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/holodemo/arcmesh/pkg/graph"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrSuperseded means a later Evaluate call started first.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
	// ErrTimeout means the interpreter did not finish within the limit.
	ErrTimeout = errors.New("evaluation timed out")
)

type evalResult struct {
	graph  *graph.DesignGraph
	errors []EvalError
	err    error
}

func (e *Engine) latest() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// await waits for evaluation gen to report on ch. A result arriving after a
// newer evaluation began is dropped with ErrSuperseded. After a timeout the
// interpreter goroutine keeps running and its late send lands in the
// buffered channel unread.
func (e *Engine) await(ch <-chan evalResult, gen uint64) (*graph.DesignGraph, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	var res evalResult
	select {
	case res = <-ch:
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
	if e.latest() != gen {
		return nil, nil, ErrSuperseded
	}
	return res.graph, res.errors, res.err
}
