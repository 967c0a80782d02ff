// Package script evaluates Mirage scene scripts. It wraps zygomys in a
// sandboxed environment and produces the scenes a script builds.
package script

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/pkg/errors"

	"github.com/chazu/mirage/pkg/geometry"
	"github.com/chazu/mirage/pkg/kernel"
	"github.com/chazu/mirage/pkg/kernel/sdfx"
	"github.com/chazu/mirage/pkg/logx"
	"github.com/chazu/mirage/pkg/scene"
	"github.com/chazu/mirage/pkg/tessellate"
	"github.com/chazu/mirage/pkg/variant"
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

// Result is the output of a successful evaluation.
type Result struct {
	// Scenes are the scenes passed to show, or every scene built when the
	// script never called show.
	Scenes []*scene.Scene
	// Shown reports whether the script called show.
	Shown bool
	// Value is the printed form of the last expression.
	Value string
}

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	Timeout         time.Duration
	Kernel          kernel.Kernel
	GroundExtent    float32
	GroundDivisions int
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	params     map[string]variant.Variant

	timeout time.Duration
	kernel  kernel.Kernel
	ground  geometry.Node
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Kernel == nil {
		opts.Kernel = sdfx.New(0)
	}
	return &Engine{
		params:  make(map[string]variant.Variant),
		timeout: opts.Timeout,
		kernel:  opts.Kernel,
		ground:  tessellate.Ground(opts.GroundExtent, opts.GroundDivisions),
	}
}

// SetParam records a value read back by (param name) and by controls of
// the same name. Values survive re-evaluation.
func (e *Engine) SetParam(name string, v variant.Variant) {
	e.mu.Lock()
	e.params[name] = v
	e.mu.Unlock()
}

// Params returns a copy of the values set with SetParam.
func (e *Engine) Params() map[string]variant.Variant {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]variant.Variant, len(e.params))
	for k, v := range e.params {
		out[k] = v
	}
	return out
}

// Evaluate runs source and returns the scenes it built.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, superseded, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess := &session{
		ctx:    ctx,
		kernel: e.kernel,
		ground: e.ground,
		params: e.Params(),
	}

	ch := make(chan evalResult, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: errors.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := evaluate(source, sess)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	res, evalErrs, err := e.wait(ch, gen)
	log := logx.Logger()
	switch {
	case err != nil:
		log.Warn("evaluation failed", "err", err)
	case len(evalErrs) > 0:
		log.Info("evaluation finished with errors", "errors", len(evalErrs), "elapsed", time.Since(start))
	default:
		log.Info("evaluation finished", "scenes", len(res.Scenes), "elapsed", time.Since(start))
	}
	return res, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func evaluate(source string, sess *session) (*Result, []EvalError, error) {
	// Empty source is a valid program that builds nothing.
	if strings.TrimSpace(source) == "" {
		return &Result{}, nil, nil
	}

	// Sandbox mode keeps user code away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, sess)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	res := &Result{Shown: sess.show, Scenes: sess.built}
	if sess.show {
		res.Scenes = dedupe(sess.shown)
	}
	res.Value = printed(last)
	return res, nil, nil
}

func dedupe(scenes []*scene.Scene) []*scene.Scene {
	seen := make(map[*scene.Scene]bool, len(scenes))
	out := scenes[:0:0]
	for _, s := range scenes {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
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
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
