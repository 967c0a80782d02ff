package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/mirage/pkg/bridge"
	"github.com/chazu/mirage/pkg/config"
	"github.com/chazu/mirage/pkg/gpu"
	"github.com/chazu/mirage/pkg/kernel"
	"github.com/chazu/mirage/pkg/kernel/manifold"
	"github.com/chazu/mirage/pkg/kernel/sdfx"
	"github.com/chazu/mirage/pkg/logx"
	"github.com/chazu/mirage/pkg/scene"
	"github.com/chazu/mirage/pkg/script"
	"github.com/chazu/mirage/pkg/tessellate"
	"github.com/chazu/mirage/pkg/variant"
)

// Events emitted to the frontend.
const (
	EventScenesChanged = "scenes:changed"
	EventParamChanged  = "param:changed"
)

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx context.Context
	cfg config.Config

	engine   *script.Engine
	api      *bridge.API
	renderer *bridge.Renderer
	device   *gpu.HostDevice
	library  *scene.Library
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// SceneData summarizes one published scene.
type SceneData struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Nodes   int    `json:"nodes"`
	Current bool   `json:"current"`
}

// ParamData is a scene parameter as shown by the control surface.
type ParamData struct {
	Name    string          `json:"name"`
	Control string          `json:"control"`
	Value   variant.Variant `json:"value"`
	Min     float64         `json:"min"`
	Max     float64         `json:"max"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Scenes []SceneData     `json:"scenes"`
	Errors []EvalErrorData `json:"errors"`
	Value  string          `json:"value"`
}

// DrawData describes one draw call of a frame.
type DrawData struct {
	Node     int         `json:"node"`
	Topology string      `json:"topology"`
	Vertices int         `json:"vertices"`
	Colored  bool        `json:"colored"`
	Lit      bool        `json:"lit"`
	Textured bool        `json:"textured"`
	Model    [16]float32 `json:"model"`
}

// FrameData is the outcome of rendering the current scene once.
type FrameData struct {
	Scene       string     `json:"scene"`
	Draws       []DrawData `json:"draws"`
	Diagnostics []string   `json:"diagnostics"`
	LiveBuffers int        `json:"liveBuffers"`
	UsedBytes   int        `json:"usedBytes"`
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates an App and publishes the example scenes.
func NewAppWithConfig(cfg config.Config) *App {
	lib := scene.NewLibrary()
	a := &App{
		cfg: cfg,
		engine: script.NewEngine(script.Options{
			Timeout:         cfg.Script.Timeout,
			Kernel:          newKernel(cfg.Kernel),
			GroundExtent:    cfg.Ground.Extent,
			GroundDivisions: cfg.Ground.Divisions,
		}),
		api:      bridge.New(lib),
		renderer: bridge.NewRenderer(lib),
		device:   gpu.NewHostDevice(cfg.GPU.BudgetBytes),
		library:  lib,
	}
	lib.Publish(tessellate.Examples())
	return a
}

// newKernel builds the configured solid-modeling backend, falling back to
// sdfx when manifold support was not compiled in.
func newKernel(cfg config.KernelConfig) kernel.Kernel {
	if cfg.Backend == "manifold" {
		k, err := manifold.New(cfg.Segments)
		if err == nil {
			return k
		}
		logx.Logger().Warn("kernel unavailable, using sdfx", "backend", cfg.Backend, "err", err)
	}
	return sdfx.New(cfg.MeshCells)
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// emit sends an event to the frontend once the runtime is up.
func (a *App) emit(name string, data ...interface{}) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, name, data...)
}

// Evaluate runs a script and publishes the scenes it shows. On any error
// the previously published scenes stay on screen.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Scenes: []SceneData{},
		Errors: []EvalErrorData{},
	}

	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		result.Scenes = a.Scenes()
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		result.Scenes = a.Scenes()
		return result
	}

	if len(res.Scenes) > 0 {
		a.library.Publish(res.Scenes)
		a.emit(EventScenesChanged)
	}
	result.Value = res.Value
	result.Scenes = a.Scenes()
	return result
}

// Scenes lists the published scenes.
func (a *App) Scenes() []SceneData {
	list := a.library.Snapshot()
	current := a.library.CurrentIndex()
	out := make([]SceneData, 0, len(list))
	for i, s := range list {
		out = append(out, SceneData{
			Index:   i,
			Name:    s.Name,
			Nodes:   s.NodeCount(),
			Current: i == current,
		})
	}
	return out
}

// SelectScene puts scene i on screen.
func (a *App) SelectScene(i int) error {
	if err := a.library.Select(i); err != nil {
		return err
	}
	a.emit(EventScenesChanged)
	return nil
}

// Parameters returns the controls of the current scene.
func (a *App) Parameters() ([]ParamData, error) {
	params, err := a.api.Parameters(a.api.Current())
	if err != nil {
		return nil, err
	}
	out := make([]ParamData, 0, len(params))
	for _, p := range params {
		out = append(out, ParamData{
			Name:    p.Name,
			Control: p.Control.String(),
			Value:   p.Value,
			Min:     p.Min,
			Max:     p.Max,
		})
	}
	return out, nil
}

// SetParameter stores a value typed into the control surface. The value
// is kept for later evaluations of the script.
func (a *App) SetParameter(name string, value variant.Variant) error {
	if err := a.api.SetParameter(a.api.Current(), name, value); err != nil {
		return errors.Wrapf(err, "set %q", name)
	}
	a.engine.SetParam(name, value)
	a.emit(EventParamChanged, name)
	return nil
}

// Frame renders the current scene on the headless device and reports
// what would be drawn.
func (a *App) Frame() FrameData {
	fr := a.renderer.Frame(a.device)
	out := FrameData{
		Scene:       fr.Scene,
		Draws:       make([]DrawData, 0, len(fr.DrawItems)),
		Diagnostics: make([]string, 0, len(fr.Diagnostics)),
	}
	for _, d := range fr.DrawItems {
		out.Draws = append(out.Draws, DrawData{
			Node:     d.Node,
			Topology: fmt.Sprint(d.Topology),
			Vertices: d.VertexCount,
			Colored:  d.Colors != nil,
			Lit:      d.Normals != nil,
			Textured: d.Texture != nil,
			Model:    [16]float32(d.Model),
		})
	}
	for _, d := range fr.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, fmt.Sprintf("node %d: %s", d.Node, d.Message))
	}
	stats := a.device.Stats()
	out.LiveBuffers = stats.Live
	out.UsedBytes = stats.Used
	return out
}
