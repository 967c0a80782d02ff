package bridge

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/chazu/mirage/pkg/geometry"
	"github.com/chazu/mirage/pkg/gpu"
	"github.com/chazu/mirage/pkg/logx"
	"github.com/chazu/mirage/pkg/scene"
)

// DrawItem is everything the command encoder needs to draw one node. The
// buffers are owned by the node.
type DrawItem struct {
	Node        int // RootNode for the root
	Topology    gputypes.PrimitiveTopology
	VertexCount int
	Vertices    gpu.Buffer
	Colors      gpu.Buffer // nil without per-vertex colors
	Normals     gpu.Buffer // nil for non-triangle kinds
	Texture     gpu.Texture
	Model       mgl32.Mat4
}

// Diagnostic explains why a node was left out of a frame.
type Diagnostic struct {
	Node    int
	Message string
	Err     error
}

// FrameResult is the outcome of one frame for the current scene.
type FrameResult struct {
	Scene       string
	DrawItems   []DrawItem
	Diagnostics []Diagnostic
}

// Renderer turns the current scene of a library into draw items, once per
// frame. It must be driven from the thread owning the device.
type Renderer struct {
	lib *scene.Library

	mu        sync.Mutex
	validated map[geometry.Versions]string
	reported  map[geometry.Versions]bool
}

func NewRenderer(lib *scene.Library) *Renderer {
	return &Renderer{
		lib:       lib,
		validated: make(map[geometry.Versions]string),
		reported:  make(map[geometry.Versions]bool),
	}
}

// Frame validates and realizes every node of the current scene, root
// first. Nodes that fail either step are reported and skipped; the rest
// of the frame is unaffected. A concurrent Publish waits for the frame.
func (r *Renderer) Frame(dev gpu.Device) FrameResult {
	var res FrameResult
	r.lib.Draw(func(sc *scene.Scene) {
		if sc != nil {
			res = r.frame(sc, dev)
		}
	})
	return res
}

func (r *Renderer) frame(sc *scene.Scene, dev gpu.Device) FrameResult {
	res := FrameResult{Scene: sc.Name}

	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[geometry.Versions]bool)

	draw := func(idx int, n geometry.Node) {
		key := n.Versions()
		seen[key] = true
		msg, ok := r.validated[key]
		if !ok {
			if err := n.Validate(); err != nil {
				msg = err.Error()
			}
			r.validated[key] = msg
		}
		if msg != "" {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Node: idx, Message: msg})
			if !r.reported[key] {
				r.reported[key] = true
				logx.Logger().Debug("skipping invalid node", "scene", sc.Name, "node", idx, "reason", msg)
			}
			return
		}
		if n.NumVertices() == 0 {
			return
		}
		item, err := realize(idx, n, dev)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Node: idx, Message: err.Error(), Err: err})
			logx.Logger().Warn("skipping node", "scene", sc.Name, "node", idx, "err", err)
			return
		}
		res.DrawItems = append(res.DrawItems, item)
	}

	draw(RootNode, sc.Root())
	for i, n := range sc.Nodes() {
		draw(i, n)
	}

	for key := range r.validated {
		if !seen[key] {
			delete(r.validated, key)
			delete(r.reported, key)
		}
	}
	return res
}

func realize(idx int, n geometry.Node, dev gpu.Device) (DrawItem, error) {
	item := DrawItem{
		Node:        idx,
		Topology:    n.Type().Topology(),
		VertexCount: n.NumVertices(),
		Model:       n.ModelMatrix(),
	}
	var err error
	if item.Vertices, err = n.VertexBuffer(dev); err != nil {
		return item, err
	}
	if item.Colors, err = n.ColorBuffer(dev); err != nil {
		return item, err
	}
	if item.Normals, err = n.NormalBuffer(dev); err != nil {
		return item, err
	}
	if item.Texture, err = n.MakeTexture(dev); err != nil {
		return item, err
	}
	return item, nil
}
