// Package bridge is the narrow surface the render loop and the UI reach
// scenes through. Callers hold integer handles, never scene pointers, and
// every lookup is checked.
package bridge

import (
	"github.com/pkg/errors"

	"github.com/chazu/mirage/pkg/geometry"
	"github.com/chazu/mirage/pkg/gpu"
	"github.com/chazu/mirage/pkg/param"
	"github.com/chazu/mirage/pkg/scene"
	"github.com/chazu/mirage/pkg/variant"
)

// SceneHandle names a scene of the library by index.
type SceneHandle int

// NullScene is the handle of no scene.
const NullScene SceneHandle = -1

// RootNode is the node index addressing a scene's root.
const RootNode = -1

var (
	ErrNullHandle = errors.New("null scene handle")
	// ErrOutOfRange is shared with package scene so either can be matched.
	ErrOutOfRange = scene.ErrOutOfRange
)

// API dispatches handle-based calls to the scenes of a library.
type API struct {
	lib *scene.Library
}

func New(lib *scene.Library) *API {
	return &API{lib: lib}
}

func (a *API) NumScenes() int { return a.lib.Len() }

// Scene returns the handle of scene i.
func (a *API) Scene(i int) (SceneHandle, error) {
	if _, err := a.lib.At(i); err != nil {
		return NullScene, err
	}
	return SceneHandle(i), nil
}

// Current returns the handle of the scene on screen, or NullScene.
func (a *API) Current() SceneHandle {
	if a.lib.Current() == nil {
		return NullScene
	}
	return SceneHandle(a.lib.CurrentIndex())
}

func (a *API) scene(h SceneHandle) (*scene.Scene, error) {
	if h == NullScene {
		return nil, ErrNullHandle
	}
	return a.lib.At(int(h))
}

func (a *API) node(h SceneHandle, i int) (geometry.Node, error) {
	s, err := a.scene(h)
	if err != nil {
		return geometry.Node{}, err
	}
	if i == RootNode {
		return s.Root(), nil
	}
	return s.Node(i)
}

func (a *API) Name(h SceneHandle) (string, error) {
	s, err := a.scene(h)
	if err != nil {
		return "", err
	}
	return s.Name, nil
}

// NumNodes counts the scene's nodes, not including the root.
func (a *API) NumNodes(h SceneHandle) (int, error) {
	s, err := a.scene(h)
	if err != nil {
		return 0, err
	}
	return s.NodeCount(), nil
}

func (a *API) Position(h SceneHandle, i int) ([3]float32, error) {
	n, err := a.node(h, i)
	return n.Position(), err
}

func (a *API) Rotation(h SceneHandle, i int) ([4]float32, error) {
	n, err := a.node(h, i)
	if err != nil {
		return [4]float32{}, err
	}
	return n.Rotation(), nil
}

func (a *API) PrimitiveType(h SceneHandle, i int) (geometry.PrimitiveKind, error) {
	n, err := a.node(h, i)
	return n.Type(), err
}

// Validation returns the node's diagnostic, or "" if it can be drawn.
func (a *API) Validation(h SceneHandle, i int) (string, error) {
	n, err := a.node(h, i)
	if err != nil {
		return "", err
	}
	if verr := n.Validate(); verr != nil {
		return verr.Error(), nil
	}
	return "", nil
}

// drawable fetches a node and refuses it when it does not validate.
func (a *API) drawable(h SceneHandle, i int) (geometry.Node, error) {
	n, err := a.node(h, i)
	if err != nil {
		return n, err
	}
	return n, n.Validate()
}

// realizeWith looks up a drawable node and builds one of its resources
// with Publish held off.
func realizeWith[T any](a *API, h SceneHandle, i int, build func(geometry.Node) (T, error)) (out T, err error) {
	a.lib.View(func() {
		var n geometry.Node
		if n, err = a.drawable(h, i); err != nil {
			return
		}
		out, err = build(n)
	})
	return out, err
}

// VertexBuffer returns the node's position buffer. The buffer stays owned
// by the node; callers must not release it.
func (a *API) VertexBuffer(h SceneHandle, i int, dev gpu.Device) (gpu.Buffer, error) {
	return realizeWith(a, h, i, func(n geometry.Node) (gpu.Buffer, error) { return n.VertexBuffer(dev) })
}

func (a *API) ColorBuffer(h SceneHandle, i int, dev gpu.Device) (gpu.Buffer, error) {
	return realizeWith(a, h, i, func(n geometry.Node) (gpu.Buffer, error) { return n.ColorBuffer(dev) })
}

func (a *API) NormalBuffer(h SceneHandle, i int, dev gpu.Device) (gpu.Buffer, error) {
	return realizeWith(a, h, i, func(n geometry.Node) (gpu.Buffer, error) { return n.NormalBuffer(dev) })
}

func (a *API) Texture(h SceneHandle, i int, dev gpu.Device) (gpu.Texture, error) {
	return realizeWith(a, h, i, func(n geometry.Node) (gpu.Texture, error) { return n.MakeTexture(dev) })
}

// TextureInfo describes a node's texture without realizing it.
type TextureInfo struct {
	Present       bool
	Width, Height int
}

func (a *API) TextureInfo(h SceneHandle, i int) (TextureInfo, error) {
	n, err := a.node(h, i)
	if err != nil {
		return TextureInfo{}, err
	}
	img := n.Texture()
	if img == nil {
		return TextureInfo{}, nil
	}
	return TextureInfo{Present: true, Width: img.Width(), Height: img.Height()}, nil
}

// Parameters returns a snapshot of the scene's parameters.
func (a *API) Parameters(h SceneHandle) ([]param.UserParameter, error) {
	s, err := a.scene(h)
	if err != nil {
		return nil, err
	}
	return s.UserParameters(), nil
}

func (a *API) SetParameter(h SceneHandle, name string, v variant.Variant) error {
	s, err := a.scene(h)
	if err != nil {
		return err
	}
	return s.SetParameterValue(name, v)
}
