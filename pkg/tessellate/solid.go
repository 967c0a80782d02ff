package tessellate

import (
	"github.com/pkg/errors"

	"github.com/chazu/mirage/pkg/geometry"
	"github.com/chazu/mirage/pkg/kernel"
)

// FromMesh turns a kernel mesh into a triangle node. The node derives its
// own normals from the positions; they agree with m.Normals.
func FromMesh(m *kernel.Mesh) geometry.Node {
	if m == nil {
		return geometry.Node{}
	}
	return geometry.New(m.Vertices)
}

// Solid meshes s with k and returns it as a triangle node.
func Solid(k kernel.Kernel, s kernel.Solid) (geometry.Node, error) {
	m, err := k.ToMesh(s)
	if err != nil {
		return geometry.Node{}, errors.Wrap(err, "tessellate")
	}
	return FromMesh(m), nil
}
