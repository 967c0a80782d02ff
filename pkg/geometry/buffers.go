package geometry

import (
	"github.com/chazu/mirage/pkg/gpu"
)

// VertexBuffer returns the position buffer on dev, realizing it on first
// use. The buffer is reused until the positions change; it is nil for a
// node without vertices.
func (n Node) VertexBuffer(dev gpu.Device) (gpu.Buffer, error) {
	a := n.positions
	if a == nil {
		return nil, nil
	}
	return floatBuffer(&a.buf, dev, a.version, "vertices", a.data)
}

// ColorBuffer returns the color buffer on dev, or nil when the node has
// no colors.
func (n Node) ColorBuffer(dev gpu.Device) (gpu.Buffer, error) {
	a := n.colors
	if a == nil {
		return nil, nil
	}
	return floatBuffer(&a.buf, dev, a.version, "colors", a.data)
}

// NormalBuffer returns the face normal buffer on dev. Only triangle nodes
// have one.
func (n Node) NormalBuffer(dev gpu.Device) (gpu.Buffer, error) {
	a := n.positions
	if a == nil || n.kind != Triangle {
		return nil, nil
	}
	return floatBuffer(&a.normalBuf, dev, a.version, "normals", a.faceNormals())
}

// MakeTexture returns the texture on dev, or nil when the node has none.
func (n Node) MakeTexture(dev gpu.Device) (gpu.Texture, error) {
	if n.texture == nil {
		return nil, nil
	}
	return n.texture.texture(dev)
}

func floatBuffer(s *slot, dev gpu.Device, version uint64, label string, data []float32) (gpu.Buffer, error) {
	res, err := s.get(dev, version, func() (gpu.Resource, error) {
		return dev.NewBuffer(label, gpu.Float32Bytes(data), gpu.VertexUsage)
	})
	if err != nil {
		return nil, err
	}
	return res.(gpu.Buffer), nil
}

// Realized reports which of n's arrays currently hold a GPU resource.
type Realized struct {
	Vertices, Colors, Normals, Texture bool
}

func (n Node) Realized() Realized {
	var r Realized
	if n.positions != nil {
		r.Vertices = n.positions.buf.realized()
		r.Normals = n.positions.normalBuf.realized()
	}
	if n.colors != nil {
		r.Colors = n.colors.buf.realized()
	}
	if n.texture != nil {
		r.Texture = n.texture.tex.realized()
	}
	return r
}
