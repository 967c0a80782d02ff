package manifold

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/chazu/mirage/pkg/kernel"
)

// DefaultSegments is the circular resolution used for spheres and
// cylinders.
const DefaultSegments = 48

// ErrUnavailable is returned by New when the binary was built without the
// manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

func positive(vals ...float64) error {
	for _, v := range vals {
		if !(v > 0) {
			return errors.Wrapf(kernel.ErrBadDimension, "got %g", v)
		}
	}
	return nil
}

// expand turns an indexed mesh into the flat triangle layout of
// kernel.Mesh.
func expand(props []float32, stride int, indices []uint32) (*kernel.Mesh, error) {
	numVert := len(props) / stride
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(indices)*3),
		Normals:  make([]float32, 0, len(indices)*3),
	}
	at := func(i uint32) mgl32.Vec3 {
		p := props[int(i)*stride:]
		return mgl32.Vec3{p[0], p[1], p[2]}
	}
	for t := 0; t+2 < len(indices); t += 3 {
		tri := indices[t : t+3]
		for _, i := range tri {
			if int(i) >= numVert {
				return nil, errors.Errorf("manifold: index %d out of range (%d vertices)", i, numVert)
			}
		}
		a, b, c := at(tri[0]), at(tri[1]), at(tri[2])
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Len(); l > 1e-12 {
			n = n.Mul(1 / l)
		}
		for _, v := range []mgl32.Vec3{a, b, c} {
			m.Vertices = append(m.Vertices, v[0], v[1], v[2])
			m.Normals = append(m.Normals, n[0], n[1], n[2])
		}
	}
	return m, nil
}
