package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// degenerate is the cross-product length under which a triangle has no
// usable normal.
const degenerate = 1e-12

// ComputeNormals returns flat per-face normals for a triangle node: every
// vertex of a triangle gets the unit normal of (b-a) x (c-a). Degenerate
// triangles get the zero vector. Other kinds have no normals.
func (n Node) ComputeNormals() []float32 {
	if n.kind != Triangle {
		return nil
	}
	return append([]float32(nil), n.positions.faceNormals()...)
}

// faceNormals computes the normals once per array. The result must not be
// modified.
func (a *floatArray) faceNormals() []float32 {
	if a == nil {
		return nil
	}
	a.normalsOnce.Do(func() {
		a.normals = flatNormals(a.data)
	})
	return a.normals
}

func flatNormals(pos []float32) []float32 {
	tris := len(pos) / 9
	out := make([]float32, tris*9)
	for t := 0; t < tris; t++ {
		p := pos[t*9:]
		a := mgl32.Vec3{p[0], p[1], p[2]}
		b := mgl32.Vec3{p[3], p[4], p[5]}
		c := mgl32.Vec3{p[6], p[7], p[8]}
		cross := b.Sub(a).Cross(c.Sub(a))
		l := math32.Sqrt(cross.Dot(cross))
		if l < degenerate {
			continue
		}
		nrm := mgl32.Vec3{cross[0] / l, cross[1] / l, cross[2] / l}
		for v := 0; v < 3; v++ {
			copy(out[t*9+v*3:], nrm[:])
		}
	}
	return out
}
