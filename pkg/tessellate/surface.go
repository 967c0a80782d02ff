// Package tessellate produces flat vertex arrays for scene nodes: surfaces
// lifted from a 2D lattice, paths swept into ribbons, cones and polygons,
// and meshes of kernel solids.
package tessellate

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float32, n int) []float32 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float32{a}
	}
	out := make([]float32, n)
	step := (b - a) / float32(n-1)
	for i := range out {
		out[i] = a + step*float32(i)
	}
	out[n-1] = b
	return out
}

// Surface is a quadrilateral mesh: an Nu by Nv grid of points, stored
// row-major by u.
type Surface struct {
	Nu, Nv int
	P      []mgl32.Vec3
}

func (s Surface) at(i, j int) mgl32.Vec3 { return s.P[i*s.Nv+j] }

// Lift maps every lattice point (u[i], v[j]) through f. A nil f places the
// point at (u, v, 0).
func Lift(u, v []float32, f func(x, y float32) mgl32.Vec3) Surface {
	s := Surface{Nu: len(u), Nv: len(v), P: make([]mgl32.Vec3, 0, len(u)*len(v))}
	for _, x := range u {
		for _, y := range v {
			if f == nil {
				s.P = append(s.P, mgl32.Vec3{x, y, 0})
			} else {
				s.P = append(s.P, f(x, y))
			}
		}
	}
	return s
}

// Height adapts a height field z = h(x, y) for Lift.
func Height(h func(x, y float32) float32) func(x, y float32) mgl32.Vec3 {
	return func(x, y float32) mgl32.Vec3 { return mgl32.Vec3{x, y, h(x, y)} }
}

// Spherical maps (polar q, azimuth p) onto the unit sphere.
func Spherical(q, p float32) mgl32.Vec3 {
	return mgl32.Vec3{
		math32.Sin(q) * math32.Cos(p),
		math32.Sin(q) * math32.Sin(p),
		math32.Cos(q),
	}
}

// Bridge joins two paths of equal length into a two-column surface.
// The longer path is cut to the shorter.
func Bridge(a, b []mgl32.Vec3) Surface {
	n := min(len(a), len(b))
	s := Surface{Nu: n, Nv: 2, P: make([]mgl32.Vec3, 0, 2*n)}
	for i := 0; i < n; i++ {
		s.P = append(s.P, a[i], b[i])
	}
	return s
}

// Gridlines returns the segments joining neighboring points of s, as a
// line list.
func Gridlines(s Surface) []float32 {
	var out []float32
	for j := 0; j < s.Nv; j++ {
		for i := 0; i+1 < s.Nu; i++ {
			out = appendVecs(out, s.at(i, j), s.at(i+1, j))
		}
	}
	for i := 0; i < s.Nu; i++ {
		for j := 0; j+1 < s.Nv; j++ {
			out = appendVecs(out, s.at(i, j), s.at(i, j+1))
		}
	}
	return out
}

// Triangulate splits every quad of s into four triangles around its
// center, as a triangle list.
func Triangulate(s Surface) []float32 {
	if s.Nu < 2 || s.Nv < 2 {
		return nil
	}
	out := make([]float32, 0, (s.Nu-1)*(s.Nv-1)*4*9)
	for i := 0; i+1 < s.Nu; i++ {
		for j := 0; j+1 < s.Nv; j++ {
			a := s.at(i, j)
			b := s.at(i, j+1)
			c := s.at(i+1, j+1)
			d := s.at(i+1, j)
			e := a.Add(b).Add(c).Add(d).Mul(0.25)
			out = appendVecs(out, e, a, b, e, b, c, e, c, d, e, d, a)
		}
	}
	return out
}

// Reach fans the segments of path out to a single point.
func Reach(path []mgl32.Vec3, point mgl32.Vec3) []float32 {
	var out []float32
	for i := 0; i+1 < len(path); i++ {
		out = appendVecs(out, path[i], path[i+1], point)
	}
	return out
}

// Circle returns num+1 points on the unit circle in the xy plane; the last
// repeats the first.
func Circle(num int) []mgl32.Vec3 {
	if num <= 0 {
		return nil
	}
	out := make([]mgl32.Vec3, num+1)
	for i, t := range Linspace(0, 2*math32.Pi, num+1) {
		out[i] = mgl32.Vec3{math32.Cos(t), math32.Sin(t), 0}
	}
	out[num] = out[0]
	return out
}

// Offset moves every point of path by d.
func Offset(path []mgl32.Vec3, d mgl32.Vec3) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(path))
	for i, p := range path {
		out[i] = p.Add(d)
	}
	return out
}

// Scale multiplies every point of path by k.
func Scale(path []mgl32.Vec3, k float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(path))
	for i, p := range path {
		out[i] = p.Mul(k)
	}
	return out
}

// Cone is a unit cone with its apex at (0, 0, 1), as a triangle list.
func Cone(sides int) []float32 {
	return Reach(Circle(sides), mgl32.Vec3{0, 0, 1})
}

// RegularPolygon is a filled unit polygon in the xy plane, as a triangle
// list fanned from the center.
func RegularPolygon(sides int) []float32 {
	if sides < 3 {
		return nil
	}
	return Reach(Circle(sides), mgl32.Vec3{})
}

// PolygonalAnnulus is the ring between two concentric polygons.
func PolygonalAnnulus(sides int, inner, outer float32) []float32 {
	if sides < 3 {
		return nil
	}
	ring := Circle(sides)
	return Triangulate(Bridge(Scale(ring, outer), Scale(ring, inner)))
}

// Polyline flattens a path for a line strip node.
func Polyline(path []mgl32.Vec3) []float32 {
	return appendVecs(nil, path...)
}

func appendVecs(out []float32, vs ...mgl32.Vec3) []float32 {
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}
