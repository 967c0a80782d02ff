// Package kernel defines the solid-modeling interface procedural scenes
// are built from. A kernel turns constructive solids into triangle meshes
// that become scene nodes.
package kernel

import "github.com/pkg/errors"

// ErrBadDimension is returned for solids with non-positive sizes.
var ErrBadDimension = errors.New("solid dimensions must be positive")

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds solids and meshes them. Primitives are centered on the
// origin.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
