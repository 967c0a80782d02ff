package sdfx

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/chazu/mirage/pkg/kernel"
)

const testCells = 24

// must unwraps a primitive known to be valid.
func must(s kernel.Solid, err error) kernel.Solid {
	if err != nil {
		panic(err)
	}
	return s
}

func TestBox(t *testing.T) {
	k := New(testCells)
	box := must(k.Box(2, 1, 0.5))
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Vertices)%9 != 0 {
		t.Fatalf("vertices length %d is not whole triangles", len(mesh.Vertices))
	}
}

func TestSphere(t *testing.T) {
	k := New(testCells)
	sphere := must(k.Sphere(1))
	min, max := sphere.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]+1) > 0.01 || math.Abs(max[i]-1) > 0.01 {
			t.Errorf("axis %d bounds = [%f, %f], want [-1, 1]", i, min[i], max[i])
		}
	}
	mesh, err := k.ToMesh(sphere)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	// Marching cubes places vertices on the surface to within a cell.
	for i := 0; i < len(mesh.Vertices); i += 3 {
		v := mesh.Vertices[i : i+3]
		r := math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]))
		if math.Abs(r-1) > 0.1 {
			t.Fatalf("vertex %d at radius %f", i/3, r)
		}
	}
}

func TestCylinder(t *testing.T) {
	k := New(testCells)
	cyl := must(k.Cylinder(2, 0.5))
	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
}

func TestBadDimensions(t *testing.T) {
	k := New(testCells)
	if _, err := k.Box(1, 0, 1); !errors.Is(err, kernel.ErrBadDimension) {
		t.Errorf("Box(1, 0, 1) error = %v, want ErrBadDimension", err)
	}
	if _, err := k.Sphere(-1); !errors.Is(err, kernel.ErrBadDimension) {
		t.Errorf("Sphere(-1) error = %v, want ErrBadDimension", err)
	}
	if _, err := k.Cylinder(math.NaN(), 1); !errors.Is(err, kernel.ErrBadDimension) {
		t.Errorf("Cylinder(NaN, 1) error = %v, want ErrBadDimension", err)
	}
	if _, err := k.ToMesh(nil); err == nil {
		t.Error("ToMesh(nil) should fail")
	}
}

func TestDifference(t *testing.T) {
	k := New(testCells)
	box := must(k.Box(1, 1, 1))
	cyl := must(k.Cylinder(1.2, 0.2))
	diff, err := k.ToMesh(k.Difference(box, cyl))
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diff.IsEmpty() {
		t.Fatal("difference mesh is empty")
	}
}

func TestUnion(t *testing.T) {
	k := New(testCells)
	box1 := must(k.Box(1, 1, 1))
	box2 := k.Translate(must(k.Box(1, 1, 1)), 0.6, 0, 0)
	min, max := k.Union(box1, box2).BoundingBox()
	if math.Abs(min[0]+0.5) > 0.01 || math.Abs(max[0]-1.1) > 0.01 {
		t.Errorf("union X bounds = [%f, %f], want [-0.5, 1.1]", min[0], max[0])
	}
}

func TestTranslate(t *testing.T) {
	k := New(testCells)
	box := must(k.Box(10, 10, 10))
	translated := k.Translate(box, 100, 200, 300)

	min, max := translated.BoundingBox()

	const tol = 0.5
	expectMin := [3]float64{95, 195, 295}
	expectMax := [3]float64{105, 205, 305}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestIntersection(t *testing.T) {
	k := New(testCells)
	box1 := must(k.Box(1, 1, 1))
	box2 := k.Translate(must(k.Box(1, 1, 1)), 0.5, 0, 0)
	mesh, err := k.ToMesh(k.Intersection(box1, box2))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("intersection mesh is empty")
	}
}

func TestRotate(t *testing.T) {
	k := New(testCells)
	box := must(k.Box(100, 10, 10))

	// A long box along X rotated 90 degrees around Z extends along Y instead.
	min, max := k.Rotate(box, 0, 0, 90).BoundingBox()

	const tol = 1.0
	if x := max[0] - min[0]; math.Abs(x-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", x)
	}
	if y := max[1] - min[1]; math.Abs(y-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", y)
	}
}

func TestNewDefaultsCells(t *testing.T) {
	if k := New(0); k.cells != DefaultMeshCells {
		t.Errorf("New(0).cells = %d, want %d", k.cells, DefaultMeshCells)
	}
}
