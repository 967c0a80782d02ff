//go:build manifold

package manifold

import (
	"math"
	"testing"

	"github.com/chazu/mirage/pkg/kernel"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New(32)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

func must(s kernel.Solid, err error) kernel.Solid {
	if err != nil {
		panic(err)
	}
	return s
}

func near(t *testing.T, what string, got, want [3]float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("%s[%d] = %f, want %f", what, i, got[i], want[i])
		}
	}
}

func TestBox(t *testing.T) {
	k := mustNew(t)
	min, max := must(k.Box(10, 20, 30)).BoundingBox()
	near(t, "Box min", min, [3]float64{-5, -10, -15})
	near(t, "Box max", max, [3]float64{5, 10, 15})
}

func TestCylinder(t *testing.T) {
	k := mustNew(t)
	min, max := must(k.Cylinder(20, 5)).BoundingBox()
	if math.Abs(min[2]+10) > 0.01 || math.Abs(max[2]-10) > 0.01 {
		t.Errorf("Cylinder Z range = [%f, %f], want ~[-10, 10]", min[2], max[2])
	}
	for i := 0; i < 2; i++ {
		if min[i] > -4.5 || max[i] < 4.5 {
			t.Errorf("Cylinder axis %d range = [%f, %f]", i, min[i], max[i])
		}
	}
}

func TestSphere(t *testing.T) {
	k := mustNew(t)
	min, max := must(k.Sphere(2)).BoundingBox()
	for i := 0; i < 3; i++ {
		if min[i] < -2.01 || max[i] > 2.01 || max[i] < 1.9 {
			t.Errorf("Sphere axis %d range = [%f, %f]", i, min[i], max[i])
		}
	}
}

func TestBadDimension(t *testing.T) {
	k := mustNew(t)
	if _, err := k.Box(1, 0, 1); err == nil {
		t.Error("Box with zero side should fail")
	}
}

func TestDifference(t *testing.T) {
	k := mustNew(t)
	result := k.Difference(must(k.Box(10, 10, 10)), must(k.Cylinder(20, 3)))
	min, max := result.BoundingBox()
	near(t, "Difference min", min, [3]float64{-5, -5, -5})
	near(t, "Difference max", max, [3]float64{5, 5, 5})
}

func TestTranslate(t *testing.T) {
	k := mustNew(t)
	min, max := k.Translate(must(k.Box(10, 10, 10)), 100, 200, 300).BoundingBox()
	near(t, "Translate min", min, [3]float64{95, 195, 295})
	near(t, "Translate max", max, [3]float64{105, 205, 305})
}

func TestToMesh(t *testing.T) {
	k := mustNew(t)
	mesh, err := k.ToMesh(must(k.Box(10, 10, 10)))
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if mesh.TriangleCount() < 12 {
		t.Errorf("ToMesh() triangle count = %d, want >= 12", mesh.TriangleCount())
	}
	if len(mesh.Normals) != len(mesh.Vertices) {
		t.Errorf("ToMesh() normals length = %d, vertices length = %d, want equal",
			len(mesh.Normals), len(mesh.Vertices))
	}
}
