package tessellate

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/mirage/pkg/geometry"
	"github.com/chazu/mirage/pkg/scene"
)

// Ground is the reference grid drawn as a scene's root: a line node
// covering [-extent, extent] on both axes.
func Ground(extent float32, divisions int) geometry.Node {
	if extent <= 0 || divisions <= 0 {
		return geometry.Node{}
	}
	ticks := Linspace(-extent, extent, divisions+1)
	verts := Gridlines(Lift(ticks, ticks, nil))
	return geometry.New(verts).
		WithType(geometry.Line).
		WithColors(SolidColors(len(verts)/3, [4]float32{0.5, 0.5, 0.5, 1}))
}

// colored builds a node of the given kind with one color per vertex.
func colored(verts []float32, kind geometry.PrimitiveKind, colors func(n int) []float32) geometry.Node {
	return geometry.New(verts).WithType(kind).WithColors(colors(len(verts) / 3))
}

func solid(rgba [4]float32) func(int) []float32 {
	return func(n int) []float32 { return SolidColors(n, rgba) }
}

func scaled(verts []float32, k float32) []float32 {
	out := make([]float32, len(verts))
	for i, v := range verts {
		out[i] = v * k
	}
	return out
}

func newScene(name string, nodes ...geometry.Node) *scene.Scene {
	s := scene.New(name)
	s.SetNodes(nodes)
	return s
}

// Examples returns the demonstration scenes shown when no script has run.
func Examples() []*scene.Scene {
	return []*scene.Scene{
		ExampleGridlines(),
		ExampleLattice(1),
		ExampleCone(),
		ExampleCylinder(),
		ExampleHelix(),
		ExampleSphere(),
		ExampleCheckerQuad(),
		ExamplePlotAxes(0.75),
	}
}

func ExampleGridlines() *scene.Scene {
	x := Linspace(-1, 1, 24)
	return newScene("Gridlines", colored(Gridlines(Lift(x, x, nil)), geometry.Line, solid(Black)))
}

// ExampleLattice is the paraboloid z = x^2 + y^2 over a lattice scaled
// by t.
func ExampleLattice(t float32) *scene.Scene {
	x := scaled(Linspace(-1, 1, 14), t)
	y := scaled(Linspace(-1, 1, 11), t)
	verts := Triangulate(Lift(x, y, Height(func(x, y float32) float32 { return x*x + y*y })))
	return newScene("Triangular lattice", geometry.New(verts).WithColors(HeightColors(verts)))
}

func ExampleCone() *scene.Scene {
	verts := Cone(24)
	body := geometry.New(verts).WithColors(HeightColors(verts)).WithPosition(0, 0, 0.50)
	outline := colored(verts, geometry.LineStrip, solid(Black)).WithPosition(0, 0, 0.51)
	return newScene("Cone", body, outline)
}

func ExampleCylinder() *scene.Scene {
	ring := Circle(10)
	top := Offset(ring, mgl32.Vec3{0, 0, 1})
	bottom := Offset(ring, mgl32.Vec3{0, 0, -1})
	return newScene("Cylinder", colored(Triangulate(Bridge(top, bottom)), geometry.Triangle, CycleColors))
}

func ExampleHelix() *scene.Scene {
	ts := Linspace(-8*math32.Pi, 8*math32.Pi, 300)
	outer := make([]mgl32.Vec3, len(ts))
	inner := make([]mgl32.Vec3, len(ts))
	for i, t := range ts {
		outer[i] = mgl32.Vec3{math32.Cos(t), math32.Sin(t), t * 0.1}
		inner[i] = mgl32.Vec3{outer[i][0] * 0.8, outer[i][1] * 0.8, outer[i][2] + 0.1}
	}
	return newScene("Helix", colored(Triangulate(Bridge(outer, inner)), geometry.Triangle, CycleColors))
}

func ExampleSphere() *scene.Scene {
	q := Linspace(0, math32.Pi, 20)
	p := Linspace(0, 2*math32.Pi, 20)
	return newScene("Sphere", colored(Triangulate(Lift(q, p, Spherical)), geometry.Triangle, CycleColors))
}

// ExampleCheckerQuad is a textured unit square.
func ExampleCheckerQuad() *scene.Scene {
	corners := Linspace(-1, 1, 2)
	verts := Triangulate(Lift(corners, corners, nil))
	n := colored(verts, geometry.Triangle, solid([4]float32{1, 1, 1, 1})).
		WithImageTexture(CheckerImage(64, 64, 8))
	return newScene("Checker quad", n)
}

// ExamplePlotAxes places three axis rods, an origin marker and a checkered
// floor. t scales the origin marker.
func ExamplePlotAxes(t float32) *scene.Scene {
	ring := Scale(Circle(90), 0.25)
	rod := Triangulate(Bridge(Offset(ring, mgl32.Vec3{0, 0, 10}), ring))

	x := Linspace(0, 10, 30)
	floor := Triangulate(Lift(x, x, nil))
	q := Linspace(0, math32.Pi, 15)
	p := Linspace(0, 2*math32.Pi, 31)
	ball := scaled(Triangulate(Lift(q, p, Spherical)), t)

	checker := func(dark, light [4]float32) func(int) []float32 {
		return func(n int) []float32 { return Checkerboard(n, dark, light) }
	}

	xaxis := colored(rod, geometry.Triangle, solid([4]float32{1, 0, 0, 1})).
		WithRotation(0, 1, 0, math32.Pi/2)
	yaxis := colored(rod, geometry.Triangle, solid([4]float32{0, 1, 0, 1})).
		WithRotation(1, 0, 0, -math32.Pi/2)
	zaxis := colored(rod, geometry.Triangle, solid([4]float32{0, 0, 1, 1}))
	origin := colored(ball, geometry.Triangle, checker([4]float32{0.5, 0, 0.7, 1}, [4]float32{0.7, 0, 0.5, 1}))
	plane := colored(floor, geometry.Triangle, checker(Black, [4]float32{1, 1, 1, 1}))

	nodes := []geometry.Node{xaxis, yaxis, zaxis, origin, plane}
	for i := range nodes {
		nodes[i].SetPosition(-5, -5, 0)
	}
	return newScene("Plot axes", nodes...)
}
