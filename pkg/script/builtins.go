package script

import (
	"context"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/pkg/errors"

	"github.com/chazu/mirage/pkg/geometry"
	"github.com/chazu/mirage/pkg/kernel"
	"github.com/chazu/mirage/pkg/param"
	"github.com/chazu/mirage/pkg/scene"
	"github.com/chazu/mirage/pkg/tessellate"
	"github.com/chazu/mirage/pkg/variant"
)

// session is the state one evaluation builds up. ctx is cancelled once
// the engine stops waiting for the evaluation.
type session struct {
	ctx    context.Context
	kernel kernel.Kernel
	ground geometry.Node
	params map[string]variant.Variant

	built []*scene.Scene
	shown []*scene.Scene
	show  bool
}

type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// wrapErr prefixes builtin errors with the builtin's script-facing name.
func wrapErr(display string, fn builtin) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		out, err := fn(env, name, args)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, display)
		}
		return out, nil
	}
}

// interruptible refuses to run fn once ctx is done, so a script that is
// no longer awaited stops at its next builtin call.
func interruptible(ctx context.Context, fn builtin) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := ctx.Err(); err != nil {
			return zygo.SexpNull, errors.Wrap(err, "evaluation abandoned")
		}
		return fn(env, name, args)
	}
}

// nodeOptions lists the node keywords in the order they are applied.
var nodeOptions = []string{"vertices", "colors", "type", "position", "rotation", "texture"}

// withOption returns n with one option replaced.
func withOption(n geometry.Node, key string, v zygo.Sexp) (geometry.Node, error) {
	switch key {
	case "vertices":
		f, err := toFloats(v)
		if err != nil {
			return n, errors.Wrap(err, "vertices")
		}
		return n.WithVertices(f), nil
	case "colors":
		f, err := toFloats(v)
		if err != nil {
			return n, errors.Wrap(err, "colors")
		}
		return n.WithColors(f), nil
	case "type":
		tag, err := toString(v)
		if err != nil {
			return n, errors.Wrap(err, "type")
		}
		return n.WithTypeName(tag)
	case "position":
		p, err := toVec(v, 3)
		if err != nil {
			return n, errors.Wrap(err, "position")
		}
		return n.WithPosition(p[0], p[1], p[2]), nil
	case "rotation":
		r, err := toVec(v, 4)
		if err != nil {
			return n, errors.Wrap(err, "rotation")
		}
		return n.WithRotation(r[0], r[1], r[2], r[3]), nil
	case "texture":
		if v == zygo.SexpNull {
			return n.WithImageTexture(nil), nil
		}
		img, ok := v.(*sexpImage)
		if !ok {
			return n, errors.Errorf("texture: expected image, got %s", describe(v))
		}
		return n.WithImageTexture(img.img), nil
	}
	return n, errors.Errorf("unknown node option %q", key)
}

func numbers(args []zygo.Sexp, want int) ([]float64, error) {
	if len(args) != want {
		return nil, errors.Errorf("expected %d arguments, got %d", want, len(args))
	}
	out := make([]float64, want)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i+1)
		}
		out[i] = f
	}
	return out, nil
}

// ints reads exactly want positive integers.
func ints(args []zygo.Sexp, want int) ([]int, error) {
	if len(args) != want {
		return nil, errors.Errorf("expected %d arguments, got %d", want, len(args))
	}
	out := make([]int, want)
	for i, a := range args {
		n, err := toInt(a)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i+1)
		}
		if n <= 0 {
			return nil, errors.Errorf("argument %d: expected a positive count, got %d", i+1, n)
		}
		out[i] = n
	}
	return out, nil
}

func floats(v []float32) zygo.Sexp { return &sexpFloats{v: v} }

// registerBuiltins installs the scene-building builtins into env. Source
// must go through preprocessSource first so keywords and kebab-case names
// match what is registered here.
func registerBuiltins(env *zygo.Zlisp, sess *session) {
	add := func(name, display string, fn builtin) {
		env.AddFunction(name, wrapErr(display, interruptible(sess.ctx, fn)))
	}
	registerNodeBuiltins(add)
	registerSceneBuiltins(add, sess)
	registerGenerators(add)
	registerSolids(add, sess)
}

func registerNodeBuiltins(add func(string, string, builtin)) {
	// (node :vertices [..] :colors [..] :type "line" :position [x y z]
	//       :rotation [ax ay az angle] :texture img)
	add("node", "node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		for key := range pa.kw {
			if !contains(nodeOptions, key) {
				return nil, errors.Errorf("unknown option :%s", key)
			}
		}
		var n geometry.Node
		if len(pa.positional) > 0 {
			f, err := toFloats(pa.positional[0])
			if err != nil {
				return nil, errors.Wrap(err, "vertices")
			}
			n = geometry.New(f)
		}
		for _, key := range nodeOptions {
			v, ok := pa.kw[key]
			if !ok {
				continue
			}
			var err error
			if n, err = withOption(n, key, v); err != nil {
				return nil, err
			}
		}
		return &sexpNode{n: n}, nil
	})

	// (with-vertices n [..]) and friends derive a modified copy.
	for _, key := range nodeOptions {
		key := key
		add("with_"+key, "with-"+key, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return nil, errors.Errorf("expected a node and a value, got %d arguments", len(args))
			}
			n, err := toNode(args[0])
			if err != nil {
				return nil, err
			}
			if n, err = withOption(n, key, args[1]); err != nil {
				return nil, err
			}
			return &sexpNode{n: n}, nil
		})
	}

	add("num_vertices", "num-vertices", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, errors.New("expected a node")
		}
		n, err := toNode(args[0])
		if err != nil {
			return nil, err
		}
		return &zygo.SexpInt{Val: int64(n.NumVertices())}, nil
	})

	add("num_primitives", "num-primitives", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, errors.New("expected a node")
		}
		n, err := toNode(args[0])
		if err != nil {
			return nil, err
		}
		return &zygo.SexpInt{Val: int64(n.NumPrimitives())}, nil
	})

	// (validate n) is "" for a drawable node, the diagnostic otherwise.
	add("validate", "validate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, errors.New("expected a node")
		}
		n, err := toNode(args[0])
		if err != nil {
			return nil, err
		}
		msg := ""
		if verr := n.Validate(); verr != nil {
			msg = verr.Error()
		}
		return &zygo.SexpStr{S: msg}, nil
	})
}

func registerSceneBuiltins(add func(string, string, builtin), sess *session) {
	// (control :name "Float" :control "slider" :value 0.5 :min 0 :max 1)
	add("control", "control", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, ok := pa.kw["name"]
		if !ok {
			return nil, errors.New(":name is required")
		}
		pname, err := toString(v)
		if err != nil {
			return nil, errors.Wrap(err, "name")
		}
		tag := "slider"
		if v, ok := pa.kw["control"]; ok {
			if tag, err = toString(v); err != nil {
				return nil, errors.Wrap(err, "control")
			}
		}
		value := variant.Float(0)
		if v, ok := pa.kw["value"]; ok {
			if value, err = toVariant(v); err != nil {
				return nil, errors.Wrap(err, "value")
			}
		}
		if pushed, ok := sess.params[pname]; ok {
			value = pushed
		}
		p, err := param.New(pname, tag, value)
		if err != nil {
			return nil, err
		}
		lo, hi := p.Min, p.Max
		if v, ok := pa.kw["min"]; ok {
			if lo, err = toFloat64(v); err != nil {
				return nil, errors.Wrap(err, "min")
			}
		}
		if v, ok := pa.kw["max"]; ok {
			if hi, err = toFloat64(v); err != nil {
				return nil, errors.Wrap(err, "max")
			}
		}
		if err := p.SetRange(lo, hi); err != nil {
			return nil, err
		}
		return &sexpParam{p: p}, nil
	})

	// (scene "name" :controls (list ..) :root n node...)
	add("scene", "scene", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sname := "Scene"
		rest := pa.positional
		if len(rest) > 0 {
			if str, ok := rest[0].(*zygo.SexpStr); ok {
				sname = str.S
				rest = rest[1:]
			}
		}
		s := scene.New(sname)

		var nodes []geometry.Node
		for i, item := range flatten(rest) {
			n, err := toNode(item)
			if err != nil {
				return nil, errors.Wrapf(err, "node %d", i)
			}
			nodes = append(nodes, n)
		}
		s.SetNodes(nodes)

		root := sess.ground
		if v, ok := pa.kw["root"]; ok {
			n, err := toNode(v)
			if err != nil {
				return nil, errors.Wrap(err, "root")
			}
			root = n
		}
		s.SetRoot(root)

		if v, ok := pa.kw["controls"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return nil, errors.Wrap(err, "controls")
			}
			for i, item := range items {
				p, ok := item.(*sexpParam)
				if !ok {
					return nil, errors.Errorf("controls: entry %d: expected control, got %s", i, describe(item))
				}
				s.AddParameter(p.p)
			}
		}

		sess.built = append(sess.built, s)
		return &sexpScene{s: s}, nil
	})

	// (push-data s :key value ...) merges values into the scene's parameters.
	add("push_data", "push-data", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return nil, errors.New("expected a scene")
		}
		s, err := toScene(pa.positional[0])
		if err != nil {
			return nil, err
		}
		data := make(map[string]variant.Variant, len(pa.kw))
		for k, v := range pa.kw {
			val, err := toVariant(v)
			if err != nil {
				return nil, errors.Wrap(err, k)
			}
			data[k] = val
		}
		s.PushData(data)
		return pa.positional[0], nil
	})

	// (show s ...) picks the scenes to display.
	add("show", "show", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var picked []*scene.Scene
		for i, item := range flatten(args) {
			s, err := toScene(item)
			if err != nil {
				return nil, errors.Wrapf(err, "argument %d", i+1)
			}
			picked = append(picked, s)
		}
		sess.shown = append(sess.shown, picked...)
		sess.show = true
		return &zygo.SexpInt{Val: int64(len(sess.shown))}, nil
	})

	add("scene_count", "scene-count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpInt{Val: int64(len(sess.built))}, nil
	})

	// (param "name" default) reads a value set from the UI.
	add("param", "param", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, errors.New("expected a name and an optional default")
		}
		pname, err := toString(args[0])
		if err != nil {
			return nil, err
		}
		if v, ok := sess.params[pname]; ok {
			return fromVariant(v), nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return nil, errors.Errorf("no value for %q", pname)
	})
}

func registerGenerators(add func(string, string, builtin)) {
	// (grid nx ny) is a line list over [-1, 1] squared.
	add("grid", "grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		n, err := ints(args, 2)
		if err != nil {
			return nil, err
		}
		s := tessellate.Lift(tessellate.Linspace(-1, 1, n[0]), tessellate.Linspace(-1, 1, n[1]), nil)
		return floats(tessellate.Gridlines(s)), nil
	})

	// (lattice-mesh nx ny :height k) triangulates z = k(x^2 + y^2).
	add("lattice_mesh", "lattice-mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n, err := ints(pa.positional, 2)
		if err != nil {
			return nil, err
		}
		var k float32
		if v, ok := pa.kw["height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return nil, errors.Wrap(err, "height")
			}
			k = float32(f)
		}
		bowl := tessellate.Height(func(x, y float32) float32 { return k * (x*x + y*y) })
		s := tessellate.Lift(tessellate.Linspace(-1, 1, n[0]), tessellate.Linspace(-1, 1, n[1]), bowl)
		return floats(tessellate.Triangulate(s)), nil
	})

	add("regular_polygon", "regular-polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		n, err := ints(args, 1)
		if err != nil {
			return nil, err
		}
		return floats(tessellate.RegularPolygon(n[0])), nil
	})

	// (annulus sides inner outer)
	add("annulus", "annulus", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return nil, errors.Errorf("expected 3 arguments, got %d", len(args))
		}
		sides, err := ints(args[:1], 1)
		if err != nil {
			return nil, err
		}
		r, err := numbers(args[1:], 2)
		if err != nil {
			return nil, err
		}
		return floats(tessellate.PolygonalAnnulus(sides[0], float32(r[0]), float32(r[1]))), nil
	})

	add("cone", "cone", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		n, err := ints(args, 1)
		if err != nil {
			return nil, err
		}
		return floats(tessellate.Cone(n[0])), nil
	})

	// (solid-colors n [r g b a]); n may be a vertex array.
	add("solid_colors", "solid-colors", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, errors.New("expected a count and an optional color")
		}
		n, err := toCount(args[0])
		if err != nil {
			return nil, err
		}
		rgba := tessellate.Black
		if len(args) == 2 {
			c, err := toVec(args[1], 4)
			if err != nil {
				return nil, errors.Wrap(err, "color")
			}
			copy(rgba[:], c)
		}
		return floats(tessellate.SolidColors(n, rgba)), nil
	})

	add("cycle_colors", "cycle-colors", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, errors.New("expected a count")
		}
		n, err := toCount(args[0])
		if err != nil {
			return nil, err
		}
		return floats(tessellate.CycleColors(n)), nil
	})

	add("height_colors", "height-colors", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, errors.New("expected a vertex array")
		}
		v, err := toFloats(args[0])
		if err != nil {
			return nil, err
		}
		return floats(tessellate.HeightColors(v)), nil
	})

	// (checker w h cells) is a black and white texture.
	add("checker", "checker", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		n, err := ints(args, 3)
		if err != nil {
			return nil, err
		}
		return &sexpImage{img: tessellate.CheckerImage(n[0], n[1], n[2])}, nil
	})
}

func registerSolids(add func(string, string, builtin), sess *session) {
	k := sess.kernel
	primitive := func(display string, argc int, build func([]float64) (kernel.Solid, error)) {
		add(display, display, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			v, err := numbers(args, argc)
			if err != nil {
				return nil, err
			}
			s, err := build(v)
			if err != nil {
				return nil, err
			}
			return &sexpSolid{s: s}, nil
		})
	}
	primitive("box", 3, func(v []float64) (kernel.Solid, error) { return k.Box(v[0], v[1], v[2]) })
	primitive("sphere", 1, func(v []float64) (kernel.Solid, error) { return k.Sphere(v[0]) })
	primitive("cylinder", 2, func(v []float64) (kernel.Solid, error) { return k.Cylinder(v[0], v[1]) })

	boolean := func(display string, op func(a, b kernel.Solid) kernel.Solid) {
		add(display, display, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) < 2 {
				return nil, errors.New("expected at least two solids")
			}
			acc, err := toSolid(args[0])
			if err != nil {
				return nil, err
			}
			for _, a := range args[1:] {
				s, err := toSolid(a)
				if err != nil {
					return nil, err
				}
				acc = op(acc, s)
			}
			return &sexpSolid{s: acc}, nil
		})
	}
	boolean("union", k.Union)
	boolean("difference", k.Difference)
	boolean("intersection", k.Intersection)

	transform := func(display string, op func(s kernel.Solid, x, y, z float64) kernel.Solid) {
		add(display, display, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 4 {
				return nil, errors.New("expected a solid and x y z")
			}
			s, err := toSolid(args[0])
			if err != nil {
				return nil, err
			}
			v, err := numbers(args[1:], 3)
			if err != nil {
				return nil, err
			}
			return &sexpSolid{s: op(s, v[0], v[1], v[2])}, nil
		})
	}
	transform("translate", k.Translate)
	transform("rotate", k.Rotate)

	// (mesh s) tessellates a solid into a triangle node.
	add("mesh", "mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, errors.New("expected a solid")
		}
		s, err := toSolid(args[0])
		if err != nil {
			return nil, err
		}
		n, err := tessellate.Solid(k, s)
		if err != nil {
			return nil, err
		}
		return &sexpNode{n: n}, nil
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
