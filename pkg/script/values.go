package script

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/pkg/errors"

	"github.com/chazu/mirage/pkg/geometry"
	"github.com/chazu/mirage/pkg/kernel"
	"github.com/chazu/mirage/pkg/param"
	"github.com/chazu/mirage/pkg/scene"
	"github.com/chazu/mirage/pkg/variant"
)

// Go values handed between builtins travel as opaque Sexps.

type sexpNode struct {
	n geometry.Node
}

func (s *sexpNode) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(node :type %q :vertices %d)", s.n.TypeName(), s.n.NumVertices())
}
func (s *sexpNode) Type() *zygo.RegisteredType { return nil }

// sexpFloats is a flat float array produced by a generator.
type sexpFloats struct {
	v []float32
}

func (s *sexpFloats) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(floats %d)", len(s.v))
}
func (s *sexpFloats) Type() *zygo.RegisteredType { return nil }

type sexpImage struct {
	img *geometry.Image
}

func (s *sexpImage) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(image %dx%d)", s.img.Width(), s.img.Height())
}
func (s *sexpImage) Type() *zygo.RegisteredType { return nil }

type sexpParam struct {
	p param.UserParameter
}

func (s *sexpParam) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(control %q %s)", s.p.Name, s.p.Value)
}
func (s *sexpParam) Type() *zygo.RegisteredType { return nil }

type sexpScene struct {
	s *scene.Scene
}

func (s *sexpScene) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(scene %q)", s.s.Name)
}
func (s *sexpScene) Type() *zygo.RegisteredType { return nil }

type sexpSolid struct {
	s kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	min, max := s.s.BoundingBox()
	return fmt.Sprintf("(solid %v %v)", min, max)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

func describe(s zygo.Sexp) string {
	return fmt.Sprintf("%T (%s)", s, printed(s))
}

// printed renders s, falling back to its Go type for values that cannot
// print without a PrintState.
func printed(s zygo.Sexp) (out string) {
	if s == nil {
		return "nil"
	}
	defer func() {
		if recover() != nil {
			out = fmt.Sprintf("%T", s)
		}
	}()
	return s.SexpString(nil)
}

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, errors.Errorf("expected number, got %s", describe(s))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, errors.Errorf("expected integer, got %s", describe(s))
}

// toString extracts a string or keyword name from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if name, ok := isKW(s); ok {
		return name, nil
	}
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", errors.Errorf("expected string, got %s", describe(s))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, errors.Errorf("expected list or array, got %T", s)
}

// toFloats accepts generator output or a literal list or array of numbers.
func toFloats(s zygo.Sexp) ([]float32, error) {
	if f, ok := s.(*sexpFloats); ok {
		return f.v, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(items))
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// toVec reads exactly n numbers.
func toVec(s zygo.Sexp, n int) ([]float32, error) {
	v, err := toFloats(s)
	if err != nil {
		return nil, err
	}
	if len(v) != n {
		return nil, errors.Errorf("expected %d numbers, got %d", n, len(v))
	}
	return v, nil
}

// toCount reads a vertex count, given directly, as the size of a
// position array or as the vertex count of a node.
func toCount(s zygo.Sexp) (int, error) {
	if n, err := toInt(s); err == nil {
		if n <= 0 {
			return 0, errors.Errorf("expected a positive count, got %d", n)
		}
		return n, nil
	}
	if n, ok := s.(*sexpNode); ok {
		return n.n.NumVertices(), nil
	}
	v, err := toFloats(s)
	if err != nil {
		return 0, errors.Errorf("expected a count, vertex array or node, got %s", describe(s))
	}
	return len(v) / 3, nil
}

func toNode(s zygo.Sexp) (geometry.Node, error) {
	if n, ok := s.(*sexpNode); ok {
		return n.n, nil
	}
	return geometry.Node{}, errors.Errorf("expected node, got %s", describe(s))
}

func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.s, nil
	}
	return nil, errors.Errorf("expected solid, got %s", describe(s))
}

func toScene(s zygo.Sexp) (*scene.Scene, error) {
	if v, ok := s.(*sexpScene); ok {
		return v.s, nil
	}
	return nil, errors.Errorf("expected scene, got %s", describe(s))
}

// toVariant converts a script number or string.
func toVariant(s zygo.Sexp) (variant.Variant, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return variant.Int(v.Val), nil
	case *zygo.SexpFloat:
		return variant.Float(v.Val), nil
	case *zygo.SexpStr:
		return variant.String(v.S), nil
	}
	return variant.Variant{}, errors.Errorf("expected number or string, got %s", describe(s))
}

func fromVariant(v variant.Variant) zygo.Sexp {
	switch v.Kind() {
	case variant.KindInteger:
		i, _ := v.AsInteger()
		return &zygo.SexpInt{Val: i}
	case variant.KindDouble:
		f, _ := v.AsDouble()
		return &zygo.SexpFloat{Val: f}
	}
	s, _ := v.AsString()
	return &zygo.SexpStr{S: s}
}

// flatten expands nested lists so builtins accept both (f a b) and
// (f (list a b)).
func flatten(args []zygo.Sexp) []zygo.Sexp {
	var out []zygo.Sexp
	for _, a := range args {
		if a == zygo.SexpNull {
			continue
		}
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err == nil {
				out = append(out, flatten(items)...)
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
