// Package param defines user parameters: named variants that scripts
// expose to the UI control surface.
package param

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/mirage/pkg/variant"
	"github.com/pkg/errors"
)

// ControlKind selects the widget the UI draws for a parameter.
type ControlKind int

const (
	Slider ControlKind = iota
	Text
)

func (k ControlKind) String() string {
	switch k {
	case Slider:
		return "slider"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("ControlKind(%d)", int(k))
	}
}

// ErrUnknownControl is returned for control tags other than "slider" and
// "text".
var ErrUnknownControl = errors.New("unknown control type")

// ParseControlKind maps a control tag to its kind. Case and surrounding
// whitespace are ignored.
func ParseControlKind(tag string) (ControlKind, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "slider":
		return Slider, nil
	case "text":
		return Text, nil
	}
	return 0, errors.Wrapf(ErrUnknownControl, "%q", tag)
}

// UserParameter binds one variant to a name and a control kind.
// Min and Max bound slider values; they default to 0 and 1.
type UserParameter struct {
	Name    string
	Control ControlKind
	Value   variant.Variant
	Min     float64
	Max     float64
}

// New builds a parameter. It fails if controlTag is not recognized.
func New(name, controlTag string, value variant.Variant) (UserParameter, error) {
	kind, err := ParseControlKind(controlTag)
	if err != nil {
		return UserParameter{}, errors.Wrapf(err, "parameter %q", name)
	}
	return UserParameter{Name: name, Control: kind, Value: value, Max: 1}, nil
}

// SetControlTypeName switches the control kind. An unknown tag leaves the
// parameter unchanged.
func (p *UserParameter) SetControlTypeName(tag string) error {
	kind, err := ParseControlKind(tag)
	if err != nil {
		return err
	}
	p.Control = kind
	return nil
}

// SetName renames the parameter.
func (p *UserParameter) SetName(name string) { p.Name = name }

// SetValue replaces the value.
func (p *UserParameter) SetValue(v variant.Variant) { p.Value = v }

// SetRange sets the slider bounds. lo must not exceed hi.
func (p *UserParameter) SetRange(lo, hi float64) error {
	if lo > hi || math.IsNaN(lo) || math.IsNaN(hi) {
		return errors.Errorf("parameter %q: invalid range [%g, %g]", p.Name, lo, hi)
	}
	p.Min, p.Max = lo, hi
	return nil
}

// Clamp returns the value forced into [Min, Max] for numeric sliders.
// Integers land on the nearest integer inside the range, or on the rounded
// bound when the range holds none. Text parameters and string values come
// back unchanged.
func (p UserParameter) Clamp() variant.Variant {
	if p.Control != Slider || p.Value.Kind() == variant.KindString || p.Min > p.Max {
		return p.Value
	}
	f, _ := p.Value.AsDouble()
	if p.Value.Kind() == variant.KindInteger {
		lo, hi := math.Ceil(p.Min), math.Floor(p.Max)
		if lo > hi {
			return variant.Int(int64(math.Round(math.Min(math.Max(f, p.Min), p.Max))))
		}
		c := math.Min(math.Max(f, lo), hi)
		if c == f {
			return p.Value
		}
		return variant.Int(int64(c))
	}
	c := math.Min(math.Max(f, p.Min), p.Max)
	if c == f {
		return p.Value
	}
	return variant.Float(c)
}
