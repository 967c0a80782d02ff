// Package variant implements the tagged value carried between scripts,
// the UI control surface and the render loop.
//
// A Variant holds exactly one of an integer, a double or a string.
// Numeric kinds convert into each other; strings never convert to or from
// numbers. Reading a value through an accessor its kind cannot convert to
// returns ErrTypeMismatch.
package variant

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Kind is the active member of a Variant.
type Kind int

const (
	KindInteger Kind = iota
	KindDouble
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "integer":
		return KindInteger, nil
	case "double":
		return KindDouble, nil
	case "string":
		return KindString, nil
	}
	return 0, errors.Errorf("unknown variant kind %q", name)
}

// ErrTypeMismatch is returned when a Variant is read through an accessor
// its kind has no conversion to.
var ErrTypeMismatch = errors.New("variant type mismatch")

// Variant is an immutable tagged union. The zero value is the integer 0.
type Variant struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// Int returns an integer variant.
func Int(v int64) Variant { return Variant{kind: KindInteger, i: v} }

// Float returns a double variant.
func Float(v float64) Variant { return Variant{kind: KindDouble, f: v} }

// String returns a string variant.
func String(v string) Variant { return Variant{kind: KindString, s: v} }

// Of builds a Variant from a Go value. Every integer and float type and
// string are accepted.
func Of(v any) (Variant, error) {
	switch x := v.(type) {
	case Variant:
		return x, nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	}
	return Variant{}, errors.Errorf("cannot hold %T in a variant", v)
}

// Kind returns the active kind.
func (v Variant) Kind() Kind { return v.kind }

// conversions is the single table of allowed coercions, indexed by
// [from][to]. A nil entry means the read is a type mismatch.
var conversions = [3][3]func(Variant) Variant{
	KindInteger: {
		KindInteger: identity,
		KindDouble:  func(v Variant) Variant { return Float(float64(v.i)) },
	},
	KindDouble: {
		KindInteger: func(v Variant) Variant { return Int(truncate(v.f)) },
		KindDouble:  identity,
	},
	KindString: {
		KindString: identity,
	},
}

func identity(v Variant) Variant { return v }

// truncate rounds toward zero, saturating at the int64 range. NaN maps to 0.
func truncate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(math.Trunc(f))
}

func (v Variant) convert(to Kind) (Variant, error) {
	if v.kind < KindInteger || v.kind > KindString {
		return Variant{}, errors.Wrapf(ErrTypeMismatch, "invalid kind %s", v.kind)
	}
	fn := conversions[v.kind][to]
	if fn == nil {
		return Variant{}, errors.Wrapf(ErrTypeMismatch, "%s read as %s", v.kind, to)
	}
	return fn(v), nil
}

// AsInteger returns the value as an integer. Doubles are truncated toward
// zero.
func (v Variant) AsInteger() (int64, error) {
	c, err := v.convert(KindInteger)
	return c.i, err
}

// AsDouble returns the value as a double.
func (v Variant) AsDouble() (float64, error) {
	c, err := v.convert(KindDouble)
	return c.f, err
}

// AsString returns the value of a string variant.
func (v Variant) AsString() (string, error) {
	c, err := v.convert(KindString)
	return c.s, err
}

// String formats the value for display. It is not a conversion.
func (v Variant) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	}
	return ""
}

// Equal reports whether two variants have the same kind and payload.
func (v Variant) Equal(o Variant) bool {
	return v == o
}

type wireVariant struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the variant as {"kind": ..., "value": ...}.
func (v Variant) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.kind {
	case KindInteger:
		payload = v.i
	case KindDouble:
		payload = v.f
	default:
		payload = v.s
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal variant")
	}
	return json.Marshal(wireVariant{Kind: v.kind.String(), Value: raw})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (v *Variant) UnmarshalJSON(data []byte) error {
	var w wireVariant
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "unmarshal variant")
	}
	kind, err := ParseKind(w.Kind)
	if err != nil {
		return err
	}
	switch kind {
	case KindInteger:
		var i int64
		if err := json.Unmarshal(w.Value, &i); err != nil {
			return errors.Wrap(err, "integer variant")
		}
		*v = Int(i)
	case KindDouble:
		var f float64
		if err := json.Unmarshal(w.Value, &f); err != nil {
			return errors.Wrap(err, "double variant")
		}
		*v = Float(f)
	case KindString:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return errors.Wrap(err, "string variant")
		}
		*v = String(s)
	}
	return nil
}
