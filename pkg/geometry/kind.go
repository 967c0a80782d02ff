package geometry

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

// PrimitiveKind is how a node's vertices are assembled into primitives.
// The zero value is Triangle.
type PrimitiveKind int

const (
	Triangle PrimitiveKind = iota
	Line
	Point
	LineStrip
	TriangleStrip
)

var kindNames = map[PrimitiveKind]string{
	Triangle:      "triangle",
	Line:          "line",
	Point:         "point",
	LineStrip:     "line strip",
	TriangleStrip: "triangle strip",
}

func (k PrimitiveKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PrimitiveKind(%d)", int(k))
}

// ErrUnknownPrimitive is returned for unrecognized primitive tags.
var ErrUnknownPrimitive = errors.New("unknown primitive type")

// ParsePrimitiveKind maps a tag such as "triangle" or "line strip" to its
// kind. Underscores and dashes may stand in for the space; case is ignored.
func ParsePrimitiveKind(tag string) (PrimitiveKind, error) {
	norm := strings.ToLower(strings.TrimSpace(tag))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	for k, name := range kindNames {
		if name == norm {
			return k, nil
		}
	}
	return Triangle, errors.Wrapf(ErrUnknownPrimitive, "%q", tag)
}

// Topology is the WebGPU primitive topology drawing this kind.
func (k PrimitiveKind) Topology() gputypes.PrimitiveTopology {
	switch k {
	case Line:
		return gputypes.PrimitiveTopologyLineList
	case Point:
		return gputypes.PrimitiveTopologyPointList
	case LineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case TriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

// primitives is the number of primitives n vertices make.
func (k PrimitiveKind) primitives(n int) int {
	switch k {
	case Triangle:
		return n / 3
	case Line:
		return n / 2
	case Point:
		return n
	case LineStrip:
		return max(n-1, 0)
	case TriangleStrip:
		return max(n-2, 0)
	}
	return 0
}

// checkCount reports why n vertices cannot form primitives of kind k.
func (k PrimitiveKind) checkCount(n int) string {
	switch k {
	case Triangle:
		if n%3 != 0 {
			return fmt.Sprintf("triangle node has %d vertices, which is not a multiple of 3", n)
		}
	case Line:
		if n%2 != 0 {
			return fmt.Sprintf("line node has %d vertices, which is not a multiple of 2", n)
		}
	case Point:
	case LineStrip:
		if n == 1 {
			return "line strip needs at least 2 vertices, has 1"
		}
	case TriangleStrip:
		if n == 1 || n == 2 {
			return fmt.Sprintf("triangle strip needs at least 3 vertices, has %d", n)
		}
	default:
		return fmt.Sprintf("invalid primitive type %d", int(k))
	}
	return ""
}
