// Package geometry holds the renderable unit of a scene: a node's vertex,
// color and texture data, its primitive kind and its placement, together
// with the GPU resources realized from that data.
//
// A Node is a value. The With* functions return a modified copy and leave
// the receiver alone; the copies share the arrays they did not change, and
// with them any buffers already realized. The Set* methods modify a node in
// place and release the resources of the arrays they replace.
package geometry

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultRotation is the identity rotation: angle 0 about +Z.
var DefaultRotation = [4]float32{0, 0, 1, 0}

// Node is one renderable piece of geometry. The zero value is an empty
// triangle node at the origin with the identity rotation.
type Node struct {
	kind        PrimitiveKind
	positions   *floatArray
	colors      *floatArray
	texture     *Image
	translation [3]float32
	rotation    [4]float32
}

// New returns a triangle node holding a copy of positions.
func New(positions []float32) Node {
	return Node{positions: newArray(positions)}
}

// FromRaw copies n floats starting at ptr. It exists for hosts handing
// over arrays they own; a nil pointer or non-positive n yields nil.
func FromRaw(ptr unsafe.Pointer, n int) []float32 {
	if ptr == nil || n <= 0 {
		return nil
	}
	return append([]float32(nil), unsafe.Slice((*float32)(ptr), n)...)
}

// Type returns the primitive kind.
func (n Node) Type() PrimitiveKind { return n.kind }

// TypeName returns the primitive kind's tag, e.g. "line strip".
func (n Node) TypeName() string { return n.kind.String() }

// Vertices returns a copy of the flat xyz position array.
func (n Node) Vertices() []float32 { return n.positions.copyData() }

// Colors returns a copy of the flat rgba color array.
func (n Node) Colors() []float32 { return n.colors.copyData() }

// Texture returns the node's texture, or nil.
func (n Node) Texture() *Image { return n.texture }

// Position returns the translation.
func (n Node) Position() [3]float32 { return n.translation }

// Rotation returns (axis x, axis y, axis z, angle in radians).
func (n Node) Rotation() [4]float32 {
	if n.rotation == ([4]float32{}) {
		return DefaultRotation
	}
	return n.rotation
}

// NumVertices is the position array length divided by three, rounded down.
func (n Node) NumVertices() int { return n.positions.len() / 3 }

// NumPrimitives is the number of primitives the vertices make under the
// node's kind.
func (n Node) NumPrimitives() int { return n.kind.primitives(n.NumVertices()) }

// WithVertices returns a copy of n holding a copy of positions.
func (n Node) WithVertices(positions []float32) Node {
	n.positions = newArray(positions)
	return n
}

// WithColors returns a copy of n holding a copy of colors.
func (n Node) WithColors(colors []float32) Node {
	n.colors = newArray(colors)
	return n
}

// WithImageTexture returns a copy of n textured with img. A nil image
// removes the texture.
func (n Node) WithImageTexture(img *Image) Node {
	n.texture = img
	return n
}

func (n Node) WithPosition(x, y, z float32) Node {
	n.translation = [3]float32{x, y, z}
	return n
}

func (n Node) WithRotation(x, y, z, angle float32) Node {
	n.rotation = [4]float32{x, y, z, angle}
	return n
}

func (n Node) WithType(kind PrimitiveKind) Node {
	n.kind = kind
	return n
}

// WithTypeName is WithType over a textual tag. An unknown tag returns the
// error and a copy of n with its kind unchanged.
func (n Node) WithTypeName(tag string) (Node, error) {
	kind, err := ParsePrimitiveKind(tag)
	if err != nil {
		return n, err
	}
	return n.WithType(kind), nil
}

// SetVertices replaces the positions in place.
func (n *Node) SetVertices(positions []float32) {
	old := n.positions
	n.positions = newArray(positions)
	old.release()
}

// SetColors replaces the colors in place.
func (n *Node) SetColors(colors []float32) {
	old := n.colors
	n.colors = newArray(colors)
	old.release()
}

// SetImageTexture replaces the texture in place.
func (n *Node) SetImageTexture(img *Image) {
	old := n.texture
	n.texture = img
	if old != img {
		old.release()
	}
}

func (n *Node) SetPosition(x, y, z float32) { n.translation = [3]float32{x, y, z} }

func (n *Node) SetRotation(x, y, z, angle float32) { n.rotation = [4]float32{x, y, z, angle} }

// SetType changes the primitive kind. Normals are derived from the
// positions alone, so no resource is released.
func (n *Node) SetType(kind PrimitiveKind) { n.kind = kind }

// SetTypeName is SetType over a textual tag; an unknown tag leaves n as is.
func (n *Node) SetTypeName(tag string) error {
	kind, err := ParsePrimitiveKind(tag)
	if err != nil {
		return err
	}
	n.kind = kind
	return nil
}

// ModelMatrix is translation times rotation. A zero rotation axis is
// treated as no rotation.
func (n Node) ModelMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.translation[0], n.translation[1], n.translation[2])
	r := n.Rotation()
	axis := mgl32.Vec3{r[0], r[1], r[2]}
	if axis.Len() == 0 {
		return t
	}
	return t.Mul4(mgl32.HomogRotate3D(r[3], axis.Normalize()))
}

// Versions identifies the data a node holds. Two nodes with equal
// Versions hold identical arrays.
type Versions struct {
	Kind      PrimitiveKind
	Positions uint64
	Colors    uint64
	Texture   uint64
}

func (n Node) Versions() Versions {
	return Versions{
		Kind:      n.kind,
		Positions: n.positions.stamp(),
		Colors:    n.colors.stamp(),
		Texture:   n.texture.stamp(),
	}
}

// Release frees every GPU resource realized from n's arrays. Copies of n
// that share those arrays realize them again on demand.
func (n Node) Release() {
	n.positions.release()
	n.colors.release()
	n.texture.release()
}

// ReleaseReplaced frees the resources of arrays old holds that next does
// not. Use it when next takes old's place.
func ReleaseReplaced(old, next Node) {
	if old.positions != next.positions {
		old.positions.release()
	}
	if old.colors != next.colors {
		old.colors.release()
	}
	if old.texture != next.texture {
		old.texture.release()
	}
}

// ReleaseUnused frees the resources of arrays held by nodes of old that no
// node of next holds.
func ReleaseUnused(old, next []Node) {
	arrays := make(map[*floatArray]bool)
	images := make(map[*Image]bool)
	for _, n := range next {
		arrays[n.positions] = true
		arrays[n.colors] = true
		images[n.texture] = true
	}
	for _, n := range old {
		if !arrays[n.positions] {
			n.positions.release()
		}
		if !arrays[n.colors] {
			n.colors.release()
		}
		if !images[n.texture] {
			n.texture.release()
		}
	}
}
