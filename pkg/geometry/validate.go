package geometry

import "fmt"

// ValidationError explains why a node cannot be drawn.
type ValidationError struct {
	Kind    PrimitiveKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate reports the first reason n is not drawable, or nil.
func (n Node) Validate() error {
	if l := n.positions.len(); l%3 != 0 {
		return n.invalid(fmt.Sprintf("vertex array length %d is not a multiple of 3", l))
	}
	verts := n.NumVertices()
	if msg := n.kind.checkCount(verts); msg != "" {
		return n.invalid(msg)
	}
	if c := n.colors.len(); c != 0 && c != verts*4 {
		return n.invalid(fmt.Sprintf("color array has %d floats but %d vertices need %d", c, verts, verts*4))
	}
	if n.texture != nil {
		if err := n.texture.Validate(); err != nil {
			return n.invalid(err.Error())
		}
	}
	return nil
}

func (n Node) invalid(msg string) *ValidationError {
	return &ValidationError{Kind: n.kind, Message: msg}
}
