// Package scene aggregates nodes and user parameters into scenes and keeps
// the list of scenes the application shows. It does no GPU work beyond
// releasing resources of nodes it drops.
package scene

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/chazu/mirage/pkg/geometry"
	"github.com/chazu/mirage/pkg/param"
	"github.com/chazu/mirage/pkg/variant"
)

var (
	// ErrOutOfRange is returned for a node or scene index outside the
	// collection.
	ErrOutOfRange = errors.New("index out of range")
	// ErrNoParameter is returned when a parameter name is unknown.
	ErrNoParameter = errors.New("no such parameter")
)

// Scene owns an ordered list of nodes, a root node that is always present,
// and the parameters exposed to the UI. A Scene is safe for one writer and
// any number of readers; locks are held only while values are copied.
type Scene struct {
	ID   uuid.UUID
	Name string

	mu      sync.RWMutex
	nodes   []geometry.Node
	root    geometry.Node
	params  []param.UserParameter
	version uint64
}

// New returns an empty scene with an empty root node.
func New(name string) *Scene {
	return &Scene{ID: uuid.New(), Name: name}
}

func outOfRange(i, n int) error {
	return errors.Wrapf(ErrOutOfRange, "node %d of %d", i, n)
}

// AddNode appends n and returns its index.
func (s *Scene) AddNode(n geometry.Node) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, n)
	s.version++
	return len(s.nodes) - 1
}

// Node returns a copy of the node at index i.
func (s *Scene) Node(i int) (geometry.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.nodes) {
		return geometry.Node{}, outOfRange(i, len(s.nodes))
	}
	return s.nodes[i], nil
}

func (s *Scene) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// ReplaceNode puts n at index i. Resources of arrays the old node held and
// n does not are released.
func (s *Scene) ReplaceNode(i int, n geometry.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.nodes) {
		return outOfRange(i, len(s.nodes))
	}
	old := s.nodes[i]
	s.nodes[i] = n
	s.version++
	geometry.ReleaseReplaced(old, n)
	return nil
}

// UpdateNode applies fn to the node at index i in place.
func (s *Scene) UpdateNode(i int, fn func(*geometry.Node)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.nodes) {
		return outOfRange(i, len(s.nodes))
	}
	fn(&s.nodes[i])
	s.version++
	return nil
}

// SetNodes replaces the whole node list.
func (s *Scene) SetNodes(nodes []geometry.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.nodes
	s.nodes = append([]geometry.Node(nil), nodes...)
	s.version++
	geometry.ReleaseUnused(old, s.nodes)
}

// Nodes returns a copy of the node list.
func (s *Scene) Nodes() []geometry.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]geometry.Node(nil), s.nodes...)
}

func (s *Scene) Root() geometry.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

func (s *Scene) SetRoot(n geometry.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.root
	s.root = n
	s.version++
	geometry.ReleaseReplaced(old, n)
}

// AddParameter appends p. A parameter with the same name is replaced in
// place instead.
func (s *Scene) AddParameter(p param.UserParameter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	for i := range s.params {
		if s.params[i].Name == p.Name {
			s.params[i] = p
			return
		}
	}
	s.params = append(s.params, p)
}

// UserParameters returns a snapshot of the parameters in order. Writes go
// through SetParameterValue.
func (s *Scene) UserParameters() []param.UserParameter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]param.UserParameter(nil), s.params...)
}

// Parameter looks a parameter up by name.
func (s *Scene) Parameter(name string) (param.UserParameter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.params {
		if p.Name == name {
			return p, true
		}
	}
	return param.UserParameter{}, false
}

// SetParameterValue updates the value of the named parameter.
func (s *Scene) SetParameterValue(name string, v variant.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.params {
		if s.params[i].Name == name {
			s.params[i].SetValue(v)
			s.version++
			return nil
		}
	}
	return errors.Wrapf(ErrNoParameter, "%q in scene %q", name, s.Name)
}

// PushData merges a set of values into the parameters. Known names are
// updated; new names are appended as text parameters in key order.
func (s *Scene) PushData(data map[string]variant.Variant) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		found := false
		for i := range s.params {
			if s.params[i].Name == k {
				s.params[i].SetValue(data[k])
				found = true
				break
			}
		}
		if !found {
			s.params = append(s.params, param.UserParameter{
				Name:    k,
				Control: param.Text,
				Value:   data[k],
			})
		}
	}
	if len(keys) > 0 {
		s.version++
	}
}

// Version changes every time the scene is modified.
func (s *Scene) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// drawables returns the nodes followed by the root.
func (s *Scene) drawables() []geometry.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]geometry.Node, 0, len(s.nodes)+1)
	out = append(out, s.nodes...)
	return append(out, s.root)
}

// Release frees the GPU resources of every node and the root.
func (s *Scene) Release() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.nodes {
		n.Release()
	}
	s.root.Release()
}
