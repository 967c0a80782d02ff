package geometry

import (
	"sync"
	"sync/atomic"

	"github.com/chazu/mirage/pkg/gpu"
)

// versions hands out process-unique stamps. Every array or image gets a
// new stamp when it is created, so two nodes holding the same stamp hold
// the same data.
var versions atomic.Uint64

func nextVersion() uint64 { return versions.Add(1) }

// floatArray is an immutable float buffer shared by a node and the copies
// derived from it. The realized GPU buffer is cached alongside the data so
// derived copies reuse it.
type floatArray struct {
	data    []float32
	version uint64
	buf     slot

	normalsOnce sync.Once
	normals     []float32
	normalBuf   slot
}

// newArray copies data into a fresh array. Empty input yields nil.
func newArray(data []float32) *floatArray {
	if len(data) == 0 {
		return nil
	}
	return &floatArray{
		data:    append([]float32(nil), data...),
		version: nextVersion(),
	}
}

func (a *floatArray) len() int {
	if a == nil {
		return 0
	}
	return len(a.data)
}

func (a *floatArray) stamp() uint64 {
	if a == nil {
		return 0
	}
	return a.version
}

func (a *floatArray) copyData() []float32 {
	if a == nil {
		return nil
	}
	return append([]float32(nil), a.data...)
}

// release drops every GPU resource realized from the array. Nodes still
// holding the array realize it again on their next buffer call.
func (a *floatArray) release() {
	if a == nil {
		return
	}
	a.buf.release()
	a.normalBuf.release()
}

// slot caches one realized resource together with the device it lives on
// and the version it was built from.
type slot struct {
	mu        sync.Mutex
	dev       gpu.Device
	res       gpu.Resource
	builtFrom uint64
}

// get returns the cached resource if it was built from version on dev,
// and builds a new one otherwise. A stale resource is released first.
func (s *slot) get(dev gpu.Device, version uint64, build func() (gpu.Resource, error)) (gpu.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.res != nil && s.dev == dev && s.builtFrom == version {
		return s.res, nil
	}
	if s.res != nil {
		s.dev.Release(s.res)
		s.res, s.dev, s.builtFrom = nil, nil, 0
	}
	res, err := build()
	if err != nil {
		return nil, err
	}
	s.res, s.dev, s.builtFrom = res, dev, version
	return res, nil
}

func (s *slot) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.res != nil {
		s.dev.Release(s.res)
	}
	s.res, s.dev, s.builtFrom = nil, nil, 0
}

func (s *slot) realized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res != nil
}
