package scene

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/chazu/mirage/pkg/geometry"
	"github.com/chazu/mirage/pkg/logx"
)

// Library is the list of scenes the application shows, plus the index of
// the one on screen. Publish swaps the whole list at once, so readers see
// either the old list or the new one, never a mix.
//
// Publish releases the GPU resources of dropped scenes. Realize geometry
// inside View or Draw; a scene taken from Current and realized outside it may be
// released, or leak, across a concurrent Publish.
type Library struct {
	scenes  atomic.Pointer[[]*Scene]
	current atomic.Int64

	// drawMu is held shared by View and exclusively by Publish.
	drawMu sync.RWMutex
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	l := &Library{}
	empty := []*Scene{}
	l.scenes.Store(&empty)
	return l
}

func (l *Library) list() []*Scene {
	if p := l.scenes.Load(); p != nil {
		return *p
	}
	return nil
}

// Publish replaces the scene list and selects the first scene. Scenes of
// the previous list that are not republished are released, except for
// geometry they share with the new list.
func (l *Library) Publish(scenes []*Scene) {
	next := append([]*Scene(nil), scenes...)

	l.drawMu.Lock()
	defer l.drawMu.Unlock()
	prev := l.list()
	l.scenes.Store(&next)
	l.current.Store(0)

	kept := make(map[*Scene]bool, len(next))
	var live []geometry.Node
	for _, s := range next {
		kept[s] = true
		live = append(live, s.drawables()...)
	}
	var dropped []geometry.Node
	released := 0
	for _, s := range prev {
		if !kept[s] {
			dropped = append(dropped, s.drawables()...)
			released++
		}
	}
	geometry.ReleaseUnused(dropped, live)
	logx.Logger().Info("scenes published", "count", len(next), "released", released)
}

func (l *Library) Len() int { return len(l.list()) }

// At returns scene i.
func (l *Library) At(i int) (*Scene, error) {
	list := l.list()
	if i < 0 || i >= len(list) {
		return nil, errors.Wrapf(ErrOutOfRange, "scene %d of %d", i, len(list))
	}
	return list[i], nil
}

// Current returns the selected scene, or nil if the library is empty.
func (l *Library) Current() *Scene {
	list := l.list()
	i := int(l.current.Load())
	if i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}

// View runs fn with Publish held off. fn must not call Publish.
func (l *Library) View(fn func()) {
	l.drawMu.RLock()
	defer l.drawMu.RUnlock()
	fn()
}

// Draw calls fn under View with the current scene, or nil when the library
// is empty.
func (l *Library) Draw(fn func(*Scene)) {
	l.View(func() { fn(l.Current()) })
}

// CurrentIndex returns the index of the selected scene.
func (l *Library) CurrentIndex() int { return int(l.current.Load()) }

// Select makes scene i current.
func (l *Library) Select(i int) error {
	list := l.list()
	if i < 0 || i >= len(list) {
		return errors.Wrapf(ErrOutOfRange, "scene %d of %d", i, len(list))
	}
	l.current.Store(int64(i))
	return nil
}

// Snapshot returns a copy of the scene list.
func (l *Library) Snapshot() []*Scene {
	return append([]*Scene(nil), l.list()...)
}
