package gpu

import (
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

// ErrBudgetExceeded is wrapped by the ResourceError a HostDevice returns
// when an allocation would exceed its byte budget.
var ErrBudgetExceeded = errors.New("device memory budget exceeded")

// HostDevice keeps resources in CPU memory. It backs headless rendering
// and doubles as an allocation-counting device in tests.
type HostDevice struct {
	mu        sync.Mutex
	budget    int
	used      int
	buffers   int
	textures  int
	releases  int
	live      map[Resource]struct{}
	failLabel string
}

// NewHostDevice returns a device limited to budget bytes. A budget of
// zero means unlimited.
func NewHostDevice(budget int) *HostDevice {
	return &HostDevice{
		budget: budget,
		live:   make(map[Resource]struct{}),
	}
}

type hostBuffer struct {
	label string
	usage gputypes.BufferUsage
	data  []byte
}

func (b *hostBuffer) Label() string               { return b.label }
func (b *hostBuffer) Size() int                   { return len(b.data) }
func (b *hostBuffer) Usage() gputypes.BufferUsage { return b.usage }

type hostTexture struct {
	label  string
	size   gputypes.Extent3D
	format gputypes.TextureFormat
	pixels []byte
}

func (t *hostTexture) Label() string                  { return t.label }
func (t *hostTexture) Width() int                     { return int(t.size.Width) }
func (t *hostTexture) Height() int                    { return int(t.size.Height) }
func (t *hostTexture) Format() gputypes.TextureFormat { return t.format }

func (d *HostDevice) reserve(label string, n int) error {
	if d.failLabel != "" && d.failLabel == label {
		return &ResourceError{Label: label, Size: n, Err: errors.New("injected failure")}
	}
	if d.budget > 0 && d.used+n > d.budget {
		return &ResourceError{Label: label, Size: n, Err: ErrBudgetExceeded}
	}
	d.used += n
	return nil
}

// NewBuffer copies data into a new host buffer.
func (d *HostDevice) NewBuffer(label string, data []byte, usage gputypes.BufferUsage) (Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.reserve(label, len(data)); err != nil {
		return nil, err
	}
	b := &hostBuffer{label: label, usage: usage, data: append([]byte(nil), data...)}
	d.buffers++
	d.live[b] = struct{}{}
	return b, nil
}

// NewTexture copies pixels into a new host texture. Only RGBA8 textures
// are supported; pixels must hold exactly width*height*4 bytes.
func (d *HostDevice) NewTexture(desc TextureDesc, pixels []byte) (Texture, error) {
	w, h := int(desc.Size.Width), int(desc.Size.Height)
	if w <= 0 || h <= 0 {
		return nil, errors.Errorf("texture %s: invalid size %dx%d", desc.Label, w, h)
	}
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		return nil, errors.Errorf("texture %s: unsupported format %v", desc.Label, desc.Format)
	}
	if len(pixels) != w*h*4 {
		return nil, errors.Errorf("texture %s: %d pixel bytes for %dx%d", desc.Label, len(pixels), w, h)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.reserve(desc.Label, len(pixels)); err != nil {
		return nil, err
	}
	t := &hostTexture{
		label:  desc.Label,
		size:   desc.Size,
		format: desc.Format,
		pixels: append([]byte(nil), pixels...),
	}
	d.textures++
	d.live[t] = struct{}{}
	return t, nil
}

// Release frees r. Releasing a resource twice, or one from another device,
// is a no-op.
func (d *HostDevice) Release(r Resource) {
	if r == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.live[r]; !ok {
		return
	}
	delete(d.live, r)
	d.releases++
	switch x := r.(type) {
	case *hostBuffer:
		d.used -= len(x.data)
	case *hostTexture:
		d.used -= len(x.pixels)
	}
}

// FailLabel makes every allocation with the given label fail. An empty
// label clears the injection.
func (d *HostDevice) FailLabel(label string) {
	d.mu.Lock()
	d.failLabel = label
	d.mu.Unlock()
}

// Contents returns a copy of the bytes held by a live buffer or texture.
func (d *HostDevice) Contents(r Resource) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.live[r]; !ok {
		return nil, false
	}
	switch x := r.(type) {
	case *hostBuffer:
		return append([]byte(nil), x.data...), true
	case *hostTexture:
		return append([]byte(nil), x.pixels...), true
	}
	return nil, false
}

// Stats is a snapshot of a HostDevice's counters.
type Stats struct {
	Buffers  int // buffers ever allocated
	Textures int // textures ever allocated
	Releases int
	Live     int
	Used     int // bytes held by live resources
}

// Stats returns the current counters.
func (d *HostDevice) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		Buffers:  d.buffers,
		Textures: d.textures,
		Releases: d.releases,
		Live:     len(d.live),
		Used:     d.used,
	}
}
