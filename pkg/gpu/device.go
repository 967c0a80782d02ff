// Package gpu defines the opaque device capability node geometry is
// realized on. The concrete graphics API lives behind Device; Mirage only
// creates, caches and releases handles.
package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

// Resource is any handle a Device hands out.
type Resource interface {
	Label() string
}

// Buffer is a GPU-resident data buffer.
type Buffer interface {
	Resource
	Size() int
	Usage() gputypes.BufferUsage
}

// Texture is a GPU-resident 2D image.
type Texture interface {
	Resource
	Width() int
	Height() int
	Format() gputypes.TextureFormat
}

// TextureDesc describes a texture to create.
type TextureDesc struct {
	Label  string
	Size   gputypes.Extent3D
	Format gputypes.TextureFormat
}

// Device realizes buffers and textures. NewBuffer and NewTexture must be
// called on the thread owning the device. Release may be called from any
// goroutine; implementations defer destruction to their own thread.
type Device interface {
	NewBuffer(label string, data []byte, usage gputypes.BufferUsage) (Buffer, error)
	NewTexture(desc TextureDesc, pixels []byte) (Texture, error)
	Release(r Resource)
}

// VertexUsage is the usage of every vertex attribute buffer.
const VertexUsage = gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst

// ResourceError reports a failed buffer or texture allocation. The render
// loop skips the affected node for the frame.
type ResourceError struct {
	Label string
	Size  int
	Err   error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("gpu: allocating %s (%d bytes): %v", e.Label, e.Size, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// IsResourceFailure reports whether err is, or wraps, a ResourceError.
func IsResourceFailure(err error) bool {
	var re *ResourceError
	return errors.As(err, &re)
}

// Float32Bytes encodes data as little-endian bytes, the layout vertex
// buffers are uploaded in.
func Float32Bytes(data []float32) []byte {
	out := make([]byte, 4*len(data))
	for i, f := range data {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

// BytesFloat32 decodes the layout written by Float32Bytes.
func BytesFloat32(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out
}
