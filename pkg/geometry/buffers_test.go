package geometry

import (
	"image"
	"image/color"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/mirage/pkg/gpu"
)

func TestComputeNormals(t *testing.T) {
	n := New(append(append([]float32(nil), unitTriangle...),
		0, 0, 0,
		0, 0, 1,
		1, 0, 0,
	))
	require.NoError(t, n.Validate())

	normals := n.ComputeNormals()
	require.Len(t, normals, n.NumVertices()*3)

	for tri := 0; tri < 2; tri++ {
		first := normals[tri*9 : tri*9+3]
		for v := 1; v < 3; v++ {
			assert.Equal(t, first, normals[tri*9+v*3:tri*9+v*3+3])
		}
		l := math32.Sqrt(first[0]*first[0] + first[1]*first[1] + first[2]*first[2])
		assert.InDelta(t, 1, l, 1e-6)
	}
	assert.Equal(t, []float32{0, 0, 1}, normals[0:3])
	assert.Equal(t, []float32{0, 1, 0}, normals[9:12])
}

func TestComputeNormalsDegenerate(t *testing.T) {
	n := New([]float32{
		0, 0, 0,
		1, 1, 1,
		2, 2, 2,
	})
	assert.Equal(t, make([]float32, 9), n.ComputeNormals())
}

func TestComputeNormalsOtherKinds(t *testing.T) {
	for _, k := range []PrimitiveKind{Line, Point, LineStrip, TriangleStrip} {
		n := New(make([]float32, 12)).WithType(k)
		assert.Empty(t, n.ComputeNormals(), k.String())
	}
}

func TestVertexBufferCached(t *testing.T) {
	dev := gpu.NewHostDevice(0)
	n := New(unitTriangle)

	a, err := n.VertexBuffer(dev)
	require.NoError(t, err)
	b, err := n.VertexBuffer(dev)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, dev.Stats().Buffers)

	got, ok := dev.Contents(a)
	require.True(t, ok)
	assert.Equal(t, unitTriangle, gpu.BytesFloat32(got))

	n.SetVertices([]float32{0, 0, 0, 0, 0, 1, 0, 1, 0})
	c, err := n.VertexBuffer(dev)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, dev.Stats().Buffers)
	assert.Equal(t, 1, dev.Stats().Releases)
	assert.Equal(t, 1, dev.Stats().Live)
}

func TestDerivedCopySharesBuffer(t *testing.T) {
	dev := gpu.NewHostDevice(0)
	n := New(unitTriangle)
	a, err := n.VertexBuffer(dev)
	require.NoError(t, err)

	moved := n.WithPosition(3, 0, 0).WithColors(make([]float32, 12))
	b, err := moved.VertexBuffer(dev)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, dev.Stats().Buffers)

	replaced := n.WithVertices(unitTriangle)
	_, err = replaced.VertexBuffer(dev)
	require.NoError(t, err)
	assert.Equal(t, 2, dev.Stats().Buffers)
}

func TestReleaseThenRebuild(t *testing.T) {
	dev := gpu.NewHostDevice(0)
	n := New(unitTriangle).WithColors(make([]float32, 12))
	_, err := n.VertexBuffer(dev)
	require.NoError(t, err)
	_, err = n.ColorBuffer(dev)
	require.NoError(t, err)
	_, err = n.NormalBuffer(dev)
	require.NoError(t, err)
	assert.Equal(t, Realized{Vertices: true, Colors: true, Normals: true}, n.Realized())

	n.Release()
	assert.Equal(t, Realized{}, n.Realized())
	assert.Equal(t, 0, dev.Stats().Live)

	_, err = n.VertexBuffer(dev)
	require.NoError(t, err)
	assert.Equal(t, 4, dev.Stats().Buffers)
}

func TestReleaseReplaced(t *testing.T) {
	dev := gpu.NewHostDevice(0)
	old := New(unitTriangle).WithColors(make([]float32, 12))
	_, err := old.VertexBuffer(dev)
	require.NoError(t, err)
	_, err = old.ColorBuffer(dev)
	require.NoError(t, err)

	next := old.WithColors(make([]float32, 12))
	ReleaseReplaced(old, next)
	r := old.Realized()
	assert.True(t, r.Vertices)
	assert.False(t, r.Colors)
}

func TestOptionalBuffers(t *testing.T) {
	dev := gpu.NewHostDevice(0)
	n := New(unitTriangle)

	cb, err := n.ColorBuffer(dev)
	assert.NoError(t, err)
	assert.Nil(t, cb)

	tex, err := n.MakeTexture(dev)
	assert.NoError(t, err)
	assert.Nil(t, tex)

	nb, err := n.WithType(Point).NormalBuffer(dev)
	assert.NoError(t, err)
	assert.Nil(t, nb)

	vb, err := Node{}.VertexBuffer(dev)
	assert.NoError(t, err)
	assert.Nil(t, vb)
	assert.Equal(t, 0, dev.Stats().Buffers)
}

func TestNormalBufferContents(t *testing.T) {
	dev := gpu.NewHostDevice(0)
	buf, err := New(unitTriangle).NormalBuffer(dev)
	require.NoError(t, err)
	assert.Equal(t, "normals", buf.Label())
	got, ok := dev.Contents(buf)
	require.True(t, ok)
	assert.Equal(t, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, gpu.BytesFloat32(got))
}

func TestResourceFailure(t *testing.T) {
	dev := gpu.NewHostDevice(0)
	dev.FailLabel("vertices")
	n := New(unitTriangle)

	_, err := n.VertexBuffer(dev)
	require.Error(t, err)
	assert.True(t, gpu.IsResourceFailure(err))
	assert.False(t, n.Realized().Vertices)

	dev.FailLabel("")
	buf, err := n.VertexBuffer(dev)
	require.NoError(t, err)
	assert.NotNil(t, buf)
}

func TestMakeTexture(t *testing.T) {
	dev := gpu.NewHostDevice(0)
	img := NewImage(2, 1, []byte{255, 0, 0, 255, 0, 255, 0, 255})
	n := New(unitTriangle).WithImageTexture(img)

	tex, err := n.MakeTexture(dev)
	require.NoError(t, err)
	assert.Equal(t, 2, tex.Width())
	assert.Equal(t, 1, tex.Height())

	again, err := n.WithPosition(1, 0, 0).MakeTexture(dev)
	require.NoError(t, err)
	assert.Same(t, tex, again)
	assert.Equal(t, 1, dev.Stats().Textures)

	n.SetImageTexture(nil)
	assert.Equal(t, 0, dev.Stats().Live)
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	img := FromImage(src)
	require.NoError(t, img.Validate())
	assert.Equal(t, 3, img.Width())
	assert.Equal(t, 2, img.Height())
	pix := img.Pixels()
	assert.Equal(t, []byte{10, 20, 30, 255}, pix[(1*3+2)*4:(1*3+2)*4+4])
}

func TestImageValidate(t *testing.T) {
	assert.NoError(t, NewImage(2, 2, make([]byte, 16)).Validate())
	assert.Error(t, NewImage(0, 2, nil).Validate())
	assert.Error(t, NewImage(2, 2, make([]byte, 15)).Validate())
}
