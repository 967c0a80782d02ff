package geometry

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/gogpu/gputypes"

	"github.com/chazu/mirage/pkg/gpu"
)

// Image is an immutable RGBA8 pixel grid, row-major from the top-left,
// that a node may carry as its texture.
type Image struct {
	width, height int
	pix           []byte
	version       uint64
	tex           slot
}

// NewImage copies pix into a new image. Dimensions are not checked here;
// Validate reports a mismatch.
func NewImage(width, height int, pix []byte) *Image {
	return &Image{
		width:   width,
		height:  height,
		pix:     append([]byte(nil), pix...),
		version: nextVersion(),
	}
}

// FromImage converts any decoded image to RGBA8.
func FromImage(src image.Image) *Image {
	rgba := clone.AsRGBA(src)
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		off := y * rgba.Stride
		pix = append(pix, rgba.Pix[off:off+w*4]...)
	}
	return &Image{width: w, height: h, pix: pix, version: nextVersion()}
}

func (im *Image) Width() int  { return im.width }
func (im *Image) Height() int { return im.height }

// Pixels returns a copy of the pixel bytes.
func (im *Image) Pixels() []byte { return append([]byte(nil), im.pix...) }

// Validate checks the dimensions against the pixel data.
func (im *Image) Validate() error {
	if im.width <= 0 || im.height <= 0 {
		return fmt.Errorf("texture has invalid size %dx%d", im.width, im.height)
	}
	if want := im.width * im.height * 4; len(im.pix) != want {
		return fmt.Errorf("texture %dx%d has %d pixel bytes, want %d", im.width, im.height, len(im.pix), want)
	}
	return nil
}

func (im *Image) stamp() uint64 {
	if im == nil {
		return 0
	}
	return im.version
}

func (im *Image) release() {
	if im != nil {
		im.tex.release()
	}
}

func (im *Image) texture(dev gpu.Device) (gpu.Texture, error) {
	res, err := im.tex.get(dev, im.version, func() (gpu.Resource, error) {
		desc := gpu.TextureDesc{
			Label: "texture",
			Size: gputypes.Extent3D{
				Width:              uint32(im.width),
				Height:             uint32(im.height),
				DepthOrArrayLayers: 1,
			},
			Format: gputypes.TextureFormatRGBA8Unorm,
		}
		return dev.NewTexture(desc, im.pix)
	})
	if err != nil {
		return nil, err
	}
	return res.(gpu.Texture), nil
}
