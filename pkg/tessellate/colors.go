package tessellate

import (
	"github.com/chazu/mirage/pkg/geometry"
)

// Black is the default solid color.
var Black = [4]float32{0, 0, 0, 1}

// SolidColors gives n vertices the same color. It returns nil for n <= 0.
func SolidColors(n int, rgba [4]float32) []float32 {
	if n <= 0 {
		return nil
	}
	out := make([]float32, 0, n*4)
	for i := 0; i < n; i++ {
		out = append(out, rgba[:]...)
	}
	return out
}

// CycleColors cycles n vertices through red, green and blue.
func CycleColors(n int) []float32 {
	if n <= 0 {
		return nil
	}
	out := make([]float32, n*4)
	for i := 0; i < n; i++ {
		out[i*4+i%3] = 1
		out[i*4+3] = 1
	}
	return out
}

// HeightColors shades each vertex of a flat xyz array by its z.
func HeightColors(positions []float32) []float32 {
	n := len(positions) / 3
	out := make([]float32, 0, n*4)
	for i := 0; i < n; i++ {
		z := positions[i*3+2]
		out = append(out, z, 1-z, 1-z*0.5, 1)
	}
	return out
}

// Checkerboard alternates dark and light per triangle of a triangle list
// with n vertices.
func Checkerboard(n int, dark, light [4]float32) []float32 {
	if n <= 0 {
		return nil
	}
	out := make([]float32, 0, n*4)
	for i := 0; i < n; i++ {
		c := dark
		if (i/3)%2 == 1 {
			c = light
		}
		out = append(out, c[:]...)
	}
	return out
}

// CheckerImage is a w by h texture of square cells alternating between
// black and white. A non-positive size gives an empty image that fails
// validation.
func CheckerImage(w, h, cells int) *geometry.Image {
	if w <= 0 || h <= 0 {
		return geometry.NewImage(w, h, nil)
	}
	if cells <= 0 {
		cells = 1
	}
	pix := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v byte
			if (x*cells/max(w, 1)+y*cells/max(h, 1))%2 == 0 {
				v = 255
			}
			pix = append(pix, v, v, v, 255)
		}
	}
	return geometry.NewImage(w, h, pix)
}
