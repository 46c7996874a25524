// Package display turns decoded grayscale frames into displayable images on
// the host side of the link.
package display

import (
	"fmt"
	"image"
	"math"
)

// ExpandRGBA writes luma as opaque gray RGBA pixels. rgba must be exactly
// four times the length of luma.
func ExpandRGBA(luma, rgba []byte) error {
	if len(rgba) != 4*len(luma) {
		return fmt.Errorf("display: rgba buffer is %d bytes, want %d", len(rgba), 4*len(luma))
	}
	for i, v := range luma {
		p := rgba[4*i : 4*i+4 : 4*i+4]
		p[0] = v
		p[1] = v
		p[2] = v
		p[3] = 255
	}
	return nil
}

// SquareSize returns the side length of a square frame of n pixels.
func SquareSize(n int) (int, error) {
	side := int(math.Sqrt(float64(n)))
	for side*side < n {
		side++
	}
	for side*side > n {
		side--
	}
	if side == 0 || side*side != n {
		return 0, fmt.Errorf("display: %d bytes is not a square frame", n)
	}
	return side, nil
}

// Gray wraps a size x size luma frame as an image without copying.
func Gray(luma []byte, size int) (*image.Gray, error) {
	if size <= 0 || len(luma) != size*size {
		return nil, fmt.Errorf("display: frame is %d bytes, want %dx%d", len(luma), size, size)
	}
	return &image.Gray{
		Pix:    luma,
		Stride: size,
		Rect:   image.Rect(0, 0, size, size),
	}, nil
}

// RGBA converts a size x size luma frame to a new RGBA image.
func RGBA(luma []byte, size int) (*image.RGBA, error) {
	if size <= 0 || len(luma) != size*size {
		return nil, fmt.Errorf("display: frame is %d bytes, want %dx%d", len(luma), size, size)
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if err := ExpandRGBA(luma, img.Pix); err != nil {
		return nil, err
	}
	return img, nil
}
