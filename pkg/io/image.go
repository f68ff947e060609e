package io

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Fit returns img scaled down so that neither side exceeds maxDim, keeping
// the aspect ratio. Images already within bounds, and any img when
// maxDim <= 0, are returned unchanged. Each side keeps at least one pixel.
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	nw, nh := maxDim, maxDim
	if w >= h {
		nh = max(h*maxDim/w, 1)
	} else {
		nw = max(w*maxDim/h, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Grayscale converts img to *image.Gray with origin (0, 0). A *image.Gray
// input is returned as is.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
