package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/sineshade/pkg/errors"
	"github.com/matzehuels/sineshade/pkg/vector"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithScale sets the PNG scale factor (default 1). The canvas size and the
// stroke width are both multiplied by s.
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG rasterizes the document with anti-aliased strokes on a white
// background.
func RenderPNG(doc *vector.Document, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if err := errors.ValidatePositive("scale", r.scale); err != nil {
		return nil, err
	}

	s := r.scale
	w := max(int(math.Ceil(doc.Width*s)), 1)
	h := max(int(math.Ceil(doc.Height*s)), 1)

	dc := gg.NewContext(w, h)
	defer func() { _ = dc.Close() }()

	dc.ClearWithColor(gg.White)
	c := strokeColor(doc.Stroke.Color)
	dc.SetRGBA(c.R, c.G, c.B, c.A)
	dc.SetLineWidth(doc.Stroke.Width * s)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.SetLineCap(gg.LineCapRound)

	drawn := false
	for _, line := range doc.Paths {
		if len(line) < 2 {
			continue
		}
		dc.MoveTo(line[0].X*s, line[0].Y*s)
		for _, pt := range line[1:] {
			dc.LineTo(pt.X*s, pt.Y*s)
		}
		drawn = true
	}
	if drawn {
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("stroke paths: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
