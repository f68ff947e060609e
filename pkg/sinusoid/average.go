package sinusoid

import (
	"image"
	"math"
)

// AverageRows reduces img to min(lines, height) rows by vertical averaging.
//
// Band n covers source rows [round(n*h/lines), round((n+1)*h/lines)), the end
// clamped to the image height. Each output cell is the rounded integer mean
// of its band column. A band that ends up empty yields a row of zeros.
// lines must be positive.
func AverageRows(img *image.Gray, lines int) Bands {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	n := min(lines, height)
	out := newBands(n, width)
	if n <= 0 || width == 0 {
		return out
	}
	rowHeight := float64(height) / float64(n)

	forEachRow(n, func(r int) {
		start := int(math.Round(float64(r) * rowHeight))
		end := min(int(math.Round(float64(r+1)*rowHeight)), height)
		if end <= start {
			return
		}

		sums := make([]uint64, width)
		for y := start; y < end; y++ {
			off := img.PixOffset(b.Min.X, b.Min.Y+y)
			for x, v := range img.Pix[off : off+width] {
				sums[x] += uint64(v)
			}
		}

		count := uint64(end - start)
		row := out.Row(r)
		for x, s := range sums {
			row[x] = uint8((s + count/2) / count)
		}
	})

	return out
}
