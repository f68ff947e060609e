package sinusoid

import (
	"github.com/matzehuels/sineshade/pkg/vector"
)

// Render evaluates sin(phase) and lays every row out as one polyline.
//
// Each row r occupies a band of height cfg.Height/cfg.Lines and is centred
// at (r+0.5) times that height. The band height follows the requested line
// count even when fewer rows were averaged, so clamped rows keep their
// positions and the lower part of the document stays empty. The wave
// amplitude is cfg.Amplitude times the band height. Sample n of a row is
// placed at x = cfg.Width * n / samples, so the full row spans the document
// width. Neighbouring rows are not kept apart: amplitudes above 0.5 overlap.
func Render(phase Field, cfg Config) *vector.Document {
	doc := vector.New(float64(cfg.Width), float64(cfg.Height))
	if phase.Rows == 0 || phase.Cols == 0 {
		return doc
	}

	sine := SineField(phase)
	fs := cfg.SampleFreq
	rowHeight := float64(cfg.Height) / float64(max(cfg.Lines, 1))
	ampPx := cfg.Amplitude * rowHeight
	xScale := float64(cfg.Width) / (float64(phase.Cols) / fs)

	doc.Paths = make([]vector.Polyline, phase.Rows)
	forEachRow(phase.Rows, func(r int) {
		yOffset := (float64(r) + 0.5) * rowHeight
		line := make(vector.Polyline, phase.Cols)
		for n, s := range sine.Row(r) {
			line[n] = vector.Point{
				X: xScale * (float64(n) / fs),
				Y: ampPx*s + yOffset,
			}
		}
		doc.Paths[r] = line
	})

	return doc
}
