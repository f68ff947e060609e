package sinusoid

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Bands holds one averaged intensity row per output line, row-major.
type Bands struct {
	Lines int
	Width int
	Pix   []uint8
}

func newBands(lines, width int) Bands {
	return Bands{Lines: lines, Width: width, Pix: make([]uint8, lines*width)}
}

// Row returns row r as a slice aliasing b.Pix.
func (b Bands) Row(r int) []uint8 {
	return b.Pix[r*b.Width : (r+1)*b.Width]
}

// At returns the intensity at row r, column c.
func (b Bands) At(r, c int) uint8 {
	return b.Pix[r*b.Width+c]
}

// Field is a rows x cols matrix of real values, row-major. It holds the
// frequency, phase and sine stages of the transform.
type Field struct {
	Rows int
	Cols int
	Data []float64
}

func newField(rows, cols int) Field {
	return Field{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// Row returns row r as a slice aliasing f.Data.
func (f Field) Row(r int) []float64 {
	return f.Data[r*f.Cols : (r+1)*f.Cols]
}

// At returns the value at row r, column c.
func (f Field) At(r, c int) float64 {
	return f.Data[r*f.Cols+c]
}

// forEachRow calls fn once for every row index in [0, n), spreading rows over
// at most GOMAXPROCS goroutines. fn must only write state owned by its row.
// It returns after every call has finished.
func forEachRow(n int, fn func(r int)) {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for r := range n {
		g.Go(func() error {
			fn(r)
			return nil
		})
	}
	_ = g.Wait()
}
