package sinusoid

import (
	"image"
	"image/color"
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/sineshade/pkg/errors"
)

const tol = 1e-9

// uniform returns a w x h image filled with v.
func uniform(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// rows returns an image whose row y is filled with values[y].
func rows(w int, values ...uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, len(values)))
	for y, v := range values {
		for x := range w {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// pattern returns a deterministic non-uniform image.
func pattern(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Pix[y*img.Stride+x] = uint8((x*7 + y*13) % 256)
		}
	}
	return img
}

func TestConfigValidate(t *testing.T) {
	base := DefaultConfig()
	tests := []struct {
		name      string
		cfg       Config
		wantField string
	}{
		{"defaults", base, ""},
		{"overlapping amplitude", base.WithAmplitude(0.9), ""},
		{"zero amplitude", base.WithAmplitude(0), ""},
		{"equal frequencies", base.WithFrequencyRange(0.1, 0.1), ""},
		{"zero min frequency", base.WithFrequencyRange(0, 1), ""},

		{"zero lines", base.WithLines(0), "lines"},
		{"negative lines", base.WithLines(-3), "lines"},
		{"zero width", base.WithSize(0, 512), "width"},
		{"zero height", base.WithSize(512, 0), "height"},
		{"zero sample freq", base.WithSampleFreq(0), "sample_freq"},
		{"negative sample freq", base.WithSampleFreq(-1), "sample_freq"},
		{"nan sample freq", base.WithSampleFreq(math.NaN()), "sample_freq"},
		{"negative min freq", base.WithFrequencyRange(-1, 1), "min_freq"},
		{"inverted range", base.WithFrequencyRange(2, 1), "min_freq"},
		{"negative amplitude", base.WithAmplitude(-0.1), "amplitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Validate() error = %v, want INVALID_CONFIG", err)
			}
			if got := errors.GetField(err); got != tt.wantField {
				t.Errorf("Validate() field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestConfigBuildersCopy(t *testing.T) {
	base := DefaultConfig()
	changed := base.WithLines(8).WithSize(100, 200)

	if base.Lines != DefaultLines || base.Width != DefaultWidth {
		t.Errorf("builder mutated receiver: %+v", base)
	}
	if changed.Lines != 8 || changed.Width != 100 || changed.Height != 200 {
		t.Errorf("builder result = %+v", changed)
	}
}

func TestAverageRowsBandBoundaries(t *testing.T) {
	// height 5, 2 lines: row height 2.5, bands [0,3) and [3,5)
	img := rows(3, 0, 30, 60, 90, 120)
	b := AverageRows(img, 2)

	if b.Lines != 2 || b.Width != 3 {
		t.Fatalf("AverageRows() = %dx%d, want 2x3", b.Lines, b.Width)
	}
	for x := range 3 {
		if got := b.At(0, x); got != 30 {
			t.Errorf("band 0 col %d = %d, want 30", x, got)
		}
		if got := b.At(1, x); got != 105 {
			t.Errorf("band 1 col %d = %d, want 105", x, got)
		}
	}
}

func TestAverageRowsRoundsMean(t *testing.T) {
	b := AverageRows(rows(2, 0, 255), 1)
	if got := b.At(0, 0); got != 128 {
		t.Errorf("mean of 0 and 255 = %d, want 128", got)
	}
}

func TestAverageRowsClampsLines(t *testing.T) {
	img := rows(2, 10, 20, 30, 40)
	b := AverageRows(img, 10)

	if b.Lines != 4 {
		t.Fatalf("Lines = %d, want 4", b.Lines)
	}
	for y, want := range []uint8{10, 20, 30, 40} {
		if got := b.At(y, 1); got != want {
			t.Errorf("band %d = %d, want %d", y, got, want)
		}
	}
}

func TestAverageRowsSubImage(t *testing.T) {
	full := rows(4, 0, 0, 200, 100)
	sub := full.SubImage(image.Rect(1, 2, 3, 4)).(*image.Gray)

	b := AverageRows(sub, 1)
	if b.Width != 2 {
		t.Fatalf("Width = %d, want 2", b.Width)
	}
	if got := b.At(0, 0); got != 150 {
		t.Errorf("sub-image mean = %d, want 150", got)
	}
}

func TestSamplesPerRow(t *testing.T) {
	tests := []struct {
		width int
		fs    float64
		want  int
	}{
		{4, 1, 4},
		{512, 5, 2560},
		{10, 0.3, 3},
		{3, 0.5, 2},
		{1, 0.1, 1},
		{0, 5, 1},
	}

	for _, tt := range tests {
		if got := SamplesPerRow(tt.width, tt.fs); got != tt.want {
			t.Errorf("SamplesPerRow(%d, %v) = %d, want %d", tt.width, tt.fs, got, tt.want)
		}
	}
}

func TestMapFrequenciesSolidImage(t *testing.T) {
	cfg := DefaultConfig().WithSampleFreq(2).WithFrequencyRange(0.25, 3)
	f := MapFrequencies(AverageRows(uniform(5, 6, 77), 3), cfg)

	if f.Rows != 3 || f.Cols != 10 {
		t.Fatalf("field = %dx%d, want 3x10", f.Rows, f.Cols)
	}
	for i, v := range f.Data {
		if v != cfg.MinFreq {
			t.Fatalf("Data[%d] = %v, want exactly %v", i, v, cfg.MinFreq)
		}
	}
}

func TestMapFrequenciesGlobalScale(t *testing.T) {
	cfg := DefaultConfig().WithSampleFreq(1).WithFrequencyRange(0.5, 2)
	f := MapFrequencies(AverageRows(rows(2, 0, 128, 255), 3), cfg)

	want := []float64{
		2.0,                      // black maps to max
		0.5 + 1.5*(127.0/255.0), // mid gray keeps its global position
		0.5,                      // white maps to min
	}
	for r, w := range want {
		for c := range f.Cols {
			if got := f.At(r, c); math.Abs(got-w) > tol {
				t.Errorf("row %d col %d = %v, want %v", r, c, got, w)
			}
		}
	}
}

func TestMapFrequenciesStepHold(t *testing.T) {
	b := Bands{Lines: 1, Width: 3, Pix: []uint8{255, 0, 255}}

	up := MapFrequencies(b, DefaultConfig().WithSampleFreq(2).WithFrequencyRange(1, 2))
	wantUp := []float64{1, 1, 2, 2, 1, 1}
	if !reflect.DeepEqual(up.Row(0), wantUp) {
		t.Errorf("fs=2 row = %v, want %v", up.Row(0), wantUp)
	}

	b = Bands{Lines: 1, Width: 4, Pix: []uint8{255, 255, 0, 0}}
	down := MapFrequencies(b, DefaultConfig().WithSampleFreq(0.5).WithFrequencyRange(1, 2))
	wantDown := []float64{1, 2}
	if !reflect.DeepEqual(down.Row(0), wantDown) {
		t.Errorf("fs=0.5 row = %v, want %v", down.Row(0), wantDown)
	}
}

func TestMapFrequenciesBounds(t *testing.T) {
	cfg := DefaultConfig().WithSampleFreq(3).WithFrequencyRange(0.001, 2)
	f := MapFrequencies(AverageRows(pattern(37, 50), 16), cfg)

	for i, v := range f.Data {
		if v < cfg.MinFreq-tol || v > cfg.MaxFreq+tol {
			t.Fatalf("Data[%d] = %v outside [%v, %v]", i, v, cfg.MinFreq, cfg.MaxFreq)
		}
	}
}

func TestIntegratePhase(t *testing.T) {
	freq := Field{Rows: 2, Cols: 3, Data: []float64{
		1, 2, 3,
		0.5, 0.5, 0.5,
	}}
	p := IntegratePhase(freq, 2)

	want := []float64{
		0.5, 1.5, 3,
		0.25, 0.5, 0.75,
	}
	for i, w := range want {
		if math.Abs(p.Data[i]-w) > tol {
			t.Errorf("phase[%d] = %v, want %v", i, p.Data[i], w)
		}
	}
}

func TestPhaseMonotonic(t *testing.T) {
	cfg := DefaultConfig().WithSampleFreq(4)
	_, st, err := TransformStages(pattern(40, 40), cfg.WithLines(10))
	if err != nil {
		t.Fatalf("TransformStages() error: %v", err)
	}

	for r := range st.Phase.Rows {
		row := st.Phase.Row(r)
		for n := 1; n < len(row); n++ {
			if row[n] < row[n-1] {
				t.Fatalf("row %d decreases at %d: %v < %v", r, n, row[n], row[n-1])
			}
		}
	}
}

func TestSineFieldRange(t *testing.T) {
	phase := Field{Rows: 1, Cols: 4, Data: []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}}
	s := SineField(phase)

	want := []float64{0, 1, 0, -1}
	for i, w := range want {
		if math.Abs(s.Data[i]-w) > tol {
			t.Errorf("sin[%d] = %v, want %v", i, s.Data[i], w)
		}
	}
}

func TestTransformGrayScenario(t *testing.T) {
	cfg := Config{Lines: 2, Width: 4, Height: 4, SampleFreq: 1, MinFreq: 0.1, MaxFreq: 0.1, Amplitude: 0.4}
	doc, err := Transform(uniform(4, 4, 128), cfg)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}

	if len(doc.Paths) != 2 {
		t.Fatalf("len(Paths) = %d, want 2", len(doc.Paths))
	}
	if doc.Width != 4 || doc.Height != 4 {
		t.Errorf("document size = %vx%v, want 4x4", doc.Width, doc.Height)
	}

	// row height 2, amplitude 0.8 px, x scale 1
	for r, line := range doc.Paths {
		if len(line) != 4 {
			t.Fatalf("row %d has %d points, want 4", r, len(line))
		}
		yOffset := float64(r)*2 + 1
		for n, pt := range line {
			wantY := 0.8*math.Sin(0.1*float64(n+1)) + yOffset
			if math.Abs(pt.X-float64(n)) > tol {
				t.Errorf("row %d point %d x = %v, want %d", r, n, pt.X, n)
			}
			if math.Abs(pt.Y-wantY) > tol {
				t.Errorf("row %d point %d y = %v, want %v", r, n, pt.Y, wantY)
			}
		}
	}
}

func TestTransformRowCount(t *testing.T) {
	tests := []struct {
		name   string
		height int
		lines  int
		want   int
	}{
		{"fewer lines than rows", 100, 7, 7},
		{"equal", 12, 12, 12},
		{"clamped", 3, 64, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig().WithLines(tt.lines).WithSampleFreq(1)
			doc, err := Transform(pattern(20, tt.height), cfg)
			if err != nil {
				t.Fatalf("Transform() error: %v", err)
			}
			if len(doc.Paths) != tt.want {
				t.Errorf("len(Paths) = %d, want %d", len(doc.Paths), tt.want)
			}
		})
	}
}

func TestTransformBoundingBox(t *testing.T) {
	cfg := DefaultConfig().WithLines(9).WithSize(300, 180).WithSampleFreq(3).WithAmplitude(0.45)
	doc, err := Transform(pattern(50, 45), cfg)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}

	rowHeight := float64(cfg.Height) / float64(cfg.Lines)
	ampPx := cfg.Amplitude * rowHeight
	for r, line := range doc.Paths {
		yOffset := (float64(r) + 0.5) * rowHeight
		for n, pt := range line {
			if pt.Y < yOffset-ampPx-tol || pt.Y > yOffset+ampPx+tol {
				t.Fatalf("row %d point %d y = %v outside [%v, %v]", r, n, pt.Y, yOffset-ampPx, yOffset+ampPx)
			}
			if pt.X < -tol || pt.X > float64(cfg.Width)+tol {
				t.Fatalf("row %d point %d x = %v outside [0, %d]", r, n, pt.X, cfg.Width)
			}
			if math.IsNaN(pt.X) || math.IsNaN(pt.Y) {
				t.Fatalf("row %d point %d is NaN", r, n)
			}
		}
	}
}

func TestTransformClampedRowsKeepLayout(t *testing.T) {
	// Two source rows, four requested lines: only two rows are drawn, each
	// in a quarter of the document.
	cfg := Config{Lines: 4, Width: 4, Height: 100, SampleFreq: 1, MinFreq: 0.1, MaxFreq: 0.1, Amplitude: 0.4}
	doc, err := Transform(uniform(4, 2, 128), cfg)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if len(doc.Paths) != 2 {
		t.Fatalf("len(Paths) = %d, want 2", len(doc.Paths))
	}

	ampPx := 0.4 * 25
	for r, yOffset := range []float64{12.5, 37.5} {
		for n, pt := range doc.Paths[r] {
			want := ampPx*math.Sin(0.1*float64(n+1)) + yOffset
			if math.Abs(pt.Y-want) > tol {
				t.Errorf("row %d point %d y = %v, want %v", r, n, pt.Y, want)
			}
		}
	}
}

func TestTransformScaleInvariance(t *testing.T) {
	img := pattern(30, 30)
	cfg := DefaultConfig().WithLines(6).WithSize(120, 90).WithSampleFreq(2)

	a, err := Transform(img, cfg)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	b, err := Transform(img, cfg.WithSize(240, 90))
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}

	for r := range a.Paths {
		for n := range a.Paths[r] {
			pa, pb := a.Paths[r][n], b.Paths[r][n]
			if math.Abs(pb.X-2*pa.X) > tol {
				t.Fatalf("row %d point %d: x %v, doubled width gives %v", r, n, pa.X, pb.X)
			}
			if pb.Y != pa.Y {
				t.Fatalf("row %d point %d: y changed from %v to %v", r, n, pa.Y, pb.Y)
			}
		}
	}
}

func TestTransformDeterministic(t *testing.T) {
	img := pattern(64, 48)
	cfg := DefaultConfig().WithLines(16)

	first, err := Transform(img, cfg)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	for range 5 {
		again, err := Transform(img, cfg)
		if err != nil {
			t.Fatalf("Transform() error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("Transform() output differs between runs")
		}
	}
}

func TestTransformConvertsColorImages(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			rgba.Set(x, y, color.RGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}
	cfg := DefaultConfig().WithLines(4).WithSampleFreq(1)

	fromRGBA, err := Transform(rgba, cfg)
	if err != nil {
		t.Fatalf("Transform(rgba) error: %v", err)
	}
	fromGray, err := Transform(uniform(8, 8, 90), cfg)
	if err != nil {
		t.Fatalf("Transform(gray) error: %v", err)
	}
	if !reflect.DeepEqual(fromRGBA, fromGray) {
		t.Error("gray RGBA image should match equivalent Gray image")
	}
}

func TestTransformRejectsDegenerateInput(t *testing.T) {
	img := uniform(4, 4, 128)
	tests := []struct {
		name string
		img  image.Image
		cfg  Config
		code errors.Code
	}{
		{"zero lines", img, DefaultConfig().WithLines(0), errors.ErrCodeInvalidConfig},
		{"zero width", img, DefaultConfig().WithSize(0, 10), errors.ErrCodeInvalidConfig},
		{"zero height", img, DefaultConfig().WithSize(10, 0), errors.ErrCodeInvalidConfig},
		{"zero sample freq", img, DefaultConfig().WithSampleFreq(0), errors.ErrCodeInvalidConfig},
		{"empty image", image.NewGray(image.Rect(0, 0, 0, 0)), DefaultConfig(), errors.ErrCodeInvalidImage},
		{"zero height image", image.NewGray(image.Rect(0, 0, 5, 0)), DefaultConfig(), errors.ErrCodeInvalidImage},
		{"nil image", nil, DefaultConfig(), errors.ErrCodeInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Transform(tt.img, tt.cfg)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Transform() error = %v, want %s", err, tt.code)
			}
			if !errors.IsValidation(err) {
				t.Errorf("Transform() error %v is not a validation error", err)
			}
			if doc != nil {
				t.Error("Transform() returned a partial document")
			}
		})
	}
}
