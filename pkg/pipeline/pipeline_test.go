package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/sineshade/pkg/cache"
	"github.com/matzehuels/sineshade/pkg/errors"
	"github.com/matzehuels/sineshade/pkg/sinusoid"
	"github.com/matzehuels/sineshade/pkg/vector"
)

// testPNG encodes a horizontal gradient of the given size.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / max(w-1, 1))})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	return buf.Bytes()
}

func testOptions() Options {
	return Options{
		Shading: sinusoid.DefaultConfig().WithLines(4).WithSize(80, 40).WithSampleFreq(1),
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	var opts Options
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("Formats = %v, want [%s]", opts.Formats, DefaultFormat)
	}
	if opts.Precision == nil || *opts.Precision != DefaultPrecision {
		t.Errorf("Precision = %v, want %d", opts.Precision, DefaultPrecision)
	}
	if opts.StrokeWidth != DefaultStrokeWidth {
		t.Errorf("StrokeWidth = %v, want %v", opts.StrokeWidth, DefaultStrokeWidth)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.MaxDimension != DefaultMaxDimension {
		t.Errorf("MaxDimension = %d, want %d", opts.MaxDimension, DefaultMaxDimension)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestSetRenderDefaultsDeduplicatesFormats(t *testing.T) {
	opts := Options{Formats: []string{"svg", "png", "svg", "json", "png"}}
	opts.SetRenderDefaults()

	want := []string{"svg", "png", "json"}
	if strings.Join(opts.Formats, ",") != strings.Join(want, ",") {
		t.Errorf("Formats = %v, want %v", opts.Formats, want)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Options)
		wantField string
	}{
		{"valid", func(*Options) {}, ""},
		{"bad lines", func(o *Options) { o.Shading.Lines = 0 }, "lines"},
		{"bad width", func(o *Options) { o.Shading.Width = -1 }, "width"},
		{"bad precision", func(o *Options) { o.SetPrecision(-2) }, "precision"},
		{"zero precision", func(o *Options) { o.SetPrecision(0) }, ""},
		{"sample freq above limit", func(o *Options) { o.Shading.SampleFreq = 1e7 }, "sample_freq"},
		{"huge png canvas", func(o *Options) {
			o.Formats = []string{"png"}
			o.Shading.Width, o.Shading.Height = 1_000_000_000, 1_000_000_000
		}, "scale"},
		{"huge png scale", func(o *Options) {
			o.Formats = []string{"svg", "png"}
			o.Scale = 1000
		}, "scale"},
		{"huge svg canvas", func(o *Options) {
			o.Shading.Width, o.Shading.Height = 1_000_000_000, 1_000_000_000
		}, ""},
		{"bad stroke width", func(o *Options) { o.StrokeWidth = -1 }, "stroke_width"},
		{"bad scale", func(o *Options) { o.Scale = -0.5 }, "scale"},
		{"match size ignores width", func(o *Options) {
			o.MatchImageSize = true
			o.Shading.Width, o.Shading.Height = 0, 0
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.modify(&opts)
			err := opts.ValidateAndSetDefaults()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateAndSetDefaults() error: %v", err)
				}
				return
			}
			if !errors.IsValidation(err) {
				t.Fatalf("ValidateAndSetDefaults() error = %v, want validation error", err)
			}
			if got := errors.GetField(err); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestValidateAndSetDefaultsRejectsFormat(t *testing.T) {
	opts := testOptions()
	opts.Formats = []string{"svg", "gif"}
	if err := opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := testOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first call error: %v", err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second call error: %v", err)
	}
	if *opts.Precision != *first.Precision || opts.MaxDimension != first.MaxDimension {
		t.Error("second call should not change options")
	}
}

func TestSetRenderDefaultsKeepsZeroPrecision(t *testing.T) {
	opts := testOptions()
	opts.SetPrecision(0)
	opts.SetRenderDefaults()
	if *opts.Precision != 0 {
		t.Errorf("Precision = %d, want 0", *opts.Precision)
	}

	doc := vector.New(10, 10)
	doc.Paths = []vector.Polyline{{{X: 1.25, Y: 2.75}, {X: 3.75, Y: 4}}}
	artifacts, err := RenderDocument(doc, opts)
	if err != nil {
		t.Fatalf("RenderDocument() error: %v", err)
	}
	if svg := string(artifacts["svg"]); !strings.Contains(svg, `d="M1 3L4 4"`) {
		t.Errorf("precision 0 should print integers:\n%s", svg)
	}
	if opts.ArtifactKeyOpts("svg").Precision != 0 {
		t.Error("cache key should carry precision 0")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := testOptions()
	opts.SetRenderDefaults()

	svg := opts.ArtifactKeyOpts("svg")
	png := opts.ArtifactKeyOpts("png")

	if svg.Precision != DefaultPrecision || svg.Scale != 0 {
		t.Errorf("svg key = %+v, want precision only", svg)
	}
	if png.Scale != DefaultScale || png.Precision != 0 {
		t.Errorf("png key = %+v, want scale only", png)
	}

	// Changing precision must not invalidate PNG artifacts.
	other := opts
	other.SetPrecision(6)
	if other.ArtifactKeyOpts("png") != png {
		t.Error("precision should not affect png key")
	}
	if other.ArtifactKeyOpts("svg") == svg {
		t.Error("precision should affect svg key")
	}

	matched := opts
	matched.MatchImageSize = true
	if k := matched.ArtifactKeyOpts("svg"); k.Shading.Width != 0 || k.Shading.Height != 0 {
		t.Errorf("match-size key should zero the configured size, got %dx%d", k.Shading.Width, k.Shading.Height)
	}
}

func TestRenderDocument(t *testing.T) {
	doc := vector.New(10, 10)
	doc.Paths = []vector.Polyline{{{X: 0, Y: 5}, {X: 10, Y: 5}}}

	opts := Options{
		Shading:     testOptions().Shading,
		Formats:     []string{"svg", "json", "png", "pdf"},
		StrokeWidth: 2.5,
	}
	artifacts, err := RenderDocument(doc, opts)
	if err != nil {
		t.Fatalf("RenderDocument() error: %v", err)
	}
	if len(artifacts) != 4 {
		t.Fatalf("artifacts = %d, want 4", len(artifacts))
	}
	if !bytes.Contains(artifacts["svg"], []byte(`stroke-width="2.5"`)) {
		t.Errorf("svg should carry the stroke width:\n%s", artifacts["svg"])
	}
	if !bytes.HasPrefix(artifacts["png"], []byte("\x89PNG")) {
		t.Error("png artifact should start with the PNG signature")
	}
	if !bytes.HasPrefix(artifacts["pdf"], []byte("%PDF-")) {
		t.Error("pdf artifact should start with %PDF-")
	}
	if doc.Stroke.Width != vector.DefaultStroke.Width {
		t.Error("RenderDocument should not modify the input document")
	}
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	opts := testOptions()
	opts.Formats = []string{"svg", "json"}
	result, err := r.Execute(context.Background(), testPNG(t, 20, 8), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if result.CacheInfo.RenderHit {
		t.Error("null cache should never hit")
	}
	if result.Document == nil {
		t.Fatal("Document should be set after a transform")
	}
	if got := len(result.Document.Paths); got != 4 {
		t.Errorf("paths = %d, want 4", got)
	}
	if result.Stats.ImageWidth != 20 || result.Stats.ImageHeight != 8 {
		t.Errorf("image size = %dx%d, want 20x8", result.Stats.ImageWidth, result.Stats.ImageHeight)
	}
	if result.Stats.SamplesPerRow != 20 {
		t.Errorf("SamplesPerRow = %d, want 20", result.Stats.SamplesPerRow)
	}
	if result.Stats.Points != 80 {
		t.Errorf("Points = %d, want 80", result.Stats.Points)
	}
	if !bytes.HasPrefix(result.Artifacts["svg"], []byte("<svg")) {
		t.Errorf("svg artifact = %.40q", result.Artifacts["svg"])
	}
	if _, ok := result.Artifacts["json"]; !ok {
		t.Error("json artifact missing")
	}
	if result.ImageHash == "" {
		t.Error("ImageHash should be set")
	}
}

func TestRunnerMatchImageSize(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	opts := testOptions()
	opts.MatchImageSize = true
	result, err := r.Execute(context.Background(), testPNG(t, 30, 12), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.Config.Width != 30 || result.Config.Height != 12 {
		t.Errorf("effective size = %dx%d, want 30x12", result.Config.Width, result.Config.Height)
	}
	if result.Document.Width != 30 || result.Document.Height != 12 {
		t.Errorf("document size = %vx%v, want 30x12", result.Document.Width, result.Document.Height)
	}
}

func TestRunnerFitsLargeImages(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	opts := testOptions()
	opts.MaxDimension = 10
	result, err := r.Execute(context.Background(), testPNG(t, 40, 20), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.Stats.ImageWidth != 10 || result.Stats.ImageHeight != 5 {
		t.Errorf("fitted size = %dx%d, want 10x5", result.Stats.ImageWidth, result.Stats.ImageHeight)
	}

	opts.MaxDimension = -1
	result, err = r.Execute(context.Background(), testPNG(t, 40, 20), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.Stats.ImageWidth != 40 {
		t.Errorf("negative MaxDimension should disable fitting, got width %d", result.Stats.ImageWidth)
	}
}

func TestRunnerCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	ctx := context.Background()
	data := testPNG(t, 16, 8)
	opts := testOptions()
	opts.Formats = []string{"svg", "png"}

	first, err := r.Execute(ctx, data, opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}

	second, err := r.Execute(ctx, data, opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit")
	}
	if second.Document != nil {
		t.Error("cached result should not carry a document")
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs from rendered svg")
	}

	// A format that was never rendered forces a full run.
	opts.Formats = []string{"svg", "json"}
	third, err := r.Execute(ctx, data, opts)
	if err != nil {
		t.Fatalf("third Execute() error: %v", err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("partial hit should be treated as a miss")
	}

	opts.Refresh = true
	fourth, err := r.Execute(ctx, data, opts)
	if err != nil {
		t.Fatalf("refresh Execute() error: %v", err)
	}
	if fourth.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}

	// Different shading parameters never share artifacts.
	opts.Refresh = false
	opts.Shading = opts.Shading.WithAmplitude(0.1)
	fifth, err := r.Execute(ctx, data, opts)
	if err != nil {
		t.Fatalf("fifth Execute() error: %v", err)
	}
	if fifth.CacheInfo.RenderHit {
		t.Error("changed amplitude should miss")
	}
}

func TestRunnerErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	t.Run("invalid options", func(t *testing.T) {
		opts := testOptions()
		opts.Shading.Lines = 0
		_, err := r.Execute(ctx, testPNG(t, 4, 4), opts)
		if !errors.IsValidation(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("undecodable image", func(t *testing.T) {
		_, err := r.Execute(ctx, []byte("not an image"), testOptions())
		if !errors.IsDecode(err) {
			t.Errorf("error = %v, want decode error", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.Execute(cctx, testPNG(t, 4, 4), testOptions())
		if err == nil {
			t.Error("canceled context should fail")
		}
	})
}

func TestRunnerPrepareLimits(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	t.Run("too many points", func(t *testing.T) {
		opts := testOptions()
		opts.Shading = opts.Shading.WithLines(64).WithSampleFreq(MaxSampleFreq)
		// 64 rows of 102400 samples
		_, err := r.Prepare(context.Background(), testPNG(t, 1024, 64), opts)
		if got := errors.GetField(err); got != "lines" {
			t.Errorf("error = %v, want lines limit", err)
		}
	})

	t.Run("matched size png canvas", func(t *testing.T) {
		opts := testOptions()
		opts.MatchImageSize = true
		opts.Formats = []string{"png"}
		opts.Scale = 2000
		_, err := r.Prepare(context.Background(), testPNG(t, 12, 6), opts)
		if got := errors.GetField(err); got != "scale" {
			t.Errorf("error = %v, want scale limit", err)
		}
	})

	t.Run("within limits", func(t *testing.T) {
		opts := testOptions()
		opts.Shading = opts.Shading.WithSampleFreq(MaxSampleFreq)
		if _, err := r.Prepare(context.Background(), testPNG(t, 64, 8), opts); err != nil {
			t.Errorf("Prepare() error: %v", err)
		}
	})
}

func TestRunnerPrepare(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	opts := testOptions()
	opts.MatchImageSize = true
	prep, err := r.Prepare(context.Background(), testPNG(t, 12, 6), opts)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if prep.Format != "png" {
		t.Errorf("Format = %q, want png", prep.Format)
	}
	if prep.Config.Width != 12 || prep.Config.Height != 6 {
		t.Errorf("Config size = %dx%d, want 12x6", prep.Config.Width, prep.Config.Height)
	}
	if got := prep.Image.GrayAt(11, 0).Y; got != 255 {
		t.Errorf("right edge = %d, want 255", got)
	}
}
