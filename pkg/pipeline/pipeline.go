// Package pipeline provides the decode → transform → render pipeline for
// sineshade.
//
// This package implements the complete pipeline that is used by the CLI, the
// interactive tuner and the HTTP API. By centralizing this logic, every entry
// point applies the same defaults, the same cache keys and the same limits.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: read the image bytes, fit them to [Options.MaxDimension] and
//     convert to grayscale
//  2. Transform: run [sinusoid.Transform] with [Options.Shading]
//  3. Render: encode the document in every requested format
//
// Rendered artifacts are cached under a key built from the SHA-256 of the
// image bytes and every option that changes the output, so a repeated request
// skips all three stages.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Shading: sinusoid.DefaultConfig().WithLines(96),
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, imageBytes, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// [sinusoid.Transform]: github.com/matzehuels/sineshade/pkg/sinusoid.Transform
package pipeline

import (
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sineshade/pkg/cache"
	"github.com/matzehuels/sineshade/pkg/errors"
	"github.com/matzehuels/sineshade/pkg/sink"
	"github.com/matzehuels/sineshade/pkg/sinusoid"
	"github.com/matzehuels/sineshade/pkg/vector"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API and TUI
// =============================================================================

const (
	// DefaultMaxDimension caps the longer image side before transforming.
	// Larger images are downscaled; the point count grows with width*lines.
	DefaultMaxDimension = 1024

	// DefaultPrecision is the number of decimals in SVG coordinates.
	DefaultPrecision = sink.DefaultPrecision

	// DefaultStrokeWidth is the stroke width in document units.
	DefaultStrokeWidth = 1.0

	// DefaultScale is the PNG scale factor.
	DefaultScale = 1.0
)

// Limits applied to every run. They keep a single request from allocating
// more than a few hundred megabytes.
const (
	// MaxSampleFreq bounds the path points per source column.
	MaxSampleFreq = 100.0

	// MaxPoints bounds rows times samples per row for one transform.
	MaxPoints = 1 << 22

	// MaxCanvasPixels bounds the PNG canvas, width*scale by height*scale.
	MaxCanvasPixels = 1 << 26
)

// DefaultFormat is the output format used when none is requested.
const DefaultFormat = sink.FormatSVG

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API responses.
type Options struct {
	// Transform options
	Shading        sinusoid.Config `json:"shading"`
	MaxDimension   int             `json:"max_dimension,omitempty"`    // 0 selects the default, < 0 disables fitting
	MatchImageSize bool            `json:"match_image_size,omitempty"` // Size the document to the fitted image

	// Render options
	Formats        []string `json:"formats,omitempty"`
	Precision      *int     `json:"precision,omitempty"` // nil selects DefaultPrecision
	StrokeWidth    float64  `json:"stroke_width,omitempty"`
	Scale          float64  `json:"scale,omitempty"`
	XMLDeclaration bool     `json:"xml_declaration,omitempty"`

	// Refresh bypasses the cache lookup; results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the transformed document. It is nil when every artifact
	// came from the cache.
	Document *vector.Document

	// Config is the effective shading configuration (after MatchImageSize).
	Config sinusoid.Config

	// ImageHash is the SHA-256 of the input bytes.
	ImageHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the cache served the request.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ImageWidth    int
	ImageHeight   int
	Lines         int
	SamplesPerRow int
	Points        int
	DecodeTime    time.Duration
	TransformTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, sink.Formats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults fills unset render options and validates everything
// before any image work starts. With MatchImageSize the configured width and
// height are replaced later, so they are not checked here.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetRenderDefaults()

	shading := o.Shading
	if o.MatchImageSize {
		shading.Width, shading.Height = 1, 1
	}
	if err := shading.Validate(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if *o.Precision < 0 {
		return errors.Invalid("precision", "must not be negative, got %d", *o.Precision)
	}
	if err := errors.ValidatePositive("stroke_width", o.StrokeWidth); err != nil {
		return err
	}
	if err := errors.ValidatePositive("scale", o.Scale); err != nil {
		return err
	}
	if o.Shading.SampleFreq > MaxSampleFreq {
		return errors.Invalid("sample_freq", "must be at most %g, got %g", MaxSampleFreq, o.Shading.SampleFreq)
	}
	if !o.MatchImageSize {
		if err := o.checkCanvas(o.Shading); err != nil {
			return err
		}
	}

	o.validated = true
	return nil
}

// SetRenderDefaults replaces zero-valued options with their defaults and
// drops repeated formats.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.Formats = uniqueFormats(o.Formats)
	if o.Precision == nil {
		o.SetPrecision(DefaultPrecision)
	}
	if o.StrokeWidth == 0 {
		o.StrokeWidth = DefaultStrokeWidth
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.MaxDimension == 0 {
		o.MaxDimension = DefaultMaxDimension
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetPrecision sets the SVG coordinate precision. Zero prints integers.
func (o *Options) SetPrecision(p int) {
	o.Precision = &p
}

func (o *Options) precision() int {
	if o.Precision == nil {
		return DefaultPrecision
	}
	return *o.Precision
}

// checkCanvas rejects PNG canvases above MaxCanvasPixels.
func (o *Options) checkCanvas(cfg sinusoid.Config) error {
	if !slices.Contains(o.Formats, sink.FormatPNG) {
		return nil
	}
	w := math.Ceil(float64(cfg.Width) * o.Scale)
	h := math.Ceil(float64(cfg.Height) * o.Scale)
	if w*h > MaxCanvasPixels {
		return errors.Invalid("scale", "PNG canvas %.0fx%.0f exceeds %d pixels", w, h, MaxCanvasPixels)
	}
	return nil
}

// checkLimits rejects runs whose transform or PNG canvas would exceed the
// package limits for an image of the given size.
func (o *Options) checkLimits(cfg sinusoid.Config, imageWidth, imageHeight int) error {
	rows := float64(min(cfg.Lines, imageHeight))
	if points := rows * math.Ceil(float64(imageWidth)*cfg.SampleFreq); points > MaxPoints {
		return errors.Invalid("lines", "%.0f rows of %.0f samples exceed %d points",
			rows, math.Ceil(float64(imageWidth)*cfg.SampleFreq), MaxPoints)
	}
	return o.checkCanvas(cfg)
}

func uniqueFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:         format,
		Shading:        o.Shading,
		MaxDimension:   o.MaxDimension,
		MatchImageSize: o.MatchImageSize,
		StrokeWidth:    o.StrokeWidth,
	}
	if o.MatchImageSize {
		k.Shading.Width, k.Shading.Height = 0, 0
	}
	switch format {
	case sink.FormatSVG:
		k.Precision = o.precision()
		k.XMLDeclaration = o.XMLDeclaration
	case sink.FormatPNG:
		k.Scale = o.Scale
	}
	return k
}
