package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sineshade/pkg/cache"
	sio "github.com/matzehuels/sineshade/pkg/io"
	"github.com/matzehuels/sineshade/pkg/observability"
	"github.com/matzehuels/sineshade/pkg/sinusoid"
)

// Cache key types reported to observability hooks.
const keyTypeArtifact = "artifact"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of stored artifacts. Zero means cache.ArtifactTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Prepared is a decoded source image ready for transforming.
type Prepared struct {
	Image  *image.Gray
	Format string
	Config sinusoid.Config
}

// Execute runs the complete decode → transform → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, imageData []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		ImageHash: cache.Hash(imageData),
		Config:    opts.Shading,
	}

	// Stage 0: Cache
	if !opts.Refresh {
		if artifacts, ok := r.lookup(ctx, result.ImageHash, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.RenderHit = true
			opts.Logger.Info("served from cache", "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 1: Decode
	decodeStart := time.Now()
	prep, err := r.Prepare(ctx, imageData, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.DecodeTime = time.Since(decodeStart)
	result.Stats.ImageWidth = prep.Image.Bounds().Dx()
	result.Stats.ImageHeight = prep.Image.Bounds().Dy()
	result.Config = prep.Config

	opts.Logger.Debug("decoded image",
		"format", prep.Format,
		"width", result.Stats.ImageWidth,
		"height", result.Stats.ImageHeight,
		"duration", result.Stats.DecodeTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Transform
	transformStart := time.Now()
	lines := min(prep.Config.Lines, result.Stats.ImageHeight)
	samples := sinusoid.SamplesPerRow(result.Stats.ImageWidth, prep.Config.SampleFreq)
	observability.Pipeline().OnTransformStart(ctx, lines, samples)

	doc, err := sinusoid.Transform(prep.Image, prep.Config)
	result.Stats.TransformTime = time.Since(transformStart)
	points := 0
	if doc != nil {
		points = doc.PointCount()
	}
	observability.Pipeline().OnTransformComplete(ctx, points, result.Stats.TransformTime, err)
	if err != nil {
		return nil, err
	}
	doc.Stroke.Width = opts.StrokeWidth
	result.Document = doc
	result.Stats.Lines = len(doc.Paths)
	result.Stats.SamplesPerRow = samples
	result.Stats.Points = points

	opts.Logger.Info("transformed image",
		"lines", result.Stats.Lines,
		"points", result.Stats.Points,
		"duration", result.Stats.TransformTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := RenderDocument(doc, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	r.store(ctx, result.ImageHash, artifacts, opts)
	return result, nil
}

// Prepare decodes imageData, fits it to opts.MaxDimension, converts it to
// grayscale and resolves the effective shading configuration.
func (r *Runner) Prepare(ctx context.Context, imageData []byte, opts Options) (*Prepared, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnDecodeStart(ctx, len(imageData))
	img, format, err := sio.DecodeBytes(imageData)
	if err != nil {
		observability.Pipeline().OnDecodeComplete(ctx, "", 0, 0, time.Since(start), err)
		return nil, err
	}

	gray := sio.Grayscale(sio.Fit(img, opts.MaxDimension))
	b := gray.Bounds()
	observability.Pipeline().OnDecodeComplete(ctx, format, b.Dx(), b.Dy(), time.Since(start), nil)

	cfg := opts.Shading
	if opts.MatchImageSize {
		cfg = cfg.WithSize(b.Dx(), b.Dy())
	}
	if err := opts.checkLimits(cfg, b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	return &Prepared{Image: gray, Format: format, Config: cfg}, nil
}

// lookup returns every requested artifact from the cache, or ok == false if
// any one is missing.
func (r *Runner) lookup(ctx context.Context, imageHash string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(imageHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("cache lookup failed", "format", format, "error", err)
		}
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		artifacts[format] = data
	}
	return artifacts, true
}

func (r *Runner) store(ctx context.Context, imageHash string, artifacts map[string][]byte, opts Options) {
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.ArtifactTTL
	}
	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(imageHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
			opts.Logger.Warn("cache store failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
