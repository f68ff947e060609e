package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sineshade/pkg/observability"
)

// debugHooks logs pipeline, cache and HTTP events at debug level.
type debugHooks struct {
	logger *log.Logger
}

// registerDebugHooks installs debugHooks for every hook category.
func registerDebugHooks(l *log.Logger) {
	h := &debugHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *debugHooks) OnDecodeStart(_ context.Context, size int) {
	h.logger.Debug("decode", "bytes", size)
}

func (h *debugHooks) OnDecodeComplete(_ context.Context, format string, width, height int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("decode failed", "error", err, "duration", d)
		return
	}
	h.logger.Debug("decode done", "format", format, "width", width, "height", height, "duration", d)
}

func (h *debugHooks) OnTransformStart(_ context.Context, lines, samplesPerRow int) {
	h.logger.Debug("transform", "lines", lines, "samples_per_row", samplesPerRow)
}

func (h *debugHooks) OnTransformComplete(_ context.Context, points int, d time.Duration, err error) {
	h.logger.Debug("transform done", "points", points, "duration", d, "error", err)
}

func (h *debugHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render", "formats", formats)
}

func (h *debugHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render done", "formats", formats, "duration", d, "error", err)
}

func (h *debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *debugHooks) OnRequest(ctx context.Context, method, path string) {
	h.logger.Debug("request", "id", middleware.GetReqID(ctx), "method", method, "path", path)
}

func (h *debugHooks) OnResponse(ctx context.Context, method, path string, status, size int, d time.Duration) {
	h.logger.Debug("response", "id", middleware.GetReqID(ctx), "status", status, "bytes", size, "duration", d)
}

// OnError logs the underlying error, which 500 responses do not expose.
func (h *debugHooks) OnError(ctx context.Context, method, path string, err error) {
	h.logger.Debug("request failed", "id", middleware.GetReqID(ctx), "method", method, "path", path, "error", err)
}

var (
	_ observability.PipelineHooks = (*debugHooks)(nil)
	_ observability.CacheHooks    = (*debugHooks)(nil)
	_ observability.HTTPHooks     = (*debugHooks)(nil)
)
