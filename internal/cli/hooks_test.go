package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sineshade/pkg/observability"
)

func TestDebugHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)
	registerDebugHooks(logger)
	defer observability.Reset()

	ctx := context.Background()
	observability.Pipeline().OnDecodeComplete(ctx, "png", 640, 480, time.Millisecond, nil)
	observability.Pipeline().OnTransformStart(ctx, 64, 3200)
	observability.Cache().OnCacheHit(ctx, "artifact")
	observability.HTTP().OnError(ctx, "POST", "/api/v1/render", errors.New("disk full"))

	out := buf.String()
	for _, want := range []string{
		"decode done", "format=png",
		"transform", "samples_per_row=3200",
		"cache hit", "type=artifact",
		"request failed", "disk full",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSetLogLevelRegistersHooksOnlyForDebug(t *testing.T) {
	defer observability.Reset()

	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.SetLogLevel(log.InfoLevel)
	if _, ok := observability.Pipeline().(*debugHooks); ok {
		t.Error("info level should keep the no-op hooks")
	}

	c.SetLogLevel(log.DebugLevel)
	if _, ok := observability.Pipeline().(*debugHooks); !ok {
		t.Error("debug level should install the debug hooks")
	}
}
