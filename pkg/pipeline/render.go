package pipeline

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sineshade/pkg/sink"
	"github.com/matzehuels/sineshade/pkg/vector"
)

// RenderDocument encodes doc in every format of opts.Formats. Formats are
// rendered concurrently; the first failure is returned and no partial map.
// The document stroke width is taken from opts.
func RenderDocument(doc *vector.Document, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	styled := *doc
	styled.Stroke.Width = opts.StrokeWidth

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
		g         errgroup.Group
	)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(&styled, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(doc *vector.Document, format string, opts Options) ([]byte, error) {
	switch format {
	case sink.FormatSVG:
		svgOpts := []sink.SVGOption{sink.WithPrecision(opts.precision())}
		if opts.XMLDeclaration {
			svgOpts = append(svgOpts, sink.WithXMLDeclaration())
		}
		return sink.RenderSVG(doc, svgOpts...), nil
	case sink.FormatJSON:
		return sink.RenderJSON(doc)
	case sink.FormatPNG:
		return sink.RenderPNG(doc, sink.WithScale(opts.Scale))
	case sink.FormatPDF:
		return sink.RenderPDF(doc)
	default:
		return nil, ValidateFormat(format)
	}
}
