package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics/color"

	"github.com/matzehuels/sineshade/pkg/vector"
)

// RenderPDF renders the document on a single PDF page of the same size,
// one point per document unit. The stroke colour is reduced to gray.
func RenderPDF(doc *vector.Document) ([]byte, error) {
	dir, err := os.MkdirTemp("", "sineshade-pdf-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "document.pdf")
	if err := writePDF(doc, out); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return data, nil
}

func writePDF(doc *vector.Document, path string) error {
	paper := &pdf.Rectangle{URx: doc.Width, URy: doc.Height}

	page, err := document.CreateSinglePage(path, paper, pdf.V1_7, nil)
	if err != nil {
		return fmt.Errorf("create pdf page: %w", err)
	}

	// PDF origin is bottom-left; documents use top-left.
	page.Transform(matrix.Matrix{1, 0, 0, -1, 0, doc.Height})

	page.SetStrokeColor(color.DeviceGray(luma(strokeColor(doc.Stroke.Color))))
	page.SetLineWidth(doc.Stroke.Width)

	drawn := false
	for _, line := range doc.Paths {
		if len(line) < 2 {
			continue
		}
		page.MoveTo(line[0].X, line[0].Y)
		for _, pt := range line[1:] {
			page.LineTo(pt.X, pt.Y)
		}
		drawn = true
	}
	if drawn {
		page.Stroke()
	}

	if err := page.Close(); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
