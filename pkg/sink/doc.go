// Package sink provides output format renderers for sinusoid documents.
//
// # Overview
//
// A "sink" transforms a computed [vector.Document] into a final output
// format. This package provides renderers for:
//
//   - SVG: the primary vector output, one stroked path per document
//   - JSON: polyline export for external tools
//   - PNG: raster preview rendered in pure Go (github.com/gogpu/gg)
//   - PDF: print-ready single page (seehuhn.de/go/pdf)
//
// # SVG Output
//
// [RenderSVG] writes every row as a sub-path of a single <path> element with
// no fill and the document stroke. The root element carries a viewBox and a
// max-width style so the drawing scales proportionally when embedded:
//
//	svg := sink.RenderSVG(doc,
//	    sink.WithPrecision(2),
//	    sink.WithXMLDeclaration(),
//	)
//
// Coordinates are printed with [DefaultPrecision] decimals and trailing
// zeros removed. [WithXMLDeclaration] adds the XML prolog expected by
// standalone .svg files; omit it when the markup is inlined in HTML.
//
// # PNG and PDF Output
//
// [RenderPNG] rasterizes the polylines on a white background. [WithScale]
// multiplies the canvas size and the stroke width:
//
//	png, err := sink.RenderPNG(doc, sink.WithScale(2))
//
// [RenderPDF] draws the same geometry on a page the size of the document,
// flipping the y axis so that both outputs match the SVG.
//
// # Formats
//
// [Formats] lists every supported format name. [ContentType] and
// [Extension] map a format to its MIME type and file extension.
//
// [vector.Document]: github.com/matzehuels/sineshade/pkg/vector.Document
package sink
