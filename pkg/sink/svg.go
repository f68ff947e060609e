package sink

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/matzehuels/sineshade/pkg/vector"
)

// DefaultPrecision is the number of decimals printed per coordinate.
const DefaultPrecision = 3

const maxPrecision = 10

const xmlDeclaration = `<?xml version="1.0" standalone="no"?>` + "\n"

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	precision int
	xmlDecl   bool
}

// WithPrecision sets the coordinate decimals, clamped to [0, 10].
func WithPrecision(n int) SVGOption {
	return func(r *svgRenderer) { r.precision = min(max(n, 0), maxPrecision) }
}

// WithXMLDeclaration prefixes the output with an XML prolog.
func WithXMLDeclaration() SVGOption { return func(r *svgRenderer) { r.xmlDecl = true } }

// RenderSVG writes doc as a standalone SVG element. Every polyline becomes a
// sub-path of one <path>; a document without points has no <path> at all.
// The output depends only on doc and opts.
func RenderSVG(doc *vector.Document, opts ...SVGOption) []byte {
	r := svgRenderer{precision: DefaultPrecision}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := r.num(doc.Width), r.num(doc.Height)

	var buf bytes.Buffer
	if r.xmlDecl {
		buf.WriteString(xmlDeclaration)
	}
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s" style="max-width:100%%;height:auto">`+"\n",
		w, h, w, h)

	if d := r.pathData(doc.Paths); d != "" {
		fmt.Fprintf(&buf, `  <path d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linejoin="round" stroke-linecap="round"/>`+"\n",
			d, html.EscapeString(doc.Stroke.Color), r.num(doc.Stroke.Width))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) pathData(paths []vector.Polyline) string {
	var sb strings.Builder
	for _, line := range paths {
		for i, pt := range line {
			if i == 0 {
				sb.WriteByte('M')
			} else {
				sb.WriteByte('L')
			}
			sb.WriteString(r.num(pt.X))
			sb.WriteByte(' ')
			sb.WriteString(r.num(pt.Y))
		}
	}
	return sb.String()
}

func (r svgRenderer) num(v float64) string {
	return formatNumber(v, r.precision)
}

// formatNumber prints v with at most prec decimals, dropping trailing zeros
// and the sign of negative zero.
func formatNumber(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}
