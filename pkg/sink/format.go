package sink

import (
	"strings"

	"github.com/gogpu/gg"
)

// Output format names.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatJSON, FormatPNG, FormatPDF}

var contentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatJSON: "application/json",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
}

// ContentType returns the MIME type for format, or application/octet-stream.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) string {
	return "." + format
}

// strokeColor resolves an SVG stroke colour for the raster and PDF sinks.
// Hex colours are parsed; anything else but white falls back to black.
func strokeColor(s string) gg.RGBA {
	switch s = strings.TrimSpace(strings.ToLower(s)); {
	case strings.HasPrefix(s, "#"):
		return gg.Hex(s)
	case s == "white":
		return gg.White
	default:
		return gg.Black
	}
}

// luma is the Rec.601 luminance of c, used where only gray is available.
func luma(c gg.RGBA) float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}
