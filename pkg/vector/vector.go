// Package vector defines the stroke-only document produced by the shading
// transform.
//
// A [Document] is a fixed-size canvas holding an ordered list of polylines.
// Every polyline is drawn as one sub-path: a move to its first point followed
// by straight segments through the remaining points. Documents carry no fill
// and no colour information beyond a single static [Stroke].
//
// Output encoders for documents live in the sink package.
package vector

import "math"

// Point is a position in document (pixel) coordinates. The origin is the
// top-left corner and y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polyline is an ordered sequence of points joined by straight segments.
type Polyline []Point

// Bounds returns the smallest axis-aligned box containing every point.
// An empty polyline returns ok == false.
func (p Polyline) Bounds() (minPt, maxPt Point, ok bool) {
	if len(p) == 0 {
		return Point{}, Point{}, false
	}
	minPt, maxPt = p[0], p[0]
	for _, pt := range p[1:] {
		minPt.X = math.Min(minPt.X, pt.X)
		minPt.Y = math.Min(minPt.Y, pt.Y)
		maxPt.X = math.Max(maxPt.X, pt.X)
		maxPt.Y = math.Max(maxPt.Y, pt.Y)
	}
	return minPt, maxPt, true
}

// Stroke is the static styling applied to every polyline.
type Stroke struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// DefaultStroke is a one pixel black line.
var DefaultStroke = Stroke{Color: "black", Width: 1}

// Document is a fixed-size canvas of polylines.
type Document struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Stroke Stroke     `json:"stroke"`
	Paths  []Polyline `json:"paths"`
}

// New returns an empty document of the given size with the default stroke.
func New(width, height float64) *Document {
	return &Document{Width: width, Height: height, Stroke: DefaultStroke}
}

// PointCount returns the total number of points across all polylines.
func (d *Document) PointCount() int {
	n := 0
	for _, p := range d.Paths {
		n += len(p)
	}
	return n
}
