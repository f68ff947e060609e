package sink

import (
	"encoding/json"

	"github.com/matzehuels/sineshade/pkg/vector"
)

type jsonOutput struct {
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Stroke vector.Stroke  `json:"stroke"`
	Points int            `json:"points"`
	Rows   [][][2]float64 `json:"rows"`
}

// RenderJSON exports the document as pretty-printed JSON. Each row is an
// array of [x, y] pairs in drawing order:
//
//	{"width": 512, "height": 512, "stroke": {...}, "points": 163840,
//	 "rows": [[[0, 4.1], [0.2, 4.3], ...], ...]}
func RenderJSON(doc *vector.Document) ([]byte, error) {
	out := jsonOutput{
		Width:  doc.Width,
		Height: doc.Height,
		Stroke: doc.Stroke,
		Points: doc.PointCount(),
		Rows:   make([][][2]float64, len(doc.Paths)),
	}
	for i, line := range doc.Paths {
		row := make([][2]float64, len(line))
		for j, pt := range line {
			row[j] = [2]float64{pt.X, pt.Y}
		}
		out.Rows[i] = row
	}
	return json.MarshalIndent(out, "", "  ")
}
