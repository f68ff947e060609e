package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/sineshade/pkg/pipeline"
)

func TestFormatStats(t *testing.T) {
	tests := []struct {
		name    string
		stats   pipeline.Stats
		cached  bool
		want    []string
		notWant []string
	}{
		{
			name:  "fresh render",
			stats: pipeline.Stats{Lines: 64, Points: 163840, ImageWidth: 512, ImageHeight: 384},
			want:  []string{"64", "lines", "163,840", "points", "512x384 px", iconFresh},
		},
		{
			name:    "cache hit has no counts",
			cached:  true,
			want:    []string{iconCached},
			notWant: []string{"lines", "points", "px"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatStats(tt.stats, tt.cached)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("formatStats() = %q, missing %q", got, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("formatStats() = %q, should not contain %q", got, w)
				}
			}
		})
	}
}
