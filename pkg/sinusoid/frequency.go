package sinusoid

import (
	"math"
)

// sampleEpsilon absorbs float error in width*fs so that exact products such
// as 10*0.3 do not gain a spurious extra sample.
const sampleEpsilon = 1e-9

// SamplesPerRow returns the number of path samples generated for a row of
// width source columns at sample frequency fs: ceil(width*fs), at least 1.
func SamplesPerRow(width int, fs float64) int {
	n := int(math.Ceil(float64(width)*fs - sampleEpsilon))
	return max(n, 1)
}

// MapFrequencies converts averaged intensities into instantaneous frequencies.
//
// Intensities are inverted (raw = (255-px)/255, dark is high) and rescaled
// linearly so that the global minimum over all bands maps to cfg.MinFreq and
// the global maximum to cfg.MaxFreq. When every band has the same intensity
// the scale is 1 and every frequency equals cfg.MinFreq.
//
// Each row is then upsampled from b.Width columns to SamplesPerRow samples by
// step/hold: sample n takes the value of column floor(n/fs).
func MapFrequencies(b Bands, cfg Config) Field {
	fs := cfg.SampleFreq
	samples := SamplesPerRow(b.Width, fs)
	out := newField(b.Lines, samples)
	if b.Lines == 0 || b.Width == 0 {
		return out
	}

	// Reduce: per-row extremes, then combine once every row is done.
	rowMin := make([]uint8, b.Lines)
	rowMax := make([]uint8, b.Lines)
	forEachRow(b.Lines, func(r int) {
		row := b.Row(r)
		lo, hi := row[0], row[0]
		for _, v := range row[1:] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		rowMin[r], rowMax[r] = lo, hi
	})

	pxMin, pxMax := rowMin[0], rowMax[0]
	for r := 1; r < b.Lines; r++ {
		pxMin = min(pxMin, rowMin[r])
		pxMax = max(pxMax, rowMax[r])
	}

	// The brightest pixel gives the smallest raw value and vice versa.
	rawMin, rawMax := invert(pxMax), invert(pxMin)
	scale := 1.0
	if rawMax != rawMin {
		scale = (cfg.MaxFreq - cfg.MinFreq) / (rawMax - rawMin)
	}

	// Map: every row reads the same global scale.
	forEachRow(b.Lines, func(r int) {
		src := b.Row(r)
		freqs := make([]float64, b.Width)
		for c, px := range src {
			freqs[c] = cfg.MinFreq + scale*(invert(px)-rawMin)
		}

		dst := out.Row(r)
		for n := range dst {
			i := int(math.Floor(float64(n) / fs))
			i = min(max(i, 0), b.Width-1)
			dst[n] = freqs[i]
		}
	})

	return out
}

func invert(px uint8) float64 {
	return float64(255-px) / 255
}
