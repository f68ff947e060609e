package sinusoid

import "math"

// IntegratePhase integrates each row of freq into a phase signal:
// phase[n] = (freq[0] + ... + freq[n]) / fs.
//
// Rows are independent and every row starts from zero phase. With
// non-negative frequencies each row is non-decreasing.
func IntegratePhase(freq Field, fs float64) Field {
	out := newField(freq.Rows, freq.Cols)
	forEachRow(freq.Rows, func(r int) {
		dst := out.Row(r)
		sum := 0.0
		for n, f := range freq.Row(r) {
			sum += f
			dst[n] = sum / fs
		}
	})
	return out
}

// SineField returns sin(phase) element-wise. Values lie in [-1, 1].
func SineField(phase Field) Field {
	out := newField(phase.Rows, phase.Cols)
	forEachRow(phase.Rows, func(r int) {
		dst := out.Row(r)
		for n, p := range phase.Row(r) {
			dst[n] = math.Sin(p)
		}
	})
	return out
}
