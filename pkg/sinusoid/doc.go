// Package sinusoid converts a grayscale image into frequency-modulated
// sinusoid line art.
//
// # Overview
//
// The image is cut into horizontal bands, one per output line. Each band is
// drawn as a single wavy stroke whose local wiggle rate follows the darkness
// of the pixels beneath it: dark regions oscillate fast, light regions slowly.
// Only the frequency is modulated; amplitude is constant per document.
//
// # Pipeline
//
// [Transform] runs four stages, each also exported on its own:
//
//  1. [AverageRows]: collapse contiguous bands of source rows into one row of
//     mean intensities ([Bands]).
//  2. [MapFrequencies]: invert intensity, rescale it globally into
//     [Config.MinFreq, Config.MaxFreq] and upsample each row by step/hold to
//     ceil(width*fs) samples ([Field]).
//  3. [IntegratePhase]: cumulative sum of frequency divided by fs, per row.
//  4. [Render]: sin(phase) scaled into each row's band and emitted as one
//     polyline per row into a [vector.Document].
//
// Data flows strictly forward. Rows are processed in parallel; the global
// min/max reduction in stage 2 finishes before any row is rescaled.
//
// # Determinism
//
// The transform is a pure function of the image pixels and the [Config].
// Nothing is cached between calls and the output never depends on scheduling,
// so repeated calls produce identical documents.
//
// # Errors
//
// Invalid configurations (zero lines, zero size, non-positive sample
// frequency, ...) and empty images are rejected with an INVALID_* error from
// the errors package before any numeric stage runs. The package never logs.
package sinusoid
