package sinusoid

import (
	"github.com/matzehuels/sineshade/pkg/errors"
)

// Default values for [Config].
const (
	DefaultLines      = 64
	DefaultWidth      = 512
	DefaultHeight     = 512
	DefaultSampleFreq = 5.0
	DefaultMinFreq    = 0.001
	DefaultMaxFreq    = 2.0
	DefaultAmplitude  = 0.4
)

// Config controls one transform. It is a plain value: the With* methods
// return modified copies and never change the receiver.
type Config struct {
	// Lines is the number of sinusoids (rows) to draw. Requests above the
	// image height are clamped to the height.
	Lines int `toml:"lines" json:"lines"`

	// Width and Height are the output document size in pixels.
	Width  int `toml:"width" json:"width"`
	Height int `toml:"height" json:"height"`

	// SampleFreq is the number of path points per source column. Larger
	// values give smoother strokes and bigger documents.
	SampleFreq float64 `toml:"sample_freq" json:"sample_freq"`

	// MinFreq and MaxFreq bound the instantaneous sinusoid frequency.
	// The lightest band maps to MinFreq, the darkest to MaxFreq.
	MinFreq float64 `toml:"min_freq" json:"min_freq"`
	MaxFreq float64 `toml:"max_freq" json:"max_freq"`

	// Amplitude is the wave amplitude as a fraction of the row height.
	// Values above 0.5 make neighbouring rows overlap.
	Amplitude float64 `toml:"amplitude" json:"amplitude"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Lines:      DefaultLines,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		SampleFreq: DefaultSampleFreq,
		MinFreq:    DefaultMinFreq,
		MaxFreq:    DefaultMaxFreq,
		Amplitude:  DefaultAmplitude,
	}
}

func (c Config) WithLines(n int) Config           { c.Lines = n; return c }
func (c Config) WithSize(w, h int) Config         { c.Width, c.Height = w, h; return c }
func (c Config) WithSampleFreq(fs float64) Config { c.SampleFreq = fs; return c }
func (c Config) WithAmplitude(a float64) Config   { c.Amplitude = a; return c }

// WithFrequencyRange sets MinFreq and MaxFreq.
func (c Config) WithFrequencyRange(lo, hi float64) Config {
	c.MinFreq, c.MaxFreq = lo, hi
	return c
}

// Validate reports the first field that cannot be used numerically.
// Every returned error carries the INVALID_CONFIG code and the field name.
func (c Config) Validate() error {
	if c.Lines <= 0 {
		return errors.Invalid("lines", "must be positive, got %d", c.Lines)
	}
	if c.Width <= 0 {
		return errors.Invalid("width", "must be positive, got %d", c.Width)
	}
	if c.Height <= 0 {
		return errors.Invalid("height", "must be positive, got %d", c.Height)
	}
	if err := errors.ValidatePositive("sample_freq", c.SampleFreq); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("min_freq", c.MinFreq); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("max_freq", c.MaxFreq); err != nil {
		return err
	}
	if c.MinFreq > c.MaxFreq {
		return errors.Invalid("min_freq", "must not exceed max_freq (%v > %v)", c.MinFreq, c.MaxFreq)
	}
	return errors.ValidateNonNegative("amplitude", c.Amplitude)
}
