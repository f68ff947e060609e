package sinusoid

import (
	"image"

	"github.com/matzehuels/sineshade/pkg/errors"
	"github.com/matzehuels/sineshade/pkg/vector"
)

// Stages holds every intermediate matrix of one transform run.
type Stages struct {
	Bands     Bands
	Frequency Field
	Phase     Field
}

// Transform renders img as frequency-modulated sinusoid line art.
//
// The configuration and the image are validated before any numeric work;
// failures carry an INVALID_CONFIG or INVALID_IMAGE code and no partial
// document is returned. Images that are not already *image.Gray are
// converted with the standard luminance model.
func Transform(img image.Image, cfg Config) (*vector.Document, error) {
	doc, _, err := TransformStages(img, cfg)
	return doc, err
}

// TransformStages is [Transform] that also returns the intermediate stages.
func TransformStages(img image.Image, cfg Config) (*vector.Document, *Stages, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if img == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidImage, "image is nil")
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidImage, "image has no pixels (%dx%d)", b.Dx(), b.Dy())
	}

	st := &Stages{}
	st.Bands = AverageRows(toGray(img), cfg.Lines)
	st.Frequency = MapFrequencies(st.Bands, cfg)
	st.Phase = IntegratePhase(st.Frequency, cfg.SampleFreq)
	return Render(st.Phase, cfg), st, nil
}

// toGray returns img as *image.Gray, converting other models pixel by pixel.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Set(x, y, img.At(x, y))
		}
	}
	return g
}
