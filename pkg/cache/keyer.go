package cache

import (
	"github.com/matzehuels/sineshade/pkg/sinusoid"
)

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey identifies one rendered output of one source image.
	ArtifactKey(imageHash string, opts ArtifactKeyOpts) string

	// UploadKey identifies an artifact stored under a server-issued ID.
	UploadKey(id string) string
}

// ArtifactKeyOpts lists every option that changes artifact bytes.
type ArtifactKeyOpts struct {
	Format         string          `json:"format"`
	Shading        sinusoid.Config `json:"shading"`
	Precision      int             `json:"precision"`
	StrokeWidth    float64         `json:"stroke_width"`
	Scale          float64         `json:"scale"`
	MaxDimension   int             `json:"max_dimension"`
	MatchImageSize bool            `json:"match_image_size"`
	XMLDeclaration bool            `json:"xml_declaration"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<sha256>" over the image hash and opts.
func (DefaultKeyer) ArtifactKey(imageHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", imageHash, opts)
}

// UploadKey returns "upload:<id>".
func (DefaultKeyer) UploadKey(id string) string {
	return "upload:" + id
}

var _ Keyer = DefaultKeyer{}
