package io

import (
	"bytes"
	"image"
	"io"
	"os"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/sineshade/pkg/errors"
)

// ReadImage decodes a raster image from r and returns it together with the
// registered format name ("png", "jpeg", "webp", ...).
//
// Zero-sized images decode successfully; rejecting them is left to the
// transform so that every caller reports the same INVALID_IMAGE error.
// ReadImage does not close r.
func ReadImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeDecode, err, "decode image")
	}
	return img, format, nil
}

// DecodeBytes is [ReadImage] over an in-memory buffer.
func DecodeBytes(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New(errors.ErrCodeDecode, "decode image: empty input")
	}
	return ReadImage(bytes.NewReader(data))
}

// ImportImage reads and decodes the image file at path.
func ImportImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeDecode, err, "open %s", path)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeDecode, err, "decode %s", path)
	}
	return img, format, nil
}
