// Package io reads source images and writes rendered documents.
//
// # Import
//
// [ReadImage] decodes a raster image from any io.Reader and [ImportImage]
// from a file path. The registered decoders cover PNG, JPEG and GIF from the
// standard library plus WebP, TIFF and BMP from golang.org/x/image:
//
//	img, format, err := io.ImportImage("portrait.jpg")
//	if errors.IsDecode(err) {
//	    // not an image, or an unsupported format
//	}
//
// Every decoding failure carries the DECODE_FAILED code; a missing file is
// reported the same way since the caller cannot tell the two apart before
// reading.
//
// # Preparation
//
// [Fit] shrinks images whose longer side exceeds a limit, preserving the
// aspect ratio. Large photographs produce documents with millions of path
// points, so callers usually fit before transforming. [Grayscale] converts any
// image to *image.Gray with the standard luminance weights.
//
// # Export
//
// [ExportFile] writes rendered bytes to disk, creating parent directories
// as needed. Failures carry the WRITE_FAILED code.
package io
