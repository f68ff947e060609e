// Package pkg provides the libraries behind sineshade, which draws raster
// images as rows of frequency-modulated sine waves.
//
// # Overview
//
// Each image row band becomes one polyline. Dark regions oscillate quickly
// and light regions stretch out, so the density of the stroke reproduces the
// tone of the source. The result is a single-color vector drawing suited to
// pen plotters and laser engravers.
//
// # Architecture
//
// The data flow through sineshade:
//
//	image bytes (PNG, JPEG, GIF, BMP, TIFF, WebP) or an http(s) URL
//	         ↓
//	    [io] decode, fit, grayscale         ([httputil] for URLs)
//	         ↓
//	    [sinusoid] average → frequency → phase → render
//	         ↓
//	    [vector] Document (one polyline per row)
//	         ↓
//	    [sink] SVG / JSON / PNG / PDF
//
// [pipeline] runs these steps behind a content-addressed [cache] and fires
// the [observability] hooks. The CLI and HTTP server in internal/ are thin
// wrappers around [pipeline.Runner].
//
// # Quick Start
//
//	img, _, err := io.ImportImage("portrait.jpg")
//	if err != nil {
//	    return err
//	}
//	doc, err := sinusoid.Transform(img, sinusoid.DefaultConfig().WithLines(96))
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(doc, sink.WithPrecision(2))
//
// # Main Packages
//
// [sinusoid] - The transform: row averaging, frequency mapping, phase
// integration and rendering. Validation happens before any numeric work.
//
// [vector] - Output geometry: points, polylines and the document.
//
// [sink] - Encoders for the document. PNG uses gogpu/gg and PDF uses
// seehuhn.de/go/pdf; both are pure Go.
//
// [pipeline] - Decode, transform and render with caching, used by every entry
// point so the CLI and the server produce identical artifacts.
//
// [cache] - Artifact storage: file, redis, mongo and a null backend.
//
// [config] - The TOML configuration file.
//
// [errors] - Structured error codes shared by the CLI and the HTTP API.
//
// [observability] - Hooks for decode, transform, render, cache and HTTP
// events.
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/...
package pkg
