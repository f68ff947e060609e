package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/sineshade/pkg/errors"
	"github.com/matzehuels/sineshade/pkg/pipeline"
	"github.com/matzehuels/sineshade/pkg/sink"
)

// Response headers.
const (
	headerArtifactID = "X-Artifact-ID"
	headerCache      = "X-Cache"
)

// imageField is the multipart form field holding the upload.
const imageField = "image"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// configResponse is returned by GET /api/v1/config.
type configResponse struct {
	Options pipeline.Options `json:"options"`
	Formats []string         `json:"formats"`
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{Options: s.defaults, Formats: sink.Formats})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	data, params, err := s.readUpload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	opts, format, err := s.requestOptions(params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), data, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	artifact := result.Artifacts[format]

	id := uuid.NewString()
	if err := s.storeArtifact(r.Context(), id, format, artifact); err != nil {
		s.logger.Warn("store artifact failed", "id", id, "error", err)
	} else {
		w.Header().Set(headerArtifactID, id)
	}

	cacheStatus := "miss"
	if result.CacheInfo.RenderHit {
		cacheStatus = "hit"
	}
	w.Header().Set(headerCache, cacheStatus)
	w.Header().Set("Content-Type", sink.ContentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		writeError(w, r, errNotFound("artifact %q not found", id))
		return
	}

	format, data, ok, err := s.loadArtifact(r.Context(), id)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "load artifact"))
		return
	}
	if !ok {
		writeError(w, r, errNotFound("artifact %q not found or expired", id))
		return
	}

	w.Header().Set("Content-Type", sink.ContentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// readUpload returns the image bytes and the request parameters. Multipart
// requests carry both in the form; any other body is the image itself and
// parameters come from the query string.
func (s *Server) readUpload(r *http.Request) ([]byte, url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.maxUpload); err != nil {
			return nil, nil, uploadError(err)
		}
		file, _, err := r.FormFile(imageField)
		if err != nil {
			return nil, nil, errors.New(errors.ErrCodeInvalidImage, "missing %q form field", imageField)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, nil, uploadError(err)
		}
		return data, r.Form, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, nil, uploadError(err)
	}
	if len(data) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidImage, "request body is empty")
	}
	return data, r.URL.Query(), nil
}

// requestOptions applies request parameters on top of the server defaults.
// Exactly one output format is rendered per request.
func (s *Server) requestOptions(params url.Values) (pipeline.Options, string, error) {
	opts := s.defaults
	opts.XMLDeclaration = true

	format := opts.Formats[0]
	if v := params.Get("format"); v != "" {
		format = v
	}
	opts.Formats = []string{format}

	if params.Get("embed") == "1" {
		opts.XMLDeclaration = false
	}

	p := paramReader{values: params}
	p.int("lines", &opts.Shading.Lines)
	p.int("width", &opts.Shading.Width)
	p.int("height", &opts.Shading.Height)
	p.float("sample_freq", &opts.Shading.SampleFreq)
	p.float("min_freq", &opts.Shading.MinFreq)
	p.float("max_freq", &opts.Shading.MaxFreq)
	p.float("amplitude", &opts.Shading.Amplitude)
	if p.has("precision") {
		precision := 0
		p.int("precision", &precision)
		opts.SetPrecision(precision)
	}
	p.float("stroke_width", &opts.StrokeWidth)
	p.float("scale", &opts.Scale)
	p.bool("match_image", &opts.MatchImageSize)
	p.bool("refresh", &opts.Refresh)
	if p.err != nil {
		return pipeline.Options{}, "", p.err
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, "", err
	}
	return opts, format, nil
}

// paramReader parses optional numeric parameters, keeping the first error.
type paramReader struct {
	values url.Values
	err    error
}

func (p *paramReader) has(name string) bool {
	return p.values.Get(name) != ""
}

func (p *paramReader) int(name string, dst *int) {
	v := p.values.Get(name)
	if v == "" || p.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = errors.Invalid(name, "not an integer: %q", v)
		return
	}
	*dst = n
}

func (p *paramReader) float(name string, dst *float64) {
	v := p.values.Get(name)
	if v == "" || p.err != nil {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.err = errors.Invalid(name, "not a number: %q", v)
		return
	}
	*dst = f
}

func (p *paramReader) bool(name string, dst *bool) {
	v := p.values.Get(name)
	if v == "" || p.err != nil {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = errors.Invalid(name, "not a boolean: %q", v)
		return
	}
	*dst = b
}

// encodeArtifact prefixes data with its format and a NUL separator.
func encodeArtifact(format string, data []byte) []byte {
	out := make([]byte, 0, len(format)+1+len(data))
	out = append(out, format...)
	out = append(out, 0)
	return append(out, data...)
}

func decodeArtifact(raw []byte) (string, []byte, bool) {
	i := bytes.IndexByte(raw, 0)
	if i < 0 {
		return "", nil, false
	}
	return string(raw[:i]), raw[i+1:], true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
