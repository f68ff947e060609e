package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/sineshade/pkg/errors"
	"github.com/matzehuels/sineshade/pkg/observability"
)

// errTooLarge marks request bodies above the upload limit.
var errTooLarge = stderrors.New("request body too large")

// errorResponse is the JSON body of every error response.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
}

func errNotFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}

// uploadError classifies a failure while reading the request body.
func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit is %d bytes", errTooLarge, maxErr.Limit)
	}
	return errors.Wrap(errors.ErrCodeInvalidImage, err, "read upload")
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case stderrors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsDecode(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	resp := errorResponse{
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
		Field:   errors.GetField(err),
	}
	if resp.Code == "" {
		resp.Code = errors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		// Internal details stay in the log.
		resp.Message = http.StatusText(status)
	}
	writeJSON(w, status, resp)
}
