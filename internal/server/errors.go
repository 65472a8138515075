package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ogulcanaydogan/tokalator/pkg/economics"
	"github.com/ogulcanaydogan/tokalator/pkg/importer"
	"github.com/ogulcanaydogan/tokalator/pkg/storage"
)

// errBadRequest marks request problems found by the handlers themselves.
var errBadRequest = errors.New("bad request")

// badRequestErrors are answered with 400 and their own message.
var badRequestErrors = []error{
	errBadRequest,
	importer.ErrNotCSV,
	importer.ErrInvalidEncoding,
	importer.ErrMissingHeaders,
	importer.ErrEmptyFile,
	importer.ErrMalformedCSV,
	importer.ErrNoTokenColumns,
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// statusFor maps an error to its HTTP status and client-facing detail.
// Unrecognized errors are reported as a bare internal error.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, economics.ErrInvalidParameter):
		return http.StatusUnprocessableEntity, detail(err)
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not found"
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, strings.TrimPrefix(detail(err), errBadRequest.Error()+": ")
		}
	}
	return http.StatusInternalServerError, "internal error"
}

// detail flattens joined errors onto one line.
func detail(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}

// fail writes the mapped error response, logging anything unexpected.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, msg)
}
