package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/millet-catalog/internal/core/domain"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound   = "/problems/not-found"
	ProblemTypeBadRequest = "/problems/bad-request"
	ProblemTypeInternal   = "/problems/internal-error"
	ProblemTypeMediaType  = "/problems/unsupported-media-type"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func writeProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to write problem", "op", "httphandler.writeProblem", "err", err)
	}
}

func notFound(w http.ResponseWriter, r *http.Request, title, detail string) {
	writeProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    title,
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

func badRequest(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, Problem{
		Type:     ProblemTypeBadRequest,
		Title:    "Bad Request",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

func internalError(w http.ResponseWriter, r *http.Request) {
	writeProblem(w, Problem{
		Type:     ProblemTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Instance: r.URL.Path,
	})
}

// writeError maps service errors to problem responses.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		notFound(w, r, "Not Found", err.Error())
	case errors.Is(err, domain.ErrUnknownLanguage),
		errors.Is(err, domain.ErrUnknownDimension):
		badRequest(w, r, err.Error())
	default:
		slog.Error("request failed", "op", op, "err", err)
		internalError(w, r)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
