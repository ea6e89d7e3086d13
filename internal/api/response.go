package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"stocksearch/internal/fmp"
	"stocksearch/internal/search"
	"stocksearch/internal/session"
)

type errorResponse struct {
	Error     string       `json:"error"`
	RequestID string       `json:"requestId,omitempty"`
	View      *search.View `json:"view,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeError maps err to a status and writes it with the optional view.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error, view *search.View) {
	status := statusFor(err)
	if status >= 500 {
		log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{
		Error:     fmp.Message(err),
		RequestID: middleware.GetReqID(r.Context()),
		View:      view,
	})
}

func statusFor(err error) int {
	var httpErr *fmp.HTTPError
	var netErr *fmp.NetworkError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, search.ErrPageOutOfRange),
		errors.Is(err, search.ErrInvalidPageSize),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, fmp.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, fmp.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &httpErr), errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
