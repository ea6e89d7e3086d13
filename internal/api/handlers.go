package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"stocksearch/internal/search"
	"stocksearch/internal/session"
)

var errBadRequest = errors.New("invalid request body")

type Handler struct {
	sessions *session.Store
	history  HistoryLoader
	log      zerolog.Logger
}

type sessionResponse struct {
	ID   string      `json:"id"`
	View search.View `json:"view"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type pageRequest struct {
	Page int `json:"page"`
}

type pageSizeRequest struct {
	Size int `json:"size"`
}

// CreateSession handles POST /api/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, ctrl := h.sessions.Create()
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, View: ctrl.View()})
}

// GetSession handles GET /api/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles POST /api/sessions/{id}/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	h.apply(w, r, &body, func(ctrl *search.Controller) error {
		err := ctrl.Submit(r.Context(), body.Query)
		if errors.Is(err, search.ErrNoResults) {
			// the view carries the no-results state
			return nil
		}
		return err
	})
}

// ChangePage handles PUT /api/sessions/{id}/page.
func (h *Handler) ChangePage(w http.ResponseWriter, r *http.Request) {
	var body pageRequest
	h.apply(w, r, &body, func(ctrl *search.Controller) error {
		return ctrl.ChangePage(r.Context(), body.Page)
	})
}

// ChangePageSize handles PUT /api/sessions/{id}/page-size.
func (h *Handler) ChangePageSize(w http.ResponseWriter, r *http.Request) {
	var body pageSizeRequest
	h.apply(w, r, &body, func(ctrl *search.Controller) error {
		return ctrl.ChangePageSize(r.Context(), body.Size)
	})
}

// apply decodes body, runs op against the session controller and writes the
// resulting view. Failures still carry the view so clients can keep rendering.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, body any, op func(*search.Controller) error) {
	ctrl, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err, nil)
		return
	}
	if err := decodeBody(r, body); err != nil {
		writeError(w, r, h.log, err, nil)
		return
	}
	if err := op(ctrl); err != nil {
		view := ctrl.View()
		writeError(w, r, h.log, err, &view)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

// History handles GET /api/history/{symbol}.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(chi.URLParam(r, "symbol"))
	if symbol == "" {
		writeError(w, r, h.log, fmt.Errorf("%w: empty symbol", errBadRequest), nil)
		return
	}
	detail, err := h.history.Detail(r.Context(), symbol)
	if err != nil {
		writeError(w, r, h.log, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}
