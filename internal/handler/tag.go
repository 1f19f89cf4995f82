package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-cms/inkwell/internal/service"
)

// TagHandler serves the editor-gated tag endpoints.
type TagHandler struct {
	tags   *service.TagService
	logger *slog.Logger
}

func NewTagHandler(tags *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tags:   tags,
		logger: logger,
	}
}

type createTagRequest struct {
	Name string `json:"name"`
}

type bulkTagRequest struct {
	Names []string `json:"names"`
}

// HandleList — GET /api/tags
func (h *TagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HandleCreate — POST /api/tags
func (h *TagHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tag, err := h.tags.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// HandleBulk — POST /api/tags/bulk
//
// Find-or-create for a free-form name list; returns the resolved tags
// in input order.
func (h *TagHandler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkTagRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tags, err := h.tags.FindOrCreateByNames(r.Context(), req.Names)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HandleDelete — DELETE /api/tags/{id}
func (h *TagHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.tags.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteUnused — DELETE /api/tags/unused
//
// Sweeps every tag with zero post associations.
func (h *TagHandler) HandleDeleteUnused(w http.ResponseWriter, r *http.Request) {
	n, err := h.tags.DeleteUnused(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
