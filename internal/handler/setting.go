package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-cms/inkwell/internal/model"
	"github.com/inkwell-cms/inkwell/internal/service"
)

// SettingHandler serves the admin-gated settings endpoints.
type SettingHandler struct {
	settings *service.SettingService
	logger   *slog.Logger
}

func NewSettingHandler(settings *service.SettingService, logger *slog.Logger) *SettingHandler {
	return &SettingHandler{
		settings: settings,
		logger:   logger,
	}
}

type settingItem struct {
	Key         string            `json:"key"`
	Value       string            `json:"value"`
	Type        model.SettingType `json:"type"`
	Description string            `json:"description"`
}

// HandleList — GET /api/settings
func (h *SettingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// HandleGet — GET /api/settings/{key}
func (h *SettingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settings.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

// HandleUpsert — PUT /api/settings
//
// Bulk upsert of {key, value, type} items. The service validates the
// whole batch before writing anything.
func (h *SettingHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var items []settingItem
	if err := decodeBody(r, &items); err != nil {
		writeError(w, err)
		return
	}

	settings := make([]model.Setting, len(items))
	for i, item := range items {
		settings[i] = model.Setting{
			Key:         item.Key,
			Value:       item.Value,
			Type:        item.Type,
			Description: item.Description,
		}
	}

	if err := h.settings.SetAll(r.Context(), settings); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"saved": len(settings)})
}
