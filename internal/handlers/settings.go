package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clustmart/festival-tracker/internal/store"
)

func (h *DashboardHandler) HandleGetRedirect(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.Load(r.Context())
	if err != nil {
		h.storageFailure(w, err, "redirect settings")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// HandleUpdateRedirect validates and stores the redirect configuration.
// An invalid destination URL is rejected with 422 and the previously
// stored value stays untouched.
func (h *DashboardHandler) HandleUpdateRedirect(w http.ResponseWriter, r *http.Request) {
	var cfg store.RedirectConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.settings.Save(r.Context(), cfg); err != nil {
		if errors.Is(err, store.ErrInvalidRedirectURL) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.storageFailure(w, err, "redirect settings")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}
