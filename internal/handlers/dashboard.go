package handlers

import (
	"net/http"
	"time"

	"github.com/clustmart/festival-tracker/internal/stats"
	"github.com/clustmart/festival-tracker/internal/store"
	"github.com/sirupsen/logrus"
)

// DashboardHandler is the operator-facing JSON read surface. Unlike the
// tracking path, storage failures here are surfaced: the dashboard renders
// "stats unavailable" instead of zeros dressed up as data.
type DashboardHandler struct {
	engine   *stats.Engine
	settings store.RedirectConfigStore
	log      *logrus.Entry
}

func NewDashboardHandler(logger *logrus.Logger, engine *stats.Engine, settings store.RedirectConfigStore) *DashboardHandler {
	return &DashboardHandler{
		engine:   engine,
		settings: settings,
		log:      logger.WithField("component", "dashboard"),
	}
}

func (h *DashboardHandler) HandleDailyStats(w http.ResponseWriter, r *http.Request) {
	var anchor *time.Time
	if raw := r.URL.Query().Get("start"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		anchor = &day
	}

	view, err := h.engine.DailyStats(r.Context(), anchor)
	if err != nil {
		h.storageFailure(w, err, "daily stats")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *DashboardHandler) HandlePerIDStats(w http.ResponseWriter, r *http.Request) {
	showAll := r.URL.Query().Get("show_all") == "true"

	view, err := h.engine.PerIDStats(r.Context(), showAll)
	if err != nil {
		h.storageFailure(w, err, "per-id stats")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *DashboardHandler) HandleQuickStats(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.QuickStats(r.Context())
	if err != nil {
		h.storageFailure(w, err, "quick stats")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *DashboardHandler) HandleRefreshStats(w http.ResponseWriter, r *http.Request) {
	h.engine.Refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *DashboardHandler) storageFailure(w http.ResponseWriter, err error, view string) {
	h.log.WithError(err).WithField("view", view).Error("Statistics query failed")
	writeError(w, http.StatusServiceUnavailable, "statistics unavailable")
}
