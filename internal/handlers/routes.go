package handlers

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(r *mux.Router, tracker *Tracker, dash *DashboardHandler, adminToken string) {
	r.Use(tracker.Middleware)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(AdminAuthMiddleware(adminToken))
	admin.HandleFunc("/stats/daily", dash.HandleDailyStats).Methods("GET")
	admin.HandleFunc("/stats/ids", dash.HandlePerIDStats).Methods("GET")
	admin.HandleFunc("/stats/quick", dash.HandleQuickStats).Methods("GET")
	admin.HandleFunc("/stats/refresh", dash.HandleRefreshStats).Methods("POST")
	admin.HandleFunc("/settings/redirect", dash.HandleGetRedirect).Methods("GET")
	admin.HandleFunc("/settings/redirect", dash.HandleUpdateRedirect).Methods("PUT")

	r.HandleFunc("/healthz", HandleHealth).Methods("GET")
	r.PathPrefix("/").HandlerFunc(HandleDefault)
}
