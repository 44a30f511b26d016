package adapthttp

import (
	"net/http"
)

const defaultTrendDays = 30

func (s *Server) handleChartsTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	days := intQuery(r, "days", defaultTrendDays)
	unit := r.URL.Query().Get("unit")

	points, err := s.svc.Charts.Trend(r.Context(), userFromContext(r), days, unit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if unit == "" {
		unit = "kg"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":  len(points),
		"unit":  unit,
		"items": points,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	d, err := s.svc.Dashboard.Get(r.Context(), userFromContext(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
