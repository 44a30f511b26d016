package adapthttp

import (
	"net/http"

	"meowscale/internal/app"
	"meowscale/internal/domain"
)

func (s *Server) handleWeightToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userFromContext(r)

	switch r.Method {
	case http.MethodGet:
		entry, today, err := s.svc.Weights.GetToday(ctx, userID)
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"today": today, "entry": entry})

	case http.MethodPut:
		var body app.WeightInput
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		out, err := s.svc.Weights.RecordWeight(ctx, userID, body)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if s.metrics != nil {
			s.metrics.WeightRecorded(string(out.Kind), string(out.Feedback.Kind))
		}
		status := http.StatusOK
		if out.Kind == domain.OutcomeAdd {
			status = http.StatusCreated
		}
		writeJSON(w, status, out)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleWeightHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	items, err := s.svc.Weights.History(r.Context(), userFromContext(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if limit := intQuery(r, "limit", app.HistoryLimit); limit < len(items) {
		items = items[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
