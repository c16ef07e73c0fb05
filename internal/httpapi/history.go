package httpapi

import (
	"net/http"
	"strconv"
	"time"
)

type historyView struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	DeviceID    string    `json:"device_id"`
	FromTier    string    `json:"from_tier"`
	ToTier      string    `json:"to_tier"`
	FileCount   int64     `json:"file_count"`
	RequestedAt time.Time `json:"requested_at"`
	DecidedBy   string    `json:"decided_by"`
	DecidedAt   time.Time `json:"decided_at"`
	Verdict     string    `json:"verdict"`
}

// handleHistory returns resolved decisions, newest first.
// GET /api/v1/history?device=DEV-A&limit=50
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.approvals.ListHistory(r.Context(), deviceID, limit)
	if err != nil {
		s.log.Error(r.Context(), "history list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]historyView, 0, len(entries))
	for _, e := range entries {
		views = append(views, historyView{
			ID:          e.ID,
			RequestID:   e.RequestID,
			DeviceID:    e.DeviceID,
			FromTier:    string(e.FromTier),
			ToTier:      string(e.ToTier),
			FileCount:   e.FileCount,
			RequestedAt: e.RequestedAt,
			DecidedBy:   e.DecidedBy,
			DecidedAt:   e.DecidedAt,
			Verdict:     string(e.Verdict),
		})
	}
	writeJSON(w, http.StatusOK, views)
}
