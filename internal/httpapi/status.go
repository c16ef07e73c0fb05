package httpapi

import (
	"net/http"
	"time"
)

type deviceStatusView struct {
	ID                  string     `json:"id"`
	Enabled             bool       `json:"enabled"`
	CurrentTier         string     `json:"current_tier"`
	CountSinceThreshold int64      `json:"count_since_threshold"`
	LastScanAt          *time.Time `json:"last_scan_at,omitempty"`
	Paused              bool       `json:"paused"`
	ExcludeFinal        bool       `json:"exclude_final"`
}

// handleStatus reports the current tier state of every tracked device.
// GET /api/v1/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	devs, err := s.devices.ListDevices(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "device list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]deviceStatusView, 0, len(devs))
	for _, d := range devs {
		views = append(views, deviceStatusView{
			ID:                  d.ID,
			Enabled:             d.Enabled,
			CurrentTier:         string(d.CurrentTier),
			CountSinceThreshold: d.CountSinceThreshold,
			LastScanAt:          d.LastScanAt,
			Paused:              d.Paused,
			ExcludeFinal:        d.ExcludeFinal,
		})
	}
	writeJSON(w, http.StatusOK, views)
}
