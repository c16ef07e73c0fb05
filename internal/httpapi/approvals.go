package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mfgquality/burnin/internal/approval"
	"github.com/mfgquality/burnin/internal/common"
	"github.com/mfgquality/burnin/internal/models"
)

type approvalView struct {
	ID        string     `json:"id"`
	DeviceID  string     `json:"device_id"`
	FromTier  string     `json:"from_tier"`
	ToTier    string     `json:"to_tier"`
	FileCount int64      `json:"file_count"`
	CreatedAt time.Time  `json:"created_at"`
	Status    string     `json:"status"`
	DecidedBy string     `json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

func toApprovalView(req *models.ApprovalRequest) approvalView {
	return approvalView{
		ID:        req.ID,
		DeviceID:  req.DeviceID,
		FromTier:  string(req.FromTier),
		ToTier:    string(req.ToTier),
		FileCount: req.FileCount,
		CreatedAt: req.CreatedAt,
		Status:    string(req.Status),
		DecidedBy: req.DecidedBy,
		DecidedAt: req.DecidedAt,
	}
}

// handleListPending returns all undecided requests, oldest first.
// GET /api/v1/approvals
func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := s.approvals.ListPending(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "pending list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	views := make([]approvalView, 0, len(pending))
	for _, req := range pending {
		views = append(views, toApprovalView(req))
	}
	writeJSON(w, http.StatusOK, views)
}

type decisionRequest struct {
	Verdict string `json:"verdict"`
}

// handleDecision applies one verdict to one pending request.
// POST /api/v1/approvals/{id}/decision
// Request: {"verdict":"approve"} or {"verdict":"reject"}
func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	verdict, err := approval.ParseVerdict(req.Verdict)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	decided, err := s.approvals.Decide(r.Context(), id, verdict, usernameFrom(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnknownRequest):
			writeError(w, http.StatusNotFound, "unknown request")
		case errors.Is(err, common.ErrAlreadyDecided):
			writeError(w, http.StatusConflict, "request already decided")
		default:
			s.log.Error(r.Context(), "decision failed", "request", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, toApprovalView(decided))
}

type bulkDecisionRequest struct {
	RequestIDs []string `json:"request_ids"`
	Verdict    string   `json:"verdict"`
}

type bulkDecisionOutcome struct {
	RequestID string        `json:"request_id"`
	Request   *approvalView `json:"request,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// handleBulkDecisions applies one verdict to many requests, isolating
// per-request failures.
// POST /api/v1/approvals/decisions
func (s *Server) handleBulkDecisions(w http.ResponseWriter, r *http.Request) {
	var req bulkDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.RequestIDs) == 0 {
		writeError(w, http.StatusBadRequest, "request_ids is required")
		return
	}
	verdict, err := approval.ParseVerdict(req.Verdict)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcomes := s.approvals.DecideBulk(r.Context(), req.RequestIDs, verdict, usernameFrom(r.Context()))
	views := make([]bulkDecisionOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		view := bulkDecisionOutcome{RequestID: o.RequestID}
		if o.Err != nil {
			view.Error = o.Err.Error()
		} else {
			v := toApprovalView(o.Request)
			view.Request = &v
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}
