package models

import "time"

// RequestStatus is the lifecycle state of an ApprovalRequest.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Verdict is a human decision on a pending request.
type Verdict string

const (
	VerdictApprove Verdict = "approve"
	VerdictReject  Verdict = "reject"
)

// ApprovalRequest asks a human to confirm one tier advancement. At most one
// pending request exists per device at any time.
type ApprovalRequest struct {
	ID        string
	DeviceID  string
	FromTier  Tier
	ToTier    Tier
	FileCount int64
	CreatedAt time.Time
	Status    RequestStatus
	DecidedBy string
	DecidedAt *time.Time
}

// IsDecided reports whether the request has reached a terminal status.
func (r *ApprovalRequest) IsDecided() bool {
	return r.Status != RequestStatusPending
}

// DecisionHistoryEntry is the immutable audit record of one resolved
// ApprovalRequest. Entries are append-only and never mutated or deleted.
type DecisionHistoryEntry struct {
	ID          string
	RequestID   string
	DeviceID    string
	FromTier    Tier
	ToTier      Tier
	FileCount   int64
	RequestedAt time.Time
	DecidedBy   string
	DecidedAt   time.Time
	Verdict     Verdict
}
