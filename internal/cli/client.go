// Package cli implements the operator command line: approver account
// bootstrap against the database, and pending/decide/status/history
// commands against the approval service API.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIClient is a thin JSON client for the approval service.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ApprovalView mirrors the service's approval request representation.
type ApprovalView struct {
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

// DeviceStatusView mirrors the service's device status representation.
type DeviceStatusView struct {
	ID                  string     `json:"id"`
	Enabled             bool       `json:"enabled"`
	CurrentTier         string     `json:"current_tier"`
	CountSinceThreshold int64      `json:"count_since_threshold"`
	LastScanAt          *time.Time `json:"last_scan_at,omitempty"`
	Paused              bool       `json:"paused"`
	ExcludeFinal        bool       `json:"exclude_final"`
}

// HistoryView mirrors the service's decision history representation.
type HistoryView struct {
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

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
		reqBody = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
			return fmt.Errorf("%s %s: %s (%d)", method, path, e.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Login authenticates and stores the bearer token for subsequent calls.
func (c *APIClient) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/login",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *APIClient) Pending(ctx context.Context) ([]ApprovalView, error) {
	var out []ApprovalView
	if err := c.do(ctx, http.MethodGet, "/api/v1/approvals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) Decide(ctx context.Context, requestID, verdict string) (*ApprovalView, error) {
	var out ApprovalView
	path := "/api/v1/approvals/" + requestID + "/decision"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"verdict": verdict}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Status(ctx context.Context) ([]DeviceStatusView, error) {
	var out []DeviceStatusView
	if err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) History(ctx context.Context, deviceID string, limit int) ([]HistoryView, error) {
	path := fmt.Sprintf("/api/v1/history?device=%s&limit=%d", deviceID, limit)
	var out []HistoryView
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
