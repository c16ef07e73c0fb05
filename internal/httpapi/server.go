// Package httpapi exposes the approval dashboard API over HTTP: login,
// pending request listing, decisions (single and bulk), decision history
// and device status.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mfgquality/burnin/internal/approval"
	"github.com/mfgquality/burnin/internal/logging"
	"github.com/mfgquality/burnin/internal/models"
)

// DeviceLister is the slice of the state manager the status endpoint needs.
type DeviceLister interface {
	ListDevices(ctx context.Context) ([]*models.Device, error)
}

// UserStore authenticates approver accounts.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type Server struct {
	httpServer *http.Server
	addr       string

	approvals *approval.Service
	devices   DeviceLister
	users     UserStore

	secretKey []byte
	tokenTTL  time.Duration
	log       logging.Logger
}

func New(addr string, approvals *approval.Service, devices DeviceLister, users UserStore, secretKey []byte, tokenTTL time.Duration, log logging.Logger) *Server {
	s := &Server{
		addr:      addr,
		approvals: approvals,
		devices:   devices,
		users:     users,
		secretKey: secretKey,
		tokenTTL:  tokenTTL,
		log:       log.With("component", "httpapi"),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/login", s.handleLogin)

	mux.Handle("GET /api/v1/approvals", s.requireAuth(s.handleListPending))
	mux.Handle("POST /api/v1/approvals/{id}/decision", s.requireAuth(s.handleDecision))
	mux.Handle("POST /api/v1/approvals/decisions", s.requireAuth(s.handleBulkDecisions))
	mux.Handle("GET /api/v1/history", s.requireAuth(s.handleHistory))
	mux.Handle("GET /api/v1/status", s.requireAuth(s.handleStatus))
}

// Handler returns the routed handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server starting", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.log.Info(ctx, "http server stopped")
		return nil
	case err := <-errChan:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
