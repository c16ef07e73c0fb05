package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/mfgquality/burnin/internal/config"
	"github.com/mfgquality/burnin/internal/models"
	"github.com/stretchr/testify/require"
)

func sampleRequest() *models.ApprovalRequest {
	return &models.ApprovalRequest{
		ID: "req-1", DeviceID: "DEV-A",
		FromTier: models.Tier24h, ToTier: models.Tier12h,
		FileCount: 260,
		CreatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		Status:    models.RequestStatusPending,
	}
}

func TestRequestCreated_SendsToAllRecipients(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	d := NewSMTPDispatcher(config.EmailConfig{
		Host: "mail.example.com", Port: 587,
		Username:     "burnin@example.com",
		Recipients:   []string{"qa@example.com", "lead@example.com"},
		DashboardURL: "https://burnin.example.com/approvals",
	})
	d.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, d.RequestCreated(context.Background(), sampleRequest()))
	require.Equal(t, "mail.example.com:587", gotAddr)
	require.Equal(t, "burnin@example.com", gotFrom)
	require.Equal(t, []string{"qa@example.com", "lead@example.com"}, gotTo)

	body := string(gotMsg)
	require.Contains(t, body, "Subject: Burn-in advancement pending: DEV-A 24h -> 12h")
	require.Contains(t, body, "Files:       260")
	require.Contains(t, body, "req-1")
	require.Contains(t, body, "https://burnin.example.com/approvals")
}

func TestRequestCreated_NoRecipients(t *testing.T) {
	d := NewSMTPDispatcher(config.EmailConfig{Host: "mail.example.com", Port: 587})
	d.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send should not be called")
		return nil
	}
	require.Error(t, d.RequestCreated(context.Background(), sampleRequest()))
}

func TestRequestCreated_SendFailure(t *testing.T) {
	d := NewSMTPDispatcher(config.EmailConfig{
		Host: "mail.example.com", Port: 587,
		Recipients: []string{"qa@example.com"},
	})
	d.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}
	err := d.RequestCreated(context.Background(), sampleRequest())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "smtp send"))
}
