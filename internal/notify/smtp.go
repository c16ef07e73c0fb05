package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mfgquality/burnin/internal/config"
	"github.com/mfgquality/burnin/internal/models"
)

// SMTPDispatcher mails advancement requests to the approver list.
type SMTPDispatcher struct {
	cfg config.EmailConfig

	// send is a seam for testing; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPDispatcher(cfg config.EmailConfig) *SMTPDispatcher {
	return &SMTPDispatcher{cfg: cfg, send: smtp.SendMail}
}

func (d *SMTPDispatcher) RequestCreated(ctx context.Context, req *models.ApprovalRequest) error {
	if len(d.cfg.Recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	subject := fmt.Sprintf("Burn-in advancement pending: %s %s -> %s", req.DeviceID, req.FromTier, req.ToTier)
	body := d.buildBody(req)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", d.cfg.Username)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(d.cfg.Recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}
	if err := d.send(addr, auth, d.cfg.Username, d.cfg.Recipients, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (d *SMTPDispatcher) buildBody(req *models.ApprovalRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Device %s reached its advancement threshold.\r\n\r\n", req.DeviceID)
	fmt.Fprintf(&b, "Transition:  %s -> %s\r\n", req.FromTier, req.ToTier)
	fmt.Fprintf(&b, "Files:       %d\r\n", req.FileCount)
	fmt.Fprintf(&b, "Requested:   %s\r\n", req.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Request id:  %s\r\n", req.ID)
	if d.cfg.DashboardURL != "" {
		fmt.Fprintf(&b, "\r\nReview and decide: %s\r\n", d.cfg.DashboardURL)
	}
	return b.String()
}
