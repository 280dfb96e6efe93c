// Package email sends the transactional mails of the booking lifecycle over
// SMTP. There is one template per lifecycle event plus a plain-text summary
// for the admin mailbox.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type Template string

const (
	TemplateConfirmed      Template = "confirmed"
	TemplateProforma       Template = "proforma"
	TemplatePaid           Template = "paid"
	TemplateCompleted      Template = "completed"
	TemplateCancelled      Template = "cancelled"
	TemplateAdminCancelled Template = "admin_cancelled"
)

// Data carries everything a template may reference. Unused fields are left
// zero; the proforma/invoice numbers come straight from the issuance result.
type Data struct {
	Name        string
	BookingID   int64
	BookingDate string
	SlotName    string
	TotalPrice  int

	ProformaNumber string
	ProformaURL    string
	InvoiceNumber  string
	InvoiceURL     string

	CancellationFee int
	Refund          int
	Reason          string
	WasPaid         bool
}

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	AdminAddr string
}

type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Configured() bool {
	return m != nil && m.cfg.Host != "" && m.cfg.From != ""
}

// AdminAddr is where the plain-text cancellation summaries go.
func (m *Mailer) AdminAddr() string {
	return m.cfg.AdminAddr
}

// Send renders the template and delivers it. Failures are returned as plain
// errors; the caller decides whether they are fatal (they never are in the
// lifecycle).
func (m *Mailer) Send(_ context.Context, to string, tpl Template, data Data) error {
	if !m.Configured() {
		return fmt.Errorf("smtp is not configured")
	}
	if to == "" {
		return fmt.Errorf("missing recipient for %s email", tpl)
	}

	subject, body, html, err := render(tpl, data)
	if err != nil {
		return err
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.cfg.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	if html {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send %s email: %w", tpl, err)
	}
	return nil
}
