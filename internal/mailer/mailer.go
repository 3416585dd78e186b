// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mailer sends contact form notifications over SMTP.
package mailer

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/emasmetal/emas-go/internal/store"
	"github.com/emasmetal/emas-go/internal/util"
)

// Options configures the SMTP client.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Mailer sends notification mail for new contact messages. A nil *Mailer is
// valid and sends nothing, so callers need no enabled checks.
type Mailer struct {
	opts Options
	log  *slog.Logger
}

// New creates a mailer with the given SMTP options.
func New(opts Options, log *slog.Logger) *Mailer {
	return &Mailer{opts: opts, log: log}
}

// NotifyContactMessage sends a notification mail about a new contact
// message. attachmentPath, when non-empty, is attached to the mail.
// Errors are logged, not returned; mail delivery must never affect the
// contact endpoint's response.
func (m *Mailer) NotifyContactMessage(ctx context.Context, msg store.ContactMessage, attachmentPath string) {
	if m == nil {
		return
	}

	mm := mail.NewMsg()
	if err := mm.From(m.opts.From); err != nil {
		m.log.Error("invalid mail sender address", "from", m.opts.From, "err", err)
		return
	}
	if err := mm.To(m.opts.To); err != nil {
		m.log.Error("invalid mail recipient address", "to", m.opts.To, "err", err)
		return
	}

	mm.Subject(fmt.Sprintf("[EMAS Metal] New contact message from %s", msg.Name))
	mm.SetBodyString(mail.TypeTextHTML, renderContactBody(msg))

	if attachmentPath != "" {
		filename := util.StringFromNull(msg.AttachmentFilename)
		if filename == "" {
			filename = "attachment"
		}
		mm.AttachFile(attachmentPath, mail.WithFileName(filename))
	}

	client, err := mail.NewClient(m.opts.Host,
		mail.WithPort(m.opts.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.opts.Username),
		mail.WithPassword(m.opts.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		m.log.Error("failed to create mail client", "err", err)
		return
	}

	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		m.log.Error("failed to send contact notification", "message_id", msg.ID, "err", err)
		return
	}

	m.log.Info("sent contact notification", "message_id", msg.ID)
}

func renderContactBody(msg store.ContactMessage) string {
	var b strings.Builder
	b.WriteString("<h2>New contact message</h2><table>")
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "<tr><td><b>%s</b></td><td>%s</td></tr>", label, html.EscapeString(value))
	}
	row("Name", msg.Name)
	row("Company", util.StringFromNull(msg.Company))
	row("Email", msg.Email)
	row("Phone", util.StringFromNull(msg.Phone))
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(msg.Message))
	return b.String()
}
