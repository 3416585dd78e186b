// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"github.com/emasmetal/emas-go/internal/mailer"
	"github.com/emasmetal/emas-go/internal/model"
	"github.com/emasmetal/emas-go/internal/storage"
	"github.com/emasmetal/emas-go/internal/store"
	"github.com/emasmetal/emas-go/internal/util"
)

// mailTimeout bounds the background SMTP delivery per message.
const mailTimeout = 30 * time.Second

// ContactService handles contact form submissions and the admin inbox.
type ContactService struct {
	queries *store.Queries
	files   *storage.FileStore
	mail    *mailer.Mailer
	log     *slog.Logger
}

// NewContactService creates a new ContactService. mail may be nil when
// notifications are disabled.
func NewContactService(db *sql.DB, files *storage.FileStore, mail *mailer.Mailer, log *slog.Logger) *ContactService {
	return &ContactService{
		queries: store.New(db),
		files:   files,
		mail:    mail,
		log:     log,
	}
}

// SubmitInput holds the fields of a contact form submission.
type SubmitInput struct {
	Name    string
	Company string
	Email   string
	Phone   string
	Message string
}

// Submit stores the optional attachment, persists the message and kicks
// off the notification mail in the background.
func (s *ContactService) Submit(ctx context.Context, input SubmitInput, attachment multipart.File, attachmentHeader *multipart.FileHeader) (store.ContactMessage, error) {
	var (
		attachmentURL      sql.NullString
		attachmentFilename sql.NullString
	)
	if attachment != nil {
		ref, err := s.files.Store(attachment, attachmentHeader, model.SubdirAttachments)
		if err != nil {
			return store.ContactMessage{}, err
		}
		attachmentURL = util.NullStringFromValue(ref)
		attachmentFilename = util.NullStringFromValue(attachmentHeader.Filename)
	}

	msg, err := s.queries.CreateContactMessage(ctx, store.CreateContactMessageParams{
		ID:                 uuid.New().String(),
		Name:               input.Name,
		Company:            util.NullStringFromValue(input.Company),
		Email:              input.Email,
		Phone:              util.NullStringFromValue(input.Phone),
		Message:            input.Message,
		AttachmentURL:      attachmentURL,
		AttachmentFilename: attachmentFilename,
		CreatedAt:          time.Now(),
	})
	if err != nil {
		if attachmentURL.Valid {
			s.files.Delete(attachmentURL.String)
		}
		return store.ContactMessage{}, fmt.Errorf("creating contact message: %w", err)
	}

	s.log.Info("contact message received", "id", msg.ID, "from", msg.Email)
	s.notify(msg)
	return msg, nil
}

// notify sends the notification mail in the background so SMTP latency
// never delays the submission response.
func (s *ContactService) notify(msg store.ContactMessage) {
	if s.mail == nil {
		return
	}

	var attachmentPath string
	if msg.AttachmentURL.Valid {
		path, err := s.files.Resolve(msg.AttachmentURL.String)
		if err != nil {
			s.log.Warn("not attaching unresolvable file to notification", "ref", msg.AttachmentURL.String, "err", err)
		} else {
			attachmentPath = path
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		s.mail.NotifyContactMessage(ctx, msg, attachmentPath)
	}()
}

// List returns contact messages, newest first. With unreadOnly set only
// unread messages are returned.
func (s *ContactService) List(ctx context.Context, unreadOnly bool) ([]store.ContactMessage, error) {
	var (
		rows []store.ContactMessage
		err  error
	)
	if unreadOnly {
		rows, err = s.queries.ListUnreadContactMessages(ctx)
	} else {
		rows, err = s.queries.ListContactMessages(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	return rows, nil
}

// Get returns a single contact message by ID.
func (s *ContactService) Get(ctx context.Context, id string) (store.ContactMessage, error) {
	msg, err := s.queries.GetContactMessageByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ContactMessage{}, ErrNotFound
		}
		return store.ContactMessage{}, fmt.Errorf("getting contact message: %w", err)
	}
	return msg, nil
}

// MarkRead flags a message as read. Marking an already read message is a
// no-op.
func (s *ContactService) MarkRead(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.queries.MarkContactMessageRead(ctx, id); err != nil {
		return fmt.Errorf("marking contact message read: %w", err)
	}
	return nil
}

// Delete removes a message and its attachment file.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	msg, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if msg.AttachmentURL.Valid {
		s.files.Delete(msg.AttachmentURL.String)
	}

	if err := s.queries.DeleteContactMessage(ctx, id); err != nil {
		return fmt.Errorf("deleting contact message: %w", err)
	}

	s.log.Info("contact message deleted", "id", id)
	return nil
}

// UnreadCount returns the number of unread messages.
func (s *ContactService) UnreadCount(ctx context.Context) (int64, error) {
	count, err := s.queries.CountUnreadContactMessages(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return count, nil
}
