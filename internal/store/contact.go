// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// ContactMessage is an inbound inquiry from the public contact form.
type ContactMessage struct {
	ID                 string
	Name               string
	Company            sql.NullString
	Email              string
	Phone              sql.NullString
	Message            string
	AttachmentURL      sql.NullString
	AttachmentFilename sql.NullString
	IsRead             bool
	CreatedAt          time.Time
}

const contactColumns = `id, name, company, email, phone, message, attachment_url, attachment_filename, is_read, created_at`

func scanContactMessage(scanner interface{ Scan(...any) error }) (ContactMessage, error) {
	var m ContactMessage
	err := scanner.Scan(&m.ID, &m.Name, &m.Company, &m.Email, &m.Phone, &m.Message,
		&m.AttachmentURL, &m.AttachmentFilename, &m.IsRead, &m.CreatedAt)
	return m, err
}

// CreateContactMessageParams holds the fields for storing a submission.
type CreateContactMessageParams struct {
	ID                 string
	Name               string
	Company            sql.NullString
	Email              string
	Phone              sql.NullString
	Message            string
	AttachmentURL      sql.NullString
	AttachmentFilename sql.NullString
	CreatedAt          time.Time
}

// CreateContactMessage inserts a new message (unread) and returns the stored row.
func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, company, email, phone, message, attachment_url, attachment_filename, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		arg.ID, arg.Name, arg.Company, arg.Email, arg.Phone, arg.Message,
		arg.AttachmentURL, arg.AttachmentFilename, arg.CreatedAt,
	)
	if err != nil {
		return ContactMessage{}, err
	}
	return q.GetContactMessageByID(ctx, arg.ID)
}

// GetContactMessageByID returns a message by ID.
func (q *Queries) GetContactMessageByID(ctx context.Context, id string) (ContactMessage, error) {
	return scanContactMessage(q.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contact_messages WHERE id = ?`, id))
}

// ListContactMessages returns all messages, newest first.
func (q *Queries) ListContactMessages(ctx context.Context) ([]ContactMessage, error) {
	return q.listMessages(ctx,
		`SELECT `+contactColumns+` FROM contact_messages ORDER BY created_at DESC`)
}

// ListUnreadContactMessages returns unread messages, newest first.
func (q *Queries) ListUnreadContactMessages(ctx context.Context) ([]ContactMessage, error) {
	return q.listMessages(ctx,
		`SELECT `+contactColumns+` FROM contact_messages WHERE is_read = 0 ORDER BY created_at DESC`)
}

func (q *Queries) listMessages(ctx context.Context, query string) ([]ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []ContactMessage
	for rows.Next() {
		m, err := scanContactMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkContactMessageRead flips the read flag. The transition is one-way.
func (q *Queries) MarkContactMessageRead(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE contact_messages SET is_read = 1 WHERE id = ?`, id)
	return err
}

// DeleteContactMessage removes a message row.
func (q *Queries) DeleteContactMessage(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM contact_messages WHERE id = ?`, id)
	return err
}

// CountUnreadContactMessages returns the number of unread messages.
func (q *Queries) CountUnreadContactMessages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contact_messages WHERE is_read = 0`).Scan(&n)
	return n, err
}
