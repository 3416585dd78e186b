// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emasmetal/emas-go/internal/service"
	"github.com/emasmetal/emas-go/internal/store"
	"github.com/emasmetal/emas-go/internal/util"
)

// Contact message length bounds.
const (
	minMessageRunes = 10
	maxMessageRunes = 2000
)

// ContactMessageResponse is the admin-facing shape of a contact message.
type ContactMessageResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Company            *string   `json:"company"`
	Email              string    `json:"email"`
	Phone              *string   `json:"phone"`
	Message            string    `json:"message"`
	AttachmentURL      *string   `json:"attachmentUrl"`
	AttachmentFilename *string   `json:"attachmentFilename"`
	Read               bool      `json:"read"`
	CreatedAt          time.Time `json:"createdAt"`
}

func toContactMessageResponse(msg store.ContactMessage) ContactMessageResponse {
	return ContactMessageResponse{
		ID:                 msg.ID,
		Name:               msg.Name,
		Company:            util.PtrFromNullString(msg.Company),
		Email:              msg.Email,
		Phone:              util.PtrFromNullString(msg.Phone),
		Message:            msg.Message,
		AttachmentURL:      util.PtrFromNullString(msg.AttachmentURL),
		AttachmentFilename: util.PtrFromNullString(msg.AttachmentFilename),
		Read:               msg.IsRead,
		CreatedAt:          msg.CreatedAt,
	}
}

func toContactMessageResponses(msgs []store.ContactMessage) []ContactMessageResponse {
	out := make([]ContactMessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, toContactMessageResponse(msg))
	}
	return out
}

// contactPayload is the JSON "data" part of a contact submission.
type contactPayload struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SubmitContact handles POST /api/contact.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var payload contactPayload
	if !h.decodeMultipartData(w, r, &payload) {
		return
	}

	fieldErrors := map[string]string{}
	requireRunes(fieldErrors, "name", payload.Name, 1, 255)
	requireRunes(fieldErrors, "company", payload.Company, 0, 255)
	requireRunes(fieldErrors, "phone", payload.Phone, 0, 50)
	requireRunes(fieldErrors, "email", payload.Email, 1, 255)
	requireRunes(fieldErrors, "message", payload.Message, minMessageRunes, maxMessageRunes)
	if fieldErrors["email"] == "" && !validEmail(payload.Email) {
		fieldErrors["email"] = "Invalid email address"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	attachment, attachmentHeader, err := r.FormFile("attachment")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		WriteBadRequest(w, "Invalid attachment part", nil)
		return
	}
	if attachment != nil {
		defer func() { _ = attachment.Close() }()
	}

	msg, err := h.contact.Submit(r.Context(), service.SubmitInput{
		Name:    payload.Name,
		Company: payload.Company,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Message: payload.Message,
	}, attachment, attachmentHeader)
	if err != nil {
		writeUploadError(w, "attachment", err)
		return
	}

	WriteCreated(w, toContactMessageResponse(msg))
}

// ListContactMessages handles GET /api/contact/messages.
func (h *Handler) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"

	msgs, err := h.contact.List(r.Context(), unreadOnly)
	if err != nil {
		WriteInternalError(w, "Failed to list contact messages")
		return
	}
	WriteSuccess(w, toContactMessageResponses(msgs), &Meta{Total: int64(len(msgs))})
}

// GetContactMessage handles GET /api/contact/messages/{id}.
func (h *Handler) GetContactMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.contact.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Contact message not found")
			return
		}
		WriteInternalError(w, "Failed to get contact message")
		return
	}
	WriteSuccess(w, toContactMessageResponse(msg), nil)
}

// MarkContactMessageRead handles PATCH /api/contact/messages/{id}/read.
func (h *Handler) MarkContactMessageRead(w http.ResponseWriter, r *http.Request) {
	if err := h.contact.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Contact message not found")
			return
		}
		WriteInternalError(w, "Failed to mark message read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteContactMessage handles DELETE /api/contact/messages/{id}.
func (h *Handler) DeleteContactMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.contact.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Contact message not found")
			return
		}
		WriteInternalError(w, "Failed to delete contact message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnreadCountResponse carries the unread message count.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// UnreadContactCount handles GET /api/contact/messages/unread-count.
func (h *Handler) UnreadContactCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.contact.UnreadCount(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to count unread messages")
		return
	}
	WriteSuccess(w, UnreadCountResponse{Count: count}, nil)
}
