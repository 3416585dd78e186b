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

// ReferenceResponse is the public shape of a client reference.
type ReferenceResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	WebsiteURL   string    `json:"websiteUrl"`
	LogoURL      *string   `json:"logoUrl"`
	Industry     string    `json:"industry"`
	Description  string    `json:"description"`
	DisplayOrder int64     `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toReferenceResponse(ref store.Reference) ReferenceResponse {
	return ReferenceResponse{
		ID:           ref.ID,
		Name:         ref.Name,
		WebsiteURL:   ref.WebsiteURL,
		LogoURL:      util.PtrFromNullString(ref.LogoURL),
		Industry:     ref.Industry,
		Description:  ref.Description,
		DisplayOrder: ref.DisplayOrder,
		CreatedAt:    ref.CreatedAt,
	}
}

func toReferenceResponses(refs []store.Reference) []ReferenceResponse {
	out := make([]ReferenceResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, toReferenceResponse(ref))
	}
	return out
}

// ListReferences handles GET /api/references.
func (h *Handler) ListReferences(w http.ResponseWriter, r *http.Request) {
	refs, err := h.references.List(r.Context(), r.URL.Query().Get("industry"))
	if err != nil {
		WriteInternalError(w, "Failed to list references")
		return
	}
	WriteSuccess(w, toReferenceResponses(refs), &Meta{Total: int64(len(refs))})
}

// GetReference handles GET /api/references/{id}.
func (h *Handler) GetReference(w http.ResponseWriter, r *http.Request) {
	ref, err := h.references.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Reference not found")
			return
		}
		WriteInternalError(w, "Failed to load reference")
		return
	}
	WriteSuccess(w, toReferenceResponse(ref), nil)
}

// referencePayload is the JSON "data" part for create and update requests.
type referencePayload struct {
	Name         *string `json:"name"`
	WebsiteURL   *string `json:"websiteUrl"`
	Industry     *string `json:"industry"`
	Description  *string `json:"description"`
	DisplayOrder *int64  `json:"displayOrder"`
}

// fieldErrors validates the length caps on every provided field.
func (p referencePayload) fieldErrors() map[string]string {
	errs := map[string]string{}
	if p.Name != nil {
		requireRunes(errs, "name", *p.Name, 1, 255)
	}
	if p.WebsiteURL != nil {
		requireRunes(errs, "websiteUrl", *p.WebsiteURL, 0, 500)
	}
	if p.Industry != nil {
		requireRunes(errs, "industry", *p.Industry, 0, 100)
	}
	if p.Description != nil {
		requireRunes(errs, "description", *p.Description, 0, 500)
	}
	return errs
}

// CreateReference handles POST /api/references.
func (h *Handler) CreateReference(w http.ResponseWriter, r *http.Request) {
	var payload referencePayload
	if !h.decodeMultipartData(w, r, &payload) {
		return
	}

	fieldErrors := payload.fieldErrors()
	if payload.Name == nil {
		fieldErrors["name"] = "Required"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	input := service.CreateReferenceInput{Name: *payload.Name}
	if payload.WebsiteURL != nil {
		input.WebsiteURL = *payload.WebsiteURL
	}
	if payload.Industry != nil {
		input.Industry = *payload.Industry
	}
	if payload.Description != nil {
		input.Description = *payload.Description
	}
	if payload.DisplayOrder != nil {
		input.DisplayOrder = *payload.DisplayOrder
	}

	logo, logoHeader, err := r.FormFile("logo")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		WriteBadRequest(w, "Invalid logo part", nil)
		return
	}
	if logo != nil {
		defer func() { _ = logo.Close() }()
	}

	ref, err := h.references.Create(r.Context(), input, logo, logoHeader)
	if err != nil {
		writeUploadError(w, "logo", err)
		return
	}

	WriteCreated(w, toReferenceResponse(ref))
}

// UpdateReference handles PUT /api/references/{id}.
func (h *Handler) UpdateReference(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload referencePayload
	if !h.decodeMultipartData(w, r, &payload) {
		return
	}

	if fieldErrors := payload.fieldErrors(); len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	logo, logoHeader, err := r.FormFile("logo")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		WriteBadRequest(w, "Invalid logo part", nil)
		return
	}
	if logo != nil {
		defer func() { _ = logo.Close() }()
	}

	ref, err := h.references.Update(r.Context(), id, service.UpdateReferenceInput{
		Name:         payload.Name,
		WebsiteURL:   payload.WebsiteURL,
		Industry:     payload.Industry,
		Description:  payload.Description,
		DisplayOrder: payload.DisplayOrder,
	}, logo, logoHeader)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Reference not found")
			return
		}
		writeUploadError(w, "logo", err)
		return
	}

	WriteSuccess(w, toReferenceResponse(ref), nil)
}

// DeleteReference handles DELETE /api/references/{id}.
func (h *Handler) DeleteReference(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.references.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Reference not found")
			return
		}
		WriteInternalError(w, "Failed to delete reference")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
