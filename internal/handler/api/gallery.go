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
)

// GalleryItemResponse is the public shape of a gallery item.
type GalleryItemResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ImageURL     string    `json:"imageUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	DisplayOrder int64     `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toGalleryItemResponse(item store.GalleryItem) GalleryItemResponse {
	return GalleryItemResponse{
		ID:           item.ID,
		Title:        item.Title,
		ImageURL:     item.ImageURL,
		ThumbnailURL: item.ThumbnailURL,
		Category:     item.Category,
		Description:  item.Description,
		DisplayOrder: item.DisplayOrder,
		CreatedAt:    item.CreatedAt,
	}
}

func toGalleryItemResponses(items []store.GalleryItem) []GalleryItemResponse {
	out := make([]GalleryItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toGalleryItemResponse(item))
	}
	return out
}

// ListGallery handles GET /api/gallery.
func (h *Handler) ListGallery(w http.ResponseWriter, r *http.Request) {
	items, err := h.gallery.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		WriteInternalError(w, "Failed to list gallery items")
		return
	}
	WriteSuccess(w, toGalleryItemResponses(items), &Meta{Total: int64(len(items))})
}

// GetGalleryItem handles GET /api/gallery/{id}.
func (h *Handler) GetGalleryItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.gallery.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Gallery item not found")
			return
		}
		WriteInternalError(w, "Failed to load gallery item")
		return
	}
	WriteSuccess(w, toGalleryItemResponse(item), nil)
}

// galleryPayload is the JSON "data" part for create and update requests.
type galleryPayload struct {
	Title        *string `json:"title"`
	Category     *string `json:"category"`
	Description  *string `json:"description"`
	DisplayOrder *int64  `json:"displayOrder"`
}

// fieldErrors validates the length caps on every provided field.
func (p galleryPayload) fieldErrors() map[string]string {
	errs := map[string]string{}
	if p.Title != nil {
		requireRunes(errs, "title", *p.Title, 1, 255)
	}
	if p.Category != nil {
		requireRunes(errs, "category", *p.Category, 0, 50)
	}
	if p.Description != nil {
		requireRunes(errs, "description", *p.Description, 0, 500)
	}
	return errs
}

// CreateGalleryItem handles POST /api/gallery.
func (h *Handler) CreateGalleryItem(w http.ResponseWriter, r *http.Request) {
	var payload galleryPayload
	if !h.decodeMultipartData(w, r, &payload) {
		return
	}

	fieldErrors := payload.fieldErrors()
	if payload.Title == nil {
		fieldErrors["title"] = "Required"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	input := service.CreateGalleryItemInput{Title: *payload.Title}
	if payload.Category != nil {
		input.Category = *payload.Category
	}
	if payload.Description != nil {
		input.Description = *payload.Description
	}
	if payload.DisplayOrder != nil {
		input.DisplayOrder = *payload.DisplayOrder
	}

	image, imageHeader, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			WriteValidationError(w, map[string]string{"image": "Image file is required"})
			return
		}
		WriteBadRequest(w, "Invalid image part", nil)
		return
	}
	defer func() { _ = image.Close() }()

	item, err := h.gallery.Create(r.Context(), input, image, imageHeader)
	if err != nil {
		if errors.Is(err, service.ErrImageRequired) {
			WriteValidationError(w, map[string]string{"image": "Image file is required"})
			return
		}
		writeUploadError(w, "image", err)
		return
	}

	WriteCreated(w, toGalleryItemResponse(item))
}

// UpdateGalleryItem handles PUT /api/gallery/{id}.
func (h *Handler) UpdateGalleryItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload galleryPayload
	if !h.decodeMultipartData(w, r, &payload) {
		return
	}

	if fieldErrors := payload.fieldErrors(); len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	image, imageHeader, err := r.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		WriteBadRequest(w, "Invalid image part", nil)
		return
	}
	if image != nil {
		defer func() { _ = image.Close() }()
	}

	item, err := h.gallery.Update(r.Context(), id, service.UpdateGalleryItemInput{
		Title:        payload.Title,
		Category:     payload.Category,
		Description:  payload.Description,
		DisplayOrder: payload.DisplayOrder,
	}, image, imageHeader)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Gallery item not found")
			return
		}
		writeUploadError(w, "image", err)
		return
	}

	WriteSuccess(w, toGalleryItemResponse(item), nil)
}

// DeleteGalleryItem handles DELETE /api/gallery/{id}.
func (h *Handler) DeleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.gallery.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Gallery item not found")
			return
		}
		WriteInternalError(w, "Failed to delete gallery item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
