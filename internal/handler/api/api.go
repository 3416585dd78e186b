// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/emasmetal/emas-go/internal/service"
	"github.com/emasmetal/emas-go/internal/storage"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	auth       *service.AuthService
	references *service.ReferenceService
	gallery    *service.GalleryService
	contact    *service.ContactService
	maxUpload  int64
}

// NewHandler creates a new API handler.
func NewHandler(auth *service.AuthService, references *service.ReferenceService, gallery *service.GalleryService, contact *service.ContactService, maxUpload int64) *Handler {
	return &Handler{
		auth:       auth,
		references: references,
		gallery:    gallery,
		contact:    contact,
		maxUpload:  maxUpload,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains list metadata.
type Meta struct {
	Total int64 `json:"total,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 400 response with per-field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusBadRequest, "validation_error", "Validation failed", fieldErrors)
}

// writeUploadError maps file storage rejections onto validation responses.
// Anything else is an internal error.
func writeUploadError(w http.ResponseWriter, field string, err error) {
	switch {
	case errors.Is(err, storage.ErrEmptyFile):
		WriteValidationError(w, map[string]string{field: "File is empty"})
	case errors.Is(err, storage.ErrNoExtension):
		WriteValidationError(w, map[string]string{field: "Filename must have an extension"})
	case errors.Is(err, storage.ErrTypeNotAllowed):
		WriteValidationError(w, map[string]string{field: "File type is not allowed"})
	case errors.Is(err, storage.ErrTooLarge):
		WriteValidationError(w, map[string]string{field: "File is too large"})
	default:
		WriteInternalError(w, "Failed to store file")
	}
}

// decodeJSONBody decodes a JSON request body into dst. Returns false with a
// response written when the body is malformed.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// decodeMultipartData parses a multipart form and decodes its "data" part
// into dst. Returns false with a response written on failure.
func (h *Handler) decodeMultipartData(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return false
	}

	data := r.FormValue("data")
	if data == "" {
		WriteBadRequest(w, "Missing data part", nil)
		return false
	}

	if err := json.Unmarshal([]byte(data), dst); err != nil {
		WriteBadRequest(w, "Invalid JSON in data part", nil)
		return false
	}
	return true
}

// validEmail reports whether s is a parseable mail address.
func validEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

// requireRunes validates that the trimmed value length in runes falls
// within [min, max], recording a field error otherwise.
func requireRunes(fieldErrors map[string]string, field, value string, min, max int) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	switch {
	case n == 0 && min > 0:
		fieldErrors[field] = "Required"
	case n < min:
		fieldErrors[field] = "Too short"
	case n > max:
		fieldErrors[field] = "Too long"
	}
}
