// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/emasmetal/emas-go/internal/store"
	"github.com/emasmetal/emas-go/internal/util"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// EventsHandler serves the admin event log.
type EventsHandler struct {
	queries *store.Queries
	log     *slog.Logger
}

// NewEventsHandler creates a new event log handler.
func NewEventsHandler(db *sql.DB, log *slog.Logger) *EventsHandler {
	return &EventsHandler{
		queries: store.New(db),
		log:     log,
	}
}

// EventResponse is the JSON shape of one event log row.
type EventResponse struct {
	ID        int64           `json:"id"`
	Level     string          `json:"level"`
	Category  string          `json:"category"`
	Message   string          `json:"message"`
	UserID    *string         `json:"userId,omitempty"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toEventResponse(e store.Event) EventResponse {
	metadata := json.RawMessage(e.Metadata)
	if !json.Valid(metadata) {
		metadata = json.RawMessage("{}")
	}
	return EventResponse{
		ID:        e.ID,
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		UserID:    util.PtrFromNullString(e.UserID),
		Metadata:  metadata,
		CreatedAt: e.CreatedAt,
	}
}

// ListEvents handles GET /api/events. It returns the newest events;
// ?limit= caps the page size.
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultEventLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			WriteValidationError(w, map[string]string{"limit": "Must be a positive number"})
			return
		}
		if n > maxEventLimit {
			n = maxEventLimit
		}
		limit = n
	}

	events, err := h.queries.ListRecentEvents(r.Context(), limit)
	if err != nil {
		h.log.Error("failed to list events", "error", err)
		WriteInternalError(w, "Failed to list events")
		return
	}

	resp := make([]EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}
	WriteSuccess(w, resp, &Meta{Total: int64(len(resp))})
}
