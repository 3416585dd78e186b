// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emasmetal/emas-go/internal/auth"
	"github.com/emasmetal/emas-go/internal/model"
	"github.com/emasmetal/emas-go/internal/service"
	"github.com/emasmetal/emas-go/internal/storage"
	"github.com/emasmetal/emas-go/internal/testutil"
)

const testMaxUpload = 1 << 20

// testSetup creates a test database, file store and API handler.
func testSetup(t *testing.T) (*sql.DB, *Handler) {
	t.Helper()
	db, h, _ := testSetupWithFiles(t)
	return db, h
}

// testSetupWithFiles also exposes the file store for disk assertions.
func testSetupWithFiles(t *testing.T) (*sql.DB, *Handler, *storage.FileStore) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	files, err := storage.NewFileStore(t.TempDir(), model.DefaultAllowedExtensions, testMaxUpload, log)
	if err != nil {
		t.Fatalf("creating file store: %v", err)
	}

	issuer := auth.NewTokenIssuer(strings.Repeat("s", 32), time.Hour)
	h := NewHandler(
		service.NewAuthService(db, issuer, log),
		service.NewReferenceService(db, files, nil, 0, log),
		service.NewGalleryService(db, files, nil, 0, log),
		service.NewContactService(db, files, nil, log),
		testMaxUpload,
	)
	return db, h, files
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// newJSONRequest creates an HTTP request with JSON body and optional URL params.
func newJSONRequest(t *testing.T, method, path, body string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// newGetRequest creates an HTTP GET request with optional URL params.
func newGetRequest(t *testing.T, path string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// newDeleteRequest creates an HTTP DELETE request with optional URL params.
func newDeleteRequest(t *testing.T, path string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// filePart describes a file attached to a multipart request.
type filePart struct {
	Field    string
	Filename string
	Content  string
}

// newMultipartRequest creates a multipart request carrying a JSON "data"
// part plus optional file parts.
func newMultipartRequest(t *testing.T, method, path string, data any, files []filePart, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshaling data part: %v", err)
	}
	if err := mw.WriteField("data", string(payload)); err != nil {
		t.Fatalf("writing data part: %v", err)
	}

	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}
		if _, err := part.Write([]byte(f.Content)); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// dataResponse is a generic wrapper for API responses with a "data" field.
type dataResponse[T any] struct {
	Data T `json:"data"`
}

// listResponse is a generic wrapper for API list responses with data and meta.
type listResponse[T any] struct {
	Data []T   `json:"data"`
	Meta *Meta `json:"meta"`
}

// unmarshalData unmarshals a JSON response body into the specified type.
func unmarshalData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp dataResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data
}

// unmarshalList unmarshals a JSON list response body into the specified type.
func unmarshalList[T any](t *testing.T, w *httptest.ResponseRecorder) ([]T, *Meta) {
	t.Helper()
	var resp listResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data, resp.Meta
}

// unmarshalError unmarshals a JSON error response body.
func unmarshalError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}
	return resp.Error
}

// executeHandler executes a handler and returns the response recorder.
func executeHandler(t *testing.T, handler func(http.ResponseWriter, *http.Request), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}
