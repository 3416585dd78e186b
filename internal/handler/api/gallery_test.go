// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createGalleryItem(t *testing.T, h *Handler, data map[string]any, files []filePart) GalleryItemResponse {
	t.Helper()
	w := executeHandler(t, h.CreateGalleryItem, newMultipartRequest(t, http.MethodPost, "/api/gallery", data, files, nil))
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	return unmarshalData[GalleryItemResponse](t, w)
}

func TestCreateGalleryItem(t *testing.T) {
	_, h := testSetup(t)

	item := createGalleryItem(t, h, map[string]any{
		"title":        "CNC Freze",
		"category":     "Milling",
		"description":  "5 eksen",
		"displayOrder": 1,
	}, []filePart{{Field: "image", Filename: "cnc.jpg", Content: "jpeg bytes"}})

	assert.Equal(t, "CNC Freze", item.Title)
	assert.Equal(t, "Milling", item.Category)
	assert.True(t, strings.HasPrefix(item.ImageURL, "/uploads/gallery/"), "image url %q", item.ImageURL)
	assert.Equal(t, item.ImageURL, item.ThumbnailURL, "thumbnail mirrors the image")
}

func TestCreateGalleryItem_ImageRequired(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.CreateGalleryItem, newMultipartRequest(t, http.MethodPost, "/api/gallery",
		map[string]any{"title": "No image"}, nil, nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, unmarshalError(t, w).Details, "image")
}

func TestCreateGalleryItem_MissingTitle(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.CreateGalleryItem, newMultipartRequest(t, http.MethodPost, "/api/gallery",
		map[string]any{"category": "Milling"},
		[]filePart{{Field: "image", Filename: "a.jpg", Content: "x"}}, nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, unmarshalError(t, w).Details, "title")
}

func TestCreateGalleryItem_FieldLengthCaps(t *testing.T) {
	_, h := testSetup(t)

	tests := []struct {
		name  string
		data  map[string]any
		field string
	}{
		{name: "title too long", data: map[string]any{"title": strings.Repeat("t", 256)}, field: "title"},
		{name: "category too long", data: map[string]any{"title": "CNC", "category": strings.Repeat("c", 51)}, field: "category"},
		{name: "description too long", data: map[string]any{"title": "CNC", "description": strings.Repeat("d", 501)}, field: "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := executeHandler(t, h.CreateGalleryItem, newMultipartRequest(t, http.MethodPost, "/api/gallery",
				tt.data, []filePart{{Field: "image", Filename: "a.jpg", Content: "x"}}, nil))
			require.Equal(t, http.StatusBadRequest, w.Code)

			detail := unmarshalError(t, w)
			assert.Equal(t, "validation_error", detail.Code)
			assert.Contains(t, detail.Details, tt.field)
		})
	}
}

func TestListGallery_CategoryFilter(t *testing.T) {
	_, h := testSetup(t)

	createGalleryItem(t, h, map[string]any{"title": "Mill", "category": "Milling", "displayOrder": 1},
		[]filePart{{Field: "image", Filename: "a.jpg", Content: "a"}})
	createGalleryItem(t, h, map[string]any{"title": "Turn", "category": "Turning", "displayOrder": 2},
		[]filePart{{Field: "image", Filename: "b.jpg", Content: "b"}})

	w := executeHandler(t, h.ListGallery, newGetRequest(t, "/api/gallery?category=Turning", nil))
	require.Equal(t, http.StatusOK, w.Code)

	items, meta := unmarshalList[GalleryItemResponse](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "Turn", items[0].Title)
	require.NotNil(t, meta)
	assert.Equal(t, int64(1), meta.Total)

	w = executeHandler(t, h.ListGallery, newGetRequest(t, "/api/gallery", nil))
	items, _ = unmarshalList[GalleryItemResponse](t, w)
	require.Len(t, items, 2)
	assert.Equal(t, "Mill", items[0].Title, "display order decides")
}

func TestGetGalleryItem(t *testing.T) {
	_, h := testSetup(t)

	created := createGalleryItem(t, h, map[string]any{"title": "CNC Turning", "category": "Turning"},
		[]filePart{{Field: "image", Filename: "turn.jpg", Content: "jpg"}})

	w := executeHandler(t, h.GetGalleryItem,
		newGetRequest(t, "/api/gallery/"+created.ID, map[string]string{"id": created.ID}))
	require.Equal(t, http.StatusOK, w.Code)

	got := unmarshalData[GalleryItemResponse](t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, got.ImageURL, got.ThumbnailURL)
}

func TestGetGalleryItem_NotFound(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.GetGalleryItem,
		newGetRequest(t, "/api/gallery/missing", map[string]string{"id": "missing"}))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", unmarshalError(t, w).Code)
}

func TestUpdateGalleryItem_PartialPatch(t *testing.T) {
	_, h := testSetup(t)

	item := createGalleryItem(t, h, map[string]any{"title": "Old", "category": "Milling"},
		[]filePart{{Field: "image", Filename: "a.jpg", Content: "a"}})

	w := executeHandler(t, h.UpdateGalleryItem, newMultipartRequest(t, http.MethodPut, "/api/gallery/"+item.ID,
		map[string]any{"title": "New"}, nil, map[string]string{"id": item.ID}))
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	updated := unmarshalData[GalleryItemResponse](t, w)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "Milling", updated.Category)
	assert.Equal(t, item.ImageURL, updated.ImageURL, "image survives a patch without a file")
}

func TestUpdateGalleryItem_ReplacesImage(t *testing.T) {
	_, h := testSetup(t)

	item := createGalleryItem(t, h, map[string]any{"title": "A"},
		[]filePart{{Field: "image", Filename: "old.jpg", Content: "old"}})

	w := executeHandler(t, h.UpdateGalleryItem, newMultipartRequest(t, http.MethodPut, "/api/gallery/"+item.ID,
		map[string]any{}, []filePart{{Field: "image", Filename: "new.jpg", Content: "new"}},
		map[string]string{"id": item.ID}))
	require.Equal(t, http.StatusOK, w.Code)

	updated := unmarshalData[GalleryItemResponse](t, w)
	assert.NotEqual(t, item.ImageURL, updated.ImageURL)
	assert.Equal(t, updated.ImageURL, updated.ThumbnailURL)
}

func TestUpdateGalleryItem_NotFound(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.UpdateGalleryItem, newMultipartRequest(t, http.MethodPut, "/api/gallery/missing",
		map[string]any{"title": "X"}, nil, map[string]string{"id": "missing"}))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteGalleryItem(t *testing.T) {
	_, h, files := testSetupWithFiles(t)

	item := createGalleryItem(t, h, map[string]any{"title": "A"},
		[]filePart{{Field: "image", Filename: "a.jpg", Content: "a"}})

	path, err := files.Resolve(item.ImageURL)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err, "image file exists before delete")

	w := executeHandler(t, h.DeleteGalleryItem, newDeleteRequest(t, "/api/gallery/"+item.ID, map[string]string{"id": item.ID}))
	require.Equal(t, http.StatusNoContent, w.Code)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "image file removed exactly once even though the thumbnail shares it")

	w = executeHandler(t, h.DeleteGalleryItem, newDeleteRequest(t, "/api/gallery/"+item.ID, map[string]string{"id": item.ID}))
	require.Equal(t, http.StatusNotFound, w.Code)
}
