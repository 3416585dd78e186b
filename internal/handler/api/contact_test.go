// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitContact(t *testing.T, h *Handler, data map[string]any, files []filePart) ContactMessageResponse {
	t.Helper()
	w := executeHandler(t, h.SubmitContact, newMultipartRequest(t, http.MethodPost, "/api/contact", data, files, nil))
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	return unmarshalData[ContactMessageResponse](t, w)
}

func validContactData() map[string]any {
	return map[string]any{
		"name":    "Mehmet Yılmaz",
		"company": "Yılmaz Makina",
		"email":   "mehmet@example.com",
		"phone":   "+90 555 000 00 00",
		"message": "CNC işleme için teklif almak istiyorum.",
	}
}

func TestSubmitContact(t *testing.T) {
	_, h := testSetup(t)

	msg := submitContact(t, h, validContactData(), nil)
	assert.Equal(t, "Mehmet Yılmaz", msg.Name)
	assert.False(t, msg.Read, "new messages start unread")
	assert.Nil(t, msg.AttachmentURL)
	require.NotNil(t, msg.Company)
	assert.Equal(t, "Yılmaz Makina", *msg.Company)
}

func TestSubmitContact_WithAttachment(t *testing.T) {
	_, h := testSetup(t)

	msg := submitContact(t, h, validContactData(),
		[]filePart{{Field: "attachment", Filename: "drawing.dwg", Content: "dwg bytes"}})

	require.NotNil(t, msg.AttachmentURL)
	assert.True(t, strings.HasPrefix(*msg.AttachmentURL, "/uploads/attachments/"), "url %q", *msg.AttachmentURL)
	require.NotNil(t, msg.AttachmentFilename)
	assert.Equal(t, "drawing.dwg", *msg.AttachmentFilename, "original name is kept for display only")
	assert.NotContains(t, *msg.AttachmentURL, "drawing")
}

func TestSubmitContact_Validation(t *testing.T) {
	_, h := testSetup(t)

	tests := []struct {
		name  string
		mutin func(map[string]any)
		field string
	}{
		{name: "missing name", mutin: func(d map[string]any) { d["name"] = "" }, field: "name"},
		{name: "message too short", mutin: func(d map[string]any) { d["message"] = "kısa" }, field: "message"},
		{name: "message too long", mutin: func(d map[string]any) { d["message"] = strings.Repeat("a", 2001) }, field: "message"},
		{name: "invalid email", mutin: func(d map[string]any) { d["email"] = "not-an-email" }, field: "email"},
		{name: "name too long", mutin: func(d map[string]any) { d["name"] = strings.Repeat("n", 256) }, field: "name"},
		{name: "company too long", mutin: func(d map[string]any) { d["company"] = strings.Repeat("c", 5000) }, field: "company"},
		{name: "phone too long", mutin: func(d map[string]any) { d["phone"] = strings.Repeat("5", 5000) }, field: "phone"},
		{name: "email too long", mutin: func(d map[string]any) { d["email"] = strings.Repeat("e", 250) + "@example.com" }, field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validContactData()
			tt.mutin(data)

			w := executeHandler(t, h.SubmitContact, newMultipartRequest(t, http.MethodPost, "/api/contact", data, nil, nil))
			require.Equal(t, http.StatusBadRequest, w.Code)

			detail := unmarshalError(t, w)
			assert.Equal(t, "validation_error", detail.Code)
			assert.Contains(t, detail.Details, tt.field)
		})
	}
}

func TestSubmitContact_MessageBoundaries(t *testing.T) {
	_, h := testSetup(t)

	data := validContactData()
	data["message"] = strings.Repeat("m", 10)
	submitContact(t, h, data, nil)

	data["message"] = strings.Repeat("m", 2000)
	submitContact(t, h, data, nil)
}

func TestListContactMessages(t *testing.T) {
	_, h := testSetup(t)

	first := submitContact(t, h, validContactData(), nil)
	second := submitContact(t, h, validContactData(), nil)

	w := executeHandler(t, h.ListContactMessages, newGetRequest(t, "/api/contact/messages", nil))
	require.Equal(t, http.StatusOK, w.Code)

	msgs, meta := unmarshalList[ContactMessageResponse](t, w)
	require.Len(t, msgs, 2)
	require.NotNil(t, meta)
	assert.Equal(t, int64(2), meta.Total)

	// Mark one read and filter on unread.
	w = executeHandler(t, h.MarkContactMessageRead, requestWithURLParams(
		newJSONRequest(t, http.MethodPatch, "/api/contact/messages/"+first.ID+"/read", "", nil),
		map[string]string{"id": first.ID}))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = executeHandler(t, h.ListContactMessages, newGetRequest(t, "/api/contact/messages?unreadOnly=true", nil))
	msgs, _ = unmarshalList[ContactMessageResponse](t, w)
	require.Len(t, msgs, 1)
	assert.Equal(t, second.ID, msgs[0].ID)
}

func TestGetContactMessage(t *testing.T) {
	_, h := testSetup(t)

	msg := submitContact(t, h, validContactData(), nil)

	w := executeHandler(t, h.GetContactMessage, newGetRequest(t, "/api/contact/messages/"+msg.ID, map[string]string{"id": msg.ID}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msg.ID, unmarshalData[ContactMessageResponse](t, w).ID)

	w = executeHandler(t, h.GetContactMessage, newGetRequest(t, "/api/contact/messages/missing", map[string]string{"id": "missing"}))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkContactMessageRead_Idempotent(t *testing.T) {
	_, h := testSetup(t)

	msg := submitContact(t, h, validContactData(), nil)

	for i := 0; i < 2; i++ {
		w := executeHandler(t, h.MarkContactMessageRead, requestWithURLParams(
			newJSONRequest(t, http.MethodPatch, "/api/contact/messages/"+msg.ID+"/read", "", nil),
			map[string]string{"id": msg.ID}))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	w := executeHandler(t, h.GetContactMessage, newGetRequest(t, "/api/contact/messages/"+msg.ID, map[string]string{"id": msg.ID}))
	assert.True(t, unmarshalData[ContactMessageResponse](t, w).Read)
}

func TestMarkContactMessageRead_NotFound(t *testing.T) {
	_, h := testSetup(t)

	w := executeHandler(t, h.MarkContactMessageRead, requestWithURLParams(
		newJSONRequest(t, http.MethodPatch, "/api/contact/messages/missing/read", "", nil),
		map[string]string{"id": "missing"}))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnreadContactCount(t *testing.T) {
	_, h := testSetup(t)

	first := submitContact(t, h, validContactData(), nil)
	submitContact(t, h, validContactData(), nil)

	w := executeHandler(t, h.UnreadContactCount, newGetRequest(t, "/api/contact/messages/unread-count", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), unmarshalData[UnreadCountResponse](t, w).Count)

	w = executeHandler(t, h.MarkContactMessageRead, requestWithURLParams(
		newJSONRequest(t, http.MethodPatch, "/api/contact/messages/"+first.ID+"/read", "", nil),
		map[string]string{"id": first.ID}))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = executeHandler(t, h.UnreadContactCount, newGetRequest(t, "/api/contact/messages/unread-count", nil))
	assert.Equal(t, int64(1), unmarshalData[UnreadCountResponse](t, w).Count)
}

func TestDeleteContactMessage(t *testing.T) {
	_, h := testSetup(t)

	msg := submitContact(t, h, validContactData(), nil)

	w := executeHandler(t, h.DeleteContactMessage, newDeleteRequest(t, "/api/contact/messages/"+msg.ID, map[string]string{"id": msg.ID}))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = executeHandler(t, h.DeleteContactMessage, newDeleteRequest(t, "/api/contact/messages/"+msg.ID, map[string]string{"id": msg.ID}))
	require.Equal(t, http.StatusNotFound, w.Code)
}
