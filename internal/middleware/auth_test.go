// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emasmetal/emas-go/internal/auth"
	"github.com/emasmetal/emas-go/internal/model"
	"github.com/emasmetal/emas-go/internal/store"
	"github.com/emasmetal/emas-go/internal/testutil"
)

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer(strings.Repeat("s", 32), time.Hour)
}

func createTestUser(t *testing.T, db *sql.DB, role string, enabled bool) store.User {
	t.Helper()

	hash, err := auth.HashPassword("test-password-1")
	require.NoError(t, err)

	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		ID:           uuid.New().String(),
		Username:     "user-" + uuid.New().String()[:8],
		Email:        uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Enabled:      enabled,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	return user
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRequireAuth(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	issuer := testIssuer()
	user := createTestUser(t, db, model.RoleAdmin, true)
	token, err := issuer.Issue(user.ID, user.Username, user.Role)
	require.NoError(t, err)

	var gotUser store.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = GetUser(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	RequireAuth(issuer, db)(next).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID, gotUser.ID)
}

func TestRequireAuth_Failures(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	issuer := testIssuer()
	enabled := createTestUser(t, db, model.RoleUser, true)
	disabled := createTestUser(t, db, model.RoleUser, false)

	goodToken, err := issuer.Issue(enabled.ID, enabled.Username, enabled.Role)
	require.NoError(t, err)
	disabledToken, err := issuer.Issue(disabled.ID, disabled.Username, disabled.Role)
	require.NoError(t, err)

	otherIssuer := auth.NewTokenIssuer(strings.Repeat("x", 32), time.Hour)
	forgedToken, err := otherIssuer.Issue(enabled.ID, enabled.Username, enabled.Role)
	require.NoError(t, err)

	deletedToken, err := issuer.Issue(uuid.New().String(), "ghost", model.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not.a.token"},
		{name: "wrong signing key", header: "Bearer " + forgedToken},
		{name: "unknown user", header: "Bearer " + deletedToken},
		{name: "disabled account", header: "Bearer " + disabledToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			RequireAuth(issuer, db)(next).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, *called)
		})
	}

	// Sanity check that the good token still works.
	next, called := okHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+goodToken)
	w := httptest.NewRecorder()
	RequireAuth(issuer, db)(next).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *called)
}

func TestRequireAdmin(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	admin := createTestUser(t, db, model.RoleAdmin, true)
	regular := createTestUser(t, db, model.RoleUser, true)

	serve := func(user *store.User) *httptest.ResponseRecorder {
		next, _ := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != nil {
			req = req.WithContext(context.WithValue(req.Context(), ContextKeyUser, *user))
		}
		w := httptest.NewRecorder()
		RequireAdmin()(next).ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, serve(&admin).Code)
	assert.Equal(t, http.StatusForbidden, serve(&regular).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(nil).Code)
}
