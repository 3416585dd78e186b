// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/emasmetal/emas-go/internal/service"
	"github.com/emasmetal/emas-go/internal/store"
)

// UserResponse is the public shape of a user account.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresIn int64        `json:"expiresIn"`
	User      UserResponse `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fieldErrors := map[string]string{}
	requireRunes(fieldErrors, "username", req.Username, 1, 100)
	requireRunes(fieldErrors, "password", req.Password, 1, 200)
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			WriteUnauthorized(w, "Invalid username or password")
			return
		}
		WriteInternalError(w, "Login failed")
		return
	}

	WriteSuccess(w, LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
		User:      toUserResponse(result.User),
	}, nil)
}

// RegisterRequest is the account registration payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fieldErrors := map[string]string{}
	requireRunes(fieldErrors, "username", req.Username, 3, 50)
	requireRunes(fieldErrors, "password", req.Password, 8, 200)
	if !validEmail(req.Email) {
		fieldErrors["email"] = "Invalid email address"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			WriteValidationError(w, map[string]string{"username": "Username already taken"})
		case errors.Is(err, service.ErrEmailTaken):
			WriteValidationError(w, map[string]string{"email": "Email already registered"})
		default:
			WriteInternalError(w, "Registration failed")
		}
		return
	}

	WriteCreated(w, toUserResponse(user))
}
