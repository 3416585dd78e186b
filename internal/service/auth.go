// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emasmetal/emas-go/internal/auth"
	"github.com/emasmetal/emas-go/internal/model"
	"github.com/emasmetal/emas-go/internal/store"
)

// dummyHash keeps password verification running for unknown usernames so
// login timing does not reveal whether an account exists.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AuthService handles login and account registration.
type AuthService struct {
	queries *store.Queries
	issuer  *auth.TokenIssuer
	log     *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *sql.DB, issuer *auth.TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{
		queries: store.New(db),
		issuer:  issuer,
		log:     log,
	}
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	User      store.User
}

// Login verifies credentials and issues a bearer token. Every failure
// returns ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_, _ = auth.CheckPassword(password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.Enabled {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	if err := s.queries.UpdateUserLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.log.Warn("failed to record last login", "user", user.Username, "err", err)
	}

	s.log.Info("user logged in", "user", user.Username)
	return &LoginResult{
		Token:     token,
		ExpiresIn: s.issuer.TTL(),
		User:      user,
	}, nil
}

// RegisterInput holds the fields for a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a regular user account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (store.User, error) {
	count, err := s.queries.CountUsersByUsername(ctx, input.Username)
	if err != nil {
		return store.User{}, fmt.Errorf("checking username: %w", err)
	}
	if count > 0 {
		return store.User{}, ErrUsernameTaken
	}

	count, err = s.queries.CountUsersByEmail(ctx, input.Email)
	if err != nil {
		return store.User{}, fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return store.User{}, ErrEmailTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return store.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Enabled:      true,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return store.User{}, fmt.Errorf("creating user: %w", err)
	}

	s.log.Info("user registered", "user", user.Username)
	return user, nil
}
