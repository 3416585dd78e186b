// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"github.com/emasmetal/emas-go/internal/cache"
	"github.com/emasmetal/emas-go/internal/model"
	"github.com/emasmetal/emas-go/internal/storage"
	"github.com/emasmetal/emas-go/internal/store"
	"github.com/emasmetal/emas-go/internal/util"
)

// ReferenceService manages client reference entries and their logo files.
type ReferenceService struct {
	queries  *store.Queries
	files    *storage.FileStore
	cache    cache.Cacher
	cacheTTL time.Duration
	log      *slog.Logger
}

// NewReferenceService creates a new ReferenceService. cache may be nil to
// disable list caching.
func NewReferenceService(db *sql.DB, files *storage.FileStore, c cache.Cacher, cacheTTL time.Duration, log *slog.Logger) *ReferenceService {
	return &ReferenceService{
		queries:  store.New(db),
		files:    files,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func referenceListKey(industry string) string {
	if industry == "" {
		return "references"
	}
	return "references:industry:" + industry
}

// List returns references ordered by display order, optionally filtered by
// industry. Results are cached until the next write.
func (s *ReferenceService) List(ctx context.Context, industry string) ([]store.Reference, error) {
	key := referenceListKey(industry)
	if rows, ok := cachedList[store.Reference](ctx, s.cache, key); ok {
		return rows, nil
	}

	var (
		rows []store.Reference
		err  error
	)
	if industry == "" {
		rows, err = s.queries.ListReferences(ctx)
	} else {
		rows, err = s.queries.ListReferencesByIndustry(ctx, industry)
	}
	if err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}

	storeList(ctx, s.cache, key, rows, s.cacheTTL)
	return rows, nil
}

// Get returns a single reference by ID.
func (s *ReferenceService) Get(ctx context.Context, id string) (store.Reference, error) {
	ref, err := s.queries.GetReferenceByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Reference{}, ErrNotFound
		}
		return store.Reference{}, fmt.Errorf("getting reference: %w", err)
	}
	return ref, nil
}

// CreateReferenceInput holds the fields for a new reference.
type CreateReferenceInput struct {
	Name         string
	WebsiteURL   string
	Industry     string
	Description  string
	DisplayOrder int64
}

// Create stores the optional logo file and inserts the reference.
func (s *ReferenceService) Create(ctx context.Context, input CreateReferenceInput, logo multipart.File, logoHeader *multipart.FileHeader) (store.Reference, error) {
	var logoURL sql.NullString
	if logo != nil {
		ref, err := s.files.Store(logo, logoHeader, model.SubdirLogos)
		if err != nil {
			return store.Reference{}, err
		}
		logoURL = util.NullStringFromValue(ref)
	}

	created, err := s.queries.CreateReference(ctx, store.CreateReferenceParams{
		ID:           uuid.New().String(),
		Name:         input.Name,
		WebsiteURL:   input.WebsiteURL,
		LogoURL:      logoURL,
		Industry:     input.Industry,
		Description:  input.Description,
		DisplayOrder: input.DisplayOrder,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		if logoURL.Valid {
			s.files.Delete(logoURL.String)
		}
		return store.Reference{}, fmt.Errorf("creating reference: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info("reference created", "id", created.ID, "name", created.Name)
	return created, nil
}

// UpdateReferenceInput carries a partial update. Nil fields are left as
// they are.
type UpdateReferenceInput struct {
	Name         *string
	WebsiteURL   *string
	Industry     *string
	Description  *string
	DisplayOrder *int64
}

// Update patches a reference. When a new logo is supplied, the previous
// logo file is removed after the record is updated.
func (s *ReferenceService) Update(ctx context.Context, id string, input UpdateReferenceInput, logo multipart.File, logoHeader *multipart.FileHeader) (store.Reference, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return store.Reference{}, err
	}

	if input.Name != nil {
		existing.Name = *input.Name
	}
	if input.WebsiteURL != nil {
		existing.WebsiteURL = *input.WebsiteURL
	}
	if input.Industry != nil {
		existing.Industry = *input.Industry
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.DisplayOrder != nil {
		existing.DisplayOrder = *input.DisplayOrder
	}

	oldLogo := existing.LogoURL
	if logo != nil {
		ref, err := s.files.Store(logo, logoHeader, model.SubdirLogos)
		if err != nil {
			return store.Reference{}, err
		}
		existing.LogoURL = util.NullStringFromValue(ref)
	}

	updated, err := s.queries.UpdateReference(ctx, store.UpdateReferenceParams{
		ID:           existing.ID,
		Name:         existing.Name,
		WebsiteURL:   existing.WebsiteURL,
		LogoURL:      existing.LogoURL,
		Industry:     existing.Industry,
		Description:  existing.Description,
		DisplayOrder: existing.DisplayOrder,
	})
	if err != nil {
		if logo != nil && existing.LogoURL.Valid {
			s.files.Delete(existing.LogoURL.String)
		}
		return store.Reference{}, fmt.Errorf("updating reference: %w", err)
	}

	if logo != nil && oldLogo.Valid && oldLogo.String != existing.LogoURL.String {
		s.files.Delete(oldLogo.String)
	}

	s.invalidate(ctx)
	s.log.Info("reference updated", "id", updated.ID)
	return updated, nil
}

// Delete removes a reference and its logo file.
func (s *ReferenceService) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if existing.LogoURL.Valid {
		s.files.Delete(existing.LogoURL.String)
	}

	if err := s.queries.DeleteReference(ctx, id); err != nil {
		return fmt.Errorf("deleting reference: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info("reference deleted", "id", id)
	return nil
}

func (s *ReferenceService) invalidate(ctx context.Context) {
	clearCache(ctx, s.cache, s.log)
}

// cachedList loads a cached JSON-encoded row slice, returning ok=false on
// any miss or decode problem.
func cachedList[T any](ctx context.Context, c cache.Cacher, key string) ([]T, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

// storeList caches a row slice as JSON. Failures are silent; the cache is
// an optimization only.
func storeList[T any](ctx context.Context, c cache.Cacher, key string, rows []T, ttl time.Duration) {
	if c == nil {
		return
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, data, ttl)
}

func clearCache(ctx context.Context, c cache.Cacher, log *slog.Logger) {
	if c == nil {
		return
	}
	if err := c.Clear(ctx); err != nil {
		log.Warn("cache invalidation failed", "err", err)
	}
}
