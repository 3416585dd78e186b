// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
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
)

// ErrImageRequired is returned when a gallery item is created without an
// image file.
var ErrImageRequired = errors.New("image file is required")

// GalleryService manages gallery items and their image files.
type GalleryService struct {
	queries  *store.Queries
	files    *storage.FileStore
	cache    cache.Cacher
	cacheTTL time.Duration
	log      *slog.Logger
}

// NewGalleryService creates a new GalleryService. cache may be nil to
// disable list caching.
func NewGalleryService(db *sql.DB, files *storage.FileStore, c cache.Cacher, cacheTTL time.Duration, log *slog.Logger) *GalleryService {
	return &GalleryService{
		queries:  store.New(db),
		files:    files,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func galleryListKey(category string) string {
	if category == "" {
		return "gallery"
	}
	return "gallery:category:" + category
}

// List returns gallery items ordered by display order, optionally filtered
// by category. Results are cached until the next write.
func (s *GalleryService) List(ctx context.Context, category string) ([]store.GalleryItem, error) {
	key := galleryListKey(category)
	if rows, ok := cachedList[store.GalleryItem](ctx, s.cache, key); ok {
		return rows, nil
	}

	var (
		rows []store.GalleryItem
		err  error
	)
	if category == "" {
		rows, err = s.queries.ListGalleryItems(ctx)
	} else {
		rows, err = s.queries.ListGalleryItemsByCategory(ctx, category)
	}
	if err != nil {
		return nil, fmt.Errorf("listing gallery items: %w", err)
	}

	storeList(ctx, s.cache, key, rows, s.cacheTTL)
	return rows, nil
}

// Get returns a single gallery item by ID.
func (s *GalleryService) Get(ctx context.Context, id string) (store.GalleryItem, error) {
	item, err := s.queries.GetGalleryItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.GalleryItem{}, ErrNotFound
		}
		return store.GalleryItem{}, fmt.Errorf("getting gallery item: %w", err)
	}
	return item, nil
}

// CreateGalleryItemInput holds the fields for a new gallery item.
type CreateGalleryItemInput struct {
	Title        string
	Category     string
	Description  string
	DisplayOrder int64
}

// Create stores the image file and inserts the gallery item. The image is
// mandatory; the thumbnail URL mirrors the image URL.
func (s *GalleryService) Create(ctx context.Context, input CreateGalleryItemInput, image multipart.File, imageHeader *multipart.FileHeader) (store.GalleryItem, error) {
	if image == nil {
		return store.GalleryItem{}, ErrImageRequired
	}

	ref, err := s.files.Store(image, imageHeader, model.SubdirGallery)
	if err != nil {
		return store.GalleryItem{}, err
	}

	created, err := s.queries.CreateGalleryItem(ctx, store.CreateGalleryItemParams{
		ID:           uuid.New().String(),
		Title:        input.Title,
		ImageURL:     ref,
		ThumbnailURL: ref,
		Category:     input.Category,
		Description:  input.Description,
		DisplayOrder: input.DisplayOrder,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		s.files.Delete(ref)
		return store.GalleryItem{}, fmt.Errorf("creating gallery item: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info("gallery item created", "id", created.ID, "title", created.Title)
	return created, nil
}

// UpdateGalleryItemInput carries a partial update. Nil fields are left as
// they are.
type UpdateGalleryItemInput struct {
	Title        *string
	Category     *string
	Description  *string
	DisplayOrder *int64
}

// Update patches a gallery item. When a new image is supplied, the previous
// image file is removed after the record is updated.
func (s *GalleryService) Update(ctx context.Context, id string, input UpdateGalleryItemInput, image multipart.File, imageHeader *multipart.FileHeader) (store.GalleryItem, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return store.GalleryItem{}, err
	}

	if input.Title != nil {
		existing.Title = *input.Title
	}
	if input.Category != nil {
		existing.Category = *input.Category
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.DisplayOrder != nil {
		existing.DisplayOrder = *input.DisplayOrder
	}

	oldImage := existing.ImageURL
	if image != nil {
		ref, err := s.files.Store(image, imageHeader, model.SubdirGallery)
		if err != nil {
			return store.GalleryItem{}, err
		}
		existing.ImageURL = ref
		existing.ThumbnailURL = ref
	}

	updated, err := s.queries.UpdateGalleryItem(ctx, store.UpdateGalleryItemParams{
		ID:           existing.ID,
		Title:        existing.Title,
		ImageURL:     existing.ImageURL,
		ThumbnailURL: existing.ThumbnailURL,
		Category:     existing.Category,
		Description:  existing.Description,
		DisplayOrder: existing.DisplayOrder,
	})
	if err != nil {
		if image != nil {
			s.files.Delete(existing.ImageURL)
		}
		return store.GalleryItem{}, fmt.Errorf("updating gallery item: %w", err)
	}

	if image != nil && oldImage != existing.ImageURL {
		s.files.Delete(oldImage)
	}

	s.invalidate(ctx)
	s.log.Info("gallery item updated", "id", updated.ID)
	return updated, nil
}

// Delete removes a gallery item and its image file. The thumbnail URL
// points at the same file, so only one delete happens.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	s.files.Delete(existing.ImageURL)

	if err := s.queries.DeleteGalleryItem(ctx, id); err != nil {
		return fmt.Errorf("deleting gallery item: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info("gallery item deleted", "id", id)
	return nil
}

func (s *GalleryService) invalidate(ctx context.Context) {
	clearCache(ctx, s.cache, s.log)
}
