// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// GalleryItem is a production photo shown in the site gallery. The thumbnail
// reference currently always equals the image reference; no separate
// thumbnail is generated.
type GalleryItem struct {
	ID           string
	Title        string
	ImageURL     string
	ThumbnailURL string
	Category     string
	Description  string
	DisplayOrder int64
	CreatedAt    time.Time
}

const galleryColumns = `id, title, image_url, thumbnail_url, category, description, display_order, created_at`

func scanGalleryItem(scanner interface{ Scan(...any) error }) (GalleryItem, error) {
	var g GalleryItem
	err := scanner.Scan(&g.ID, &g.Title, &g.ImageURL, &g.ThumbnailURL, &g.Category, &g.Description, &g.DisplayOrder, &g.CreatedAt)
	return g, err
}

// CreateGalleryItemParams holds the fields for creating a gallery item.
type CreateGalleryItemParams struct {
	ID           string
	Title        string
	ImageURL     string
	ThumbnailURL string
	Category     string
	Description  string
	DisplayOrder int64
	CreatedAt    time.Time
}

// CreateGalleryItem inserts a new gallery item and returns the stored row.
func (q *Queries) CreateGalleryItem(ctx context.Context, arg CreateGalleryItemParams) (GalleryItem, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO gallery_items (id, title, image_url, thumbnail_url, category, description, display_order, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.Title, arg.ImageURL, arg.ThumbnailURL, arg.Category, arg.Description, arg.DisplayOrder, arg.CreatedAt,
	)
	if err != nil {
		return GalleryItem{}, err
	}
	return q.GetGalleryItemByID(ctx, arg.ID)
}

// GetGalleryItemByID returns a gallery item by ID.
func (q *Queries) GetGalleryItemByID(ctx context.Context, id string) (GalleryItem, error) {
	return scanGalleryItem(q.db.QueryRowContext(ctx,
		`SELECT `+galleryColumns+` FROM gallery_items WHERE id = ?`, id))
}

// ListGalleryItems returns all gallery items ordered by display order,
// newest first within the same order value.
func (q *Queries) ListGalleryItems(ctx context.Context) ([]GalleryItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+galleryColumns+` FROM gallery_items
		 ORDER BY display_order ASC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []GalleryItem
	for rows.Next() {
		g, err := scanGalleryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

// ListGalleryItemsByCategory returns gallery items for one category tag, same ordering.
func (q *Queries) ListGalleryItemsByCategory(ctx context.Context, category string) ([]GalleryItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+galleryColumns+` FROM gallery_items
		 WHERE category = ?
		 ORDER BY display_order ASC, created_at DESC`, category)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []GalleryItem
	for rows.Next() {
		g, err := scanGalleryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

// UpdateGalleryItemParams holds the full column set for an update; callers
// merge patch fields into the current row before calling.
type UpdateGalleryItemParams struct {
	ID           string
	Title        string
	ImageURL     string
	ThumbnailURL string
	Category     string
	Description  string
	DisplayOrder int64
}

// UpdateGalleryItem overwrites a gallery item's mutable columns.
func (q *Queries) UpdateGalleryItem(ctx context.Context, arg UpdateGalleryItemParams) (GalleryItem, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE gallery_items
		 SET title = ?, image_url = ?, thumbnail_url = ?, category = ?, description = ?, display_order = ?
		 WHERE id = ?`,
		arg.Title, arg.ImageURL, arg.ThumbnailURL, arg.Category, arg.Description, arg.DisplayOrder, arg.ID,
	)
	if err != nil {
		return GalleryItem{}, err
	}
	return q.GetGalleryItemByID(ctx, arg.ID)
}

// DeleteGalleryItem removes a gallery item row.
func (q *Queries) DeleteGalleryItem(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM gallery_items WHERE id = ?`, id)
	return err
}

// CountGalleryItems returns the total number of gallery items.
func (q *Queries) CountGalleryItems(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gallery_items`).Scan(&n)
	return n, err
}
