// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Reference is a client/partner company shown on the marketing site.
type Reference struct {
	ID           string
	Name         string
	WebsiteURL   string
	LogoURL      sql.NullString
	Industry     string
	Description  string
	DisplayOrder int64
	CreatedAt    time.Time
}

const referenceColumns = `id, name, website_url, logo_url, industry, description, display_order, created_at`

func scanReference(scanner interface{ Scan(...any) error }) (Reference, error) {
	var r Reference
	err := scanner.Scan(&r.ID, &r.Name, &r.WebsiteURL, &r.LogoURL, &r.Industry, &r.Description, &r.DisplayOrder, &r.CreatedAt)
	return r, err
}

// CreateReferenceParams holds the fields for creating a reference.
type CreateReferenceParams struct {
	ID           string
	Name         string
	WebsiteURL   string
	LogoURL      sql.NullString
	Industry     string
	Description  string
	DisplayOrder int64
	CreatedAt    time.Time
}

// CreateReference inserts a new reference and returns the stored row.
func (q *Queries) CreateReference(ctx context.Context, arg CreateReferenceParams) (Reference, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO company_references (id, name, website_url, logo_url, industry, description, display_order, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.Name, arg.WebsiteURL, arg.LogoURL, arg.Industry, arg.Description, arg.DisplayOrder, arg.CreatedAt,
	)
	if err != nil {
		return Reference{}, err
	}
	return q.GetReferenceByID(ctx, arg.ID)
}

// GetReferenceByID returns a reference by ID.
func (q *Queries) GetReferenceByID(ctx context.Context, id string) (Reference, error) {
	return scanReference(q.db.QueryRowContext(ctx,
		`SELECT `+referenceColumns+` FROM company_references WHERE id = ?`, id))
}

// ListReferences returns all references ordered by display order, newest first
// within the same order value.
func (q *Queries) ListReferences(ctx context.Context) ([]Reference, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+referenceColumns+` FROM company_references
		 ORDER BY display_order ASC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var refs []Reference
	for rows.Next() {
		r, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// ListReferencesByIndustry returns references for one industry tag, same ordering.
func (q *Queries) ListReferencesByIndustry(ctx context.Context, industry string) ([]Reference, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+referenceColumns+` FROM company_references
		 WHERE industry = ?
		 ORDER BY display_order ASC, created_at DESC`, industry)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var refs []Reference
	for rows.Next() {
		r, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// UpdateReferenceParams holds the full column set for an update; callers merge
// patch fields into the current row before calling.
type UpdateReferenceParams struct {
	ID           string
	Name         string
	WebsiteURL   string
	LogoURL      sql.NullString
	Industry     string
	Description  string
	DisplayOrder int64
}

// UpdateReference overwrites a reference's mutable columns. created_at is
// never touched.
func (q *Queries) UpdateReference(ctx context.Context, arg UpdateReferenceParams) (Reference, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE company_references
		 SET name = ?, website_url = ?, logo_url = ?, industry = ?, description = ?, display_order = ?
		 WHERE id = ?`,
		arg.Name, arg.WebsiteURL, arg.LogoURL, arg.Industry, arg.Description, arg.DisplayOrder, arg.ID,
	)
	if err != nil {
		return Reference{}, err
	}
	return q.GetReferenceByID(ctx, arg.ID)
}

// DeleteReference removes a reference row.
func (q *Queries) DeleteReference(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM company_references WHERE id = ?`, id)
	return err
}

// CountReferences returns the total number of references.
func (q *Queries) CountReferences(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM company_references`).Scan(&n)
	return n, err
}
