// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

// ListUploadRefs returns every upload reference currently pointed at by a
// content row: reference logos, gallery images, and contact attachments.
// Used by the maintenance sweep to detect orphaned files.
func (q *Queries) ListUploadRefs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT logo_url FROM company_references WHERE logo_url IS NOT NULL
		 UNION
		 SELECT image_url FROM gallery_items
		 UNION
		 SELECT thumbnail_url FROM gallery_items
		 UNION
		 SELECT attachment_url FROM contact_messages WHERE attachment_url IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
