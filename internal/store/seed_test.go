// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"testing"

	"github.com/emasmetal/emas-go/internal/auth"
	"github.com/emasmetal/emas-go/internal/model"
)

func TestSeed(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	params := SeedParams{
		AdminUsername: "admin",
		AdminEmail:    "admin@example.com",
		AdminPassword: "strong-seed-password-1",
	}

	if err := Seed(ctx, db, params); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	q := New(db)

	admin, err := q.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", admin.Role, model.RoleAdmin)
	}
	if !admin.Enabled {
		t.Error("seeded admin should be enabled")
	}

	ok, err := auth.CheckPassword(params.AdminPassword, admin.PasswordHash)
	if err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if !ok {
		t.Error("seeded admin password should verify")
	}

	refs, err := q.CountReferences(ctx)
	if err != nil {
		t.Fatalf("CountReferences: %v", err)
	}
	if refs == 0 {
		t.Error("seed should create sample references")
	}

	items, err := q.CountGalleryItems(ctx)
	if err != nil {
		t.Fatalf("CountGalleryItems: %v", err)
	}
	if items == 0 {
		t.Error("seed should create sample gallery items")
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	params := SeedParams{
		AdminUsername: "admin",
		AdminEmail:    "admin@example.com",
		AdminPassword: "strong-seed-password-1",
	}

	if err := Seed(ctx, db, params); err != nil {
		t.Fatalf("first Seed: %v", err)
	}

	q := New(db)
	refsBefore, _ := q.CountReferences(ctx)
	itemsBefore, _ := q.CountGalleryItems(ctx)

	if err := Seed(ctx, db, params); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	refsAfter, _ := q.CountReferences(ctx)
	itemsAfter, _ := q.CountGalleryItems(ctx)

	if refsAfter != refsBefore {
		t.Errorf("references = %d after reseed, want %d", refsAfter, refsBefore)
	}
	if itemsAfter != itemsBefore {
		t.Errorf("gallery items = %d after reseed, want %d", itemsAfter, itemsBefore)
	}
}
