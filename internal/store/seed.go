// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

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
)

// SeedParams holds the bootstrap admin credentials.
type SeedParams struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Seed creates the bootstrap admin account and sample content. Each part is
// skipped when rows already exist, so running it repeatedly is safe.
func Seed(ctx context.Context, db *sql.DB, params SeedParams) error {
	queries := New(db)

	if err := seedAdmin(ctx, queries, params); err != nil {
		return err
	}
	if err := seedReferences(ctx, queries); err != nil {
		return err
	}
	return seedGallery(ctx, queries)
}

func seedAdmin(ctx context.Context, queries *Queries, params SeedParams) error {
	_, err := queries.GetUserByUsername(ctx, params.AdminUsername)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(params.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		ID:           uuid.New().String(),
		Username:     params.AdminUsername,
		Email:        params.AdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Enabled:      true,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created bootstrap admin user", "id", user.ID, "username", user.Username)
	return nil
}

func seedReferences(ctx context.Context, queries *Queries) error {
	count, err := queries.CountReferences(ctx)
	if err != nil {
		return fmt.Errorf("counting references: %w", err)
	}
	if count > 0 {
		return nil
	}

	samples := []struct {
		name     string
		website  string
		logo     string
		industry string
		order    int64
	}{
		{"Arıkan Automotive", "https://www.arikanautomotive.com/tr", "/images/references/arikan.png", "Otomotiv Yan Sanayi", 1},
		{"Köklüce Makina", "https://www.koklucemakina.com/", "/images/references/kokluce.png", "Tarım Makineleri", 2},
		{"EPTA", "https://eptaglobal.com/", "/images/references/epta.png", "Beyaz Eşya Yan Sanayi", 3},
		{"ÖNAYSAN", "https://www.onaysan.com.tr/", "/images/references/onaysan.png", "Beyaz Eşya Yan Sanayi", 4},
		{"HİSARLAR", "https://www.hisarlar.com.tr/index.html", "/images/references/hisarlar.png", "Tarım Makineleri", 5},
		{"DÜŞLERSAN", "https://www.duslersan.com/", "/images/references/duslersan.png", "Robotik", 6},
	}

	now := time.Now()
	for _, s := range samples {
		if _, err := queries.CreateReference(ctx, CreateReferenceParams{
			ID:           uuid.New().String(),
			Name:         s.name,
			WebsiteURL:   s.website,
			LogoURL:      sql.NullString{String: s.logo, Valid: true},
			Industry:     s.industry,
			DisplayOrder: s.order,
			CreatedAt:    now,
		}); err != nil {
			return fmt.Errorf("seeding reference %q: %w", s.name, err)
		}
	}

	slog.Info("seeded sample references", "count", len(samples))
	return nil
}

func seedGallery(ctx context.Context, queries *Queries) error {
	count, err := queries.CountGalleryItems(ctx)
	if err != nil {
		return fmt.Errorf("counting gallery items: %w", err)
	}
	if count > 0 {
		return nil
	}

	samples := []struct {
		title       string
		image       string
		category    string
		description string
		order       int64
	}{
		{"CNC Freze Makinesi", "/images/gallery/IMG_1136.jpg", "Milling", "Yüksek hassasiyetli CNC freze işleme merkezi", 1},
		{"CNC Torna İşlemi", "/images/gallery/IMG_1130.jpg", "Turning", "Hassas CNC torna operasyonu", 2},
		{"Torna Üretimi", "/images/gallery/IMG_1131.jpg", "Turning", "Yüksek toleranslı torna işleme", 3},
		{"Döner Şaft Üretimi", "/images/gallery/IMG_1133.jpg", "Turning", "Hassas şaft ve mil üretimi", 4},
		{"Torna Atölyesi", "/images/gallery/IMG_1142.jpg", "Turning", "Modern torna üretim hattı", 5},
	}

	now := time.Now()
	for _, s := range samples {
		// Seeded rows point at images shipped with the frontend, not at
		// uploaded files; the thumbnail always mirrors the image.
		if _, err := queries.CreateGalleryItem(ctx, CreateGalleryItemParams{
			ID:           uuid.New().String(),
			Title:        s.title,
			ImageURL:     s.image,
			ThumbnailURL: s.image,
			Category:     s.category,
			Description:  s.description,
			DisplayOrder: s.order,
			CreatedAt:    now,
		}); err != nil {
			return fmt.Errorf("seeding gallery item %q: %w", s.title, err)
		}
	}

	slog.Info("seeded sample gallery items", "count", len(samples))
	return nil
}
