// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs: pruning old event log
// entries and sweeping uploaded files no content row points at anymore.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/emasmetal/emas-go/internal/model"
	"github.com/emasmetal/emas-go/internal/storage"
	"github.com/emasmetal/emas-go/internal/store"
)

const (
	// eventRetention is how long event log rows are kept.
	eventRetention = 90 * 24 * time.Hour

	// orphanGrace protects freshly written files from the sweep. An upload
	// exists on disk before its database row is committed.
	orphanGrace = 24 * time.Hour
)

// Scheduler runs the nightly maintenance jobs.
type Scheduler struct {
	db     *sql.DB
	files  *storage.FileStore
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a scheduler instance.
func New(db *sql.DB, files *storage.FileStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		files:  files,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the maintenance jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 3 * * *", func() {
		if err := s.PruneEvents(context.Background()); err != nil {
			s.logger.Error("failed to prune event log", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("15 3 * * *", func() {
		if err := s.SweepOrphanedUploads(context.Background()); err != nil {
			s.logger.Error("failed to sweep orphaned uploads", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("maintenance scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("maintenance scheduler stopped")
}

// PruneEvents deletes event log rows older than the retention window.
func (s *Scheduler) PruneEvents(ctx context.Context) error {
	cutoff := time.Now().Add(-eventRetention)
	n, err := store.New(s.db).PruneEvents(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned event log", "removed", n, "cutoff", cutoff)
	}
	return nil
}

// SweepOrphanedUploads removes files under the uploads root that no content
// row references. Files younger than the grace period are left alone.
func (s *Scheduler) SweepOrphanedUploads(ctx context.Context) error {
	refs, err := store.New(s.db).ListUploadRefs(ctx)
	if err != nil {
		return err
	}

	referenced := make(map[string]bool, len(refs))
	for _, ref := range refs {
		referenced[ref] = true
	}

	cutoff := time.Now().Add(-orphanGrace)
	var removed int

	for _, subdir := range model.UploadSubdirs() {
		entries, err := os.ReadDir(filepath.Join(s.files.Root(), subdir))
		if err != nil {
			s.logger.Warn("cannot read uploads subdirectory", "subdir", subdir, "error", err)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ref := storage.URLPrefix + subdir + "/" + entry.Name()
			if referenced[ref] {
				continue
			}

			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}

			s.files.Delete(ref)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("swept orphaned uploads", "removed", removed)
	}
	return nil
}
