// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage persists uploaded files on local disk and hands out
// the public /uploads URL paths stored in the database.
package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/emasmetal/emas-go/internal/model"
	"github.com/emasmetal/emas-go/internal/util"
)

// URLPrefix is prepended to every stored file reference.
const URLPrefix = "/uploads/"

var (
	// ErrEmptyFile is returned when the uploaded file has no content.
	ErrEmptyFile = errors.New("uploaded file is empty")
	// ErrNoExtension is returned when the filename carries no extension.
	ErrNoExtension = errors.New("filename has no extension")
	// ErrTypeNotAllowed is returned when the extension is not on the allow list.
	ErrTypeNotAllowed = errors.New("file type not allowed")
	// ErrTooLarge is returned when the file exceeds the configured size limit.
	ErrTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrInvalidReference is returned for references outside the uploads tree.
	ErrInvalidReference = errors.New("invalid file reference")
)

// FileStore writes uploads under a root directory, one subdirectory per
// content kind. Stored files are renamed to a random UUID so original
// filenames never reach the filesystem.
type FileStore struct {
	root       string
	allowedExt map[string]bool
	maxBytes   int64
	log        *slog.Logger
}

// NewFileStore creates the uploads root and one directory per known
// subdirectory, then returns a store rooted there.
func NewFileStore(root string, allowedExtensions []string, maxBytes int64, log *slog.Logger) (*FileStore, error) {
	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	for _, subdir := range model.UploadSubdirs() {
		dir := filepath.Join(root, subdir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create uploads directory %s: %w", dir, err)
		}
	}

	return &FileStore{
		root:       root,
		allowedExt: allowed,
		maxBytes:   maxBytes,
		log:        log,
	}, nil
}

// Root returns the uploads root directory.
func (fs *FileStore) Root() string {
	return fs.root
}

// Store validates and writes an uploaded file into the given subdirectory
// under a fresh UUID name, keeping the original extension. It returns the
// public reference in the form "/uploads/{subdir}/{uuid}.{ext}".
func (fs *FileStore) Store(file multipart.File, header *multipart.FileHeader, subdir string) (string, error) {
	if header.Size == 0 {
		return "", ErrEmptyFile
	}
	if fs.maxBytes > 0 && header.Size > fs.maxBytes {
		return "", fmt.Errorf("%w (%d bytes, limit %d)", ErrTooLarge, header.Size, fs.maxBytes)
	}

	original, err := util.SanitizeFilename(header.Filename)
	if err != nil {
		return "", ErrNoExtension
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(original), "."))
	if ext == "" {
		return "", ErrNoExtension
	}
	if !fs.allowedExt[ext] {
		return "", fmt.Errorf("%w: .%s", ErrTypeNotAllowed, ext)
	}

	// A declared Content-Type that does not match the extension is
	// recorded but does not reject the upload.
	if contentType := header.Header.Get("Content-Type"); contentType != "" {
		if !model.MimeMatchesExtension(contentType, ext) {
			fs.log.Warn("content type does not match file extension",
				"content_type", contentType,
				"extension", ext,
				"filename", original)
		}
	}

	name := uuid.New().String() + "." + ext
	target, err := util.SafeJoinPath(fs.root, subdir, name)
	if err != nil {
		return "", fmt.Errorf("resolve target path: %w", err)
	}

	out, err := os.Create(target)
	if err != nil {
		fs.log.Error("failed to create upload file", "filename", original, "err", err)
		return "", fmt.Errorf("create file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, file); err != nil {
		_ = os.Remove(target)
		fs.log.Error("failed to write upload file", "filename", original, "err", err)
		return "", fmt.Errorf("write file: %w", err)
	}

	fs.log.Info("stored file", "subdir", subdir, "name", name, "size", header.Size)
	return URLPrefix + subdir + "/" + name, nil
}

// Delete removes the file behind a stored reference. Missing files and
// malformed references are logged and ignored, so callers can delete
// records without worrying about disk state.
func (fs *FileStore) Delete(ref string) {
	if ref == "" {
		return
	}
	path, err := fs.Resolve(ref)
	if err != nil {
		fs.log.Warn("not deleting file for unresolvable reference", "ref", ref, "err", err)
		return
	}
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fs.log.Warn("failed to delete file", "ref", ref, "err", err)
		}
		return
	}
	fs.log.Info("deleted file", "ref", ref)
}

// Resolve maps a public "/uploads/..." reference to an absolute path under
// the uploads root, rejecting anything that escapes it.
func (fs *FileStore) Resolve(ref string) (string, error) {
	if !strings.HasPrefix(ref, URLPrefix) {
		return "", ErrInvalidReference
	}
	rel := strings.TrimPrefix(ref, URLPrefix)
	if rel == "" || util.ContainsPathTraversal(rel) {
		return "", ErrInvalidReference
	}

	path, err := util.SafeJoinPath(fs.root, filepath.FromSlash(rel))
	if err != nil {
		return "", ErrInvalidReference
	}
	return path, nil
}
