// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// Upload subdirectories. Each kind of uploaded file lands in its own
// directory under the uploads root.
const (
	SubdirLogos       = "logos"
	SubdirGallery     = "gallery"
	SubdirAttachments = "attachments"
)

// UploadSubdirs returns all upload subdirectories created at startup.
func UploadSubdirs() []string {
	return []string{SubdirLogos, SubdirGallery, SubdirAttachments}
}

// Known MIME types for uploaded files.
const (
	MimeTypeJPEG        = "image/jpeg"
	MimeTypePNG         = "image/png"
	MimeTypePDF         = "application/pdf"
	MimeTypeOctetStream = "application/octet-stream"
)

// DefaultAllowedExtensions lists the file extensions accepted by default:
// images and documents for logos/gallery, plus the CAD formats customers
// attach to contact inquiries.
var DefaultAllowedExtensions = []string{"pdf", "png", "jpg", "jpeg", "dwg", "dxf", "step", "stp"}

// MimeMatchesExtension reports whether a declared Content-Type is plausible
// for the given extension. CAD formats have no registered MIME type, so any
// type containing the extension name or a generic octet-stream is accepted.
func MimeMatchesExtension(contentType, ext string) bool {
	switch strings.ToLower(ext) {
	case "pdf":
		return contentType == MimeTypePDF
	case "png":
		return contentType == MimeTypePNG
	case "jpg", "jpeg":
		return contentType == MimeTypeJPEG
	case "dwg", "dxf":
		return strings.Contains(contentType, strings.ToLower(ext)) || contentType == MimeTypeOctetStream
	case "step", "stp":
		return strings.Contains(contentType, "step") || contentType == MimeTypeOctetStream
	default:
		return true
	}
}
