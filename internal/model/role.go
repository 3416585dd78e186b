// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain constants and types shared across the
// application: user roles, upload subdirectories, and MIME type tables.
package model

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRoles returns all valid user roles.
func ValidRoles() []string {
	return []string{RoleAdmin, RoleUser}
}

// IsValidRole checks if a role string is a known role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}
