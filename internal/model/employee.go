// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types used throughout the application:
// Employee (the authenticated principal) and Report (a daily log entry).
package model

import "time"

// Employee roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// ValidRoles contains all valid employee roles.
var ValidRoles = []string{RoleMember, RoleAdmin}

// Employee represents an employee record and, once authenticated, the
// current principal. Employees are never hard-deleted: Deleted marks the
// record as terminal and excludes it from all lookups and logins.
type Employee struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"` // unique business key among non-deleted employees
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Deleted      bool      `json:"deleted"`
}

// IsAdmin returns true if the employee has the admin role.
func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// IsValidRole checks if a role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
