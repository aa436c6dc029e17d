// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// ReportDateLayout is the wire format for report dates in forms.
const ReportDateLayout = "2006-01-02"

// Report represents a daily report filed by an employee. The author is
// fixed at creation and never reassigned.
type Report struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Employee   *Employee `json:"employee,omitempty"` // populated by joined lookups
	ReportDate time.Time `json:"report_date"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OwnedBy returns true if the report was authored by the given employee.
func (r *Report) OwnedBy(employeeID int64) bool {
	return r.EmployeeID == employeeID
}
