// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/nippo-app/nippo/internal/model"
)

const reportJoinQuery = `
SELECT r.id, r.employee_id, r.report_date, r.title, r.content, r.created_at, r.updated_at,
       e.id, e.code, e.name, e.password_hash, e.role, e.created_at, e.updated_at, e.delete_flag
FROM reports r
JOIN employees e ON e.id = r.employee_id`

func scanReport(row interface{ Scan(...any) error }) (model.Report, error) {
	var r model.Report
	var e model.Employee
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.ReportDate, &r.Title, &r.Content, &r.CreatedAt, &r.UpdatedAt,
		&e.ID, &e.Code, &e.Name, &e.PasswordHash, &e.Role, &e.CreatedAt, &e.UpdatedAt, &e.Deleted,
	)
	if err != nil {
		return model.Report{}, err
	}
	r.Employee = &e
	return r, nil
}

// GetReportByID fetches a report with its author joined in.
func (q *Queries) GetReportByID(ctx context.Context, id int64) (model.Report, error) {
	row := q.db.QueryRowContext(ctx, reportJoinQuery+" WHERE r.id = ?", id)
	return scanReport(row)
}

// ListReportsParams holds pagination parameters for report listings.
type ListReportsParams struct {
	Limit  int64
	Offset int64
}

// ListReports returns a page of all reports, newest first.
func (q *Queries) ListReports(ctx context.Context, arg ListReportsParams) ([]model.Report, error) {
	rows, err := q.db.QueryContext(ctx,
		reportJoinQuery+" ORDER BY r.id DESC LIMIT ? OFFSET ?", arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReports(rows)
}

// ListReportsByEmployeeParams holds parameters for ListReportsByEmployee.
type ListReportsByEmployeeParams struct {
	EmployeeID int64
	Limit      int64
	Offset     int64
}

// ListReportsByEmployee returns a page of one employee's reports, newest first.
func (q *Queries) ListReportsByEmployee(ctx context.Context, arg ListReportsByEmployeeParams) ([]model.Report, error) {
	rows, err := q.db.QueryContext(ctx,
		reportJoinQuery+" WHERE r.employee_id = ? ORDER BY r.id DESC LIMIT ? OFFSET ?",
		arg.EmployeeID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReports(rows)
}

func collectReports(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]model.Report, error) {
	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// CountReports counts all reports.
func (q *Queries) CountReports(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&count)
	return count, err
}

// CountReportsByEmployee counts one employee's reports.
func (q *Queries) CountReportsByEmployee(ctx context.Context, employeeID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reports WHERE employee_id = ?", employeeID).Scan(&count)
	return count, err
}

// CreateReportParams holds parameters for CreateReport.
type CreateReportParams struct {
	EmployeeID int64
	ReportDate time.Time
	Title      string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateReport inserts a new report and returns its id.
func (q *Queries) CreateReport(ctx context.Context, arg CreateReportParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO reports (employee_id, report_date, title, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.EmployeeID, arg.ReportDate, arg.Title, arg.Content, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateReportParams holds parameters for UpdateReport. The author column is
// deliberately absent: a report's author is immutable after creation.
type UpdateReportParams struct {
	ReportDate time.Time
	Title      string
	Content    string
	UpdatedAt  time.Time
	ID         int64
}

// UpdateReport overwrites a report's date, title, and content.
func (q *Queries) UpdateReport(ctx context.Context, arg UpdateReportParams) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE reports SET report_date = ?, title = ?, content = ?, updated_at = ? WHERE id = ?",
		arg.ReportDate, arg.Title, arg.Content, arg.UpdatedAt, arg.ID)
	return err
}
