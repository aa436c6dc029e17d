// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/nippo-app/nippo/internal/model"
)

const employeeColumns = "id, code, name, password_hash, role, created_at, updated_at, delete_flag"

func scanEmployee(row interface{ Scan(...any) error }) (model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.ID, &e.Code, &e.Name, &e.PasswordHash, &e.Role, &e.CreatedAt, &e.UpdatedAt, &e.Deleted)
	return e, err
}

// GetEmployeeByID fetches an employee by primary key. Soft-deleted records
// are returned too; callers that must treat them as absent check Deleted.
func (q *Queries) GetEmployeeByID(ctx context.Context, id int64) (model.Employee, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	return scanEmployee(row)
}

// GetEmployeeByCodeAndPasswordParams holds parameters for GetEmployeeByCodeAndPassword.
type GetEmployeeByCodeAndPasswordParams struct {
	Code         string
	PasswordHash string
}

// GetEmployeeByCodeAndPassword fetches an active employee matching both the
// code and the peppered password hash. This is the login lookup; deleted
// records never match.
func (q *Queries) GetEmployeeByCodeAndPassword(ctx context.Context, arg GetEmployeeByCodeAndPasswordParams) (model.Employee, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE code = ? AND password_hash = ? AND delete_flag = 0",
		arg.Code, arg.PasswordHash)
	return scanEmployee(row)
}

// CountEmployeesByCode counts active employees holding the given code.
func (q *Queries) CountEmployeesByCode(ctx context.Context, code string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM employees WHERE code = ? AND delete_flag = 0", code).Scan(&count)
	return count, err
}

// CountEmployees counts all active employees.
func (q *Queries) CountEmployees(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM employees WHERE delete_flag = 0").Scan(&count)
	return count, err
}

// ListEmployeesParams holds pagination parameters for ListEmployees.
type ListEmployeesParams struct {
	Limit  int64
	Offset int64
}

// ListEmployees returns a page of active employees, newest first.
func (q *Queries) ListEmployees(ctx context.Context, arg ListEmployeesParams) ([]model.Employee, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE delete_flag = 0 ORDER BY id DESC LIMIT ? OFFSET ?",
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// CreateEmployeeParams holds parameters for CreateEmployee.
type CreateEmployeeParams struct {
	Code         string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateEmployee inserts a new employee and returns the stored record.
func (q *Queries) CreateEmployee(ctx context.Context, arg CreateEmployeeParams) (model.Employee, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO employees (code, name, password_hash, role, created_at, updated_at, delete_flag)
		 VALUES (?, ?, ?, ?, ?, ?, 0)
		 RETURNING `+employeeColumns,
		arg.Code, arg.Name, arg.PasswordHash, arg.Role, arg.CreatedAt, arg.UpdatedAt)
	return scanEmployee(row)
}

// UpdateEmployeeParams holds parameters for UpdateEmployee.
type UpdateEmployeeParams struct {
	Code         string
	Name         string
	PasswordHash string
	Role         string
	UpdatedAt    time.Time
	Deleted      bool
	ID           int64
}

// UpdateEmployee overwrites an employee row. Soft-deletes go through the
// same statement with Deleted set.
func (q *Queries) UpdateEmployee(ctx context.Context, arg UpdateEmployeeParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE employees SET code = ?, name = ?, password_hash = ?, role = ?, updated_at = ?, delete_flag = ?
		 WHERE id = ?`,
		arg.Code, arg.Name, arg.PasswordHash, arg.Role, arg.UpdatedAt, arg.Deleted, arg.ID)
	return err
}
