// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nippo-app/nippo/internal/auth"
	"github.com/nippo-app/nippo/internal/model"
	"github.com/nippo-app/nippo/internal/store"
)

// EmployeeService manages the employee lifecycle: registration, update,
// soft-delete, and login authentication. The pepper is injected once at
// construction and passed into every hashing call; it is never stored
// alongside a hash.
type EmployeeService struct {
	queries *store.Queries
	pepper  string
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(db *sql.DB, pepper string) *EmployeeService {
	return &EmployeeService{
		queries: store.New(db),
		pepper:  pepper,
	}
}

// EmployeeInput carries form values for create and update operations.
// Password is the plaintext; on update an empty value means "keep the
// stored hash".
type EmployeeInput struct {
	ID       int64
	Code     string
	Name     string
	Password string
	Role     string
}

// Create registers a new employee. On validation errors it returns the
// echoed, unsaved candidate together with the ordered error list; the
// candidate is persisted only when the list is empty.
func (s *EmployeeService) Create(ctx context.Context, in EmployeeInput) (model.Employee, []string, error) {
	now := time.Now()
	candidate := model.Employee{
		Code:         in.Code,
		Name:         in.Name,
		PasswordHash: auth.Hash(in.Password, s.pepper),
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	errs, err := ValidateEmployee(ctx, s.queries, in.Code, in.Name, in.Password, true, true)
	if err != nil {
		return model.Employee{}, nil, fmt.Errorf("validating employee: %w", err)
	}
	if len(errs) > 0 {
		return candidate, errs, nil
	}

	created, err := s.queries.CreateEmployee(ctx, store.CreateEmployeeParams{
		Code:         candidate.Code,
		Name:         candidate.Name,
		PasswordHash: candidate.PasswordHash,
		Role:         candidate.Role,
		CreatedAt:    candidate.CreatedAt,
		UpdatedAt:    candidate.UpdatedAt,
	})
	if err != nil {
		return model.Employee{}, nil, fmt.Errorf("creating employee: %w", err)
	}
	return created, nil, nil
}

// Update merges form values into the stored record and persists the result.
// The duplicate-code check is enabled only when the code changed; the
// password is re-hashed only when a new plaintext was supplied, otherwise
// the stored hash is retained and the password check is skipped entirely.
func (s *EmployeeService) Update(ctx context.Context, in EmployeeInput) (model.Employee, []string, error) {
	saved, err := s.queries.GetEmployeeByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Employee{}, nil, ErrNotFound
		}
		return model.Employee{}, nil, fmt.Errorf("loading employee %d: %w", in.ID, err)
	}
	if saved.Deleted {
		return model.Employee{}, nil, ErrNotFound
	}

	checkCode := false
	if saved.Code != in.Code {
		checkCode = true
		saved.Code = in.Code
	}

	checkPassword := false
	if in.Password != "" {
		checkPassword = true
		saved.PasswordHash = auth.Hash(in.Password, s.pepper)
	}

	saved.Name = in.Name
	saved.Role = in.Role
	saved.UpdatedAt = time.Now()

	errs, err := ValidateEmployee(ctx, s.queries, saved.Code, saved.Name, in.Password, checkCode, checkPassword)
	if err != nil {
		return model.Employee{}, nil, fmt.Errorf("validating employee: %w", err)
	}
	if len(errs) > 0 {
		return saved, errs, nil
	}

	if err := s.save(ctx, saved); err != nil {
		return model.Employee{}, nil, fmt.Errorf("updating employee %d: %w", saved.ID, err)
	}
	return saved, nil, nil
}

// Destroy soft-deletes an employee. There is no re-validation; once the
// record exists the operation always succeeds, and repeating it leaves
// Deleted set with a newer UpdatedAt.
func (s *EmployeeService) Destroy(ctx context.Context, id int64) error {
	saved, err := s.queries.GetEmployeeByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("loading employee %d: %w", id, err)
	}

	saved.Deleted = true
	saved.UpdatedAt = time.Now()

	if err := s.save(ctx, saved); err != nil {
		return fmt.Errorf("soft-deleting employee %d: %w", id, err)
	}
	return nil
}

// Authenticate checks login credentials. Empty code or password fails
// immediately without hashing. Success is solely a matching active record
// with a non-zero id; there is no distinction between an unknown code and a
// wrong password.
func (s *EmployeeService) Authenticate(ctx context.Context, code, plainPassword string) (model.Employee, bool, error) {
	if code == "" || plainPassword == "" {
		return model.Employee{}, false, nil
	}

	e, err := s.queries.GetEmployeeByCodeAndPassword(ctx, store.GetEmployeeByCodeAndPasswordParams{
		Code:         code,
		PasswordHash: auth.Hash(plainPassword, s.pepper),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Employee{}, false, nil
		}
		return model.Employee{}, false, fmt.Errorf("looking up credentials: %w", err)
	}

	return e, e.ID != 0, nil
}

// FindOne fetches an active employee by id. Soft-deleted records are
// reported as ErrNotFound, identical to truly absent ones.
func (s *EmployeeService) FindOne(ctx context.Context, id int64) (model.Employee, error) {
	e, err := s.queries.GetEmployeeByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Employee{}, ErrNotFound
		}
		return model.Employee{}, fmt.Errorf("loading employee %d: %w", id, err)
	}
	if e.Deleted {
		return model.Employee{}, ErrNotFound
	}
	return e, nil
}

// GetPage returns the requested 1-based page of active employees.
func (s *EmployeeService) GetPage(ctx context.Context, page, perPage int) ([]model.Employee, error) {
	return s.queries.ListEmployees(ctx, store.ListEmployeesParams{
		Limit:  int64(perPage),
		Offset: int64(perPage) * int64(page-1),
	})
}

// CountAll counts active employees.
func (s *EmployeeService) CountAll(ctx context.Context) (int64, error) {
	return s.queries.CountEmployees(ctx)
}

func (s *EmployeeService) save(ctx context.Context, e model.Employee) error {
	return s.queries.UpdateEmployee(ctx, store.UpdateEmployeeParams{
		Code:         e.Code,
		Name:         e.Name,
		PasswordHash: e.PasswordHash,
		Role:         e.Role,
		UpdatedAt:    e.UpdatedAt,
		Deleted:      e.Deleted,
		ID:           e.ID,
	})
}
