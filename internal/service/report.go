// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nippo-app/nippo/internal/model"
	"github.com/nippo-app/nippo/internal/store"
)

// ReportService manages the daily report lifecycle. Reports carry their
// author forever: updates never touch the employee column.
type ReportService struct {
	queries *store.Queries
}

// NewReportService creates a new ReportService.
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{queries: store.New(db)}
}

// ReportInput carries form values for create and update operations. Date is
// the raw form string; an empty value means "today".
type ReportInput struct {
	ID      int64
	Date    string
	Title   string
	Content string
}

// ParseReportDate converts the raw form value to a date. An empty string
// defaults to today; anything else must match the 2006-01-02 layout. A
// malformed value is an error for the caller to surface, not a validation
// message.
func ParseReportDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(model.ReportDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing report date %q: %w", s, ErrInvalidDate)
	}
	return d, nil
}

// Create registers a new report authored by the given employee. On
// validation errors it returns the echoed, unsaved candidate together with
// the ordered error list.
func (s *ReportService) Create(ctx context.Context, in ReportInput, author model.Employee) (model.Report, []string, error) {
	date, err := ParseReportDate(in.Date)
	if err != nil {
		return model.Report{}, nil, err
	}

	now := time.Now()
	candidate := model.Report{
		EmployeeID: author.ID,
		Employee:   &author,
		ReportDate: date,
		Title:      in.Title,
		Content:    in.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if errs := ValidateReport(in.Title, in.Content); len(errs) > 0 {
		return candidate, errs, nil
	}

	id, err := s.queries.CreateReport(ctx, store.CreateReportParams{
		EmployeeID: candidate.EmployeeID,
		ReportDate: candidate.ReportDate,
		Title:      candidate.Title,
		Content:    candidate.Content,
		CreatedAt:  candidate.CreatedAt,
		UpdatedAt:  candidate.UpdatedAt,
	})
	if err != nil {
		return model.Report{}, nil, fmt.Errorf("creating report: %w", err)
	}
	candidate.ID = id
	return candidate, nil, nil
}

// Update merges form values into the stored report. The author column is
// never rewritten, so ownership survives every edit.
func (s *ReportService) Update(ctx context.Context, in ReportInput) (model.Report, []string, error) {
	saved, err := s.findOne(ctx, in.ID)
	if err != nil {
		return model.Report{}, nil, err
	}

	date, err := ParseReportDate(in.Date)
	if err != nil {
		return model.Report{}, nil, err
	}

	saved.ReportDate = date
	saved.Title = in.Title
	saved.Content = in.Content
	saved.UpdatedAt = time.Now()

	if errs := ValidateReport(in.Title, in.Content); len(errs) > 0 {
		return saved, errs, nil
	}

	err = s.queries.UpdateReport(ctx, store.UpdateReportParams{
		ReportDate: saved.ReportDate,
		Title:      saved.Title,
		Content:    saved.Content,
		UpdatedAt:  saved.UpdatedAt,
		ID:         saved.ID,
	})
	if err != nil {
		return model.Report{}, nil, fmt.Errorf("updating report %d: %w", saved.ID, err)
	}
	return saved, nil, nil
}

// FindOne fetches a report by id, any author.
func (s *ReportService) FindOne(ctx context.Context, id int64) (model.Report, error) {
	return s.findOne(ctx, id)
}

// FindOwned fetches a report by id and verifies the current employee wrote
// it. A report belonging to someone else yields ErrNotOwner.
func (s *ReportService) FindOwned(ctx context.Context, id, currentEmployeeID int64) (model.Report, error) {
	r, err := s.findOne(ctx, id)
	if err != nil {
		return model.Report{}, err
	}
	if !r.OwnedBy(currentEmployeeID) {
		return model.Report{}, ErrNotOwner
	}
	return r, nil
}

// GetAllPerPage returns the requested 1-based page of all reports, newest
// first.
func (s *ReportService) GetAllPerPage(ctx context.Context, page, perPage int) ([]model.Report, error) {
	return s.queries.ListReports(ctx, store.ListReportsParams{
		Limit:  int64(perPage),
		Offset: int64(perPage) * int64(page-1),
	})
}

// GetOwnedPerPage returns the requested 1-based page of one employee's
// reports.
func (s *ReportService) GetOwnedPerPage(ctx context.Context, employeeID int64, page, perPage int) ([]model.Report, error) {
	return s.queries.ListReportsByEmployee(ctx, store.ListReportsByEmployeeParams{
		EmployeeID: employeeID,
		Limit:      int64(perPage),
		Offset:     int64(perPage) * int64(page-1),
	})
}

// CountAll counts every report.
func (s *ReportService) CountAll(ctx context.Context) (int64, error) {
	return s.queries.CountReports(ctx)
}

// CountOwned counts one employee's reports.
func (s *ReportService) CountOwned(ctx context.Context, employeeID int64) (int64, error) {
	return s.queries.CountReportsByEmployee(ctx, employeeID)
}

func (s *ReportService) findOne(ctx context.Context, id int64) (model.Report, error) {
	r, err := s.queries.GetReportByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Report{}, ErrNotFound
		}
		return model.Report{}, fmt.Errorf("loading report %d: %w", id, err)
	}
	return r, nil
}
