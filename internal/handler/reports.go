// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nippo-app/nippo/internal/middleware"
	"github.com/nippo-app/nippo/internal/model"
	"github.com/nippo-app/nippo/internal/render"
	"github.com/nippo-app/nippo/internal/service"
	"github.com/nippo-app/nippo/internal/session"
)

// ReportsHandler handles daily report routes. Every logged-in employee can
// browse all reports; editing is restricted to the author while the
// authorization profile enforces checks.
type ReportsHandler struct {
	reports          *service.ReportService
	renderer         *render.Renderer
	sessions         *session.Manager
	perPage          int
	enforceOwnership bool
}

// NewReportsHandler creates a new ReportsHandler. enforceOwnership selects
// the authorization profile: when false, any logged-in employee may edit any
// report, matching the disabled admin check on the employee routes.
func NewReportsHandler(db *sql.DB, renderer *render.Renderer, sm *session.Manager, perPage int, enforceOwnership bool) *ReportsHandler {
	return &ReportsHandler{
		reports:          service.NewReportService(db),
		renderer:         renderer,
		sessions:         sm,
		perPage:          perPage,
		enforceOwnership: enforceOwnership,
	}
}

// ReportsListData holds data for the reports list template.
type ReportsListData struct {
	Reports    []model.Report
	Pagination Pagination
}

// List handles GET /reports - displays a paginated list of every report.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	total, err := h.reports.CountAll(r.Context())
	if err != nil {
		logAndInternalError(w, r, "failed to count reports", "error", err)
		return
	}

	pagination := BuildPagination(page, total, h.perPage, redirectReports)
	reports, err := h.reports.GetAllPerPage(r.Context(), pagination.CurrentPage, h.perPage)
	if err != nil {
		logAndInternalError(w, r, "failed to list reports", "error", err)
		return
	}

	renderPage(w, r, h.renderer, "reports/list", render.TemplateData{
		Title: "Daily Reports",
		Data: ReportsListData{
			Reports:    reports,
			Pagination: pagination,
		},
	})
}

// ReportFormData holds data for the report form template.
type ReportFormData struct {
	Report model.Report
	IsEdit bool
}

// NewForm handles GET /reports/new - displays the report form with today's
// date prefilled.
func (h *ReportsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "reports/form", render.TemplateData{
		Title: "New Report",
		Data: ReportFormData{
			Report: model.Report{ReportDate: time.Now()},
		},
	})
}

// Create handles POST /reports - registers a report authored by the current
// employee.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	author := middleware.GetEmployee(r)
	if author == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	if !parseFormOrRedirect(w, r, h.sessions, redirectReportsNew) {
		return
	}

	in := service.ReportInput{
		Date:    strings.TrimSpace(r.FormValue("report_date")),
		Title:   strings.TrimSpace(r.FormValue("title")),
		Content: r.FormValue("content"),
	}

	candidate, errs, err := h.reports.Create(r.Context(), in, *author)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			flashError(w, r, h.sessions, redirectReportsNew, "Invalid report date")
			return
		}
		logAndInternalError(w, r, "failed to create report", "error", err)
		return
	}
	if len(errs) > 0 {
		renderPage(w, r, h.renderer, "reports/form", render.TemplateData{
			Title:  "New Report",
			Errors: errs,
			Data:   ReportFormData{Report: candidate},
		})
		return
	}

	slog.InfoContext(r.Context(), "report created", "report_id", candidate.ID, "employee_id", author.ID)
	flashSuccess(w, r, h.sessions, redirectReports, "Report registered successfully")
}

// ReportShowData holds data for the report detail template.
type ReportShowData struct {
	Report  model.Report
	CanEdit bool
}

// Show handles GET /reports/{id} - displays a report. The edit link is
// shown only to the author.
func (h *ReportsHandler) Show(w http.ResponseWriter, r *http.Request) {
	report, ok := h.requireReport(w, r)
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, "reports/show", render.TemplateData{
		Title: report.Title,
		Data: ReportShowData{
			Report:  report,
			CanEdit: report.OwnedBy(middleware.EmployeeIDFromContext(r.Context())),
		},
	})
}

// EditForm handles GET /reports/{id}/edit - displays the edit form. Only
// the author may open it; everyone else sees "not found".
func (h *ReportsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	report, ok := h.requireOwnedReport(w, r)
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, "reports/form", render.TemplateData{
		Title: "Edit Report",
		Data: ReportFormData{
			Report: report,
			IsEdit: true,
		},
	})
}

// Update handles POST /reports/{id} - updates a report. Ownership is
// re-checked on the mutating request, not just when the form was served.
func (h *ReportsHandler) Update(w http.ResponseWriter, r *http.Request) {
	report, ok := h.requireOwnedReport(w, r)
	if !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.sessions, redirectReports) {
		return
	}

	in := service.ReportInput{
		ID:      report.ID,
		Date:    strings.TrimSpace(r.FormValue("report_date")),
		Title:   strings.TrimSpace(r.FormValue("title")),
		Content: r.FormValue("content"),
	}

	candidate, errs, err := h.reports.Update(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			flashError(w, r, h.sessions, redirectReports, "Report not found")
		case errors.Is(err, service.ErrInvalidDate):
			flashError(w, r, h.sessions, redirectReports, "Invalid report date")
		default:
			logAndInternalError(w, r, "failed to update report", "error", err, "report_id", report.ID)
		}
		return
	}
	if len(errs) > 0 {
		renderPage(w, r, h.renderer, "reports/form", render.TemplateData{
			Title:  "Edit Report",
			Errors: errs,
			Data:   ReportFormData{Report: candidate, IsEdit: true},
		})
		return
	}

	slog.InfoContext(r.Context(), "report updated", "report_id", report.ID,
		"employee_id", middleware.EmployeeIDFromContext(r.Context()))
	flashSuccess(w, r, h.sessions, redirectReports, "Report updated successfully")
}

// requireReport fetches the report addressed by the {id} route param.
func (h *ReportsHandler) requireReport(w http.ResponseWriter, r *http.Request) (model.Report, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.sessions, redirectReports, "Invalid report ID")
		return model.Report{}, false
	}
	return requireEntityWithRedirect(w, r, h.sessions, redirectReports, "Report", id,
		func(id int64) (model.Report, error) { return h.reports.FindOne(r.Context(), id) })
}

// requireOwnedReport fetches the report and verifies the current employee
// authored it. Under the unchecked authorization profile the ownership
// check is skipped and any report is editable.
func (h *ReportsHandler) requireOwnedReport(w http.ResponseWriter, r *http.Request) (model.Report, bool) {
	if !h.enforceOwnership {
		return h.requireReport(w, r)
	}
	id, err := ParseIDParam(r)
	if err != nil {
		flashError(w, r, h.sessions, redirectReports, "Invalid report ID")
		return model.Report{}, false
	}
	current := middleware.EmployeeIDFromContext(r.Context())
	return requireEntityWithRedirect(w, r, h.sessions, redirectReports, "Report", id,
		func(id int64) (model.Report, error) { return h.reports.FindOwned(r.Context(), id, current) })
}
