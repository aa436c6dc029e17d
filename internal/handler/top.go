// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/nippo-app/nippo/internal/middleware"
	"github.com/nippo-app/nippo/internal/model"
	"github.com/nippo-app/nippo/internal/render"
	"github.com/nippo-app/nippo/internal/service"
	"github.com/nippo-app/nippo/internal/session"
)

// TopHandler handles the top page.
type TopHandler struct {
	reports  *service.ReportService
	renderer *render.Renderer
	sessions *session.Manager
	perPage  int
}

// NewTopHandler creates a new TopHandler.
func NewTopHandler(db *sql.DB, renderer *render.Renderer, sm *session.Manager, perPage int) *TopHandler {
	return &TopHandler{
		reports:  service.NewReportService(db),
		renderer: renderer,
		sessions: sm,
		perPage:  perPage,
	}
}

// TopPageData holds data for the top page template.
type TopPageData struct {
	Reports    []model.Report
	Pagination Pagination
}

// Index handles GET / - the logged-in employee's own reports, newest first.
func (h *TopHandler) Index(w http.ResponseWriter, r *http.Request) {
	employee := middleware.GetEmployee(r)
	if employee == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	page := ParsePageParam(r)

	total, err := h.reports.CountOwned(r.Context(), employee.ID)
	if err != nil {
		logAndInternalError(w, r, "failed to count reports", "error", err)
		return
	}

	pagination := BuildPagination(page, total, h.perPage, redirectRoot)
	reports, err := h.reports.GetOwnedPerPage(r.Context(), employee.ID, pagination.CurrentPage, h.perPage)
	if err != nil {
		logAndInternalError(w, r, "failed to list reports", "error", err)
		return
	}

	renderPage(w, r, h.renderer, "top/index", render.TemplateData{
		Title: "My Reports",
		Data: TopPageData{
			Reports:    reports,
			Pagination: pagination,
		},
	})
}
